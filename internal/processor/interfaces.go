package processor

import (
	"context"
	"time"

	"freelancer-trust/internal/types"
)

// IndicatorExtractor 项目指标提取器接口，parser.ProjectExtractor 是默认实现
type IndicatorExtractor interface {
	// Extract 对一份简历文本执行完整提取，不返回错误
	Extract(text string) *types.ExtractionResult

	// Fingerprint 影响提取结果的参数摘要，参数不同的提取器不能共用缓存结果
	Fingerprint() string
}

// IndicatorCache 指标结果缓存接口，storage.Redis 是默认实现
type IndicatorCache interface {
	// GetIndicatorResult 按参数摘要和简历文本MD5读取缓存结果，未命中时返回 storage.ErrNotFound
	GetIndicatorResult(ctx context.Context, fingerprint, textMD5 string) (*types.ExtractionResult, error)

	// SetIndicatorResult 写入缓存结果
	SetIndicatorResult(ctx context.Context, fingerprint, textMD5 string, result *types.ExtractionResult, ttl time.Duration) error
}
