package processor

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Components 服务依赖的组件
type Components struct {
	Extractor IndicatorExtractor
	Cache     IndicatorCache // 可选
}

// Settings 服务的运行参数
type Settings struct {
	ResultTTL time.Duration
	Tracer    trace.Tracer
	Logger    zerolog.Logger
}

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithExtractor 设置指标提取器
func WithExtractor(extractor IndicatorExtractor) ComponentOpt {
	return func(c *Components) {
		c.Extractor = extractor
	}
}

// WithCache 设置结果缓存
func WithCache(cache IndicatorCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = cache
	}
}

// ----- 设置选项 -----

// WithResultTTL 设置结果缓存过期时间
func WithResultTTL(ttl time.Duration) SettingOpt {
	return func(s *Settings) {
		if ttl > 0 {
			s.ResultTTL = ttl
		}
	}
}

// WithTracer 设置 tracer，测试中用于注入记录型 tracer
func WithTracer(t trace.Tracer) SettingOpt {
	return func(s *Settings) {
		if t != nil {
			s.Tracer = t
		}
	}
}

// WithServiceLogger 设置日志记录器
func WithServiceLogger(l zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = l
	}
}
