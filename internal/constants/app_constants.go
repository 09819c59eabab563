package constants

import "time"

const (
	// ServiceName 服务名，用于日志和追踪
	ServiceName = "freelancer-trust-indicators"

	// TracerName 指标服务使用的 tracer 名称
	TracerName = "freelancer-trust/indicators"

	// DefaultResultTTL 结果缓存默认过期时间
	DefaultResultTTL = 24 * time.Hour

	// SpanEvaluate 一次指标计算的 span 名称
	SpanEvaluate = "indicator.evaluate"
)
