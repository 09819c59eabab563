package processor

import (
	"context"
	"errors"
	"unicode/utf8"

	"freelancer-trust/internal/config"
	"freelancer-trust/internal/constants"
	"freelancer-trust/internal/logger"
	"freelancer-trust/internal/parser"
	"freelancer-trust/internal/storage"
	"freelancer-trust/internal/tracing"
	"freelancer-trust/internal/types"
	"freelancer-trust/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer(constants.TracerName)

// IndicatorService 项目指标计算服务。
// 提取器本身无状态，服务只在其前面加一层可选的结果缓存，可并发调用。
type IndicatorService struct {
	components Components
	settings   Settings
}

// NewIndicatorService 创建服务。未指定提取器时使用默认参数的 parser.ProjectExtractor。
func NewIndicatorService(compOpts []ComponentOpt, setOpts ...SettingOpt) *IndicatorService {
	s := &IndicatorService{
		settings: Settings{
			ResultTTL: constants.DefaultResultTTL,
			Tracer:    tracer,
			Logger:    logger.Component("indicator_service"),
		},
	}
	for _, opt := range compOpts {
		opt(&s.components)
	}
	for _, opt := range setOpts {
		opt(&s.settings)
	}
	if s.components.Extractor == nil {
		s.components.Extractor = parser.NewProjectExtractor()
	}
	return s
}

// NewIndicatorServiceFromConfig 按配置创建服务，cache 可以为 nil
func NewIndicatorServiceFromConfig(cfg *config.Config, cache IndicatorCache) *IndicatorService {
	extractor := parser.NewProjectExtractor(
		parser.WithExtractionConfig(cfg.Extraction),
		parser.WithLogger(logger.Component("parser")),
	)
	compOpts := []ComponentOpt{WithExtractor(extractor)}
	if cache != nil {
		compOpts = append(compOpts, WithCache(cache))
	}
	return NewIndicatorService(compOpts, WithResultTTL(cfg.Redis.ResultTTL()))
}

// EvaluatePayload 校验外部传入的字节内容为UTF-8文本后计算指标
func (s *IndicatorService) EvaluatePayload(ctx context.Context, payload []byte) (*types.ExtractionResult, error) {
	if !utf8.Valid(payload) {
		return nil, NewValidationError("", "payload contains invalid UTF-8 sequences")
	}
	return s.Evaluate(ctx, string(payload))
}

// Evaluate 计算一份简历文本的项目指标。
// 只有输入不是有效文本或 ctx 已取消时返回错误，缓存失败只记录日志。
func (s *IndicatorService) Evaluate(ctx context.Context, text string) (*types.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !utf8.ValidString(text) {
		return nil, NewValidationError("", "text contains invalid UTF-8 sequences")
	}

	ctx, span := s.settings.Tracer.Start(ctx, constants.SpanEvaluate, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	key := resultKey{
		fingerprint: s.components.Extractor.Fingerprint(),
		textMD5:     utils.CalculateMD5([]byte(text)),
	}
	span.SetAttributes(
		attribute.String("resume.md5", tracing.SafeAttributeValue("resume.md5", key.textMD5, tracing.DefaultMaxLength)),
		attribute.String("indicator.fingerprint", key.fingerprint),
	)
	log := s.settings.Logger.With().Str("md5", key.textMD5).Logger()

	if cached := s.lookup(ctx, span, key); cached != nil {
		span.SetAttributes(
			attribute.Bool("cache.hit", true),
			attribute.Int("indicator.total_projects", cached.Indicators.TotalProjects),
			attribute.Bool("indicator.years_missing", cached.Indicators.YearsMissing),
		)
		log.Debug().Msg("命中指标结果缓存")
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	result := s.components.Extractor.Extract(text)
	span.SetAttributes(
		attribute.Int("indicator.total_projects", result.Indicators.TotalProjects),
		attribute.Bool("indicator.years_missing", result.Indicators.YearsMissing),
	)

	s.store(ctx, span, key, result)

	log.Info().
		Int("total_projects", result.Indicators.TotalProjects).
		Bool("years_missing", result.Indicators.YearsMissing).
		Msg("项目指标计算完成")
	return result, nil
}

// resultKey 缓存结果的定位信息：提取参数摘要 + 文本MD5
type resultKey struct {
	fingerprint string
	textMD5     string
}

func (s *IndicatorService) lookup(ctx context.Context, span trace.Span, key resultKey) *types.ExtractionResult {
	if s.components.Cache == nil {
		return nil
	}
	cached, err := s.components.Cache.GetIndicatorResult(ctx, key.fingerprint, key.textMD5)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.cacheFailed(span, key, "get", err)
		}
		return nil
	}
	return cached
}

func (s *IndicatorService) store(ctx context.Context, span trace.Span, key resultKey, result *types.ExtractionResult) {
	if s.components.Cache == nil {
		return
	}
	if err := s.components.Cache.SetIndicatorResult(ctx, key.fingerprint, key.textMD5, result, s.settings.ResultTTL); err != nil {
		s.cacheFailed(span, key, "set", err)
	}
}

// cacheFailed 缓存失败不影响结果，只记录事件与告警日志
func (s *IndicatorService) cacheFailed(span trace.Span, key resultKey, op string, err error) {
	span.AddEvent("cache.error", trace.WithAttributes(
		attribute.String("error.type", string(tracing.ErrorTypeRedis)),
		attribute.String("cache.op", op),
		attribute.String("error.message", tracing.TruncateString(err.Error(), tracing.DefaultMaxLength)),
	))
	s.settings.Logger.Warn().Err(NewCacheError("", err.Error())).Str("md5", key.textMD5).Str("fingerprint", key.fingerprint).Str("op", op).Msg("指标结果缓存操作失败")
}
