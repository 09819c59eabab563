package processor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"freelancer-trust/internal/config"
	"freelancer-trust/internal/storage"
	"freelancer-trust/internal/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const sampleResume = `Projects
Ledger Sync (Personal) 2023 - 2024
Built a ledger reconciliation tool with Go and PostgreSQL.
Tech: Go, PostgreSQL, Docker
https://github.com/example/ledger-sync

Education
B.Sc. Computer Science`

// fakeCache 内存实现的 IndicatorCache
type fakeCache struct {
	mu      sync.Mutex
	data    map[string]*types.ExtractionResult
	getErr  error
	setErr  error
	sets    int
	lastTTL time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]*types.ExtractionResult)}
}

func (c *fakeCache) GetIndicatorResult(_ context.Context, fingerprint, textMD5 string) (*types.ExtractionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	r, ok := c.data[fingerprint+":"+textMD5]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r, nil
}

func (c *fakeCache) SetIndicatorResult(_ context.Context, fingerprint, textMD5 string, result *types.ExtractionResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.lastTTL = ttl
	if c.setErr != nil {
		return c.setErr
	}
	c.data[fingerprint+":"+textMD5] = result
	return nil
}

// countingExtractor 记录调用次数，返回固定结果
type countingExtractor struct {
	mu    sync.Mutex
	calls int
}

func (e *countingExtractor) Extract(string) *types.ExtractionResult {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return &types.ExtractionResult{
		Indicators: types.IndicatorRecord{TotalProjects: 2, TotalYears: 1},
		Projects:   []types.ProjectRecord{},
	}
}

func (e *countingExtractor) Fingerprint() string { return "counting" }

func newTestService(t *testing.T, compOpts ...ComponentOpt) (*IndicatorService, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	svc := NewIndicatorService(compOpts,
		WithTracer(tp.Tracer("test")),
		WithServiceLogger(zerolog.Nop()),
		WithResultTTL(time.Hour),
	)
	return svc, sr
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestEvaluateWithDefaultExtractor(t *testing.T) {
	svc, sr := newTestService(t)

	result, err := svc.Evaluate(context.Background(), sampleResume)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.Indicators.TotalProjects)
	assert.Equal(t, 1.0, result.Indicators.TotalYears)
	assert.Equal(t, 1.0, result.Indicators.LinkRatio)
	assert.False(t, result.Indicators.YearsMissing)
	assert.Len(t, result.FeatureVector, types.FeatureCount)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "indicator.evaluate", spans[0].Name())
	attrs := spanAttrs(spans[0])
	assert.Equal(t, int64(1), attrs["indicator.total_projects"].AsInt64())
	assert.False(t, attrs["cache.hit"].AsBool())
	assert.Len(t, attrs["resume.md5"].AsString(), 32)
}

func TestEvaluateEmptyText(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Evaluate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, types.IndicatorRecord{}, result.Indicators)
	assert.Equal(t, types.FeatureVector{}, result.FeatureVector)
	assert.NotNil(t, result.Projects)
}

func TestEvaluateUsesCache(t *testing.T) {
	cache := newFakeCache()
	extractor := &countingExtractor{}
	svc, sr := newTestService(t, WithExtractor(extractor), WithCache(cache))

	first, err := svc.Evaluate(context.Background(), "some resume")
	require.NoError(t, err)
	second, err := svc.Evaluate(context.Background(), "some resume")
	require.NoError(t, err)

	assert.Equal(t, 1, extractor.calls, "第二次应命中缓存")
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, time.Hour, cache.lastTTL)
	assert.Equal(t, first, second)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.False(t, spanAttrs(spans[0])["cache.hit"].AsBool())
	assert.True(t, spanAttrs(spans[1])["cache.hit"].AsBool())
}

func TestEvaluateCacheFailuresAreSoft(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	extractor := &countingExtractor{}
	svc, sr := newTestService(t, WithExtractor(extractor), WithCache(cache))

	result, err := svc.Evaluate(context.Background(), "some resume")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Indicators.TotalProjects)
	assert.Equal(t, 1, extractor.calls)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	var cacheEvents int
	for _, ev := range spans[0].Events() {
		if ev.Name == "cache.error" {
			cacheEvents++
		}
	}
	assert.Equal(t, 2, cacheEvents, "get 和 set 失败都应记录事件")
}

func TestEvaluateRejectsInvalidText(t *testing.T) {
	svc, sr := newTestService(t)

	_, err := svc.EvaluatePayload(context.Background(), []byte{0xff, 0xfe, 'a'})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotText)

	var procErr *IndicatorProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "validate", procErr.Op)

	_, err = svc.Evaluate(context.Background(), string([]byte{0xc3}))
	assert.ErrorIs(t, err, ErrNotText)
	assert.Empty(t, sr.Ended(), "校验失败时不应进入流水线")
}

func TestEvaluatePayload(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.EvaluatePayload(context.Background(), []byte(sampleResume))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indicators.TotalProjects)
}

func TestEvaluateCancelledContext(t *testing.T) {
	extractor := &countingExtractor{}
	svc, _ := newTestService(t, WithExtractor(extractor))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Evaluate(ctx, sampleResume)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, extractor.calls)
}

func TestNewIndicatorServiceFromConfig(t *testing.T) {
	cfg := &config.Config{
		Extraction: config.DefaultExtractionConfig(),
		Redis:      config.RedisConfig{ResultTTLHours: 2},
	}
	cfg.Extraction.DefaultDurationMonths = 6

	svc := NewIndicatorServiceFromConfig(cfg, nil)
	assert.Nil(t, svc.components.Cache)
	assert.Equal(t, 2*time.Hour, svc.settings.ResultTTL)

	result, err := svc.Evaluate(context.Background(), `Projects
Undated Tool (Personal)
Internal dashboard for reporting metrics.
Tech: Python, Flask`)
	require.NoError(t, err)
	assert.Equal(t, 6.0, result.Indicators.AverageDurationMonths)
	assert.True(t, result.Indicators.YearsMissing)
}

func TestEvaluateCacheSeparatesExtractionConfigs(t *testing.T) {
	touching := strings.Join([]string{
		"Experience",
		"Clinic Booking (Client) 2022 - 2024",
		"• Appointment scheduling for a dental clinic",
		"Fleet Tracker (Contract) 2024 - 2025",
		"• GPS dashboards for delivery vans",
		"• Tech: Go, Redis, Docker",
		"Side Blog (Personal) 2023",
		"• Markdown blog engine",
		"Skills",
		"Go, Python",
	}, "\n")

	inclusiveCfg := &config.Config{Extraction: config.DefaultExtractionConfig()}
	exclusiveCfg := &config.Config{Extraction: config.DefaultExtractionConfig()}
	exclusiveCfg.Extraction.OverlapPolicy = "exclusive"

	cache := newFakeCache()
	inclusive := NewIndicatorServiceFromConfig(inclusiveCfg, cache)
	exclusive := NewIndicatorServiceFromConfig(exclusiveCfg, cache)

	first, err := inclusive.Evaluate(context.Background(), touching)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Indicators.TotalProjects)
	assert.Equal(t, 1, first.Indicators.OverlappingCount)

	second, err := exclusive.Evaluate(context.Background(), touching)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Indicators.OverlappingCount, "参数不同的服务不能读到对方的缓存结果")
	assert.Equal(t, 2, cache.sets)

	again, err := inclusive.Evaluate(context.Background(), touching)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Indicators.OverlappingCount)
	assert.Equal(t, 2, cache.sets, "相同参数应命中缓存")
}

func TestIndicatorProcessError(t *testing.T) {
	err := NewPublishError("uuid-1", "channel closed")
	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.NotErrorIs(t, err, ErrCacheFailed)
	assert.Contains(t, err.Error(), "uuid-1")
	assert.Contains(t, err.Error(), "channel closed")

	assert.ErrorIs(t, NewDecodeError("", "bad json"), ErrDecodeFailed)
	assert.ErrorIs(t, NewCacheError("x", ""), ErrCacheFailed)
	assert.NotContains(t, NewCacheError("x", "").Error(), ": ")
}
