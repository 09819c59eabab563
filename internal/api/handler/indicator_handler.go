package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"freelancer-trust/internal/config"
	"freelancer-trust/internal/constants"
	"freelancer-trust/internal/logger"
	"freelancer-trust/internal/processor"
	"freelancer-trust/internal/storage"
	"freelancer-trust/internal/tracing"
	"freelancer-trust/internal/types"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer(constants.TracerName)

// IndicatorEvaluator 指标计算服务接口，processor.IndicatorService 是默认实现
type IndicatorEvaluator interface {
	Evaluate(ctx context.Context, text string) (*types.ExtractionResult, error)
}

// IndicatorHandler 消费指标计算请求并发布计算结果
type IndicatorHandler struct {
	cfg     *config.Config
	queue   storage.MessageQueue
	service IndicatorEvaluator
	now     func() time.Time
	logger  zerolog.Logger

	mu    sync.Mutex
	stops []chan<- struct{}
}

// NewIndicatorHandler 创建指标消息处理器
func NewIndicatorHandler(cfg *config.Config, queue storage.MessageQueue, service IndicatorEvaluator) *IndicatorHandler {
	return &IndicatorHandler{
		cfg:     cfg,
		queue:   queue,
		service: service,
		now:     time.Now,
		logger:  logger.Component("indicator_handler"),
	}
}

// StartIndicatorConsumer 声明交换机与队列，启动 ConsumerWorkers 个互不协调的消费者。
// ctx 结束时停止所有消费者。
func (h *IndicatorHandler) StartIndicatorConsumer(ctx context.Context) error {
	mq := h.cfg.RabbitMQ

	// 1. 确保交换机和队列存在
	if err := h.queue.EnsureExchange(mq.IndicatorExchange, "direct", true); err != nil {
		return fmt.Errorf("确保交换机存在失败: %w", err)
	}
	if err := h.queue.EnsureQueue(mq.RequestQueue, true); err != nil {
		return fmt.Errorf("确保队列存在失败: %w", err)
	}
	if err := h.queue.BindQueue(mq.RequestQueue, mq.IndicatorExchange, mq.RequestRoutingKey); err != nil {
		return fmt.Errorf("绑定队列失败: %w", err)
	}

	workers := mq.ConsumerWorkers
	if workers < 1 {
		workers = 1
	}

	// 2. 启动消费者
	for i := 0; i < workers; i++ {
		stop, err := h.startWithRetry(ctx, i)
		if err != nil {
			h.Stop()
			return fmt.Errorf("启动消费者失败: %w", err)
		}
		h.mu.Lock()
		h.stops = append(h.stops, stop)
		h.mu.Unlock()
	}

	h.logger.Info().
		Str("queue", mq.RequestQueue).
		Int("workers", workers).
		Int("prefetch_count", mq.PrefetchCount).
		Msg("指标计算消费者就绪")

	go func() {
		<-ctx.Done()
		h.Stop()
	}()
	return nil
}

func (h *IndicatorHandler) startWithRetry(ctx context.Context, worker int) (chan<- struct{}, error) {
	mq := h.cfg.RabbitMQ
	interval := config.GetDuration(mq.RetryInterval, 5*time.Second)

	var lastErr error
	for attempt := 0; attempt <= mq.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interval):
			}
		}
		stop, err := h.queue.StartConsumer(mq.RequestQueue, mq.PrefetchCount, h.HandleDelivery)
		if err == nil {
			return stop, nil
		}
		lastErr = err
		h.logger.Warn().Err(err).Int("worker", worker).Int("attempt", attempt+1).Msg("启动消费者失败，稍后重试")
	}
	return nil, lastErr
}

// Stop 停止所有已启动的消费者，可重复调用
func (h *IndicatorHandler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, stop := range h.stops {
		close(stop)
	}
	h.stops = nil
}

// HandleDelivery 处理一条请求消息并返回确认方式:
// 无法解码的消息直接拒绝，输入校验失败发布错误结果后确认，发布失败重新入队。
func (h *IndicatorHandler) HandleDelivery(ctx context.Context, body []byte) storage.DeliveryAction {
	ctx, span := tracer.Start(ctx, "indicator.consume", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	var msg storage.IndicatorRequestMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		decodeErr := processor.NewDecodeError("", err.Error())
		tracing.RecordError(span, decodeErr, tracing.ErrorTypeDecode)
		tracing.RecordRabbitMQNack(span, "", false, "undecodable message")
		h.logger.Error().Err(decodeErr).Int("body_size", len(body)).Msg("解析指标请求消息失败")
		return storage.DeliveryReject
	}

	if msg.SubmissionUUID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeInternal)
			return storage.DeliveryRequeue
		}
		msg.SubmissionUUID = id.String()
	}
	span.SetAttributes(attribute.String("submission.uuid", tracing.SafeAttributeValue("submission.uuid", msg.SubmissionUUID, tracing.DefaultMaxLength)))
	log := h.logger.With().Str("submission_uuid", msg.SubmissionUUID).Logger()

	result, err := h.service.Evaluate(ctx, msg.ResumeText)
	if err != nil {
		if !errors.Is(err, processor.ErrNotText) {
			tracing.RecordError(span, err, tracing.ErrorTypeInternal)
			tracing.RecordRabbitMQNack(span, msg.SubmissionUUID, true, err.Error())
			log.Warn().Err(err).Msg("指标计算中断，消息重新入队")
			return storage.DeliveryRequeue
		}
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		log.Warn().Err(err).Msg("简历文本校验失败，发布错误结果")
		return h.publish(ctx, span, log, storage.NewIndicatorErrorMessage(msg.SubmissionUUID, err, h.now()))
	}

	log.Info().
		Int("total_projects", result.Indicators.TotalProjects).
		Bool("years_missing", result.Indicators.YearsMissing).
		Msg("指标计算完成")
	return h.publish(ctx, span, log, storage.NewIndicatorResultMessage(msg.SubmissionUUID, result, h.now()))
}

func (h *IndicatorHandler) publish(ctx context.Context, span trace.Span, log zerolog.Logger, out storage.IndicatorResultMessage) storage.DeliveryAction {
	mq := h.cfg.RabbitMQ
	if err := h.queue.PublishJSON(ctx, mq.IndicatorExchange, mq.ResultRoutingKey, out, true); err != nil {
		pubErr := processor.NewPublishError(out.SubmissionUUID, err.Error())
		tracing.RecordError(span, pubErr, tracing.ErrorTypeRabbitMQ)
		tracing.RecordRabbitMQNack(span, out.SubmissionUUID, true, "publish result failed")
		log.Error().Err(pubErr).Msg("发布指标结果失败，消息重新入队")
		return storage.DeliveryRequeue
	}
	return storage.DeliveryAck
}
