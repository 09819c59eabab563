package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freelancer-trust/internal/api/handler"
	"freelancer-trust/internal/config"
	"freelancer-trust/internal/logger"
	"freelancer-trust/internal/processor"
	"freelancer-trust/internal/storage"
	"freelancer-trust/internal/tracing"
)

// handleWorkerCommand 启动队列消费者，收到 SIGINT/SIGTERM 后退出
func handleWorkerCommand(cfg *config.Config) {
	if cfg.RabbitMQ.URL == "" {
		logger.Fatal().Msg("worker 模式需要配置 rabbitmq.url")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := tracing.InitTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("关闭链路追踪失败")
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()
	if storageManager.RabbitMQ == nil {
		logger.Fatal().Msg("RabbitMQ 初始化失败，无法启动消费者")
	}

	var cache processor.IndicatorCache
	if storageManager.Redis != nil {
		cache = storageManager.Redis
	}
	svc := processor.NewIndicatorServiceFromConfig(cfg, cache)

	h := handler.NewIndicatorHandler(cfg, storageManager.RabbitMQ, svc)
	if err := h.StartIndicatorConsumer(ctx); err != nil {
		logger.Fatal().Err(err).Msg("启动指标计算消费者失败")
	}
	logger.Info().Str("version", version).Msg("指标计算服务已启动")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info().Str("signal", sig.String()).Msg("收到退出信号，正在关闭")

	cancel()
	h.Stop()
}
