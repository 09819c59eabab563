package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"freelancer-trust/internal/config"
	"freelancer-trust/internal/logger"
	"freelancer-trust/internal/processor"
	"freelancer-trust/internal/storage"
)

// handleExtractCommand 读取一份简历文本，输出指标结果JSON
func handleExtractCommand(cfg *config.Config) {
	data, err := readInput(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取输入失败: %v\n", err)
		os.Exit(1)
	}

	var cache processor.IndicatorCache
	if cfg.Redis.Address != "" {
		redisClient, err := storage.NewRedisAdapter(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis不可用，不使用结果缓存")
		} else {
			defer redisClient.Close()
			cache = redisClient
		}
	}

	svc := processor.NewIndicatorServiceFromConfig(cfg, cache)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := svc.EvaluatePayload(ctx, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "计算指标失败: %v\n", err)
		os.Exit(1)
	}

	var out interface{} = result
	if *vectorOnly {
		out = result.FeatureVector
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "输出结果失败: %v\n", err)
		os.Exit(1)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
