package main

import (
	"fmt"
	"os"

	"freelancer-trust/internal/config"
	"freelancer-trust/internal/logger"

	"github.com/spf13/pflag"
)

var (
	version = "1.0.0" //nolint:gochecknoglobals
)

// 命令行参数定义
var (
	command    = pflag.String("cmd", "extract", "执行的命令: extract=计算单份简历指标, worker=启动队列消费者, init-config=生成示例配置")
	filePath   = pflag.String("file", "-", "简历纯文本文件路径，- 表示标准输入")
	vectorOnly = pflag.Bool("vector-only", false, "只输出特征向量")
	configPath = pflag.StringP("config", "c", "", "配置文件路径，为空时自动查找")
	showVer    = pflag.BoolP("version", "v", false, "显示版本")
)

func main() {
	pflag.Parse()

	if *showVer {
		fmt.Printf("indicators %s\n", version)
		return
	}

	if *command == "init-config" {
		handleInitConfigCommand()
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 标准输出留给结果，日志写到标准错误
	logCfg := logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
		Output:       "stderr",
	}
	logger.Init(logCfg)

	switch *command {
	case "extract":
		handleExtractCommand(cfg)
	case "worker":
		handleWorkerCommand(cfg)
	default:
		fmt.Fprintf(os.Stderr, "错误: 未知命令 '%s'。支持的命令: extract, worker, init-config\n", *command)
		pflag.Usage()
		os.Exit(1)
	}
}

func handleInitConfigCommand() {
	path := *configPath
	if path == "" {
		path = "config.yaml"
	}
	if err := config.CreateSampleConfig(path); err != nil {
		fmt.Fprintf(os.Stderr, "生成示例配置失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("已生成示例配置: %s\n", path)
}
