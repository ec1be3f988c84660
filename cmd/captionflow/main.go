// =============================================================================
// CaptionFlow 主入口
// =============================================================================
// 图像描述命令行工具
//
// 使用方法:
//
//	captionflow caption photo.jpg                     # 标注单张图像
//	captionflow caption --provider openai *.jpg       # 指定厂商批量标注
//	captionflow caption --config config.yaml a.png    # 指定配置文件
//	captionflow health                                # 厂商可达性探测
//	captionflow version                               # 显示版本信息
// =============================================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/captionflow/captioner"
	"github.com/BaSui01/captionflow/config"
	"github.com/BaSui01/captionflow/imaging"
	"github.com/BaSui01/captionflow/internal/metrics"
)

// 版本信息（构建时注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "caption":
		runCaption(os.Args[2:])
	case "health":
		runHealth(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🖥️ caption 命令
// =============================================================================

func runCaption(args []string) {
	fs := flag.NewFlagSet("caption", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	provider := fs.String("provider", "", "Override provider (anthropic, openai, gemini)")
	model := fs.String("model", "", "Override model")
	fs.Parse(args)

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "caption: at least one image file is required")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	if *provider != "" {
		cfg.Caption.Provider = *provider
	}
	if *model != "" {
		cfg.Caption.Model = *model
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	// Ctrl-C 取消整个批次
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []captioner.Option
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		collector := metrics.NewCollector(cfg.Metrics.Namespace, registry, logger)
		opts = append(opts, captioner.WithMetrics(collector))
		go serveMetrics(cfg.Metrics.Addr, registry, logger)
	}

	c, err := captioner.New(cfg.Caption.Captioner(), logger, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize captioner: %v\n", err)
		os.Exit(1)
	}

	srcs := make([]imaging.Source, len(files))
	for i, f := range files {
		srcs[i] = imaging.FromFile(f)
	}

	start := time.Now()
	results := c.CaptionImages(ctx, srcs)

	failed := 0
	for i, res := range results {
		fmt.Printf("%s:\n", files[i])
		fmt.Printf("  caption: %s\n", res.Caption)
		if !res.OK {
			failed++
			continue
		}
		fmt.Printf("  confidence: %.1f\n", res.Confidence)
		if res.TokensUsed != nil {
			fmt.Printf("  tokens: %d\n", *res.TokensUsed)
		}
		if res.CostEstimate != nil {
			fmt.Printf("  cost: $%.6f\n", *res.CostEstimate)
		}
		fmt.Printf("  time: %.2fs\n", res.ProcessingTime)
	}

	logger.Info("batch finished",
		zap.Int("total", len(results)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d images failed\n", failed, len(results))
		os.Exit(1)
	}
}

// =============================================================================
// 🏥 health 命令
// =============================================================================

func runHealth(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	provider := fs.String("provider", "", "Override provider")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *provider != "" {
		cfg.Caption.Provider = *provider
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	c, err := captioner.New(cfg.Caption.Captioner(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize captioner: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := c.HealthCheck(ctx)
	if err != nil || !status.Healthy {
		fmt.Fprintf(os.Stderr, "Provider %s is unhealthy: %v\n", c.Provider(), err)
		os.Exit(1)
	}
	fmt.Printf("Provider %s is healthy (latency %s)\n", c.Provider(), status.Latency)
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

func loadConfig(path string) *config.Config {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         cfg.Format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format != "console" {
		zapConfig.Encoding = "json"
	}

	logger, err := zapConfig.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

// serveMetrics 在独立端口暴露 /metrics，随主进程退出
func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint stopped", zap.Error(err))
	}
}

func printVersion() {
	fmt.Printf("CaptionFlow %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`CaptionFlow - image captioning via vision language models

Usage:
  captionflow caption [flags] <image>...   Caption one or more image files
  captionflow health [flags]               Check provider availability
  captionflow version                      Show version information
  captionflow help                         Show this help

Flags:
  --config <path>     Path to YAML config file
  --provider <name>   Provider override: anthropic, openai, gemini
  --model <name>      Model override

Environment:
  ANTHROPIC_API_KEY / OPENAI_API_KEY / GEMINI_API_KEY
                      Provider credentials (also read from .env)
  CAPTIONFLOW_*       Config overrides, e.g. CAPTIONFLOW_CAPTION_TIMEOUT=60s`)
}
