package config

import (
	"fmt"
	"time"

	"github.com/BaSui01/captionflow/captioner"
)

// Config 是 CaptionFlow 的完整应用配置。
type Config struct {
	// Caption 标注核心配置
	Caption CaptionConfig `yaml:"caption" env:"CAPTION"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics 指标配置
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// CaptionConfig 标注配置，逐字段映射到 captioner.Config。
type CaptionConfig struct {
	// Provider 厂商标识: anthropic, openai, gemini
	Provider string `yaml:"provider" env:"PROVIDER"`
	// Model 模型标识，留空使用厂商默认值
	Model string `yaml:"model" env:"MODEL"`
	// BaseURL 覆盖厂商端点
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// MaxConcurrent 并发上限
	MaxConcurrent int `yaml:"max_concurrent" env:"MAX_CONCURRENT"`
	// Timeout 单次调用超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// MaxRetries 最大重试次数
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// BackoffUnit 退避时间单位
	BackoffUnit time.Duration `yaml:"backoff_unit" env:"BACKOFF_UNIT"`
	// RateLimitRPS 客户端限流（每秒请求数），0 表示不限流
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	// MaxImageDimension 图像长边上限，0 表示不缩放
	MaxImageDimension int `yaml:"max_image_dimension" env:"MAX_IMAGE_DIMENSION"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用 Prometheus 指标
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// /metrics 监听地址
	Addr string `yaml:"addr" env:"ADDR"`
	// 指标命名空间
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Caption: DefaultCaptionConfig(),
		Log:     DefaultLogConfig(),
		Metrics: DefaultMetricsConfig(),
	}
}

// DefaultCaptionConfig 返回默认标注配置
func DefaultCaptionConfig() CaptionConfig {
	d := captioner.DefaultConfig()
	return CaptionConfig{
		Provider:      d.Provider,
		MaxConcurrent: d.MaxConcurrent,
		Timeout:       d.Timeout,
		MaxRetries:    d.MaxRetries,
		BackoffUnit:   d.BackoffUnit,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "json",
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Addr:      ":9091",
		Namespace: "captionflow",
	}
}

// Captioner 将标注配置转换为 captioner.Config。
// 凭据不经过配置文件，由 captioner 按厂商从环境解析。
func (c CaptionConfig) Captioner() captioner.Config {
	return captioner.Config{
		Provider:          c.Provider,
		Model:             c.Model,
		BaseURL:           c.BaseURL,
		MaxConcurrent:     c.MaxConcurrent,
		Timeout:           c.Timeout,
		MaxRetries:        c.MaxRetries,
		BackoffUnit:       c.BackoffUnit,
		RateLimitRPS:      c.RateLimitRPS,
		MaxImageDimension: c.MaxImageDimension,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if err := c.Caption.Captioner().Validate(); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}
	return nil
}
