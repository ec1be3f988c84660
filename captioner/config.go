package captioner

import (
	"fmt"
	"time"

	"github.com/BaSui01/captionflow/types"
)

// Config 是 Captioner 的完整配置。
// 构造后不可变，在所有请求间只读共享。
type Config struct {
	// Provider 标识，受支持集合见 providers.Supported。
	Provider string `json:"provider" yaml:"provider"`
	// Model 厂商侧模型标识，留空使用 Provider 默认值。
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// APIKey 显式凭据；留空时按 Provider 从环境解析。
	APIKey string `json:"-" yaml:"-"`
	// BaseURL 覆盖厂商端点，主要用于测试。
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxConcurrent 同时在途的厂商调用上限。
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`
	// Timeout 单次厂商调用超时。
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// MaxRetries 每个请求的最大重试次数（0 表示不重试）。
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
	// BackoffUnit 退避时间单位，第 n 次失败后等待 BackoffUnit * 2^n。
	BackoffUnit time.Duration `json:"backoff_unit,omitempty" yaml:"backoff_unit,omitempty"`

	// RateLimitRPS 客户端侧限流（每秒请求数），0 表示不限流。
	RateLimitRPS float64 `json:"rate_limit_rps,omitempty" yaml:"rate_limit_rps,omitempty"`
	// MaxImageDimension 图像长边上限，超过则先缩放，0 表示不限制。
	MaxImageDimension int `json:"max_image_dimension,omitempty" yaml:"max_image_dimension,omitempty"`
}

// DefaultConfig 返回适用于大多数场景的默认配置。
func DefaultConfig() Config {
	return Config{
		Provider:      "anthropic",
		MaxConcurrent: 5,
		Timeout:       30 * time.Second,
		MaxRetries:    3,
		BackoffUnit:   time.Second,
	}
}

// withDefaults 为零值字段补默认值。
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = d.MaxConcurrent
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.BackoffUnit == 0 {
		c.BackoffUnit = d.BackoffUnit
	}
	return c
}

// Validate 校验配置。
func (c Config) Validate() error {
	if c.Provider == "" {
		return types.NewConfigurationError("provider is required")
	}
	if c.MaxConcurrent <= 0 {
		return types.NewConfigurationError(
			fmt.Sprintf("max_concurrent must be positive, got %d", c.MaxConcurrent))
	}
	if c.Timeout <= 0 {
		return types.NewConfigurationError(
			fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}
	if c.MaxRetries < 0 {
		return types.NewConfigurationError(
			fmt.Sprintf("max_retries must be non-negative, got %d", c.MaxRetries))
	}
	if c.RateLimitRPS < 0 {
		return types.NewConfigurationError(
			fmt.Sprintf("rate_limit_rps must be non-negative, got %g", c.RateLimitRPS))
	}
	return nil
}
