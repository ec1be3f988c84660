package providers

import (
	"context"
	"time"

	"github.com/BaSui01/captionflow/imaging"
)

// 受支持的 Provider 标识（封闭集合）。
const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Gemini    = "gemini"
)

// Supported 返回受支持的 Provider 标识列表。
func Supported() []string {
	return []string{Anthropic, OpenAI, Gemini}
}

// MaxCaptionTokens 是所有 Provider 统一的输出 token 上限。
// 足够容纳一段多句描述。
const MaxCaptionTokens = 1024

// Result 是单次 Provider 调用的产出。
// TokensUsed / CostEstimate 仅在厂商上报 token 用量时填充。
type Result struct {
	Caption      string
	TokensUsed   *int
	CostEstimate *float64
}

// HealthStatus 描述 Provider 的可达性探测结果。
type HealthStatus struct {
	Healthy bool
	Latency time.Duration
}

// Provider 是视觉描述 Provider 的能力集接口。
// 实现方必须把一切失败归一化为 *types.Error（Code=PROVIDER）。
type Provider interface {
	Name() string

	// Caption 将已编码的图像和提示词发送给厂商，返回描述文本。
	Caption(ctx context.Context, img *imaging.EncodedImage, prompt string) (*Result, error)

	// HealthCheck 探测 Provider 可达性。
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}

// Config 是单个 Provider 实例的配置。
// 构造后不可变，可在所有请求间安全共享。
type Config struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}
