package captioner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/captionflow/credentials"
	"github.com/BaSui01/captionflow/imaging"
	"github.com/BaSui01/captionflow/internal/metrics"
	"github.com/BaSui01/captionflow/providers"
	"github.com/BaSui01/captionflow/providers/anthropic"
	"github.com/BaSui01/captionflow/providers/gemini"
	"github.com/BaSui01/captionflow/providers/openai"
	"github.com/BaSui01/captionflow/types"
)

// Captioner 是面向调用方的同步客户端。
// 单张调用阻塞到终态；批量调用在内部并发执行后按输入顺序返回。
type Captioner struct {
	cfg       Config
	provider  providers.Provider
	enc       *imaging.Encoder
	limiter   *rate.Limiter
	collector *metrics.Collector
	logger    *zap.Logger
}

// Option 配置 Captioner 的可选能力。
type Option func(*Captioner)

// WithMetrics 挂接 Prometheus 指标收集器。
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Captioner) { c.collector = collector }
}

// withProvider 注入 Provider 实现，测试专用。
func withProvider(p providers.Provider) Option {
	return func(c *Captioner) { c.provider = p }
}

// New 创建 Captioner。
// 凭据在此一次性解析；凭据缺失或 Provider 不受支持时返回
// CONFIGURATION 错误，且不会发起任何网络调用。
func New(cfg Config, logger *zap.Logger, opts ...Option) (*Captioner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Captioner{
		cfg:    cfg,
		enc:    imaging.NewEncoder(cfg.MaxImageDimension),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			key, err := credentials.Resolve(cfg.Provider)
			if err != nil {
				return nil, err
			}
			apiKey = key
		}

		pcfg := providers.Config{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}

		switch cfg.Provider {
		case providers.Anthropic:
			c.provider = anthropic.NewAnthropicProvider(pcfg, logger)
		case providers.OpenAI:
			c.provider = openai.NewOpenAIProvider(pcfg, logger)
		case providers.Gemini:
			c.provider = gemini.NewGeminiProvider(pcfg, logger)
		default:
			return nil, types.NewConfigurationError(
				fmt.Sprintf("unsupported provider %q (supported: %s)",
					cfg.Provider, strings.Join(providers.Supported(), ", ")))
		}
	}

	if cfg.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}

	logger.Info("captioner initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("max_concurrent", cfg.MaxConcurrent),
		zap.Int("max_retries", cfg.MaxRetries),
	)
	return c, nil
}

// Provider 返回配置的 Provider 标识。
func (c *Captioner) Provider() string { return c.cfg.Provider }

// Model 返回配置的模型标识。
func (c *Captioner) Model() string { return c.cfg.Model }

// CaptionImage 同步描述单张图像。
// 终态失败（配置 / 编码 / 重试耗尽）原样抛给调用方。
func (c *Captioner) CaptionImage(ctx context.Context, src imaging.Source) (*types.CaptionResult, error) {
	return c.caption(ctx, src)
}

// HealthCheck 探测当前 Provider 的可达性。
func (c *Captioner) HealthCheck(ctx context.Context) (*providers.HealthStatus, error) {
	return c.provider.HealthCheck(ctx)
}
