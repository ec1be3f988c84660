package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/captionflow/imaging"
	"github.com/BaSui01/captionflow/providers"
	"github.com/BaSui01/captionflow/types"
)

// AnthropicProvider 实现 Anthropic Claude 的视觉描述 Provider。
// Claude API 的特点：
// 1. 认证使用 x-api-key 请求头而非 Bearer Token
// 2. 图像以 base64 source 内容块传递，与文本块并列
// 3. usage 分别上报 input_tokens / output_tokens
type AnthropicProvider struct {
	cfg    providers.Config
	client *http.Client
	logger *zap.Logger
}

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-5-sonnet-20241022"
	apiVersion     = "2023-06-01"
)

// Claude 3.5 Sonnet 定价的静态近似值，仅用于粗略成本估算。
const (
	inputCostPer1K  = 0.003
	outputCostPer1K = 0.015
)

// NewAnthropicProvider 创建 Anthropic Provider。
func NewAnthropicProvider(cfg providers.Config, logger *zap.Logger) *AnthropicProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second // Claude 响应可能较慢
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	return &AnthropicProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *AnthropicProvider) Name() string { return providers.Anthropic }

// Claude 的消息结构
type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type   string                `json:"type"` // image 或 text
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"` // base64
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Content []anthropicContent `json:"content"`
	Usage   *anthropicUsage    `json:"usage,omitempty"`
}

type anthropicErrorResp struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *AnthropicProvider) buildHeaders(req *http.Request) {
	// Claude 使用 x-api-key 认证
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// Caption 实现 providers.Provider。
func (p *AnthropicProvider) Caption(ctx context.Context, img *imaging.EncodedImage, prompt string) (*providers.Result, error) {
	body := anthropicRequest{
		Model:     p.cfg.Model,
		MaxTokens: providers.MaxCaptionTokens,
		Messages: []anthropicMessage{{
			Role: "user",
			Content: []anthropicContent{
				{
					Type: "image",
					Source: &anthropicImageSource{
						Type:      "base64",
						MediaType: img.MediaType,
						Data:      img.Data,
					},
				},
				{Type: "text", Text: prompt},
			},
		}},
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1/messages", strings.TrimRight(p.cfg.BaseURL, "/"))

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewProviderError(p.Name(), "request failed").
			WithHTTPStatus(http.StatusBadGateway).
			WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readAnthropicErrMsg(resp.Body)
		return nil, types.NewProviderError(p.Name(), msg).WithHTTPStatus(resp.StatusCode)
	}

	var ar anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, types.NewProviderError(p.Name(), "decode response").
			WithHTTPStatus(http.StatusBadGateway).
			WithCause(err)
	}

	// content 数组可能包含多个 text 块，按序拼接
	var caption strings.Builder
	for _, c := range ar.Content {
		if c.Type == "text" {
			caption.WriteString(c.Text)
		}
	}
	text := strings.TrimSpace(caption.String())
	if text == "" {
		return nil, types.NewProviderError(p.Name(), "empty caption in response")
	}

	result := &providers.Result{Caption: text}
	if ar.Usage != nil {
		tokens := ar.Usage.InputTokens + ar.Usage.OutputTokens
		cost := float64(ar.Usage.InputTokens)/1000*inputCostPer1K +
			float64(ar.Usage.OutputTokens)/1000*outputCostPer1K
		result.TokensUsed = &tokens
		result.CostEstimate = &cost
	}

	p.logger.Debug("anthropic caption generated",
		zap.String("model", ar.Model),
		zap.Int("caption_len", len(text)),
	)
	return result, nil
}

// HealthCheck 实现 providers.Provider。
func (p *AnthropicProvider) HealthCheck(ctx context.Context) (*providers.HealthStatus, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/v1/models", strings.TrimRight(p.cfg.BaseURL, "/"))
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &providers.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readAnthropicErrMsg(resp.Body)
		return &providers.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("anthropic health check failed: status=%d msg=%s", resp.StatusCode, msg)
	}
	return &providers.HealthStatus{Healthy: true, Latency: latency}, nil
}

func readAnthropicErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp anthropicErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
	}
	return string(data)
}
