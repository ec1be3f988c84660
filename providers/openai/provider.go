package openai

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

// OpenAIProvider 实现 OpenAI GPT-4V 系列的视觉描述 Provider。
// 与 Anthropic 的差异：
// 1. 认证使用 Authorization: Bearer 请求头
// 2. 图像以 data URL（data:image/jpeg;base64,...）形式传递
// 3. usage 上报 total_tokens
type OpenAIProvider struct {
	cfg    providers.Config
	client *http.Client
	logger *zap.Logger
}

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o"
)

// GPT-4V 定价的静态近似值（按总 token 折算），仅用于粗略成本估算。
const costPer1KTokens = 0.01

// NewOpenAIProvider 创建 OpenAI Provider。
func NewOpenAIProvider(cfg providers.Config, logger *zap.Logger) *OpenAIProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	return &OpenAIProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *OpenAIProvider) Name() string { return providers.OpenAI }

type openaiMessage struct {
	Role    string          `json:"role"`
	Content []openaiContent `json:"content"`
}

type openaiContent struct {
	Type     string          `json:"type"` // image_url 或 text
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openaiResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *openaiUsage `json:"usage,omitempty"`
}

type openaiErrorResp struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (p *OpenAIProvider) buildHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// Caption 实现 providers.Provider。
func (p *OpenAIProvider) Caption(ctx context.Context, img *imaging.EncodedImage, prompt string) (*providers.Result, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MediaType, img.Data)

	body := openaiRequest{
		Model:     p.cfg.Model,
		MaxTokens: providers.MaxCaptionTokens,
		Messages: []openaiMessage{{
			Role: "user",
			Content: []openaiContent{
				{Type: "image_url", ImageURL: &openaiImageURL{URL: dataURL}},
				{Type: "text", Text: prompt},
			},
		}},
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(p.cfg.BaseURL, "/"))

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
		msg := readOpenAIErrMsg(resp.Body)
		return nil, types.NewProviderError(p.Name(), msg).WithHTTPStatus(resp.StatusCode)
	}

	var or openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return nil, types.NewProviderError(p.Name(), "decode response").
			WithHTTPStatus(http.StatusBadGateway).
			WithCause(err)
	}

	if len(or.Choices) == 0 {
		return nil, types.NewProviderError(p.Name(), "no choices in response")
	}
	text := strings.TrimSpace(or.Choices[0].Message.Content)
	if text == "" {
		return nil, types.NewProviderError(p.Name(), "empty caption in response")
	}

	result := &providers.Result{Caption: text}
	if or.Usage != nil {
		tokens := or.Usage.TotalTokens
		cost := float64(tokens) / 1000 * costPer1KTokens
		result.TokensUsed = &tokens
		result.CostEstimate = &cost
	}

	p.logger.Debug("openai caption generated",
		zap.String("model", or.Model),
		zap.Int("caption_len", len(text)),
	)
	return result, nil
}

// HealthCheck 实现 providers.Provider。
func (p *OpenAIProvider) HealthCheck(ctx context.Context) (*providers.HealthStatus, error) {
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
		msg := readOpenAIErrMsg(resp.Body)
		return &providers.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("openai health check failed: status=%d msg=%s", resp.StatusCode, msg)
	}
	return &providers.HealthStatus{Healthy: true, Latency: latency}, nil
}

func readOpenAIErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp openaiErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
	}
	return string(data)
}
