package gemini

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

// GeminiProvider 实现 Google Gemini 的视觉描述 Provider。
// Gemini API 的特点：
// 1. 使用 x-goog-api-key 请求头认证
// 2. 图像以 inlineData（mimeType + base64）part 传递
// 3. token 用量在 usageMetadata 中上报，且不总是存在
// 4. 无公开的静态单价可用，因此不产出成本估算
type GeminiProvider struct {
	cfg    providers.Config
	client *http.Client
	logger *zap.Logger
}

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"
)

// NewGeminiProvider 创建 Gemini Provider。
func NewGeminiProvider(cfg providers.Config, logger *zap.Logger) *GeminiProvider {
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

	return &GeminiProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *GeminiProvider) Name() string { return providers.Gemini }

// Gemini 消息结构
type geminiContent struct {
	Role  string       `json:"role,omitempty"` // user, model
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata,omitempty"`
}

type geminiErrorResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *GeminiProvider) buildHeaders(req *http.Request) {
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// Caption 实现 providers.Provider。
func (p *GeminiProvider) Caption(ctx context.Context, img *imaging.EncodedImage, prompt string) (*providers.Result, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: img.MediaType,
					Data:     img.Data,
				}},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: providers.MaxCaptionTokens,
		},
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Model)

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
		msg := readGeminiErrMsg(resp.Body)
		return nil, types.NewProviderError(p.Name(), msg).WithHTTPStatus(resp.StatusCode)
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, types.NewProviderError(p.Name(), "decode response").
			WithHTTPStatus(http.StatusBadGateway).
			WithCause(err)
	}

	if len(gr.Candidates) == 0 {
		return nil, types.NewProviderError(p.Name(), "no candidates in response")
	}
	var caption strings.Builder
	for _, part := range gr.Candidates[0].Content.Parts {
		caption.WriteString(part.Text)
	}
	text := strings.TrimSpace(caption.String())
	if text == "" {
		return nil, types.NewProviderError(p.Name(), "empty caption in response")
	}

	result := &providers.Result{Caption: text}
	// Gemini 不保证上报 token 用量；上报时填充，成本仍保持缺省
	if gr.UsageMetadata != nil && gr.UsageMetadata.TotalTokenCount > 0 {
		tokens := gr.UsageMetadata.TotalTokenCount
		result.TokensUsed = &tokens
	}

	p.logger.Debug("gemini caption generated",
		zap.String("model", p.cfg.Model),
		zap.Int("caption_len", len(text)),
	)
	return result, nil
}

// HealthCheck 实现 providers.Provider。
func (p *GeminiProvider) HealthCheck(ctx context.Context) (*providers.HealthStatus, error) {
	start := time.Now()
	endpoint := fmt.Sprintf("%s/v1beta/models", strings.TrimRight(p.cfg.BaseURL, "/"))
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &providers.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readGeminiErrMsg(resp.Body)
		return &providers.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("gemini health check failed: status=%d msg=%s", resp.StatusCode, msg)
	}
	return &providers.HealthStatus{Healthy: true, Latency: latency}, nil
}

func readGeminiErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp geminiErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("%s (status: %s)", errResp.Error.Message, errResp.Error.Status)
	}
	return string(data)
}
