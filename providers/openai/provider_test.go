package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/captionflow/imaging"
	"github.com/BaSui01/captionflow/providers"
	"github.com/BaSui01/captionflow/types"
)

func testImage() *imaging.EncodedImage {
	return &imaging.EncodedImage{Data: "aGVsbG8=", MediaType: imaging.MediaTypeJPEG, ByteSize: 5}
}

func TestOpenAIProvider_Name(t *testing.T) {
	p := NewOpenAIProvider(providers.Config{}, zap.NewNop())
	assert.Equal(t, "openai", p.Name())
}

func TestOpenAIProvider_Caption(t *testing.T) {
	var gotReq openaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "\nA bar chart of monthly signups.\n"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 900, "completion_tokens": 100, "total_tokens": 1000}
		}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(providers.Config{APIKey: "test-key", BaseURL: srv.URL}, zap.NewNop())
	res, err := p.Caption(context.Background(), testImage(), "describe this")
	require.NoError(t, err)

	assert.Equal(t, "A bar chart of monthly signups.", res.Caption, "caption must be trimmed")
	require.NotNil(t, res.TokensUsed)
	assert.Equal(t, 1000, *res.TokensUsed)
	require.NotNil(t, res.CostEstimate)
	assert.InDelta(t, 0.01, *res.CostEstimate, 1e-9)

	// 图像以 data URL 形式传递
	require.Len(t, gotReq.Messages, 1)
	require.Len(t, gotReq.Messages[0].Content, 2)
	assert.Equal(t, "image_url", gotReq.Messages[0].Content[0].Type)
	assert.True(t, strings.HasPrefix(gotReq.Messages[0].Content[0].ImageURL.URL, "data:image/jpeg;base64,"))
	assert.Equal(t, "describe this", gotReq.Messages[0].Content[1].Text)
	assert.Equal(t, providers.MaxCaptionTokens, gotReq.MaxTokens)
}

func TestOpenAIProvider_NoUsageLeavesTokensAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"caption"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(providers.Config{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	res, err := p.Caption(context.Background(), testImage(), "prompt")
	require.NoError(t, err)
	assert.Nil(t, res.TokensUsed)
	assert.Nil(t, res.CostEstimate)
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(providers.Config{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	_, err := p.Caption(context.Background(), testImage(), "prompt")
	require.Error(t, err)
	assert.Equal(t, types.ErrProvider, types.GetErrorCode(err))
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(providers.Config{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	_, err := p.Caption(context.Background(), testImage(), "prompt")
	require.Error(t, err)

	var te *types.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.ErrProvider, te.Code)
	assert.Equal(t, http.StatusTooManyRequests, te.HTTPStatus)
	assert.True(t, te.Retryable)
	assert.Contains(t, te.Message, "rate limit exceeded")
}

func TestOpenAIProvider_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(providers.Config{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	status, err := p.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}
