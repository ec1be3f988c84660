package captionflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/captionflow/providers"
	"github.com/BaSui01/captionflow/types"
)

func TestNew_ProviderShortcuts(t *testing.T) {
	cases := []struct {
		name     string
		opt      Option
		provider string
	}{
		{"anthropic", WithAnthropic("claude-3-5-sonnet-20241022"), providers.Anthropic},
		{"openai", WithOpenAI("gpt-4o"), providers.OpenAI},
		{"gemini", WithGemini("gemini-1.5-flash"), providers.Gemini},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.opt, WithAPIKey("test-key"))
			require.NoError(t, err)
			assert.Equal(t, tc.provider, c.Provider())
		})
	}
}

func TestNew_MissingCredential(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := New()
	require.Error(t, err)
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))
}

func TestNew_MaxConcurrentOverride(t *testing.T) {
	_, err := New(WithOpenAI("gpt-4o"), WithAPIKey("k"), WithMaxConcurrent(-1))
	require.Error(t, err, "invalid overrides surface at construction")
}
