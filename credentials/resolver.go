// Package credentials resolves provider API keys from the environment.
//
// Each provider has a fixed environment variable. A .env file in the
// working directory is loaded once, if present, so local runs do not need
// the variables exported. Key values are never logged.
package credentials

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/BaSui01/captionflow/providers"
	"github.com/BaSui01/captionflow/types"
)

var envVars = map[string]string{
	providers.Anthropic: "ANTHROPIC_API_KEY",
	providers.OpenAI:    "OPENAI_API_KEY",
	providers.Gemini:    "GEMINI_API_KEY",
}

var loadDotenv sync.Once

// EnvVar returns the environment variable name holding the API key for the
// given provider.
func EnvVar(provider string) (string, error) {
	name, ok := envVars[provider]
	if !ok {
		return "", types.NewConfigurationError(
			fmt.Sprintf("unsupported provider %q (supported: %s)",
				provider, strings.Join(providers.Supported(), ", ")))
	}
	return name, nil
}

// Resolve returns the API key for the given provider. A missing or empty
// key is a configuration error naming the variable, not the value.
func Resolve(provider string) (string, error) {
	loadDotenv.Do(func() {
		// Missing .env is fine; explicit environment always wins since
		// godotenv does not override existing variables.
		_ = godotenv.Load()
	})

	name, err := EnvVar(provider)
	if err != nil {
		return "", err
	}

	key := strings.TrimSpace(os.Getenv(name))
	if key == "" {
		return "", types.NewConfigurationError(
			fmt.Sprintf("no API key for provider %q: set %s", provider, name))
	}
	return key, nil
}
