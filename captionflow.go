// Package captionflow provides a top-level convenience entry point for
// creating captioners with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/captionflow"
//
//	c, err := captionflow.New(captionflow.WithAnthropic("claude-3-5-sonnet-20241022"))
//	c, err := captionflow.New(captionflow.WithOpenAI("gpt-4o"))
//	c, err := captionflow.New(captionflow.WithGemini("gemini-1.5-flash"))
//
// This is a thin wrapper around [captioner.New]; use the captioner package
// directly when you need full configuration control.
package captionflow

import (
	"go.uber.org/zap"

	"github.com/BaSui01/captionflow/captioner"
	"github.com/BaSui01/captionflow/providers"
)

// Option configures the captioner created by [New].
type Option func(*settings)

type settings struct {
	cfg    captioner.Config
	logger *zap.Logger
}

// New creates a [captioner.Captioner] with minimal configuration.
// Without options it targets Anthropic with credentials from the environment.
func New(opts ...Option) (*captioner.Captioner, error) {
	s := settings{cfg: captioner.DefaultConfig()}
	for _, opt := range opts {
		opt(&s)
	}
	return captioner.New(s.cfg, s.logger)
}

// WithAnthropic targets the Anthropic API. API key from ANTHROPIC_API_KEY env.
func WithAnthropic(model string) Option {
	return func(s *settings) {
		s.cfg.Provider = providers.Anthropic
		s.cfg.Model = model
	}
}

// WithOpenAI targets the OpenAI API. API key from OPENAI_API_KEY env.
func WithOpenAI(model string) Option {
	return func(s *settings) {
		s.cfg.Provider = providers.OpenAI
		s.cfg.Model = model
	}
}

// WithGemini targets the Gemini API. API key from GEMINI_API_KEY env.
func WithGemini(model string) Option {
	return func(s *settings) {
		s.cfg.Provider = providers.Gemini
		s.cfg.Model = model
	}
}

// WithAPIKey overrides the credential resolved from the environment.
func WithAPIKey(key string) Option {
	return func(s *settings) { s.cfg.APIKey = key }
}

// WithMaxConcurrent caps the number of in-flight provider calls.
func WithMaxConcurrent(n int) Option {
	return func(s *settings) { s.cfg.MaxConcurrent = n }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}
