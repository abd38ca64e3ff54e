package ai

import (
	"context"
	"fmt"
	"strings"
)

// TextGenerator sends one prompt to a hosted model and returns its reply.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// Provider names accepted by NewTextGenerator.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Default model names per provider.
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultAnthropicModel = "claude-sonnet-4-5"
)

// GeneratorConfig selects and configures a provider.
type GeneratorConfig struct {
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// NewTextGenerator builds the configured provider. It returns nil, nil when
// the provider is "none" or its API key is empty, which callers treat as
// "rules only".
func NewTextGenerator(ctx context.Context, cfg GeneratorConfig) (TextGenerator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, nil
		}
		return NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("NewTextGenerator: unknown provider %q", cfg.Provider)
	}
}
