package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 1024

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

// NewAnthropicGenerator creates an Anthropic-backed generator. An empty
// model selects DefaultAnthropicModel.
func NewAnthropicGenerator(apiKey, model string) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("NewAnthropicGenerator: api key is required")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}

	// One request per call; fallbacks handle failures.
	return &AnthropicGenerator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0)),
		model:  model,
	}, nil
}

// ModelName returns the configured Anthropic model.
func (g *AnthropicGenerator) ModelName() string {
	return g.model
}

// GenerateText sends prompt as a single user message and joins the text
// blocks of the reply.
func (g *AnthropicGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: anthropic messages: %v", ErrRemoteCall, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty response from anthropic", ErrMalformedResponse)
	}
	return b.String(), nil
}
