package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider is an API-key Provider backed by the Anthropic Messages
// API.
type AnthropicProvider struct {
	client *anthropic.Client
}

// NewAnthropicProvider builds a Provider authenticated with apiKey.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: &client}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Generate(ctx context.Context, model, systemPrompt, prompt string, temperature float64, maxTokens int) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicError(err)
	}
	if len(resp.Content) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}
	return sb.String(), nil
}

func classifyAnthropicError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "401"):
		return &ProviderError{AuthExpired: true, StatusCode: 401, Err: err}
	case strings.Contains(msg, "429"), strings.Contains(msg, "502"), strings.Contains(msg, "503"), strings.Contains(msg, "timeout"):
		return &ProviderError{Transient: true, Err: err}
	default:
		return &ProviderError{Err: fmt.Errorf("anthropic: %w", err)}
	}
}
