package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider is an API-key Provider backed by the OpenAI Chat
// Completions API. Selected when LLM_PROVIDER=openai and LLM_API_KEY is set
// but no project-scoped endpoint is configured.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider builds a Provider authenticated with apiKey.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, model, systemPrompt, prompt string, temperature float64, maxTokens int) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "401"):
		return &ProviderError{AuthExpired: true, StatusCode: 401, Err: err}
	case strings.Contains(msg, "429"), strings.Contains(msg, "502"), strings.Contains(msg, "503"), strings.Contains(msg, "timeout"):
		return &ProviderError{Transient: true, Err: err}
	default:
		return &ProviderError{Err: fmt.Errorf("openai: %w", err)}
	}
}
