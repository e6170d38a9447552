package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIAnswerer generates replies with the OpenAI chat completions API or
// any compatible endpoint (OpenRouter).
type OpenAIAnswerer struct {
	client openai.Client
	kind   ProviderType
	model  string
}

// NewOpenAIAnswerer creates an OpenAI answerer.
//
// Parameters:
//   - baseURL: API base URL (default: "https://api.openai.com/v1")
//   - apiKey: API key (required)
//   - model: model to use (default: "gpt-4o-mini")
func NewOpenAIAnswerer(baseURL, apiKey, model string) (*OpenAIAnswerer, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return newOpenAICompatible(ProviderTypeOpenAI, baseURL, apiKey, model)
}

func newOpenAICompatible(kind ProviderType, baseURL, apiKey, model string) (*OpenAIAnswerer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", kind)
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIAnswerer{client: client, kind: kind, model: model}, nil
}

func (p *OpenAIAnswerer) Name() string {
	return string(p.kind) + ":" + p.model
}

func (p *OpenAIAnswerer) Answer(ctx context.Context, turns []Turn, onFragment FragmentFunc) error {
	params := openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(turns),
		Model:    openai.ChatModel(p.model),
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := onFragment(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("%s streaming error: %w", p.kind, err)
	}
	return nil
}
