package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAnswerer generates replies with the Anthropic Messages API.
type AnthropicAnswerer struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicAnswerer creates an Anthropic answerer.
//
// Parameters:
//   - baseURL: API base URL (default: "https://api.anthropic.com")
//   - apiKey: API key (required)
//   - model: model to use (default: claude-sonnet-4-5)
func NewAnthropicAnswerer(baseURL, apiKey, model string) (*AnthropicAnswerer, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if model != "" {
		anthropicModel = anthropic.Model(model)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicAnswerer{client: &client, model: anthropicModel}, nil
}

func (p *AnthropicAnswerer) Name() string {
	return string(ProviderTypeAnthropic) + ":" + string(p.model)
}

func (p *AnthropicAnswerer) Answer(ctx context.Context, turns []Turn, onFragment FragmentFunc) error {
	messages, system := convertToAnthropicMessages(turns)

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: 4096, // Required by Anthropic API
	}
	if len(system) > 0 {
		params.System = system
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok {
			if err := onFragment(text.Text); err != nil {
				return err
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("Anthropic streaming error: %w", err)
	}
	return nil
}
