package provider

import (
	"context"
	"fmt"

	"pdfchat/ollama"
)

// OllamaAnswerer generates replies with a local Ollama model.
type OllamaAnswerer struct {
	client *ollama.Client
}

// NewOllamaAnswerer creates an Ollama-backed answerer. Empty baseURL and
// model fall back to the ollama package defaults.
func NewOllamaAnswerer(baseURL, model string) (*OllamaAnswerer, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return &OllamaAnswerer{client: client}, nil
}

func (p *OllamaAnswerer) Name() string {
	return string(ProviderTypeOllama) + ":" + p.client.GetModel()
}

func (p *OllamaAnswerer) Answer(ctx context.Context, turns []Turn, onFragment FragmentFunc) error {
	err := p.client.Chat(ctx, ConvertToOllamaMessages(turns), func(chunk string) error {
		return onFragment(chunk)
	})
	if err != nil {
		return fmt.Errorf("Ollama streaming error: %w", err)
	}
	return nil
}

// Ping checks the Ollama server is reachable.
func (p *OllamaAnswerer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
