package provider

import "fmt"

// NewAnswerer creates an answer generator from configuration.
//
// Returns an error if the type is unknown or the provider-specific
// constructor fails (invalid URL, missing API key).
func NewAnswerer(cfg Config) (Answerer, error) {
	switch cfg.Type {
	case ProviderTypeEcho, "":
		return NewEchoAnswerer(), nil
	case ProviderTypeOllama:
		return NewOllamaAnswerer(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenRouter:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		return newOpenAICompatible(ProviderTypeOpenRouter, baseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIAnswerer(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicAnswerer(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts a config provider id to a ProviderType.
// Unknown ids are passed through so the factory reports them.
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "", "echo", "offline":
		return ProviderTypeEcho
	case "ollama":
		return ProviderTypeOllama
	case "openrouter":
		return ProviderTypeOpenRouter
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic", "claude":
		return ProviderTypeAnthropic
	default:
		return ProviderType(id)
	}
}
