package provider

import "testing"

func TestNewAnswerer(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantName    string
		expectError bool
	}{
		{name: "echo by default", config: Config{}, wantName: "echo"},
		{name: "ollama with defaults", config: Config{Type: ProviderTypeOllama}, wantName: "ollama:llama3.1:latest"},
		{name: "ollama with model", config: Config{Type: ProviderTypeOllama, BaseURL: "http://localhost:11434", Model: "qwen2.5"}, wantName: "ollama:qwen2.5"},
		{name: "ollama with bad url", config: Config{Type: ProviderTypeOllama, BaseURL: "not a url"}, expectError: true},
		{name: "openai", config: Config{Type: ProviderTypeOpenAI, APIKey: "sk-test"}, wantName: "openai:gpt-4o-mini"},
		{name: "openai without key", config: Config{Type: ProviderTypeOpenAI}, expectError: true},
		{name: "openrouter", config: Config{Type: ProviderTypeOpenRouter, APIKey: "or-test", Model: "meta-llama/llama-3.1-8b"}, wantName: "openrouter:meta-llama/llama-3.1-8b"},
		{name: "anthropic", config: Config{Type: ProviderTypeAnthropic, APIKey: "sk-ant", Model: "claude-3-5-haiku-20241022"}, wantName: "anthropic:claude-3-5-haiku-20241022"},
		{name: "anthropic without key", config: Config{Type: ProviderTypeAnthropic}, expectError: true},
		{name: "unknown", config: Config{Type: "gemini"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAnswerer(tt.config)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got answerer %v", a)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", a.Name(), tt.wantName)
			}
		})
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := map[string]ProviderType{
		"":           ProviderTypeEcho,
		"offline":    ProviderTypeEcho,
		"ollama":     ProviderTypeOllama,
		"openrouter": ProviderTypeOpenRouter,
		"openai":     ProviderTypeOpenAI,
		"claude":     ProviderTypeAnthropic,
		"gemini":     ProviderType("gemini"),
	}
	for id, want := range tests {
		if got := MapProviderIDToType(id); got != want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", id, got, want)
		}
	}
}
