// Package provider generates assistant replies for the development backend.
//
// Every answer generator implements Answerer and streams its reply fragment
// by fragment. The devserver builds the prompt (system instructions, the
// conversation's documents and recent history) with BuildTurns and hands the
// resulting turns to whichever provider the configuration selects:
//
//	a, err := provider.NewAnswerer(provider.Config{Type: provider.ProviderTypeOllama, Model: "llama3.1"})
//	if err != nil {
//	    // handle error
//	}
//	err = a.Answer(ctx, turns, func(fragment string) error {
//	    fmt.Print(fragment)
//	    return nil
//	})
package provider

import "context"

// ProviderType identifies the answer generator implementation.
type ProviderType string

const (
	ProviderTypeEcho       ProviderType = "echo"
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For OpenAI/OpenRouter/Anthropic (unused for echo and Ollama)
}

// Role of a Turn.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the prompt sent to a model.
type Turn struct {
	Role    string
	Content string
}

// FragmentFunc receives each piece of a streamed reply. Returning an error
// aborts the stream.
type FragmentFunc func(fragment string) error

// Answerer streams a reply to turns.
type Answerer interface {
	Answer(ctx context.Context, turns []Turn, onFragment FragmentFunc) error
	// Name is "<type>:<model>" for logs.
	Name() string
}
