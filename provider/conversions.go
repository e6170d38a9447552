package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// ConvertToOllamaMessages maps turns field by field; Ollama accepts the same
// role names.
func ConvertToOllamaMessages(turns []Turn) []api.Message {
	result := make([]api.Message, len(turns))
	for i, t := range turns {
		result[i] = api.Message{
			Role:    t.Role,
			Content: t.Content,
		}
	}
	return result
}

// ConvertToOpenAIMessages maps turns to chat completion message params.
// Unknown roles are sent as user messages.
func ConvertToOpenAIMessages(turns []Turn) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			result = append(result, openai.SystemMessage(t.Content))
		case RoleAssistant:
			result = append(result, openai.AssistantMessage(t.Content))
		default:
			result = append(result, openai.UserMessage(t.Content))
		}
	}
	return result
}

// convertToAnthropicMessages splits turns into the message array and the
// separate system blocks Anthropic expects.
func convertToAnthropicMessages(turns []Turn) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	messages := make([]anthropic.MessageParam, 0, len(turns))

	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: t.Content})
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	return messages, systemBlocks
}
