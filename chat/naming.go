package chat

import (
	"path/filepath"
	"strings"
)

// DefaultConversationName is used when nothing better can be derived.
const DefaultConversationName = "New Chat"

// NameFromFilename names a conversation after a file's base name with the
// extension stripped.
func NameFromFilename(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DefaultConversationName
	}
	return name
}

// NameFromText names a conversation after the first three words of text.
func NameFromText(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return DefaultConversationName
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}
