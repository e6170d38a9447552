package provider

import (
	"fmt"
	"strings"
)

// HistoryLimit is the number of stored messages included in a prompt.
const HistoryLimit = 20

const documentsHeader = "=== DOCUMENTS ==="

// BuildTurns assembles the prompt: a system turn describing the attached
// documents followed by at most HistoryLimit history turns (oldest first).
// The question is expected to already be the last history entry.
func BuildTurns(documents []string, history []Turn) []Turn {
	var system string
	if len(documents) > 0 {
		var b strings.Builder
		b.WriteString("You are a helpful assistant with access to uploaded documents.\n")
		b.WriteString("Answer strictly from the document content. If the documents don't cover the question, say so.\n\n")
		b.WriteString(documentsHeader + "\n")
		for i, name := range documents {
			fmt.Fprintf(&b, "[Source %d] %s\n", i+1, name)
		}
		b.WriteString(strings.Repeat("=", len(documentsHeader)))
		system = b.String()
	} else {
		system = "You are a helpful assistant. Answer clearly and concisely based on the conversation history."
	}

	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}

	turns := make([]Turn, 0, len(history)+1)
	turns = append(turns, Turn{Role: RoleSystem, Content: system})
	return append(turns, history...)
}

// DocumentsFromTurns recovers the document names a system turn built by
// BuildTurns carries.
func DocumentsFromTurns(turns []Turn) []string {
	var names []string
	for _, t := range turns {
		if t.Role != RoleSystem {
			continue
		}
		_, block, ok := strings.Cut(t.Content, documentsHeader+"\n")
		if !ok {
			continue
		}
		for _, line := range strings.Split(block, "\n") {
			if !strings.HasPrefix(line, "[Source ") {
				continue
			}
			if _, name, ok := strings.Cut(line, "] "); ok {
				names = append(names, name)
			}
		}
	}
	return names
}
