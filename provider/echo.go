package provider

import (
	"context"
	"strings"
)

// EchoAnswerer replies without a model: it restates the question and lists
// the documents the prompt carries. Used for offline runs and tests.
type EchoAnswerer struct{}

func NewEchoAnswerer() *EchoAnswerer {
	return &EchoAnswerer{}
}

func (e *EchoAnswerer) Name() string {
	return "echo"
}

// Answer streams the reply word by word.
func (e *EchoAnswerer) Answer(ctx context.Context, turns []Turn, onFragment FragmentFunc) error {
	reply := echoReply(turns)
	for _, word := range strings.SplitAfter(reply, " ") {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onFragment(word); err != nil {
			return err
		}
	}
	return nil
}

func echoReply(turns []Turn) string {
	question := ""
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			question = turns[i].Content
			break
		}
	}

	documents := DocumentsFromTurns(turns)
	var b strings.Builder
	if question == "" {
		b.WriteString("I did not receive a question.")
	} else {
		b.WriteString("You asked: \"")
		b.WriteString(question)
		b.WriteString("\".")
	}
	if len(documents) == 0 {
		b.WriteString(" No documents are attached to this conversation yet.")
	} else {
		b.WriteString(" Documents in this conversation: ")
		b.WriteString(strings.Join(documents, ", "))
		b.WriteString(".")
	}
	return b.String()
}
