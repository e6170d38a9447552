package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestBuildTurns(t *testing.T) {
	history := []Turn{{Role: RoleUser, Content: "What is in it?"}}

	turns := BuildTurns([]string{"report.pdf", "notes.pdf"}, history)
	if len(turns) != 2 || turns[0].Role != RoleSystem {
		t.Fatalf("turns = %+v", turns)
	}
	if !strings.Contains(turns[0].Content, "[Source 2] notes.pdf") {
		t.Errorf("system turn missing sources: %q", turns[0].Content)
	}
	if got := DocumentsFromTurns(turns); len(got) != 2 || got[0] != "report.pdf" || got[1] != "notes.pdf" {
		t.Errorf("DocumentsFromTurns() = %v", got)
	}

	plain := BuildTurns(nil, history)
	if strings.Contains(plain[0].Content, "DOCUMENTS") || len(DocumentsFromTurns(plain)) != 0 {
		t.Errorf("unexpected document block: %q", plain[0].Content)
	}
}

func TestBuildTurnsLimitsHistory(t *testing.T) {
	var history []Turn
	for i := 0; i < HistoryLimit+5; i++ {
		history = append(history, Turn{Role: RoleUser, Content: fmt.Sprintf("m%d", i)})
	}

	turns := BuildTurns(nil, history)
	if len(turns) != HistoryLimit+1 {
		t.Fatalf("len = %d, want %d", len(turns), HistoryLimit+1)
	}
	if turns[1].Content != "m5" || turns[len(turns)-1].Content != fmt.Sprintf("m%d", HistoryLimit+4) {
		t.Errorf("kept the wrong window: first %q last %q", turns[1].Content, turns[len(turns)-1].Content)
	}
}

func TestEchoAnswerer(t *testing.T) {
	turns := BuildTurns([]string{"report.pdf"}, []Turn{{Role: RoleUser, Content: "Summarize it"}})

	var b strings.Builder
	fragments := 0
	err := NewEchoAnswerer().Answer(context.Background(), turns, func(f string) error {
		fragments++
		b.WriteString(f)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if fragments < 2 {
		t.Errorf("fragments = %d, want a streamed reply", fragments)
	}
	want := `You asked: "Summarize it". Documents in this conversation: report.pdf.`
	if b.String() != want {
		t.Errorf("reply = %q, want %q", b.String(), want)
	}
}

func TestEchoAnswererStops(t *testing.T) {
	stop := errors.New("stop")
	err := NewEchoAnswerer().Answer(context.Background(), []Turn{{Role: RoleUser, Content: "a b c"}}, func(string) error { return stop })
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want callback error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewEchoAnswerer().Answer(ctx, []Turn{{Role: RoleUser, Content: "a"}}, func(string) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestConvertToOllamaMessages(t *testing.T) {
	turns := []Turn{{Role: RoleSystem, Content: "s"}, {Role: RoleUser, Content: "u"}, {Role: RoleAssistant, Content: "a"}}
	got := ConvertToOllamaMessages(turns)
	for i := range turns {
		if got[i].Role != turns[i].Role || got[i].Content != turns[i].Content {
			t.Errorf("message %d = %+v", i, got[i])
		}
	}
}

func TestConvertToAnthropicMessages(t *testing.T) {
	turns := []Turn{{Role: RoleSystem, Content: "s"}, {Role: RoleUser, Content: "u"}, {Role: RoleAssistant, Content: "a"}}
	messages, system := convertToAnthropicMessages(turns)
	if len(system) != 1 || system[0].Text != "s" {
		t.Errorf("system = %+v", system)
	}
	if len(messages) != 2 {
		t.Errorf("messages = %d, want 2", len(messages))
	}
	if n := len(ConvertToOpenAIMessages(turns)); n != 3 {
		t.Errorf("openai messages = %d, want 3", n)
	}
}
