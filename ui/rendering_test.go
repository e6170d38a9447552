package ui

import (
	"strings"
	"testing"

	"pdfchat/model"
)

func TestFrameCodeBlocks(t *testing.T) {
	in := "intro\n" + codeBlockBar + " x := 1\n" + codeBlockBar + " y := 2\noutro"
	out := frameCodeBlocks(in, 30)

	if strings.Contains(out, codeBlockBar) {
		t.Errorf("code bar not stripped:\n%s", out)
	}
	if !strings.Contains(out, "[code]") {
		t.Errorf("missing [code] rule:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if lines[0] != "intro" || lines[len(lines)-1] != "outro" {
		t.Errorf("surrounding text moved: first=%q last=%q", lines[0], lines[len(lines)-1])
	}
	if !strings.Contains(out, "x := 1\ny := 2") {
		t.Errorf("code lines not kept together:\n%s", out)
	}
}

func TestFrameCodeBlocksAtEnd(t *testing.T) {
	out := frameCodeBlocks(codeBlockBar+" tail", 20)
	if !strings.HasSuffix(strings.TrimRight(out, "\n"), strings.Repeat("━", 16)+ansiReset) {
		t.Errorf("unterminated block not closed:\n%q", out)
	}
}

func TestStripCodeBlockPrefix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{codeBlockBar + " code", "code"},
		{"  " + codeBlockBar + "code", "code"},
		{codeBlockBar, ""},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := stripCodeBlockPrefix(tt.in); got != tt.want {
			t.Errorf("stripCodeBlockPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreprocessLinks(t *testing.T) {
	got := preprocessLinks("see [the docs](https://example.com/a) now")
	if got != "see https://example.com/a now" {
		t.Errorf("preprocessLinks = %q", got)
	}
}

func TestFixInlineCode(t *testing.T) {
	got := fixInlineCode("run \x1b[44;3mgo test\x1b[0m")
	if got != "run "+ansiRed+"go test"+ansiReset {
		t.Errorf("fixInlineCode = %q", got)
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"short", "hello world", 20, "hello world"},
		{"wraps", "one two three", 7, "one two\nthree"},
		{"keeps newlines", "a\n\nb", 10, "a\n\nb"},
		{"no width", "one two", 0, "one two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wordWrap(tt.in, tt.width); got != tt.want {
				t.Errorf("wordWrap = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderConversation(t *testing.T) {
	attachment := model.NewAttachment("report.pdf")
	question := model.NewText(model.RoleUser, "What is the budget?")
	answer := model.NewText(model.RoleAssistant, "Hel")

	t.Run("streaming reply shows cursor", func(t *testing.T) {
		out := renderConversation([]model.Message{attachment, question, answer}, 60, answer.ID, "*", newRenderCache())
		if !strings.Contains(out, "report.pdf") {
			t.Error("attachment chip missing")
		}
		if !strings.Contains(out, "What is the budget?") {
			t.Error("question missing")
		}
		if !strings.Contains(out, "Hel"+streamCursor) {
			t.Error("streaming text should end with the cursor")
		}
	})

	t.Run("empty placeholder shows spinner", func(t *testing.T) {
		empty := model.NewText(model.RoleAssistant, "")
		out := renderConversation([]model.Message{question, empty}, 60, empty.ID, "*", newRenderCache())
		if !strings.Contains(out, "Thinking...") {
			t.Errorf("missing thinking indicator:\n%s", out)
		}
	})

	t.Run("finished reply has no cursor", func(t *testing.T) {
		done := model.NewText(model.RoleAssistant, "Budget is ten.")
		out := renderConversation([]model.Message{question, done}, 60, "", "*", newRenderCache())
		if strings.Contains(out, streamCursor) {
			t.Error("cursor shown on a finished reply")
		}
		if !strings.Contains(out, "Budget") {
			t.Errorf("reply text missing:\n%s", out)
		}
	})
}

func TestRenderCacheInvalidates(t *testing.T) {
	cache := newRenderCache()
	msg := model.NewText(model.RoleAssistant, "first")

	cache.markdown(msg, 40)
	msg.Content = "second"
	if got := cache.markdown(msg, 40); !strings.Contains(got, "second") {
		t.Errorf("stale render after content change: %q", got)
	}

	cache.markdown(msg, 60)
	if cache.width != 60 || len(cache.entries) != 1 {
		t.Errorf("width change should reset the cache, got width=%d entries=%d", cache.width, len(cache.entries))
	}

	cache.prune(nil)
	if len(cache.entries) != 0 {
		t.Errorf("prune kept %d entries", len(cache.entries))
	}
}
