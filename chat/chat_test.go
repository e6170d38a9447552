package chat

import (
	"sync"
	"testing"
	"time"

	"pdfchat/backend/testutil"
	"pdfchat/model"
	"pdfchat/store"
)

type notification struct {
	level Level
	text  string
}

// recorder collects notifications for assertions.
type recorder struct {
	mu    sync.Mutex
	items []notification
}

func (r *recorder) Notify(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notification{level, text})
}

func (r *recorder) count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.level == level {
			n++
		}
	}
	return n
}

func newFixture(t *testing.T) (*testutil.MockBackend, *store.Store, *recorder) {
	t.Helper()
	mock := testutil.NewMockBackend()
	s := store.New(mock, store.WithDebounce(0))
	return mock, s, &recorder{}
}

func selectAndWait(t *testing.T, s *store.Store, id string) {
	t.Helper()
	load := s.SelectConversation(id)
	select {
	case <-load.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("history load for %s did not settle", id)
	}
}

func TestNameFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report"},
		{"annual.report.2025.pdf", "annual.report.2025"},
		{"/home/me/docs/thesis.PDF", "thesis"},
		{"noext", "noext"},
		{"", DefaultConversationName},
		{".pdf", DefaultConversationName},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NameFromFilename(tt.in); got != tt.want {
				t.Errorf("NameFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNameFromText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What is X?", "What is X?"},
		{"  summarize   the whole document please ", "summarize the whole"},
		{"hello", "hello"},
		{"   ", DefaultConversationName},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NameFromText(tt.in); got != tt.want {
				t.Errorf("NameFromText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func lastMessage(t *testing.T, s *store.Store) model.Message {
	t.Helper()
	msgs := s.Messages()
	if len(msgs) == 0 {
		t.Fatal("log is empty")
	}
	return msgs[len(msgs)-1]
}
