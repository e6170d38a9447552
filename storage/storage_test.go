package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "devserver.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestThreadsNewestFirstPerUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first, _ := s.CreateThread(ctx, "alice", "first")
	second, _ := s.CreateThread(ctx, "alice", "second")
	if _, err := s.CreateThread(ctx, "bob", "other"); err != nil {
		t.Fatal(err)
	}

	threads, err := s.ListThreads(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(threads) != 2 || threads[0].ID != second.ID || threads[1].ID != first.ID {
		t.Errorf("threads = %+v, want second then first", threads)
	}

	if _, err := s.GetThread(ctx, "bob", first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetThread across users: err = %v, want ErrNotFound", err)
	}
}

func TestMessagesAndHistory(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	th, _ := s.CreateThread(ctx, "u", "t")

	for _, m := range []struct{ role, content string }{
		{"user", "q1"}, {"assistant", "a1"}, {"system", "note"}, {"user", "q2"}, {"assistant", "a2"},
	} {
		if _, err := s.SaveMessage(ctx, th.ID, m.role, m.content); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.Messages(ctx, th.ID)
	if err != nil || len(all) != 5 || all[0].Content != "q1" || all[0].ID >= all[1].ID {
		t.Fatalf("Messages() = %+v, %v", all, err)
	}

	recent, err := s.RecentHistory(ctx, th.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	got := []string{}
	for _, m := range recent {
		got = append(got, m.Content)
	}
	if len(got) != 3 || got[0] != "a1" || got[1] != "q2" || got[2] != "a2" {
		t.Errorf("RecentHistory() = %v, want [a1 q2 a2]", got)
	}
}

func TestSaveMessageRejectsUnknownRole(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	th, _ := s.CreateThread(ctx, "u", "t")
	if _, err := s.SaveMessage(ctx, th.ID, "tool", "x"); err == nil {
		t.Error("expected CHECK constraint failure")
	}
	if _, err := s.SaveMessage(ctx, "missing", "user", "x"); err == nil {
		t.Error("expected foreign key failure")
	}
}

func TestDeleteThreadCascades(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	th, _ := s.CreateThread(ctx, "u", "t")
	s.SaveMessage(ctx, th.ID, "user", "q")
	doc, _ := s.SaveDocument(ctx, Document{ThreadID: th.ID, Filename: "a.pdf", SizeBytes: 10, ChunkCount: 1})

	if err := s.DeleteThread(ctx, "someone-else", th.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete by non-owner: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteThread(ctx, "u", th.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteThread(ctx, "u", th.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}

	msgs, _ := s.Messages(ctx, th.ID)
	docs, _ := s.ListDocuments(ctx, th.ID)
	if len(msgs) != 0 || len(docs) != 0 {
		t.Errorf("orphans left: %d messages, %d documents", len(msgs), len(docs))
	}
	if _, err := s.DeleteDocument(ctx, "u", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("document survived thread delete: %v", err)
	}
}

func TestDocuments(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	th, _ := s.CreateThread(ctx, "u", "t")

	a, err := s.SaveDocument(ctx, Document{ThreadID: th.ID, Filename: "a.pdf", SizeBytes: 100, ChunkCount: 2})
	if err != nil || a.ID == "" || a.UploadedAt.IsZero() {
		t.Fatalf("SaveDocument() = %+v, %v", a, err)
	}
	s.SaveDocument(ctx, Document{ThreadID: th.ID, Filename: "b.pdf", SizeBytes: 200, ChunkCount: 3})

	docs, _ := s.ListDocuments(ctx, th.ID)
	if len(docs) != 2 || docs[0].Filename != "a.pdf" || docs[1].ChunkCount != 3 {
		t.Errorf("ListDocuments() = %+v", docs)
	}

	if _, err := s.DeleteDocument(ctx, "intruder", a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete by non-owner: err = %v", err)
	}
	deleted, err := s.DeleteDocument(ctx, "u", a.ID)
	if err != nil || deleted.Filename != "a.pdf" {
		t.Errorf("DeleteDocument() = %+v, %v", deleted, err)
	}
	docs, _ = s.ListDocuments(ctx, th.ID)
	if len(docs) != 1 {
		t.Errorf("documents after delete = %d, want 1", len(docs))
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devserver.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	th, _ := s.CreateThread(context.Background(), "u", "persisted")
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.GetThread(context.Background(), "u", th.ID)
	if err != nil || got.Name != "persisted" {
		t.Errorf("GetThread() after reopen = %+v, %v", got, err)
	}
}
