package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Thread struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

type Message struct {
	ID        int64
	ThreadID  string
	Role      string
	Content   string
	CreatedAt time.Time
}

// CreateThread creates an empty thread owned by userID.
func (s *Storage) CreateThread(ctx context.Context, userID, name string) (Thread, error) {
	t := Thread{ID: uuid.New().String(), UserID: userID, Name: name}
	created := s.timestamp()
	t.CreatedAt = parseTimestamp(created)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO threads (thread_id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.UserID, t.Name, created)
	if err != nil {
		return Thread{}, fmt.Errorf("failed to create thread: %w", err)
	}
	return t, nil
}

// ListThreads returns userID's threads, newest first.
func (s *Storage) ListThreads(ctx context.Context, userID string) ([]Thread, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, user_id, name, created_at FROM threads
		 WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	threads := []Thread{}
	for rows.Next() {
		var t Thread
		var created string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = parseTimestamp(created)
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// GetThread returns the thread if userID owns it.
func (s *Storage) GetThread(ctx context.Context, userID, threadID string) (Thread, error) {
	var t Thread
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT thread_id, user_id, name, created_at FROM threads WHERE thread_id = ? AND user_id = ?`,
		threadID, userID).Scan(&t.ID, &t.UserID, &t.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Thread{}, ErrNotFound
	}
	if err != nil {
		return Thread{}, fmt.Errorf("failed to load thread: %w", err)
	}
	t.CreatedAt = parseTimestamp(created)
	return t, nil
}

// DeleteThread removes the thread with its messages and documents.
func (s *Storage) DeleteThread(ctx context.Context, userID, threadID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM threads WHERE thread_id = ? AND user_id = ?`, threadID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveMessage appends a message to a thread.
func (s *Storage) SaveMessage(ctx context.Context, threadID, role, content string) (Message, error) {
	created := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (thread_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		threadID, role, content, created)
	if err != nil {
		return Message{}, fmt.Errorf("failed to save message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Message{}, err
	}
	return Message{ID: id, ThreadID: threadID, Role: role, Content: content, CreatedAt: parseTimestamp(created)}, nil
}

// Messages returns all messages of a thread in insertion order.
func (s *Storage) Messages(ctx context.Context, threadID string) ([]Message, error) {
	return s.queryMessages(ctx,
		`SELECT id, thread_id, role, content, created_at FROM messages WHERE thread_id = ? ORDER BY id ASC`,
		threadID)
}

// RecentHistory returns the last limit user/assistant messages, oldest first.
func (s *Storage) RecentHistory(ctx context.Context, threadID string, limit int) ([]Message, error) {
	msgs, err := s.queryMessages(ctx,
		`SELECT id, thread_id, role, content, created_at FROM messages
		 WHERE thread_id = ? AND role IN ('user', 'assistant') ORDER BY id DESC LIMIT ?`,
		threadID, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *Storage) queryMessages(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		var created string
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.Role, &m.Content, &created); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTimestamp(created)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
