package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is the metadata of an indexed upload.
type Document struct {
	ID         string
	ThreadID   string
	Filename   string
	SizeBytes  int64
	ChunkCount int
	UploadedAt time.Time
}

// SaveDocument records doc under its thread, assigning ID and UploadedAt.
func (s *Storage) SaveDocument(ctx context.Context, doc Document) (Document, error) {
	doc.ID = uuid.New().String()
	uploaded := s.timestamp()
	doc.UploadedAt = parseTimestamp(uploaded)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (doc_id, thread_id, filename, size_bytes, chunk_count, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ThreadID, doc.Filename, doc.SizeBytes, doc.ChunkCount, uploaded)
	if err != nil {
		return Document{}, fmt.Errorf("failed to save document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns a thread's documents in upload order.
func (s *Storage) ListDocuments(ctx context.Context, threadID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, thread_id, filename, size_bytes, chunk_count, uploaded_at
		 FROM documents WHERE thread_id = ? ORDER BY uploaded_at ASC, rowid ASC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		var uploaded string
		if err := rows.Scan(&d.ID, &d.ThreadID, &d.Filename, &d.SizeBytes, &d.ChunkCount, &uploaded); err != nil {
			return nil, err
		}
		d.UploadedAt = parseTimestamp(uploaded)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document whose thread userID owns and returns
// its metadata.
func (s *Storage) DeleteDocument(ctx context.Context, userID, docID string) (Document, error) {
	var d Document
	var uploaded string
	err := s.db.QueryRowContext(ctx,
		`SELECT d.doc_id, d.thread_id, d.filename, d.size_bytes, d.chunk_count, d.uploaded_at
		 FROM documents d JOIN threads t ON t.thread_id = d.thread_id
		 WHERE d.doc_id = ? AND t.user_id = ?`, docID, userID).
		Scan(&d.ID, &d.ThreadID, &d.Filename, &d.SizeBytes, &d.ChunkCount, &uploaded)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to load document: %w", err)
	}
	d.UploadedAt = parseTimestamp(uploaded)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID); err != nil {
		return Document{}, fmt.Errorf("failed to delete document: %w", err)
	}
	return d, nil
}
