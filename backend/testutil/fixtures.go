package testutil

import (
	"bytes"
	"time"

	"pdfchat/model"
)

// MiB is one mebibyte.
const MiB = 1024 * 1024

// TestHistory returns a short server-side exchange for conversationID.
func TestHistory() []model.HistoryMessage {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []model.HistoryMessage{
		{ID: 1, Role: model.RoleUser, Content: "What does section 2 say?", CreatedAt: now},
		{ID: 2, Role: model.RoleAssistant, Content: "Section 2 covers the budget.", CreatedAt: now.Add(time.Second)},
	}
}

// PDFUpload returns a PDF upload of the given size with an in-memory body.
func PDFUpload(name string, size int64) model.PendingUpload {
	return model.PendingUpload{
		Filename:  name,
		MimeType:  "application/pdf",
		SizeBytes: size,
		Data:      bytes.NewReader([]byte("%PDF-1.4 test")),
	}
}

// Upload returns an upload with an arbitrary MIME type.
func Upload(name, mimeType string, size int64) model.PendingUpload {
	return model.PendingUpload{
		Filename:  name,
		MimeType:  mimeType,
		SizeBytes: size,
		Data:      bytes.NewReader([]byte("data")),
	}
}

// Conversations returns a newest-first thread list.
func Conversations(ids ...string) []model.Conversation {
	result := make([]model.Conversation, 0, len(ids))
	for _, id := range ids {
		result = append(result, model.Conversation{ID: id, Name: "Thread " + id})
	}
	return result
}
