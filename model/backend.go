package model

import "context"

// Backend abstracts the PDF question-answering service.
//
// This interface is defined in the model package (not backend package) so the
// store and chat flows can depend on it without importing the HTTP client, and
// tests can substitute backend/testutil.MockBackend.
type Backend interface {
	// CreateConversation persists a new thread and returns it with its id.
	CreateConversation(ctx context.Context, name string) (Conversation, error)

	// ListConversations returns all threads, newest first.
	ListConversations(ctx context.Context) ([]Conversation, error)

	// FetchHistory returns the server-authoritative message history.
	FetchHistory(ctx context.Context, conversationID string) ([]HistoryMessage, error)

	// DeleteConversation removes a thread and its messages.
	DeleteConversation(ctx context.Context, conversationID string) error

	// UploadDocument uploads and indexes a document against a thread.
	UploadDocument(ctx context.Context, conversationID string, upload PendingUpload) (UploadResult, error)

	// SendMessageStreaming sends text and delivers the reply as framed events.
	SendMessageStreaming(ctx context.Context, conversationID, text string, callback StreamCallback) error

	// SendMessage sends text and waits for the complete reply.
	SendMessage(ctx context.Context, conversationID, text string) (string, error)

	// ListDocuments returns the documents attached to a thread.
	ListDocuments(ctx context.Context, conversationID string) ([]Document, error)

	// DeleteDocument removes one indexed document.
	DeleteDocument(ctx context.Context, documentID string) error
}

// StreamEvent is one framed event of a streamed reply: either a text
// fragment or the completion signal.
type StreamEvent struct {
	Fragment string
	Done     bool
}

// StreamCallback is called for each event of a streamed reply. Returning an
// error aborts the stream.
type StreamCallback func(event StreamEvent) error

// UploadResult is the backend's acknowledgement of an indexed document.
type UploadResult struct {
	DocumentID    string
	ChunksIndexed int
	Message       string
}
