package testutil

import (
	"context"
	"sync"

	"pdfchat/model"
)

// MockBackend implements model.Backend for testing. Every method delegates
// to its overridable XxxFunc field and records the call.
type MockBackend struct {
	CreateConversationFunc   func(ctx context.Context, name string) (model.Conversation, error)
	ListConversationsFunc    func(ctx context.Context) ([]model.Conversation, error)
	FetchHistoryFunc         func(ctx context.Context, conversationID string) ([]model.HistoryMessage, error)
	DeleteConversationFunc   func(ctx context.Context, conversationID string) error
	UploadDocumentFunc       func(ctx context.Context, conversationID string, upload model.PendingUpload) (model.UploadResult, error)
	SendMessageStreamingFunc func(ctx context.Context, conversationID, text string, callback model.StreamCallback) error
	SendMessageFunc          func(ctx context.Context, conversationID, text string) (string, error)
	ListDocumentsFunc        func(ctx context.Context, conversationID string) ([]model.Document, error)
	DeleteDocumentFunc       func(ctx context.Context, documentID string) error

	mu    sync.Mutex
	calls []string
}

// NewMockBackend creates a mock backend whose defaults succeed with empty data.
func NewMockBackend() *MockBackend {
	m := &MockBackend{}
	m.CreateConversationFunc = func(ctx context.Context, name string) (model.Conversation, error) {
		return model.Conversation{ID: "thread-1", Name: name}, nil
	}
	m.ListConversationsFunc = func(ctx context.Context) ([]model.Conversation, error) {
		return []model.Conversation{}, nil
	}
	m.FetchHistoryFunc = func(ctx context.Context, conversationID string) ([]model.HistoryMessage, error) {
		return []model.HistoryMessage{}, nil
	}
	m.DeleteConversationFunc = func(ctx context.Context, conversationID string) error {
		return nil
	}
	m.UploadDocumentFunc = func(ctx context.Context, conversationID string, upload model.PendingUpload) (model.UploadResult, error) {
		return model.UploadResult{DocumentID: "doc-1", ChunksIndexed: 1}, nil
	}
	m.SendMessageStreamingFunc = func(ctx context.Context, conversationID, text string, callback model.StreamCallback) error {
		return StreamFragments(callback, "Mock response")
	}
	m.SendMessageFunc = func(ctx context.Context, conversationID, text string) (string, error) {
		return "Mock response", nil
	}
	m.ListDocumentsFunc = func(ctx context.Context, conversationID string) ([]model.Document, error) {
		return []model.Document{}, nil
	}
	m.DeleteDocumentFunc = func(ctx context.Context, documentID string) error {
		return nil
	}
	return m
}

func (m *MockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the names of the methods invoked so far, in order.
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times method name was invoked.
func (m *MockBackend) CallCount(name string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (m *MockBackend) CreateConversation(ctx context.Context, name string) (model.Conversation, error) {
	m.record("CreateConversation")
	return m.CreateConversationFunc(ctx, name)
}

func (m *MockBackend) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	m.record("ListConversations")
	return m.ListConversationsFunc(ctx)
}

func (m *MockBackend) FetchHistory(ctx context.Context, conversationID string) ([]model.HistoryMessage, error) {
	m.record("FetchHistory")
	return m.FetchHistoryFunc(ctx, conversationID)
}

func (m *MockBackend) DeleteConversation(ctx context.Context, conversationID string) error {
	m.record("DeleteConversation")
	return m.DeleteConversationFunc(ctx, conversationID)
}

func (m *MockBackend) UploadDocument(ctx context.Context, conversationID string, upload model.PendingUpload) (model.UploadResult, error) {
	m.record("UploadDocument")
	return m.UploadDocumentFunc(ctx, conversationID, upload)
}

func (m *MockBackend) SendMessageStreaming(ctx context.Context, conversationID, text string, callback model.StreamCallback) error {
	m.record("SendMessageStreaming")
	return m.SendMessageStreamingFunc(ctx, conversationID, text, callback)
}

func (m *MockBackend) SendMessage(ctx context.Context, conversationID, text string) (string, error) {
	m.record("SendMessage")
	return m.SendMessageFunc(ctx, conversationID, text)
}

func (m *MockBackend) ListDocuments(ctx context.Context, conversationID string) ([]model.Document, error) {
	m.record("ListDocuments")
	return m.ListDocumentsFunc(ctx, conversationID)
}

func (m *MockBackend) DeleteDocument(ctx context.Context, documentID string) error {
	m.record("DeleteDocument")
	return m.DeleteDocumentFunc(ctx, documentID)
}

// StreamFragments delivers each fragment followed by a completion event.
func StreamFragments(callback model.StreamCallback, fragments ...string) error {
	for _, f := range fragments {
		if err := callback(model.StreamEvent{Fragment: f}); err != nil {
			return err
		}
	}
	return callback(model.StreamEvent{Done: true})
}
