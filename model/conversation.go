package model

import (
	"strconv"
	"time"
)

// Conversation is a server-persisted thread. ID is empty until the backend
// has assigned one.
type Conversation struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Persisted reports whether the backend has assigned an id.
func (c Conversation) Persisted() bool {
	return c.ID != ""
}

// HistoryMessage is one entry of server-authoritative history.
type HistoryMessage struct {
	ID        int64
	Role      Role
	Content   string
	CreatedAt time.Time
}

// ToMessage converts server history into a visible, non-provisional message.
// The id is derived from the server row so repeated fetches produce equal logs.
func (h HistoryMessage) ToMessage(conversationID string) Message {
	return Message{
		ID:        historyMessageID(conversationID, h.ID),
		Role:      h.Role,
		Kind:      KindText,
		Content:   h.Content,
		Timestamp: h.CreatedAt,
	}
}

func historyMessageID(conversationID string, rowID int64) string {
	return "srv:" + conversationID + ":" + strconv.FormatInt(rowID, 10)
}

// Document is an uploaded file indexed against a conversation.
type Document struct {
	ID            string
	ThreadID      string
	Filename      string
	SizeBytes     int64
	ChunksIndexed int
	UploadedAt    time.Time
}
