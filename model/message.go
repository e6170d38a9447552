package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a backend role string onto Role. The backend has used "ai"
// for assistant turns in the past; anything that is not "user" is treated as
// the assistant.
func ParseRole(s string) Role {
	if s == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

// Kind discriminates how a message is rendered.
type Kind int

const (
	KindText Kind = iota
	KindAttachment
)

func (k Kind) String() string {
	switch k {
	case KindAttachment:
		return "attachment"
	default:
		return "text"
	}
}

// Message represents a chat message in the visible log
type Message struct {
	ID          string // Client-side identity, stable across merges
	Role        Role
	Kind        Kind
	Content     string // Prose for KindText
	Filename    string // Set for KindAttachment
	Provisional bool   // Added locally ahead of server confirmation, never sent
	Timestamp   time.Time
}

// NewText creates a non-provisional text message.
func NewText(role Role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Kind:      KindText,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAttachment creates a provisional attachment bubble for filename.
func NewAttachment(filename string) Message {
	return Message{
		ID:          uuid.New().String(),
		Role:        RoleUser,
		Kind:        KindAttachment,
		Filename:    filename,
		Provisional: true,
		Timestamp:   time.Now(),
	}
}

// IsAttachment reports whether the message should render as a file chip.
func (m Message) IsAttachment() bool {
	return m.Kind == KindAttachment
}
