package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveConversation is returned by Ask when nothing is selected.
	ErrNoActiveConversation = errors.New("no active conversation")
	// ErrEmptyMessage is returned by Ask for blank input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrStreamFailed reports a reply stream that did not complete.
	ErrStreamFailed = errors.New("answer stream failed")
)

// Reason names why a candidate attachment was rejected locally.
type Reason int

const (
	ReasonWrongType Reason = iota
	ReasonTooLarge
)

func (r Reason) String() string {
	switch r {
	case ReasonTooLarge:
		return "too large"
	default:
		return "wrong type"
	}
}

// InvalidAttachmentError is a local validation failure; no request was made.
type InvalidAttachmentError struct {
	Reason    Reason
	MimeType  string
	SizeBytes int64
}

func (e *InvalidAttachmentError) Error() string {
	switch e.Reason {
	case ReasonTooLarge:
		return fmt.Sprintf("File too large (%.1f MB). Max: %d MB.",
			float64(e.SizeBytes)/float64(1024*1024), MaxUploadBytes/(1024*1024))
	default:
		if e.MimeType == "" {
			return "Only PDF files are supported."
		}
		return fmt.Sprintf("Only PDF files are supported (got %s).", e.MimeType)
	}
}

// CreationError reports that a conversation could not be created; the user
// action that needed it was abandoned.
type CreationError struct {
	Name string
	Err  error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("failed to create conversation %q: %v", e.Name, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// UploadError reports a rejected or failed upload. Detail is the server's
// human-readable reason when one was given.
type UploadError struct {
	Filename string
	Detail   string
	Err      error
}

func (e *UploadError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("failed to upload %s: %s", e.Filename, e.Detail)
	}
	return fmt.Sprintf("failed to upload %s: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
