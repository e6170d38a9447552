package chat

import (
	"context"
	"fmt"

	"pdfchat/backend"
	"pdfchat/config"
	"pdfchat/model"
	"pdfchat/store"
)

const (
	// PDFMimeType is the only accepted document type.
	PDFMimeType = "application/pdf"
	// MaxUploadBytes is the largest accepted document, inclusive.
	MaxUploadBytes = 20 * 1024 * 1024
)

// ValidateUpload rejects anything that is not a PDF of at most
// MaxUploadBytes. It never touches the network.
func ValidateUpload(upload model.PendingUpload) error {
	if upload.MimeType != PDFMimeType {
		return &InvalidAttachmentError{Reason: ReasonWrongType, MimeType: upload.MimeType, SizeBytes: upload.SizeBytes}
	}
	if upload.SizeBytes > MaxUploadBytes {
		return &InvalidAttachmentError{Reason: ReasonTooLarge, MimeType: upload.MimeType, SizeBytes: upload.SizeBytes}
	}
	return nil
}

// Attacher turns a selected file into an uploaded document bound to a
// conversation, showing the attachment immediately.
type Attacher struct {
	backend  model.Backend
	store    *store.Store
	notifier Notifier
}

// NewAttacher creates an attachment flow. notifier may be nil.
func NewAttacher(b model.Backend, s *store.Store, n Notifier) *Attacher {
	return &Attacher{backend: b, store: s, notifier: orDiscard(n)}
}

// Attach validates upload, creates a conversation if none is active, records
// a provisional attachment bubble and uploads the file. Validation failures
// return *InvalidAttachmentError before any request. Asynchronous failures
// are also reported in the log and through the notifier.
func (a *Attacher) Attach(ctx context.Context, upload model.PendingUpload) (model.UploadResult, error) {
	if err := ValidateUpload(upload); err != nil {
		a.notifier.Notify(LevelError, err.Error())
		return model.UploadResult{}, err
	}

	conversationID, err := ensureConversation(ctx, a.backend, a.store, a.notifier, NameFromFilename(upload.Filename))
	if err != nil {
		return model.UploadResult{}, err
	}

	// Visible before the upload starts.
	a.store.RecordProvisionalMessage(conversationID, model.NewAttachment(upload.Filename))

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Attach] uploading %s (%d bytes) to %s", upload.Filename, upload.SizeBytes, conversationID)
	}
	a.notifier.Notify(LevelInfo, fmt.Sprintf("Uploading %q...", upload.Filename))

	result, err := a.backend.UploadDocument(ctx, conversationID, upload)
	if err != nil {
		uploadErr := &UploadError{Filename: upload.Filename, Detail: backend.Detail(err), Err: err}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Attach] upload failed: %v", uploadErr)
		}
		reason := uploadErr.Detail
		if reason == "" {
			reason = "the server could not index it"
		}
		// The failure notice is posted even when ctx is already done.
		_ = a.store.AwaitHistory(ctx)
		a.store.AppendMessage(conversationID, model.NewText(model.RoleAssistant,
			fmt.Sprintf("Failed to upload **%s**: %s. Please try again.", upload.Filename, reason)))
		a.notifier.Notify(LevelError, uploadErr.Error())
		return model.UploadResult{}, uploadErr
	}

	// Let a history load triggered by selection land first.
	if err := a.store.AwaitHistory(ctx); err != nil {
		return result, err
	}

	a.store.AppendMessage(conversationID, model.NewText(model.RoleAssistant, uploadSuccessText(upload.Filename)))
	a.notifier.Notify(LevelSuccess, fmt.Sprintf("%q uploaded (%d chunks)", upload.Filename, result.ChunksIndexed))
	return result, nil
}

func uploadSuccessText(filename string) string {
	return fmt.Sprintf("**%s** uploaded successfully!\n\n"+
		"You can now ask me anything about **%s**.\n"+
		"I will answer strictly from the document content.", filename, filename)
}

// ensureConversation returns the active conversation id, creating, selecting
// and listing a new conversation named name when none is active.
func ensureConversation(ctx context.Context, b model.Backend, s *store.Store, n Notifier, name string) (string, error) {
	if id := s.ActiveConversationID(); id != "" {
		return id, nil
	}

	conv, err := b.CreateConversation(ctx, name)
	if err != nil {
		creationErr := &CreationError{Name: name, Err: err}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Chat] %v", creationErr)
		}
		detail := backend.Detail(err)
		if detail == "" {
			detail = err.Error()
		}
		s.AppendMessage("", model.NewText(model.RoleAssistant, "System Error: "+detail))
		n.Notify(LevelError, creationErr.Error())
		return "", creationErr
	}

	s.SelectConversation(conv.ID)
	if err := s.RefreshConversations(ctx); err != nil {
		n.Notify(LevelError, err.Error())
	}
	return conv.ID, nil
}
