package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pdfchat/backend"
	"pdfchat/config"
	"pdfchat/model"
	"pdfchat/store"
)

// StreamErrorText replaces the reply of a stream that did not complete.
const StreamErrorText = "Sorry, something went wrong while generating the answer. Please try again."

// stoppedSuffix marks a reply the user aborted.
const stoppedSuffix = "\n\n_(stopped)_"

// Asker sends one user utterance and renders the streamed reply into a
// single placeholder message.
type Asker struct {
	backend  model.Backend
	store    *store.Store
	notifier Notifier

	// AutoCreate creates a conversation named after the question when none
	// is active instead of failing with ErrNoActiveConversation.
	AutoCreate bool
	// PreservePartial keeps fragments received before a failure and
	// appends the error notice instead of replacing them.
	PreservePartial bool
	// Blocking uses the non-streaming endpoint and fills the placeholder
	// once the whole reply has arrived.
	Blocking bool
}

// NewAsker creates a query flow. notifier may be nil.
func NewAsker(b model.Backend, s *store.Store, n Notifier) *Asker {
	return &Asker{backend: b, store: s, notifier: orDiscard(n)}
}

// Ask appends text as a user message, appends an empty assistant placeholder
// and streams the reply into it. Callers must not run two Asks for the same
// conversation at once.
//
// Cancelling ctx stops the stream and keeps whatever was received. Any other
// failure before completion replaces the placeholder with StreamErrorText and
// returns an error wrapping ErrStreamFailed.
func (a *Asker) Ask(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	conversationID := a.store.ActiveConversationID()
	if conversationID == "" {
		if !a.AutoCreate {
			return ErrNoActiveConversation
		}
		id, err := ensureConversation(ctx, a.backend, a.store, a.notifier, NameFromText(text))
		if err != nil {
			return err
		}
		conversationID = id
	}

	// A pending history load would replace the log and drop the placeholder.
	if err := a.store.AwaitHistory(ctx); err != nil {
		return err
	}

	a.store.AppendMessage(conversationID, model.NewText(model.RoleUser, text))
	placeholder := model.NewText(model.RoleAssistant, "")
	a.store.AppendMessage(conversationID, placeholder)

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Ask] conversation=%s placeholder=%s len=%d", conversationID, placeholder.ID, len(text))
	}

	if a.Blocking {
		return a.askBlocking(ctx, conversationID, placeholder.ID, text)
	}

	completed := false
	fragments := 0
	err := a.backend.SendMessageStreaming(ctx, conversationID, text, func(event model.StreamEvent) error {
		if event.Done {
			completed = true
			return nil
		}
		fragments++
		// Dropped silently once the conversation is no longer displayed.
		a.store.AppendFragment(conversationID, placeholder.ID, event.Fragment)
		return nil
	})

	if err == nil && completed {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Ask] stream complete: %d fragments", fragments)
		}
		return nil
	}
	if err == nil {
		err = backend.ErrStreamEnded
	}

	if errors.Is(err, context.Canceled) {
		partial, _ := a.store.MessageContent(conversationID, placeholder.ID)
		a.store.ReplaceContent(conversationID, placeholder.ID, partial+stoppedSuffix)
		return err
	}

	a.fail(conversationID, placeholder.ID, err)
	return fmt.Errorf("%w: %v", ErrStreamFailed, err)
}

func (a *Asker) askBlocking(ctx context.Context, conversationID, placeholderID, text string) error {
	reply, err := a.backend.SendMessage(ctx, conversationID, text)
	if err != nil {
		a.fail(conversationID, placeholderID, err)
		return fmt.Errorf("%w: %v", ErrStreamFailed, err)
	}
	a.store.ReplaceContent(conversationID, placeholderID, reply)
	return nil
}

func (a *Asker) fail(conversationID, placeholderID string, err error) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Ask] reply failed: %v", err)
	}

	content := StreamErrorText
	if a.PreservePartial {
		if partial, ok := a.store.MessageContent(conversationID, placeholderID); ok && partial != "" {
			content = partial + "\n\n" + StreamErrorText
		}
	}
	a.store.ReplaceContent(conversationID, placeholderID, content)

	detail := backend.Detail(err)
	if detail == "" {
		detail = err.Error()
	}
	a.notifier.Notify(LevelError, detail)
}
