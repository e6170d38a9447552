package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrFetchSuperseded reports that a history fetch was discarded because a
// different conversation became active before it landed.
var ErrFetchSuperseded = errors.New("history fetch superseded by a newer selection")

// FetchHistoryError wraps a backend failure while loading history. The
// visible log is left untouched when it occurs.
type FetchHistoryError struct {
	ConversationID string
	Err            error
}

func (e *FetchHistoryError) Error() string {
	return fmt.Sprintf("failed to fetch history for %s: %v", e.ConversationID, e.Err)
}

func (e *FetchHistoryError) Unwrap() error {
	return e.Err
}

// HistoryLoad tracks one scheduled history fetch. Done is closed once the
// fetch has been applied, discarded or has failed; callers use it as a
// sequencing barrier.
type HistoryLoad struct {
	ConversationID string

	done chan struct{}
	once sync.Once
	err  error
}

func newHistoryLoad(conversationID string) *HistoryLoad {
	return &HistoryLoad{ConversationID: conversationID, done: make(chan struct{})}
}

func settledLoad(conversationID string) *HistoryLoad {
	l := newHistoryLoad(conversationID)
	l.finish(nil)
	return l
}

func (l *HistoryLoad) finish(err error) {
	l.once.Do(func() {
		l.err = err
		close(l.done)
	})
}

// Done is closed when the load has settled.
func (l *HistoryLoad) Done() <-chan struct{} {
	return l.done
}

// Err returns the outcome once Done is closed: nil when the history was
// applied, ErrFetchSuperseded when it was discarded, or a *FetchHistoryError.
func (l *HistoryLoad) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// Wait blocks until the load settles or ctx is done.
func (l *HistoryLoad) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return l.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
