// Package store holds the client-side conversation state: the thread list,
// the active selection and the visible message log. It is the single owner
// of that state; flows and the UI read and mutate it only through Store
// methods.
//
// The visible log for the active conversation is always
// Merge(provisional[id], serverHistory) plus whatever the flows appended
// that the server history does not contain yet. Provisional buffers survive reloads,
// so switching away and back never loses or duplicates them.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pdfchat/config"
	"pdfchat/model"
)

// Backend is the subset of model.Backend the store calls itself.
type Backend interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	FetchHistory(ctx context.Context, conversationID string) ([]model.HistoryMessage, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}

// ListState distinguishes "nothing loaded yet", "loading" and "loaded" so an
// empty list can be told apart from one still in flight.
type ListState int

const (
	ListNotLoaded ListState = iota
	ListLoading
	ListReady
)

const defaultFetchTimeout = 30 * time.Second

type Option func(*Store)

// WithDebounce delays each history fetch by d; a newer selection within the
// window cancels the pending fetch.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithOnChange registers a function called after every state change. It is
// invoked without the store lock held.
func WithOnChange(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

// WithFetchTimeout bounds each history fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Store) { s.fetchTimeout = d }
}

// Store is the conversation store.
type Store struct {
	backend      Backend
	debounce     time.Duration
	fetchTimeout time.Duration
	onChange     func()

	mu             sync.Mutex
	conversations  []model.Conversation
	listState      ListState
	activeID       string
	messages       []model.Message
	provisional    map[string][]model.Message
	// tail holds ids of messages appended to the active log since the last
	// merge that the server has not echoed back. serverSeen is the length
	// of the server history at that merge.
	tail           []string
	serverSeen     int
	pending        *HistoryLoad
	timer          *time.Timer
	loadingHistory bool
}

// New creates an empty store with no active conversation.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:      backend,
		debounce:     config.DefaultHistoryDebounce,
		fetchTimeout: defaultFetchTimeout,
		provisional:  make(map[string][]model.Message),
		pending:      settledLoad(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset discards all state and cancels any scheduled fetch.
func (s *Store) Reset() {
	s.mu.Lock()
	s.cancelPendingLocked()
	s.conversations = nil
	s.listState = ListNotLoaded
	s.activeID = ""
	s.messages = nil
	s.clearTailLocked()
	s.provisional = make(map[string][]model.Message)
	s.pending = settledLoad("")
	s.loadingHistory = false
	s.mu.Unlock()
	s.changed()
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Conversations returns the thread list from the last successful fetch and
// the list state.
func (s *Store) Conversations() ([]model.Conversation, ListState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out, s.listState
}

// RefreshConversations reloads the thread list. On failure the previous list
// and state are kept.
func (s *Store) RefreshConversations(ctx context.Context) error {
	s.mu.Lock()
	prevState := s.listState
	s.listState = ListLoading
	s.mu.Unlock()
	s.changed()

	list, err := s.backend.ListConversations(ctx)

	s.mu.Lock()
	if err != nil {
		s.listState = prevState
		s.mu.Unlock()
		s.changed()
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Store] conversation list refresh failed: %v", err)
		}
		return fmt.Errorf("failed to refresh conversations: %w", err)
	}
	s.conversations = list
	s.listState = ListReady
	s.mu.Unlock()
	s.changed()
	return nil
}

// ActiveConversationID returns the active conversation id, or "" when none
// is active.
func (s *Store) ActiveConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Messages returns a copy of the visible log.
func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// HistoryLoading reports whether a history fetch for the active conversation
// is scheduled or in flight.
func (s *Store) HistoryLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingHistory
}

// SelectConversation makes id the active conversation; "" clears the
// selection and the log immediately. Switching to a non-empty id resets the
// log to the conversation's provisional buffer; a history fetch is scheduled
// after the debounce window. The returned load settles when that fetch has
// been applied or discarded.
func (s *Store) SelectConversation(id string) *HistoryLoad {
	s.mu.Lock()
	s.cancelPendingLocked()
	switching := id != s.activeID
	s.activeID = id

	if id == "" {
		s.messages = nil
		s.clearTailLocked()
		s.pending = settledLoad("")
		s.loadingHistory = false
		load := s.pending
		s.mu.Unlock()
		s.changed()
		return load
	}

	// Reselecting the active conversation refreshes it in place so a failed
	// fetch never leaves the log emptier than before, and a reply still
	// streaming keeps its placeholder.
	if switching {
		s.messages = Merge(s.provisional[id], nil)
		s.clearTailLocked()
	}
	load := newHistoryLoad(id)
	s.pending = load
	s.loadingHistory = true
	s.timer = time.AfterFunc(s.debounce, func() { s.fetch(load) })
	s.mu.Unlock()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Store] selected conversation %s, history fetch in %v", id, s.debounce)
	}
	s.changed()
	return load
}

// cancelPendingLocked stops a scheduled fetch that has not started yet. A
// fetch already in flight is left to its own id guard.
func (s *Store) cancelPendingLocked() {
	if s.timer != nil && s.timer.Stop() {
		s.pending.finish(ErrFetchSuperseded)
	}
	s.timer = nil
}

func (s *Store) fetch(load *HistoryLoad) {
	s.mu.Lock()
	superseded := s.pending != load
	s.mu.Unlock()
	if superseded {
		load.finish(ErrFetchSuperseded)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	history, err := s.backend.FetchHistory(ctx, load.ConversationID)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Store] history fetch for %s failed: %v", load.ConversationID, err)
		}
		s.mu.Lock()
		if s.pending == load {
			s.loadingHistory = false
		}
		s.mu.Unlock()
		load.finish(&FetchHistoryError{ConversationID: load.ConversationID, Err: err})
		s.changed()
		return
	}

	server := make([]model.Message, 0, len(history))
	for _, h := range history {
		server = append(server, h.ToMessage(load.ConversationID))
	}

	if !s.MergeServerHistory(load.ConversationID, server) {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Store] discarding stale history for %s", load.ConversationID)
		}
		load.finish(ErrFetchSuperseded)
		return
	}

	s.mu.Lock()
	if s.pending == load {
		s.loadingHistory = false
	}
	s.mu.Unlock()
	load.finish(nil)
	s.changed()
}

// AwaitHistory blocks until the most recently scheduled history load has
// settled. A superseded or failed load is not an error for the waiter.
func (s *Store) AwaitHistory(ctx context.Context) error {
	s.mu.Lock()
	load := s.pending
	s.mu.Unlock()

	err := load.Wait(ctx)
	if err != nil && ctx.Err() != nil {
		return err
	}
	return nil
}

// RecordProvisionalMessage appends msg to conversationID's provisional
// buffer and, when that conversation is active, to the visible log.
func (s *Store) RecordProvisionalMessage(conversationID string, msg model.Message) {
	msg.Provisional = true

	s.mu.Lock()
	s.provisional[conversationID] = append(s.provisional[conversationID], msg)
	if conversationID == s.activeID {
		s.messages = append(s.messages, msg)
	}
	s.mu.Unlock()
	s.changed()
}

// ProvisionalMessages returns a copy of conversationID's provisional buffer.
func (s *Store) ProvisionalMessages(conversationID string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := s.provisional[conversationID]
	out := make([]model.Message, len(buf))
	copy(out, buf)
	return out
}

// MergeServerHistory replaces the visible log with
// Merge(provisional[conversationID], server) when conversationID is active.
// Messages appended since the previous merge are carried over after it
// unless server already has a message with the same role and content
// beyond what the previous merge saw. The provisional buffer is kept. It
// reports whether the log was replaced.
func (s *Store) MergeServerHistory(conversationID string, server []model.Message) bool {
	s.mu.Lock()
	if conversationID == "" || conversationID != s.activeID {
		s.mu.Unlock()
		return false
	}

	local := make(map[string]model.Message, len(s.tail))
	for _, m := range s.messages {
		local[m.ID] = m
	}
	fresh := server[min(s.serverSeen, len(server)):]
	echoed := make([]bool, len(fresh))

	merged := Merge(s.provisional[conversationID], server)
	var tail []string
	for _, id := range s.tail {
		m, ok := local[id]
		if !ok || echoedBy(m, fresh, echoed) {
			continue
		}
		merged = append(merged, m)
		tail = append(tail, id)
	}

	s.messages = merged
	s.tail = tail
	s.serverSeen = len(server)
	s.mu.Unlock()
	s.changed()
	return true
}

// echoedBy marks and reports the first unclaimed server message matching m.
func echoedBy(m model.Message, server []model.Message, claimed []bool) bool {
	for i, sm := range server {
		if !claimed[i] && sm.Role == m.Role && sm.Kind == m.Kind && sm.Content == m.Content {
			claimed[i] = true
			return true
		}
	}
	return false
}

func (s *Store) clearTailLocked() {
	s.tail = nil
	s.serverSeen = 0
}

// AppendMessage appends a non-provisional message to the visible log when
// conversationID is active.
func (s *Store) AppendMessage(conversationID string, msg model.Message) bool {
	s.mu.Lock()
	if conversationID != s.activeID {
		s.mu.Unlock()
		return false
	}
	s.messages = append(s.messages, msg)
	s.tail = append(s.tail, msg.ID)
	s.mu.Unlock()
	s.changed()
	return true
}

// AppendFragment appends fragment to the content of message msgID. It is a
// no-op when the conversation is no longer active or the message is no
// longer visible.
func (s *Store) AppendFragment(conversationID, msgID, fragment string) bool {
	return s.updateMessage(conversationID, msgID, func(m *model.Message) {
		m.Content += fragment
	})
}

// ReplaceContent overwrites the content of message msgID.
func (s *Store) ReplaceContent(conversationID, msgID, content string) bool {
	return s.updateMessage(conversationID, msgID, func(m *model.Message) {
		m.Content = content
	})
}

// MessageContent returns the current content of a visible message.
func (s *Store) MessageContent(conversationID, msgID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conversationID != s.activeID {
		return "", false
	}
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ID == msgID {
			return s.messages[i].Content, true
		}
	}
	return "", false
}

func (s *Store) updateMessage(conversationID, msgID string, fn func(*model.Message)) bool {
	s.mu.Lock()
	if conversationID != s.activeID {
		s.mu.Unlock()
		return false
	}
	// The streaming target is almost always the last message.
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ID == msgID {
			fn(&s.messages[i])
			s.mu.Unlock()
			s.changed()
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// DeleteConversation deletes id on the backend, then removes it from the
// list and discards its provisional buffer. Deleting the active conversation
// clears the selection and the log. On backend failure nothing changes.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("conversation id is required")
	}
	if err := s.backend.DeleteConversation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}

	s.mu.Lock()
	kept := s.conversations[:0:0]
	for _, c := range s.conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.conversations = kept
	delete(s.provisional, id)

	if s.activeID == id {
		s.cancelPendingLocked()
		s.activeID = ""
		s.messages = nil
		s.clearTailLocked()
		s.pending = settledLoad("")
		s.loadingHistory = false
	}
	s.mu.Unlock()
	s.changed()
	return nil
}
