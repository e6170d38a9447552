package ui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"pdfchat/chat"
)

// Bridge forwards store changes and flow notifications into a running
// tea.Program. Sends happen on their own goroutine because the store may
// change from inside Update.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
	pending atomic.Bool
	sendFn  func(tea.Msg)
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach binds the program that receives messages. Messages produced before
// Attach are dropped.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	fn := b.sendFn
	b.mu.Unlock()

	switch {
	case fn != nil:
		fn(msg)
	case p != nil:
		go p.Send(msg)
	}
}

// StoreChanged is the store's change hook. Bursts collapse into a single
// storeChangedMsg until the view has consumed it.
func (b *Bridge) StoreChanged() {
	if !b.pending.CompareAndSwap(false, true) {
		return
	}
	b.send(storeChangedMsg{})
}

// consumed re-arms StoreChanged. Called before the view re-reads the store.
func (b *Bridge) consumed() {
	b.pending.Store(false)
}

// Notify implements chat.Notifier.
func (b *Bridge) Notify(level chat.Level, text string) {
	b.send(notificationMsg{level: level, text: text})
}
