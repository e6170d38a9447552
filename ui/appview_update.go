package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"pdfchat/chat"
	"pdfchat/config"
	"pdfchat/model"
	"pdfchat/store"
)

const (
	toastDuration  = 4 * time.Second
	requestTimeout = 30 * time.Second
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	// The picker reads directories through its own messages
	if a.picker.Active {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			a.picker.Picker, cmd = a.picker.Picker.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.picker.Picker.Height = max(msg.Height-14, 5)
		a.resize()
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if a.asking || a.store.HistoryLoading() {
			a.updateViewportContent(false)
		}
		return a, tea.Batch(cmds...)

	case storeChangedMsg:
		if a.bridge != nil {
			a.bridge.consumed()
		}
		convs, _ := a.store.Conversations()
		a.sidebar.applyFilter(convs)
		a.updateViewportContent(false)
		return a, tea.Batch(cmds...)

	case notificationMsg:
		return a, tea.Batch(append(cmds, a.showToast(msg.level, msg.text))...)

	case clearToastMsg:
		if msg.seq == a.toastSeq {
			a.toast = nil
		}
		return a, tea.Batch(cmds...)

	case conversationsRefreshedMsg:
		if msg.err != nil {
			cmds = append(cmds, a.showToast(chat.LevelError, "Could not load conversations: "+msg.err.Error()))
		}
		return a, tea.Batch(cmds...)

	case historyLoadedMsg:
		if msg.err != nil && !errors.Is(msg.err, store.ErrFetchSuperseded) && msg.conversationID == a.store.ActiveConversationID() {
			cmds = append(cmds, a.showToast(chat.LevelError, "Could not load conversation history. Select it again to retry."))
		}
		a.updateViewportContent(false)
		return a, tea.Batch(cmds...)

	case uploadDoneMsg:
		a.uploading = ""
		if a.uploadCancel != nil {
			a.uploadCancel()
			a.uploadCancel = nil
		}
		var invalid *chat.InvalidAttachmentError
		switch {
		case msg.openErr != nil:
			cmds = append(cmds, a.showToast(chat.LevelError, msg.openErr.Error()))
		case errors.As(msg.err, &invalid):
			a.modal = &infoModal{title: "Cannot Attach File", message: invalid.Error(), modalType: ModalTypeWarning}
		case errors.Is(msg.err, context.Canceled):
			cmds = append(cmds, a.showToast(chat.LevelInfo, "Upload of "+msg.filename+" cancelled"))
		}
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case askDoneMsg:
		a.asking = false
		if a.askCancel != nil {
			a.askCancel()
			a.askCancel = nil
		}
		switch {
		case errors.Is(msg.err, chat.ErrNoActiveConversation):
			cmds = append(cmds, a.showToast(chat.LevelError, "Select a conversation or attach a PDF first."))
		case errors.Is(msg.err, context.Canceled):
			cmds = append(cmds, a.showToast(chat.LevelInfo, "Answer stopped"))
		}
		a.updateViewportContent(false)
		return a, tea.Batch(cmds...)

	case conversationDeletedMsg:
		if msg.err != nil {
			cmds = append(cmds, a.showToast(chat.LevelError, msg.err.Error()))
		} else {
			cmds = append(cmds, a.showToast(chat.LevelSuccess, "Conversation deleted"))
		}
		return a, tea.Batch(cmds...)

	case documentsLoadedMsg:
		if a.documents.visible && msg.conversationID == a.documents.conversationID {
			a.documents.loading = false
			a.documents.err = ""
			if msg.err != nil {
				a.documents.err = "Could not load documents: " + msg.err.Error()
			}
			a.documents.items = msg.documents
			if a.documents.selected >= len(msg.documents) {
				a.documents.selected = max(len(msg.documents)-1, 0)
			}
		}
		return a, tea.Batch(cmds...)

	case documentDeletedMsg:
		if msg.err != nil {
			a.documents.loading = false
			a.documents.err = "Could not delete document: " + msg.err.Error()
			return a, tea.Batch(cmds...)
		}
		cmds = append(cmds, a.showToast(chat.LevelSuccess, "Document deleted"))
		if a.documents.visible && a.documents.conversationID == msg.conversationID {
			cmds = append(cmds, a.loadDocuments(msg.conversationID))
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		next, keyCmd := a.handleKey(msg)
		return next, tea.Batch(append(cmds, keyCmd)...)

	case tea.MouseMsg:
		a.viewport, cmd = a.viewport.Update(msg)
		return a, tea.Batch(append(cmds, cmd)...)
	}

	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		a.cancelInFlight()
		return a, tea.Quit
	}

	switch {
	case a.modal != nil:
		if msg.String() == "enter" || msg.String() == "esc" {
			a.modal = nil
		}
		return a, nil
	case a.picker.Active:
		return a.handlePickerKey(msg)
	case a.confirmDelete != nil:
		return a.handleDeleteConfirmKey(msg)
	case a.documents.visible:
		return a.handleDocumentsKey(msg)
	case a.showHelp:
		switch msg.String() {
		case "esc", "alt+h", "q":
			a.showHelp = false
		}
		return a, nil
	}

	// Sidebar filter input owns the keyboard while open
	if a.focus == focusSidebar && a.sidebar.filtering {
		return a.handleSidebarFilterKey(msg)
	}

	switch msg.String() {
	case "alt+q":
		a.cancelInFlight()
		return a, tea.Quit
	case "alt+h":
		a.showHelp = true
		return a, nil
	case "alt+n":
		return a.newChat()
	case "alt+a":
		a.picker.Activate()
		return a, a.picker.Picker.Init()
	case "alt+l":
		id := a.store.ActiveConversationID()
		if id == "" {
			return a, a.showToast(chat.LevelInfo, "No conversation selected")
		}
		a.documents.open(id)
		return a, a.loadDocuments(id)
	case "alt+y":
		return a.copyLastAnswer()
	case "tab":
		a.toggleFocus()
		return a, nil
	case "pgup":
		a.viewport.HalfPageUp()
		return a, nil
	case "pgdown":
		a.viewport.HalfPageDown()
		return a, nil
	}

	if a.focus == focusSidebar {
		return a.handleSidebarKey(msg)
	}

	switch msg.String() {
	case "esc":
		switch {
		case a.asking && a.askCancel != nil:
			a.askCancel()
		case a.uploading != "" && a.uploadCancel != nil:
			a.uploadCancel()
		}
		return a, nil
	case "enter":
		return a.submit()
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a *AppView) toggleFocus() {
	if a.focus == focusInput {
		a.focus = focusSidebar
		a.textarea.Blur()
		return
	}
	a.focus = focusInput
	a.sidebar.filtering = false
	a.sidebar.filter.Blur()
	a.textarea.Focus()
}

func (a AppView) handleSidebarKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	convs, _ := a.store.Conversations()

	switch msg.String() {
	case "j", "down":
		a.sidebar.move(1, convs)
	case "k", "up":
		a.sidebar.move(-1, convs)
	case "g", "home":
		a.sidebar.selected = 0
	case "G", "end":
		a.sidebar.move(len(convs), convs)
	case "enter":
		return a.openSelected(convs)
	case "d":
		list := a.sidebar.visible(convs)
		if a.sidebar.selected < len(list) {
			conv := list[a.sidebar.selected]
			a.confirmDelete = &conv
		}
	case "/":
		a.sidebar.filtering = true
		a.sidebar.filter.SetValue("")
		a.sidebar.applyFilter(convs)
		return a, a.sidebar.filter.Focus()
	case "r":
		return a, a.refreshConversations()
	case "esc":
		a.toggleFocus()
	}
	return a, nil
}

func (a AppView) handleSidebarFilterKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	convs, _ := a.store.Conversations()

	switch msg.String() {
	case "esc":
		a.sidebar.filtering = false
		a.sidebar.filter.Blur()
		a.sidebar.filter.SetValue("")
		a.sidebar.applyFilter(convs)
		return a, nil
	case "enter":
		next, cmd := a.openSelected(convs)
		next.sidebar.filtering = false
		next.sidebar.filter.Blur()
		next.sidebar.filter.SetValue("")
		next.sidebar.selected = 0
		return next, cmd
	case "down", "ctrl+n":
		a.sidebar.move(1, convs)
		return a, nil
	case "up", "ctrl+p":
		a.sidebar.move(-1, convs)
		return a, nil
	}

	var cmd tea.Cmd
	a.sidebar.filter, cmd = a.sidebar.filter.Update(msg)
	a.sidebar.applyFilter(convs)
	return a, cmd
}

func (a AppView) openSelected(convs []model.Conversation) (AppView, tea.Cmd) {
	list := a.sidebar.visible(convs)
	if a.sidebar.selected >= len(list) {
		return a, nil
	}
	id := list[a.sidebar.selected].ID
	a.focus = focusInput
	a.textarea.Focus()
	return a, a.selectConversation(id)
}

func (a AppView) handleDeleteConfirmKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := a.confirmDelete.ID
		a.confirmDelete = nil
		return a, a.deleteConversation(id)
	case "n", "N", "esc":
		a.confirmDelete = nil
	}
	return a, nil
}

func (a AppView) handleDocumentsKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	if a.documents.confirmDelete {
		switch msg.String() {
		case "y", "Y":
			a.documents.confirmDelete = false
			doc, ok := a.documents.current()
			if !ok {
				return a, nil
			}
			a.documents.loading = true
			return a, a.deleteDocument(a.documents.conversationID, doc.ID)
		case "n", "N", "esc":
			a.documents.confirmDelete = false
		}
		return a, nil
	}

	switch msg.String() {
	case "esc", "alt+l", "q":
		a.documents.close()
	case "j", "down":
		if a.documents.selected < len(a.documents.items)-1 {
			a.documents.selected++
		}
	case "k", "up":
		if a.documents.selected > 0 {
			a.documents.selected--
		}
	case "d":
		if _, ok := a.documents.current(); ok && !a.documents.loading {
			a.documents.confirmDelete = true
		}
	}
	return a, nil
}

func (a AppView) handlePickerKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	if msg.String() == "esc" {
		a.picker.Reset()
		return a, nil
	}

	var cmd tea.Cmd
	a.picker.Picker, cmd = a.picker.Picker.Update(msg)

	if ok, path := a.picker.Picker.DidSelectFile(msg); ok {
		return a.startUpload(path)
	}
	// Disabled files still go through validation so the user sees why
	if ok, path := a.picker.Picker.DidSelectDisabledFile(msg); ok {
		return a.startUpload(path)
	}
	return a, cmd
}

func (a AppView) startUpload(path string) (AppView, tea.Cmd) {
	a.picker.Reset()
	if a.uploading != "" {
		return a, a.showToast(chat.LevelInfo, "Wait for "+a.uploading+" to finish uploading")
	}

	filename := filepath.Base(path)
	ctx, cancel := context.WithCancel(context.Background())
	a.uploadCancel = cancel
	a.uploading = filename

	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] attach selected %s", path)
	}

	attacher := a.attacher
	return a, func() tea.Msg {
		upload, f, err := model.OpenUpload(path)
		if err != nil {
			return uploadDoneMsg{filename: filename, openErr: err}
		}
		defer f.Close()
		result, err := attacher.Attach(ctx, upload)
		return uploadDoneMsg{filename: filename, result: result, err: err}
	}
}

func (a AppView) submit() (AppView, tea.Cmd) {
	text := strings.TrimSpace(a.textarea.Value())
	if text == "" {
		return a, nil
	}
	if a.asking {
		return a, a.showToast(chat.LevelInfo, "An answer is still streaming. Press Esc to stop it.")
	}

	a.textarea.Reset()
	a.asking = true
	ctx, cancel := context.WithCancel(context.Background())
	a.askCancel = cancel

	asker := a.asker
	a.updateViewportContent(true)
	return a, func() tea.Msg {
		return askDoneMsg{err: asker.Ask(ctx, text)}
	}
}

func (a AppView) newChat() (AppView, tea.Cmd) {
	a.store.SelectConversation("")
	a.focus = focusInput
	a.sidebar.filtering = false
	a.textarea.Focus()
	a.updateViewportContent(true)
	return a, nil
}

func (a AppView) copyLastAnswer() (AppView, tea.Cmd) {
	msgs := a.store.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant && !msgs[i].IsAttachment() && msgs[i].Content != "" {
			if err := clipboard.WriteAll(msgs[i].Content); err != nil {
				return a, a.showToast(chat.LevelError, "Copy failed: "+err.Error())
			}
			return a, a.showToast(chat.LevelSuccess, "Copied last answer")
		}
	}
	return a, a.showToast(chat.LevelInfo, "Nothing to copy yet")
}

func (a *AppView) cancelInFlight() {
	if a.askCancel != nil {
		a.askCancel()
	}
	if a.uploadCancel != nil {
		a.uploadCancel()
	}
}

func (a *AppView) showToast(level chat.Level, text string) tea.Cmd {
	a.toastSeq++
	seq := a.toastSeq
	a.toast = &toast{level: level, text: text}
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func (a AppView) refreshConversations() tea.Cmd {
	st := a.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return conversationsRefreshedMsg{err: st.RefreshConversations(ctx)}
	}
}

// selectConversation activates id now and reports when its history lands.
func (a AppView) selectConversation(id string) tea.Cmd {
	load := a.store.SelectConversation(id)
	return func() tea.Msg {
		return historyLoadedMsg{conversationID: id, err: load.Wait(context.Background())}
	}
}

func (a AppView) deleteConversation(id string) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return conversationDeletedMsg{id: id, err: st.DeleteConversation(ctx, id)}
	}
}

func (a AppView) loadDocuments(conversationID string) tea.Cmd {
	b := a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		docs, err := b.ListDocuments(ctx, conversationID)
		return documentsLoadedMsg{conversationID: conversationID, documents: docs, err: err}
	}
}

func (a AppView) deleteDocument(conversationID, documentID string) tea.Cmd {
	b := a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return documentDeletedMsg{conversationID: conversationID, documentID: documentID, err: b.DeleteDocument(ctx, documentID)}
	}
}
