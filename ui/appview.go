package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfchat/chat"
	"pdfchat/config"
	"pdfchat/model"
	"pdfchat/store"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

type toast struct {
	level chat.Level
	text  string
}

// infoModal is a dismiss-only modal for errors that need acknowledgement.
type infoModal struct {
	title     string
	message   string
	modalType ModalType
}

type AppView struct {
	cfg      *config.Config
	backend  model.Backend
	store    *store.Store
	attacher *chat.Attacher
	asker    *chat.Asker
	bridge   *Bridge

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool
	focus  focusArea

	sidebar sidebarState
	picker  FilePickerState

	// Cancels the upload or the reply in flight
	uploadCancel context.CancelFunc
	uploading    string
	askCancel    context.CancelFunc
	asking       bool

	confirmDelete *model.Conversation
	documents     documentsState
	modal         *infoModal
	showHelp      bool

	toast    *toast
	toastSeq int

	render *renderCache
}

func NewAppView(cfg *config.Config, backend model.Backend, st *store.Store, attacher *chat.Attacher, asker *chat.Asker, bridge *Bridge) AppView {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about your documents..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter inserts a newline, Enter sends
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(successColor)

	picker := NewFilePickerState(FilePickerConfig{
		Title:        "Attach PDF",
		AllowedTypes: []string{".pdf", ".PDF"},
	})

	return AppView{
		cfg:      cfg,
		backend:  backend,
		store:    st,
		attacher: attacher,
		asker:    asker,
		bridge:   bridge,
		viewport: viewport.New(0, 0),
		textarea: ta,
		spinner:  sp,
		sidebar:  newSidebarState(),
		picker:   picker,
		render:   newRenderCache(),
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.spinner.Tick,
		a.refreshConversations(),
	)
}

func (a AppView) chatWidth() int {
	return max(a.width-sidebarWidth-2, 20)
}

func (a *AppView) resize() {
	chatWidth := a.chatWidth()
	// header(2) + textarea(3) + toast(1) + status(1)
	a.viewport.Width = chatWidth
	a.viewport.Height = max(a.height-7, 3)
	a.textarea.SetWidth(chatWidth)
	a.ready = true
	a.updateViewportContent(false)
}

// streamingID returns the placeholder receiving fragments, if any.
func (a AppView) streamingID(msgs []model.Message) string {
	if !a.asking || len(msgs) == 0 {
		return ""
	}
	last := msgs[len(msgs)-1]
	if last.Role != model.RoleAssistant || last.IsAttachment() {
		return ""
	}
	return last.ID
}

func (a *AppView) updateViewportContent(gotoBottom bool) {
	if !a.ready {
		return
	}
	msgs := a.store.Messages()
	a.render.prune(msgs)

	if len(msgs) == 0 {
		text := welcomeMessage
		if a.store.ActiveConversationID() != "" {
			if a.store.HistoryLoading() {
				text = a.spinner.View() + " Loading conversation..."
			} else {
				text = "No messages yet. Ask something about the attached documents."
			}
		}
		a.viewport.SetContent(DimStyle.Render(wordWrap(text, a.viewport.Width-2)))
		return
	}

	atBottom := a.viewport.AtBottom()
	a.viewport.SetContent(renderConversation(msgs, a.viewport.Width, a.streamingID(msgs), a.spinner.View(), a.render))
	if gotoBottom || atBottom {
		a.viewport.GotoBottom()
	}
}

func (a AppView) activeConversation() (model.Conversation, bool) {
	id := a.store.ActiveConversationID()
	if id == "" {
		return model.Conversation{}, false
	}
	convs, _ := a.store.Conversations()
	for _, c := range convs {
		if c.ID == id {
			return c, true
		}
	}
	return model.Conversation{ID: id}, true
}

func (a AppView) View() string {
	if !a.ready {
		return "Initializing..."
	}
	if a.width < 40 || a.height < 12 {
		return "Terminal too small"
	}

	switch {
	case a.modal != nil:
		return RenderAcknowledgeModal(a.modal.title, a.modal.message, a.modal.modalType, a.width, a.height)
	case a.picker.Active:
		return RenderFilePickerModal(a.picker, a.width, a.height)
	case a.confirmDelete != nil:
		return renderDeleteConfirmation(*a.confirmDelete, a.width, a.height)
	case a.documents.visible:
		return renderDocumentsModal(a.documents, a.spinner.View(), a.width, a.height)
	case a.showHelp:
		return renderHelpModal(a.width, a.height)
	}

	convs, listState := a.store.Conversations()
	sidebar := renderSidebar(a.sidebar, convs, listState, a.store.ActiveConversationID(), a.focus == focusSidebar, a.height-1)

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderHeader(),
		"",
		a.viewport.View(),
		a.renderToast(),
		a.textarea.View(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatusBar())
}

func (a AppView) renderHeader() string {
	title := TitleStyle.Render("pdfchat")

	conv, ok := a.activeConversation()
	if !ok {
		header := title + DimStyle.Render(" | New conversation")
		if a.uploading != "" {
			header += DimStyle.Render(" | ") + a.spinner.View() + DimStyle.Render(" uploading "+truncateName(a.uploading, 24))
		}
		return header
	}
	name := conv.Name
	if name == "" {
		name = untitledName
	}
	header := title + DimStyle.Render(" | ") + AssistantStyle.Render(truncateName(name, a.chatWidth()-20))
	if a.store.HistoryLoading() {
		header += " " + a.spinner.View()
	}
	if a.uploading != "" {
		header += DimStyle.Render(" | ") + a.spinner.View() + DimStyle.Render(" uploading "+truncateName(a.uploading, 24))
	}
	return header
}

func (a AppView) renderToast() string {
	if a.toast == nil {
		return ""
	}
	style := AssistantStyle
	switch a.toast.level {
	case chat.LevelSuccess:
		style = UserStyle
	case chat.LevelError:
		style = lipgloss.NewStyle().Foreground(dangerColor).Bold(true)
	}
	return style.Render(truncateName(strings.ReplaceAll(a.toast.text, "\n", " "), a.chatWidth()))
}

func (a AppView) renderStatusBar() string {
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)

	if a.asking {
		return StatusStyle.Render(fmt.Sprintf("%s Answering...  Esc %s", a.spinner.View(), descStyle.Render("Stop")))
	}
	if a.focus == focusSidebar {
		return StatusStyle.Render(FormatFooter("j/k", "Navigate", "Enter", "Open", "d", "Delete", "/", "Filter", "r", "Refresh", "Tab", "Chat"))
	}

	return StatusStyle.Render(fmt.Sprintf("Alt+Q %s  Alt+N %s  Alt+A %s  Alt+L %s  Tab %s  Enter %s  Alt+Y %s  Alt+H %s",
		descStyle.Render("Quit"),
		descStyle.Render("New chat"),
		descStyle.Render("Attach PDF"),
		descStyle.Render("Documents"),
		descStyle.Render("Conversations"),
		descStyle.Render("Send"),
		descStyle.Render("Copy"),
		descStyle.Render("Help"),
	))
}
