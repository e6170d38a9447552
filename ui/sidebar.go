package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"pdfchat/model"
	"pdfchat/store"
)

const (
	sidebarWidth = 28
	untitledName = "Untitled"
)

type sidebarState struct {
	selected  int
	filtering bool
	filter    textinput.Model
	filtered  []model.Conversation
}

func newSidebarState() sidebarState {
	fi := textinput.New()
	fi.Prompt = "Filter: "
	fi.CharLimit = 64
	return sidebarState{filter: fi}
}

// visible returns the list the cursor indexes into.
func (s sidebarState) visible(all []model.Conversation) []model.Conversation {
	if s.filtering && s.filter.Value() != "" {
		return s.filtered
	}
	return all
}

func (s *sidebarState) applyFilter(all []model.Conversation) {
	s.filtered = filterConversations(all, s.filter.Value())
	if n := len(s.visible(all)); s.selected >= n {
		s.selected = max(n-1, 0)
	}
}

func (s *sidebarState) move(delta int, all []model.Conversation) {
	n := len(s.visible(all))
	if n == 0 {
		s.selected = 0
		return
	}
	s.selected = min(max(s.selected+delta, 0), n-1)
}

// filterConversations fuzzy-matches query against conversation names, best
// match first. An empty query returns all conversations unchanged.
func filterConversations(all []model.Conversation, query string) []model.Conversation {
	if query == "" {
		return all
	}
	targets := make([]string, len(all))
	for i, c := range all {
		targets[i] = displayName(c)
	}
	matches := fuzzy.Find(query, targets)
	out := make([]model.Conversation, len(matches))
	for i, m := range matches {
		out[i] = all[m.Index]
	}
	return out
}

func displayName(c model.Conversation) string {
	if strings.TrimSpace(c.Name) == "" {
		return untitledName
	}
	return c.Name
}

// truncateName cuts name to width display cells with a trailing ellipsis.
func truncateName(name string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(name, width, "…")
}

func renderSidebar(s sidebarState, all []model.Conversation, state store.ListState, activeID string, focused bool, height int) string {
	inner := sidebarWidth - 2

	header := TitleStyle.Render("Conversations")
	if focused {
		header = SelectedStyle.Render("Conversations")
	}
	lines := []string{header, ""}

	if s.filtering {
		lines = append(lines, truncateName(s.filter.View(), inner), "")
	}

	list := s.visible(all)
	switch {
	case state != store.ListReady && len(all) == 0:
		lines = append(lines, DimStyle.Render("Loading..."))
	case len(all) == 0:
		lines = append(lines, DimStyle.Render(wordWrap("No conversations yet. Attach a PDF or ask a question to start one.", inner)))
	case len(list) == 0:
		lines = append(lines, DimStyle.Render("No matches"))
	default:
		// Two lines per entry
		room := max((height-len(lines))/2, 1)
		start := 0
		if s.selected >= room {
			start = s.selected - room + 1
		}
		for i := start; i < len(list) && i < start+room; i++ {
			c := list[i]
			cursor := "  "
			if focused && i == s.selected {
				cursor = "▸ "
			}
			name := truncateName(displayName(c), inner-2)
			switch {
			case c.ID == activeID:
				name = ActiveConversationStyle.Render(name)
			case focused && i == s.selected:
				name = SelectedStyle.Render(name)
			}
			lines = append(lines, cursor+name)
			lines = append(lines, "  "+DimStyle.Render(formatTimeAgo(c.CreatedAt)))
		}
	}

	return SidebarStyle.
		Width(sidebarWidth).
		Height(height).
		MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	case duration < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	case duration < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(duration.Hours()/24/7))
	default:
		return fmt.Sprintf("%dmo ago", int(duration.Hours()/24/30))
	}
}
