package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func renderHelpModal(width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)
	blue := lipgloss.NewStyle().Foreground(accentColor)

	title := green.Render("pdfchat - Keyboard Shortcuts")

	global := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global"),
		"• Alt+N         New chat",
		"• Alt+A         Attach a PDF",
		"• Alt+L         Documents in this chat",
		"• Tab           Switch chat / conversations",
		"• Alt+H         Toggle this help",
		"• Alt+Q         Quit",
	)

	chatKeys := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat"),
		"• Enter         Send question",
		"• Alt+Enter     New line",
		"• Esc           Stop the answer",
		"• Alt+Y         Copy last answer",
		"• PgUp/PgDn     Scroll",
	)

	list := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Conversations"),
		"• j/k           Navigate",
		"• Enter         Open",
		"• d             Delete",
		"• /             Filter",
		"• r             Refresh",
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		global,
		"",
		chatKeys,
		"",
		list,
		"",
		HelpStyle.Render("Press Esc or Alt+H to close"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
