package ui

import (
	"github.com/charmbracelet/lipgloss"

	"pdfchat/model"
)

func renderDeleteConfirmation(conv model.Conversation, width, height int) string {
	modalWidth := 50
	if width < modalWidth+10 {
		modalWidth = width - 10
	}
	style := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Center)

	lines := []string{
		style.Render("Delete this conversation?"),
		"",
		style.Bold(true).Render(truncateName(displayName(conv), modalWidth-4)),
		"",
		style.Foreground(dimColor).Render("Its messages and documents are removed."),
	}
	return RenderThreeSectionModal("Delete Conversation", lines, FormatFooter("y", "Delete", "n", "Cancel"), ModalTypeWarning, modalWidth, width, height)
}
