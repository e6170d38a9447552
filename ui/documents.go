package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"pdfchat/model"
)

type documentsState struct {
	visible        bool
	loading        bool
	conversationID string
	items          []model.Document
	selected       int
	confirmDelete  bool
	err            string
}

func (d *documentsState) open(conversationID string) {
	*d = documentsState{visible: true, loading: true, conversationID: conversationID}
}

func (d *documentsState) close() {
	*d = documentsState{}
}

func (d documentsState) current() (model.Document, bool) {
	if d.selected < 0 || d.selected >= len(d.items) {
		return model.Document{}, false
	}
	return d.items[d.selected], true
}

func renderDocumentsModal(d documentsState, spinnerView string, width, height int) string {
	modalWidth := 64
	if width < modalWidth+10 {
		modalWidth = width - 10
	}
	lineStyle := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Left)

	var lines []string
	switch {
	case d.loading:
		lines = append(lines, lineStyle.Render("  "+spinnerView+" Loading documents..."))
	case d.err != "":
		lines = append(lines, lineStyle.Foreground(dangerColor).Render(wordWrap("  "+d.err, modalWidth-4)))
	case len(d.items) == 0:
		lines = append(lines, lineStyle.Render(DimStyle.Render("  No documents attached to this conversation.")))
	default:
		for i, doc := range d.items {
			cursor := "  "
			name := truncateName(doc.Filename, modalWidth-24)
			if i == d.selected {
				cursor = "▸ "
				name = SelectedStyle.Render(name)
			}
			meta := fmt.Sprintf("%s, %d chunks", humanize.IBytes(uint64(max(doc.SizeBytes, 0))), doc.ChunksIndexed)
			lines = append(lines, lineStyle.Render(cursor+name+"  "+DimStyle.Render(meta)))
		}
	}

	footer := FormatFooter("j/k", "Navigate", "d", "Delete", "Esc", "Close")
	title := "Documents"
	modalType := ModalTypeInfo
	if d.confirmDelete {
		if doc, ok := d.current(); ok {
			lines = append(lines, "", lineStyle.Bold(true).Render(wordWrap(fmt.Sprintf("  Delete %s? Its indexed content is removed from this conversation.", doc.Filename), modalWidth-4)))
		}
		footer = FormatFooter("y", "Delete", "n", "Cancel")
		modalType = ModalTypeWarning
	}

	return RenderThreeSectionModal(title, strings.Split(strings.Join(lines, "\n"), "\n"), footer, modalType, modalWidth, width, height)
}
