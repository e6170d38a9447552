package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"pdfchat/config"
	"pdfchat/model"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

const (
	ansiReset     = "\x1b[0m"
	ansiRed       = "\x1b[31m"
	ansiDarkGray  = "\x1b[90m"
	ansiGreenBold = "\x1b[32;1m"

	codeBlockBar   = "┃"
	streamCursor   = "▋"
	welcomeMessage = "Attach a PDF with Alt+A, then ask questions about it.\n\n" +
		"Answers come strictly from the documents attached to the conversation."
)

// renderCache keeps rendered markdown per message. Entries are keyed by
// message id and invalidated when the content or the width changes.
type renderCache struct {
	width   int
	entries map[string]renderEntry
}

type renderEntry struct {
	content  string
	rendered string
}

func newRenderCache() *renderCache {
	return &renderCache{entries: make(map[string]renderEntry)}
}

func (c *renderCache) markdown(msg model.Message, width int) string {
	if width != c.width {
		c.width = width
		c.entries = make(map[string]renderEntry)
	}
	if e, ok := c.entries[msg.ID]; ok && e.content == msg.Content {
		return e.rendered
	}
	rendered := renderMarkdown(msg.Content, width)
	c.entries[msg.ID] = renderEntry{content: msg.Content, rendered: rendered}
	return rendered
}

// prune drops entries for messages no longer in the log.
func (c *renderCache) prune(msgs []model.Message) {
	if len(c.entries) <= len(msgs) {
		return
	}
	keep := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		keep[m.ID] = struct{}{}
	}
	for id := range c.entries {
		if _, ok := keep[id]; !ok {
			delete(c.entries, id)
		}
	}
}

func renderMarkdown(content string, width int) string {
	start := time.Now()

	// Plain URLs render red and stay clickable in the terminal
	content = preprocessLinks(content)
	customExt := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(customExt)
	r := markdown.NewRenderer(max(width-4, 10), 0)
	rendered := gomarkdown.Render(p.Parse([]byte(content)), r)

	out := postProcessMarkdown(strings.TrimRight(string(rendered), "\n"), width)
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Render] markdown %d chars in %v", len(content), time.Since(start))
	}
	return out
}

// renderConversation lays out the visible log. streamingID names the
// assistant message currently receiving fragments, if any.
func renderConversation(msgs []model.Message, width int, streamingID, spinnerView string, cache *renderCache) string {
	var content strings.Builder

	for _, msg := range msgs {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		switch {
		case msg.IsAttachment():
			role := UserStyle.Render("You")
			chip := AttachmentStyle.Render("📄 " + msg.Filename)
			content.WriteString(formatUserMessage(timestamp, role, chip))

		case msg.Role == model.RoleUser:
			role := UserStyle.Render("You")
			content.WriteString(formatUserMessage(timestamp, role, wordWrap(msg.Content, width-4)))

		default:
			role := AssistantStyle.Render("Assistant")
			var body string
			switch {
			case msg.ID == streamingID && msg.Content == "":
				body = spinnerView + " " + DimStyle.Render("Thinking...")
			case msg.ID == streamingID:
				body = wordWrap(msg.Content, width-4) + streamCursor
			default:
				body = cache.markdown(msg, width)
			}
			fmt.Fprintf(&content, "%s %s\n%s\n\n", timestamp, role, body)
		}
	}

	return content.String()
}

func formatUserMessage(timestamp, role, content string) string {
	bar := ansiGreenBold + codeBlockBar + ansiReset

	var result strings.Builder
	fmt.Fprintf(&result, "%s %s %s\n", bar, timestamp, role)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(&result, "%s %s\n", bar, line)
	}
	result.WriteString("\n")
	return result.String()
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = fixMarkdownLinks(rendered)
	return frameCodeBlocks(rendered, width)
}

// preprocessLinks strips [text](url) down to the url.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode turns the renderer's blue-background inline code into red text.
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, ansiRed+"$1"+ansiReset)
}

func fixMarkdownLinks(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.Contains(line, codeBlockBar) {
			lines[i] = urlRegex.ReplaceAllString(line, ansiRed+"$1"+ansiReset)
		}
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the renderer's left bar on code lines with a
// horizontal rule above and below the block.
func frameCodeBlocks(s string, width int) string {
	ruleWidth := max(width-4, 10)
	label := "[code]"
	left := (ruleWidth - len(label)) / 2
	top := ansiDarkGray + strings.Repeat("━", left) + ansiReset + label +
		ansiDarkGray + strings.Repeat("━", ruleWidth-len(label)-left) + ansiReset
	bottom := ansiDarkGray + strings.Repeat("━", ruleWidth) + ansiReset

	var result []string
	inCodeBlock := false
	for _, line := range strings.Split(s, "\n") {
		isCode := strings.Contains(line, codeBlockBar)
		switch {
		case isCode && !inCodeBlock:
			inCodeBlock = true
			result = append(result, "", top, "")
		case !isCode && inCodeBlock:
			inCodeBlock = false
			result = append(result, "", bottom, "")
		}
		if isCode {
			line = stripCodeBlockPrefix(line)
		}
		result = append(result, line)
	}
	if inCodeBlock {
		result = append(result, "", bottom, "")
	}
	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBlockBar)
	if idx < 0 {
		return line
	}
	rest := line[idx+len(codeBlockBar):]
	return strings.TrimPrefix(rest, " ")
}
