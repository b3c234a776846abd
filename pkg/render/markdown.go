package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/killallgit/cortex-chat/pkg/logger"
)

// MarkdownRenderer renders assistant answers with glamour
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer wrapping at width. Color output uses
// the dark style; otherwise the plain notty style.
func NewMarkdownRenderer(width int, color bool) (*MarkdownRenderer, error) {
	style := "notty"
	if color {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{renderer: renderer}, nil
}

// Render returns the rendered markdown, or the input unchanged if glamour
// fails
func (m *MarkdownRenderer) Render(content string) string {
	rendered, err := m.renderer.Render(content)
	if err != nil {
		logger.WithComponent("markdown").Debug("Failed to render markdown, using plain text", "error", err)
		return content
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}
