package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/killallgit/cortex-chat/pkg/logger"
)

// Highlighter colors SQL for the terminal
type Highlighter struct {
	formatter chroma.Formatter
	style     *chroma.Style
	lexer     chroma.Lexer
}

// NewHighlighter creates a highlighter. Without color the tokens are written
// back unchanged.
func NewHighlighter(color bool) *Highlighter {
	name := "noop"
	if color {
		name = "terminal16m"
	}

	formatter := formatters.Get(name)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	lexer := lexers.Get("sql")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	return &Highlighter{
		formatter: formatter,
		style:     styles.Get("monokai"),
		lexer:     chroma.Coalesce(lexer),
	}
}

// Highlight returns the highlighted SQL, or the input on failure
func (h *Highlighter) Highlight(sql string) string {
	log := logger.WithComponent("highlight")

	iterator, err := h.lexer.Tokenise(nil, sql)
	if err != nil {
		log.Debug("Failed to tokenize SQL, using plain text", "error", err)
		return sql
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		log.Debug("Failed to format SQL, using plain text", "error", err)
		return sql
	}
	return buf.String()
}
