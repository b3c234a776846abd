package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/killallgit/cortex-chat/pkg/chat"
	"github.com/killallgit/cortex-chat/pkg/stream"
	"github.com/killallgit/cortex-chat/pkg/warehouse"
)

const (
	busyText      = "Thinking..."
	sqlLabel      = "Generated SQL"
	defaultWidth  = 100
	clearLineANSI = "\r\x1b[2K"
)

// Options configure a Terminal
type Options struct {
	Width int
	Color bool
	// EchoInput repeats the user's query, for input that was not typed
	EchoInput bool
}

// Terminal writes conversation turns to a text stream
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	styles   *Styles
	markdown *MarkdownRenderer
	code     *Highlighter
	color    bool
	echo     bool
	busy     bool
}

var _ chat.Surface = (*Terminal)(nil)

func NewTerminal(out io.Writer, opts Options) (*Terminal, error) {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}

	markdown, err := NewMarkdownRenderer(opts.Width, opts.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return &Terminal{
		out:      out,
		styles:   DefaultStyles(),
		markdown: markdown,
		code:     NewHighlighter(opts.Color),
		color:    opts.Color,
		echo:     opts.EchoInput,
	}, nil
}

// Prompt writes the input prompt
func (t *Terminal) Prompt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, t.styles.UserPrompt.Render("> "))
}

func (t *Terminal) ShowUser(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.echo {
		return
	}
	fmt.Fprintln(t.out, t.styles.UserMessage.Render("You: "+text))
}

func (t *Terminal) ShowAssistant(display string, citations []stream.Citation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, t.styles.AssistantLabel.Render("Assistant:"))
	fmt.Fprint(t.out, t.markdown.Render(display))

	if len(citations) == 0 {
		return
	}
	fmt.Fprintln(t.out, t.styles.SectionLabel.Render("Citations"))
	for _, c := range citations {
		fmt.Fprintln(t.out, "  "+t.styles.CitationTitle.Render(chat.CitationTitle(c)))
		if c.Text != "" {
			fmt.Fprintln(t.out, indent(t.styles.CitationBody.Render(c.Text), "    "))
		}
	}
}

func (t *Terminal) ShowSQL(sql string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, t.styles.SectionLabel.Render(sqlLabel))
	fmt.Fprintln(t.out, indent(strings.TrimRight(t.code.Highlight(sql), "\n"), "  "))
}

func (t *Terminal) ShowTable(result *warehouse.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	WriteTable(t.out, result)
	fmt.Fprintln(t.out, t.styles.TableCaption.Render(fmt.Sprintf("%d row(s)", len(result.Rows))))
}

func (t *Terminal) ShowError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.styles.ErrorMessage.Render("Error: "+err.Error()))
}

// ShowInfo writes a status message
func (t *Terminal) ShowInfo(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.styles.InfoMessage.Render(msg))
}

// Busy shows or clears the busy indicator. With color the indicator is
// erased in place; plain output only announces the start.
func (t *Terminal) Busy(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if active == t.busy {
		return
	}
	t.busy = active

	switch {
	case active && t.color:
		fmt.Fprint(t.out, t.styles.BusyIndicator.Render(busyText))
	case active:
		fmt.Fprintln(t.out, busyText)
	case t.color:
		fmt.Fprint(t.out, clearLineANSI)
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
