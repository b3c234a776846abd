package headless

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/killallgit/cortex-chat/pkg/chat"
	"github.com/killallgit/cortex-chat/pkg/logger"
)

const (
	CommandNew  = "/new"
	CommandQuit = "/quit"
	CommandExit = "/exit"
	CommandHelp = "/help"
)

const helpText = "Type a question and press enter. /new starts a new conversation, /quit exits."

// runner reads one turn per line until input ends or the user quits
type runner struct {
	conv    Conversation
	console Console
	in      *bufio.Scanner
}

func newRunner(conv Conversation, console Console, in io.Reader) *runner {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &runner{conv: conv, console: console, in: scanner}
}

// RunInteractive runs the read-turn loop. Turn failures are shown and the
// loop continues; only input errors and cancellation end it early.
func RunInteractive(ctx context.Context, conv Conversation, console Console, in io.Reader) error {
	return newRunner(conv, console, in).run(ctx)
}

func (r *runner) run(ctx context.Context) error {
	log := logger.WithComponent("repl")
	r.console.ShowInfo(helpText)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.console.Prompt()
		if !r.in.Scan() {
			if err := r.in.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		}

		line := strings.TrimSpace(r.in.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case CommandQuit, CommandExit:
			return nil
		case CommandHelp:
			r.console.ShowInfo(helpText)
			continue
		case CommandNew:
			r.conv.Reset()
			r.console.ShowInfo("Started a new conversation.")
			continue
		}

		if _, err := r.conv.HandleTurn(ctx, r.console, line); err != nil {
			if errors.Is(err, chat.ErrEmptyInput) {
				continue
			}
			log.Warn("Turn not handled", "error", err)
			r.console.ShowError(err)
		}
	}
}
