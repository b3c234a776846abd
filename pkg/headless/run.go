// Package headless drives the orchestrator from a line-oriented terminal
package headless

import (
	"context"
	"errors"
	"fmt"

	"github.com/killallgit/cortex-chat/pkg/chat"
)

// ErrTurnFailed is returned when the agent call of a single prompt fails
var ErrTurnFailed = errors.New("turn failed")

// Conversation handles turns and resets
type Conversation interface {
	HandleTurn(ctx context.Context, surface chat.Surface, input string) (*chat.TurnOutcome, error)
	Reset()
}

// Console is a surface that can also prompt and print status lines
type Console interface {
	chat.Surface
	Prompt()
	ShowInfo(msg string)
}

// RunHeadless executes a single prompt. A transport failure is returned as
// an error so callers can exit non-zero.
func RunHeadless(ctx context.Context, conv Conversation, surface chat.Surface, prompt string) error {
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty in headless mode")
	}

	outcome, err := conv.HandleTurn(ctx, surface, prompt)
	if err != nil {
		return fmt.Errorf("failed to execute prompt: %w", err)
	}
	if outcome.Failed() {
		return fmt.Errorf("%w: %w", ErrTurnFailed, outcome.TransportErr)
	}
	return nil
}
