package stream

import (
	"errors"
	"iter"
	"strings"

	"github.com/killallgit/cortex-chat/pkg/logger"
)

// Answer is the fold of a whole event stream
type Answer struct {
	Text      string
	SQL       string
	Citations []Citation
}

// IsEmpty reports whether the agent contributed nothing
func (a Answer) IsEmpty() bool {
	return a.Text == "" && a.SQL == "" && len(a.Citations) == 0
}

// Assembler accumulates delta events into an Answer.
// The zero value is ready to use.
type Assembler struct {
	text      strings.Builder
	sql       string
	citations []Citation
	skipped   int
}

// Add folds one event. Events that are not message deltas are ignored.
func (a *Assembler) Add(event Event) {
	if !event.IsDelta() {
		return
	}

	for _, item := range event.Delta.Content {
		switch item.Type {
		case ContentTypeText:
			a.text.WriteString(item.Text)
		case ContentTypeToolResults:
			for _, result := range item.ToolResults.Content {
				if result.Type != ToolResultTypeJSON {
					continue
				}
				a.text.WriteString(result.JSON.Text)
				a.citations = append(a.citations, result.JSON.SearchResults...)
				if result.JSON.SQL != "" {
					a.sql = result.JSON.SQL
				}
			}
		}
	}
}

// Skip records an event that could not be decoded
func (a *Assembler) Skip(err error) {
	a.skipped++
	log := logger.WithComponent("assembler")

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		log.Warn("Skipping malformed event", "line", decodeErr.Line, "error", decodeErr.Err)
		return
	}
	log.Warn("Skipping unreadable stream remainder", "error", err)
}

// Skipped returns how many events were dropped
func (a *Assembler) Skipped() int {
	return a.skipped
}

// Answer returns the accumulated result. Citations is never nil.
func (a *Assembler) Answer() Answer {
	citations := make([]Citation, len(a.citations))
	copy(citations, a.citations)
	return Answer{
		Text:      a.text.String(),
		SQL:       a.sql,
		Citations: citations,
	}
}

// Assemble folds an event sequence into an Answer. Failed items are skipped,
// so the result holds whatever the well-formed events contributed. A nil
// sequence yields the zero answer.
func Assemble(events iter.Seq2[Event, error]) Answer {
	var a Assembler
	if events == nil {
		return a.Answer()
	}

	for event, err := range events {
		if err != nil {
			a.Skip(err)
			continue
		}
		a.Add(event)
	}
	return a.Answer()
}
