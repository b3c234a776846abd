package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"

	// tool results carrying search snippets can make a single line large
	maxLineSize = 4 * 1024 * 1024

	readBufferSize   = 64 * 1024
	overlongHeadSize = 128
)

// DecodeError reports a data line whose payload was not a valid event.
// It affects only that line; decoding continues with the next one.
type DecodeError struct {
	Line    int
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode event on line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrLineTooLong marks a data line longer than the decoder accepts
var ErrLineTooLong = errors.New("event line exceeds maximum size")

// Events returns a lazy, forward-only sequence of events read from r.
//
// Blank lines and lines without the "data: " prefix are skipped. A "[DONE]"
// payload ends the sequence. A malformed or oversized payload yields a
// *DecodeError for that line and iteration continues. A read failure yields
// the error and ends the sequence. The sequence can be ranged over once.
func Events(r io.Reader) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		reader := bufio.NewReaderSize(r, readBufferSize)

		lineNo := 0
		for {
			line, overlong, err := readLine(reader)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(Event{}, fmt.Errorf("stream reading error: %w", err))
				}
				return
			}
			lineNo++

			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			payload, ok := bytes.CutPrefix(line, []byte(dataPrefix))
			if !ok {
				continue
			}

			if overlong {
				decodeErr := &DecodeError{Line: lineNo, Payload: string(payload), Err: ErrLineTooLong}
				if !yield(Event{}, decodeErr) {
					return
				}
				continue
			}

			if string(payload) == doneSentinel {
				return
			}

			var event Event
			if err := json.Unmarshal(payload, &event); err != nil {
				decodeErr := &DecodeError{Line: lineNo, Payload: string(payload), Err: err}
				if !yield(Event{}, decodeErr) {
					return
				}
				continue
			}

			if !yield(event, nil) {
				return
			}
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// maxLineSize is drained to its end and returned as a short head with
// overlong set, so reading resumes at the following line.
func readLine(r *bufio.Reader) ([]byte, bool, error) {
	var line []byte
	overlong := false

	for {
		fragment, isPrefix, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (len(line) > 0 || overlong) {
				return line, overlong, nil
			}
			return nil, false, err
		}

		if !overlong {
			if len(line)+len(fragment) > maxLineSize {
				overlong = true
				line = line[:min(len(line), overlongHeadSize)]
			} else {
				line = append(line, fragment...)
			}
		}

		if !isPrefix {
			return line, overlong, nil
		}
	}
}
