package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Transcript is the append-only turn history of one conversation
type Transcript struct {
	mu    sync.RWMutex
	id    string
	turns []Turn
}

func NewTranscript() *Transcript {
	return &Transcript{
		id:    uuid.NewString(),
		turns: make([]Turn, 0),
	}
}

// ID identifies the current conversation. It changes on Reset.
func (t *Transcript) ID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.id
}

func (t *Transcript) Append(turn Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of the history in order
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]Turn, len(t.turns))
	copy(result, t.turns)
	return result
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Reset empties the history and starts a new conversation ID
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.id = uuid.NewString()
	t.turns = make([]Turn, 0)
}
