package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the transcript
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserTurn stores the query with surrounding whitespace trimmed, the same
// text that is sent to the agent.
func NewUserTurn(content string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   strings.TrimSpace(content),
		Timestamp: time.Now(),
	}
}

func NewAssistantTurn(content string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

func (t Turn) IsAssistant() bool {
	return t.Role == RoleAssistant
}

func (t Turn) IsEmpty() bool {
	return strings.TrimSpace(t.Content) == ""
}
