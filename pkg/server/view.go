package server

import (
	"time"

	"github.com/killallgit/cortex-chat/pkg/chat"
	"github.com/killallgit/cortex-chat/pkg/stream"
	"github.com/killallgit/cortex-chat/pkg/warehouse"
)

type CitationView struct {
	Title    string `json:"title"`
	SourceID string `json:"source_id"`
	DocID    string `json:"doc_id"`
	Text     string `json:"text"`
}

// TurnView collects what a turn showed, in the order it was shown
type TurnView struct {
	ConversationID string         `json:"conversation_id"`
	Query          string         `json:"query"`
	Display        string         `json:"display,omitempty"`
	Citations      []CitationView `json:"citations"`
	SQL            string         `json:"sql,omitempty"`
	Columns        []string       `json:"columns,omitempty"`
	Rows           [][]string     `json:"rows,omitempty"`
	Errors         []string       `json:"errors"`
}

var _ chat.Surface = (*TurnView)(nil)

func newTurnView(conversationID string) *TurnView {
	return &TurnView{
		ConversationID: conversationID,
		Citations:      make([]CitationView, 0),
		Errors:         make([]string, 0),
	}
}

func (v *TurnView) ShowUser(text string) {
	v.Query = text
}

func (v *TurnView) ShowAssistant(display string, citations []stream.Citation) {
	v.Display = display
	for _, c := range citations {
		v.Citations = append(v.Citations, CitationView{
			Title:    chat.CitationTitle(c),
			SourceID: c.SourceID,
			DocID:    c.DocID,
			Text:     c.Text,
		})
	}
}

func (v *TurnView) ShowSQL(sql string) {
	v.SQL = sql
}

func (v *TurnView) ShowTable(result *warehouse.Result) {
	v.Columns = result.Columns
	v.Rows = result.Rows
}

func (v *TurnView) ShowError(err error) {
	v.Errors = append(v.Errors, err.Error())
}

func (v *TurnView) Busy(bool) {}

type TranscriptTurnView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Display   string    `json:"display"`
	Timestamp time.Time `json:"timestamp"`
}

type TranscriptView struct {
	ConversationID string               `json:"conversation_id"`
	Turns          []TranscriptTurnView `json:"turns"`
}

func newTranscriptView(t *chat.Transcript) TranscriptView {
	turns := t.Turns()
	view := TranscriptView{
		ConversationID: t.ID(),
		Turns:          make([]TranscriptTurnView, 0, len(turns)),
	}
	for _, turn := range turns {
		display := turn.Content
		if turn.IsAssistant() {
			display = chat.DisplayText(turn.Content)
		}
		view.Turns = append(view.Turns, TranscriptTurnView{
			ID:        turn.ID,
			Role:      turn.Role,
			Content:   turn.Content,
			Display:   display,
			Timestamp: turn.Timestamp,
		})
	}
	return view
}
