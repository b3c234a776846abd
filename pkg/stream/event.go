// Package stream decodes the agent's server-sent-event response and folds it
// into a single answer of text, generated SQL and citations.
package stream

// ObjectMessageDelta is the discriminator of events that carry content.
// Events with any other object value are ignored by the assembler.
const ObjectMessageDelta = "message.delta"

// Content item and tool result variants
const (
	ContentTypeText        = "text"
	ContentTypeToolResults = "tool_results"
	ToolResultTypeJSON     = "json"
)

// Event is one decoded data line of the stream
type Event struct {
	ID     string `json:"id,omitempty"`
	Object string `json:"object"`
	Delta  Delta  `json:"delta"`
}

// IsDelta reports whether the event carries content
func (e Event) IsDelta() bool {
	return e.Object == ObjectMessageDelta
}

// Delta holds the ordered content fragments of a delta event
type Delta struct {
	Content []ContentItem `json:"content"`
}

// ContentItem is a tagged union: Text is set for "text" items and
// ToolResults for "tool_results" items. Missing fields decode as zero values.
type ContentItem struct {
	Type        string      `json:"type"`
	Index       int         `json:"index,omitempty"`
	Text        string      `json:"text,omitempty"`
	ToolResults ToolResults `json:"tool_results,omitempty"`
}

// ToolResults wraps the results produced by one tool invocation
type ToolResults struct {
	ToolUseID string       `json:"tool_use_id,omitempty"`
	Status    string       `json:"status,omitempty"`
	Content   []ToolResult `json:"content"`
}

// ToolResult is tagged by Type; only "json" results contribute to the answer
type ToolResult struct {
	Type string     `json:"type"`
	JSON JSONResult `json:"json"`
}

// JSONResult is the payload of a json tool result. Every field is optional.
type JSONResult struct {
	Text          string         `json:"text"`
	SQL           string         `json:"sql"`
	SearchResults []SearchResult `json:"searchResults"`
}

// SearchResult is a search hit backing part of the answer
type SearchResult struct {
	SourceID string `json:"source_id"`
	DocID    string `json:"doc_id"`
	Text     string `json:"text"`
}

// Citation is a search result recorded in the assembled answer
type Citation = SearchResult
