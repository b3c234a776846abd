package testutil

import (
	"encoding/json"
	"strings"

	"github.com/killallgit/cortex-chat/pkg/stream"
)

// TextDelta is a delta event line carrying one text item
func TextDelta(text string) string {
	return deltaLine(stream.ContentItem{Type: stream.ContentTypeText, Text: text})
}

// ToolResultDelta is a delta event line carrying one json tool result
func ToolResultDelta(text, sql string, citations ...stream.Citation) string {
	if citations == nil {
		citations = []stream.Citation{}
	}
	return deltaLine(stream.ContentItem{
		Type: stream.ContentTypeToolResults,
		ToolResults: stream.ToolResults{
			Content: []stream.ToolResult{{
				Type: stream.ToolResultTypeJSON,
				JSON: stream.JSONResult{Text: text, SQL: sql, SearchResults: citations},
			}},
		},
	})
}

// Done is the end-of-stream line
func Done() string {
	return "data: [DONE]\n"
}

// Stream joins event lines into a body terminated by the done sentinel
func Stream(lines ...string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	b.WriteString(Done())
	return b.String()
}

func deltaLine(items ...stream.ContentItem) string {
	event := stream.Event{
		Object: stream.ObjectMessageDelta,
		Delta:  stream.Delta{Content: items},
	}
	data, err := json.Marshal(event)
	if err != nil {
		panic(err)
	}
	return "data: " + string(data)
}
