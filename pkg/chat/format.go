package chat

import (
	"fmt"
	"strings"

	"github.com/killallgit/cortex-chat/pkg/stream"
)

var citationMarkers = strings.NewReplacer("【†", "[", "†】", "]")

// NormalizeCitationMarkers rewrites the agent's citation brackets into
// plain square brackets. The result is what gets stored.
func NormalizeCitationMarkers(text string) string {
	return citationMarkers.Replace(text)
}

// DisplayText expands bullet markers into paragraph breaks. Only the
// rendered view uses it; stored turns keep the markers.
func DisplayText(text string) string {
	return strings.ReplaceAll(text, "•", "\n\n")
}

// CitationTitle is the heading a citation is listed under
func CitationTitle(c stream.Citation) string {
	return fmt.Sprintf("[%s] (%s)", c.SourceID, c.DocID)
}

// VisibleCitations drops citations without a document ID
func VisibleCitations(citations []stream.Citation) []stream.Citation {
	visible := make([]stream.Citation, 0, len(citations))
	for _, c := range citations {
		if c.DocID == "" {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}
