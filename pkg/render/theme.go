// Package render draws conversation turns on a terminal
package render

import "github.com/charmbracelet/lipgloss"

// Warm earth-tone palette
var (
	ColorBase03 = lipgloss.Color("#5c5044")
	ColorBase05 = lipgloss.Color("#ab937b")
	ColorBase07 = lipgloss.Color("#f5d7b9")

	ColorRed    = lipgloss.Color("#d95f5f")
	ColorOrange = lipgloss.Color("#eb8755")
	ColorYellow = lipgloss.Color("#f5b761")
	ColorGreen  = lipgloss.Color("#93b56b")
	ColorCyan   = lipgloss.Color("#61afaf")
	ColorBlue   = lipgloss.Color("#6b93b5")

	ColorError = ColorRed
	ColorMuted = ColorBase03
	ColorFocus = ColorOrange
)

// Styles are the lipgloss styles for each kind of output
type Styles struct {
	UserPrompt     lipgloss.Style
	UserMessage    lipgloss.Style
	AssistantLabel lipgloss.Style
	CitationTitle  lipgloss.Style
	CitationBody   lipgloss.Style
	SectionLabel   lipgloss.Style
	ErrorMessage   lipgloss.Style
	InfoMessage    lipgloss.Style
	BusyIndicator  lipgloss.Style
	TableCaption   lipgloss.Style
}

// DefaultStyles returns the default styles
func DefaultStyles() *Styles {
	return &Styles{
		UserPrompt: lipgloss.NewStyle().
			Foreground(ColorFocus).
			Bold(true),

		UserMessage: lipgloss.NewStyle().
			Foreground(ColorGreen),

		AssistantLabel: lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true),

		CitationTitle: lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true),

		CitationBody: lipgloss.NewStyle().
			Foreground(ColorBase05),

		SectionLabel: lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true),

		ErrorMessage: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		InfoMessage: lipgloss.NewStyle().
			Foreground(ColorBase07),

		BusyIndicator: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),

		TableCaption: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}
