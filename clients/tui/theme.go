// Package tui is the interactive terminal front end of tinychat.
package tui

import "github.com/charmbracelet/lipgloss"

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Palette, by role. Each color adapts to light and dark terminals.
var (
	ColorUser      = adaptive("#1D4ED8", "#93C5FD")
	ColorAssistant = adaptive("#7C3AED", "#C4B5FD")
	ColorWarning   = adaptive("#B45309", "#FCD34D")
	ColorError     = adaptive("#B91C1C", "#FCA5A5")
	ColorMuted     = adaptive("#6B7280", "#9CA3AF")
	ColorBar       = adaptive("#E5E7EB", "#111827")
	ColorBarText   = adaptive("#1F2937", "#E5E7EB")
	ColorFrame     = adaptive("#D1D5DB", "#4B5563")
)

// Text styles.
var (
	UserStyle      = lipgloss.NewStyle().Foreground(ColorUser).Bold(true)
	AssistantStyle = lipgloss.NewStyle().Foreground(ColorAssistant).Bold(true)
	TitleStyle     = AssistantStyle
	WarningStyle   = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle     = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	MutedStyle     = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
)

// Layout styles.
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBar).
			Foreground(ColorBarText).
			Padding(0, 1)

	// PanelBorderStyle frames the conversation and help panels.
	PanelBorderStyle = framed(ColorFrame)
	// PromptBorderStyle frames the input box.
	PromptBorderStyle = framed(ColorAssistant)
)

func framed(border lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}
