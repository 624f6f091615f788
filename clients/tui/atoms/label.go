package atoms

import "github.com/charmbracelet/lipgloss"

// PanelTitle renders the title line of a bordered panel.
func PanelTitle(title string, style lipgloss.Style) string {
	return style.Render(title)
}
