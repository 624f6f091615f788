package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"

	"github.com/dohr-michael/tinychat/internal/events"
	"github.com/dohr-michael/tinychat/internal/storage"
)

const diagnosticsShown = 5

// helpView renders the body of the help panel: key bindings, the most recent
// diagnostics and, when known, token usage.
func helpView(keys KeyMap, width int, diags []events.Event, usage []storage.ModelUsage) string {
	h := help.New()
	h.Width = width

	var sb strings.Builder
	sb.WriteString(h.FullHelpView(keys.FullHelp()))
	sb.WriteString("\n\n")
	sb.WriteString(TitleStyle.Render("Recent diagnostics"))
	sb.WriteString("\n")

	if len(diags) == 0 {
		sb.WriteString(MutedStyle.Render("none"))
		sb.WriteString("\n")
	}
	for i := len(diags) - 1; i >= 0; i-- {
		e := diags[i]
		line := e.Timestamp.Format("15:04:05") + "  " + events.Summary(e)
		switch e.Type.Level() {
		case slog.LevelError:
			line = ErrorStyle.Render(line)
		case slog.LevelWarn:
			line = WarningStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(usage) > 0 {
		sb.WriteString("\n")
		sb.WriteString(TitleStyle.Render("Token usage"))
		sb.WriteString("\n")
		for _, u := range usage {
			fmt.Fprintf(&sb, "%s  %d calls, %d in / %d out\n", u.Model, u.Calls, u.Input, u.Output)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
