package organisms

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/tinychat/clients/tui/atoms"
)

// NoticeLevel ranks the message shown on the status line.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// StatusStyles configures the status line.
type StatusStyles struct {
	Bar     lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// StatusPanel is the one-line status bar: active model, pending indicator
// and the latest diagnostic.
type StatusPanel struct {
	model   string
	pending atoms.PendingIndicator
	notice  string
	level   NoticeLevel
	width   int
	styles  StatusStyles
}

// NewStatusPanel creates a status bar.
func NewStatusPanel(styles StatusStyles, spinnerColor lipgloss.TerminalColor) StatusPanel {
	return StatusPanel{
		styles:  styles,
		pending: atoms.NewPendingIndicator("waiting for reply", spinnerColor),
	}
}

// SetModel updates the model name.
func (p *StatusPanel) SetModel(model string) { p.model = model }

// SetWidth updates the rendering width.
func (p *StatusPanel) SetWidth(w int) { p.width = w }

// SetNotice replaces the diagnostic message.
func (p *StatusPanel) SetNotice(level NoticeLevel, text string) {
	p.level = level
	p.notice = text
}

// ClearNotice removes the diagnostic message.
func (p *StatusPanel) ClearNotice() { p.notice = "" }

// Notice returns the current diagnostic message.
func (p StatusPanel) Notice() string { return p.notice }

// Pending reports whether a reply is awaited.
func (p StatusPanel) Pending() bool { return p.pending.Active() }

// SetPending toggles the pending indicator. It returns the command that
// starts the spinner when it becomes pending.
func (p *StatusPanel) SetPending(pending bool) tea.Cmd {
	return p.pending.SetActive(pending)
}

// Update animates the pending indicator.
func (p StatusPanel) Update(msg tea.Msg) (StatusPanel, tea.Cmd) {
	var cmd tea.Cmd
	p.pending, cmd = p.pending.Update(msg)
	return p, cmd
}

// View renders the status bar.
func (p StatusPanel) View() string {
	parts := []string{"Model: " + p.model}
	if p.pending.Active() {
		parts = append(parts, p.pending.View())
	}
	if p.notice != "" {
		switch p.level {
		case NoticeError:
			parts = append(parts, p.styles.Error.Render(p.notice))
		case NoticeWarning:
			parts = append(parts, p.styles.Warning.Render(p.notice))
		default:
			parts = append(parts, p.notice)
		}
	}

	bar := strings.Join(parts, " | ")
	if p.width > 0 {
		return p.styles.Bar.Width(p.width).MaxHeight(1).Render(bar)
	}
	return p.styles.Bar.Render(bar)
}
