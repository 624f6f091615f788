// Package atoms provides low-level TUI building blocks.
package atoms

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PendingIndicator is a spinner with a caption that only animates while
// active.
type PendingIndicator struct {
	spin    spinner.Model
	caption string
	active  bool
}

// NewPendingIndicator creates an inactive indicator.
func NewPendingIndicator(caption string, color lipgloss.TerminalColor) PendingIndicator {
	return PendingIndicator{
		spin: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(color)),
		),
		caption: caption,
	}
}

// Active reports whether the indicator is shown.
func (p PendingIndicator) Active() bool { return p.active }

// SetActive shows or hides the indicator. Activation returns the first tick.
func (p *PendingIndicator) SetActive(active bool) tea.Cmd {
	wasActive := p.active
	p.active = active
	if active && !wasActive {
		return p.spin.Tick
	}
	return nil
}

// Update advances the animation. Ticks received while inactive are
// swallowed, which ends the tick chain.
func (p PendingIndicator) Update(msg tea.Msg) (PendingIndicator, tea.Cmd) {
	if !p.active {
		return p, nil
	}
	var cmd tea.Cmd
	p.spin, cmd = p.spin.Update(msg)
	return p, cmd
}

// View renders nothing when inactive.
func (p PendingIndicator) View() string {
	if !p.active {
		return ""
	}
	return p.spin.View() + " " + p.caption
}
