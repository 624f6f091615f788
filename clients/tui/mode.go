package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode is the active input mode. Exactly one is active at a time and each
// owns its input buffer, so switching modes always starts from an empty one.
type Mode interface {
	// Title labels the input box.
	Title() string
	// Buffer returns the text typed so far.
	Buffer() string

	update(msg tea.Msg) (Mode, tea.Cmd)
	setWidth(w int) Mode
	view() string
}

// NormalMode composes chat messages.
type NormalMode struct {
	input textinput.Model
}

// ModelChangeMode reads the name of the next model.
type ModelChangeMode struct {
	input textinput.Model
}

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Width = width
	ti.Focus()
	return ti
}

// NewNormalMode returns Normal mode with an empty buffer.
func NewNormalMode(width int) NormalMode {
	return NormalMode{input: newInput("Send a message...", width)}
}

// NewModelChangeMode returns ModelChange mode with an empty buffer.
func NewModelChangeMode(width int) ModelChangeMode {
	return ModelChangeMode{input: newInput("Model name", width)}
}

func (m NormalMode) Title() string  { return "Your message (Enter to send)" }
func (m NormalMode) Buffer() string { return m.input.Value() }

func (m NormalMode) update(msg tea.Msg) (Mode, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m NormalMode) setWidth(w int) Mode {
	m.input.Width = w
	return m
}

func (m NormalMode) view() string { return m.input.View() }

func (m ModelChangeMode) Title() string  { return "Change model (Enter to confirm, Esc to cancel)" }
func (m ModelChangeMode) Buffer() string { return m.input.Value() }

func (m ModelChangeMode) update(msg tea.Msg) (Mode, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ModelChangeMode) setWidth(w int) Mode {
	m.input.Width = w
	return m
}

func (m ModelChangeMode) view() string { return m.input.View() }
