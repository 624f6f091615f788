// Package organisms provides the composite panels of the TUI.
package organisms

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/tinychat/internal/conversation"
)

// ConversationStyles configures how messages are rendered.
type ConversationStyles struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	Muted     lipgloss.Style
}

// ConversationPanel is the scrollable message log. Replies are shown as plain
// wrapped text.
type ConversationPanel struct {
	viewport viewport.Model
	styles   ConversationStyles
	messages []conversation.Message
	width    int
	height   int
}

// NewConversationPanel creates a panel of the given inner size.
func NewConversationPanel(width, height int, styles ConversationStyles) ConversationPanel {
	vp := viewport.New(width, height)
	vp.SetContent("")
	// Scrolling is driven explicitly via PageUp/PageDown so that typed keys
	// always reach the input box.
	vp.KeyMap = viewport.KeyMap{}
	vp.MouseWheelEnabled = false
	return ConversationPanel{
		viewport: vp,
		styles:   styles,
		width:    width,
		height:   height,
	}
}

// SetSize updates the viewport dimensions.
func (p *ConversationPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = width
	p.viewport.Height = height
	p.refresh()
}

// SetMessages replaces the rendered log and scrolls to the bottom.
func (p *ConversationPanel) SetMessages(msgs []conversation.Message) {
	p.messages = msgs
	p.refresh()
}

// PageUp scrolls up by one page.
func (p *ConversationPanel) PageUp() {
	p.viewport.PageUp()
}

// PageDown scrolls down by one page.
func (p *ConversationPanel) PageDown() {
	p.viewport.PageDown()
}

// Content returns the rendered log, unclipped.
func (p ConversationPanel) Content() string {
	return p.render()
}

func (p *ConversationPanel) refresh() {
	p.viewport.SetContent(p.render())
	p.viewport.GotoBottom()
}

func (p ConversationPanel) render() string {
	if len(p.messages) == 0 {
		return p.styles.Muted.Render("No messages yet.")
	}

	body := lipgloss.NewStyle()
	if p.width > 2 {
		body = body.Width(p.width - 2).PaddingLeft(2)
	}

	var sb strings.Builder
	for i, m := range p.messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := p.styles.Assistant.Render("AI")
		if m.Sender == conversation.SenderUser {
			label = p.styles.User.Render("You")
		}
		sb.WriteString(label)
		sb.WriteString("\n")
		sb.WriteString(body.Render(m.Content))
	}
	return sb.String()
}

// View renders the visible part of the log.
func (p ConversationPanel) View() string {
	return p.viewport.View()
}
