package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/tinychat/clients/tui/atoms"
	"github.com/dohr-michael/tinychat/clients/tui/organisms"
	"github.com/dohr-michael/tinychat/internal/chat"
	"github.com/dohr-michael/tinychat/internal/conversation"
	"github.com/dohr-michael/tinychat/internal/events"
	"github.com/dohr-michael/tinychat/internal/sessions"
	"github.com/dohr-michael/tinychat/internal/storage"
)

// Session is what the loop needs from the session controller.
type Session interface {
	Conversation() *conversation.Conversation
	Origin() sessions.Origin
	StartUserMessage(text string) (chat.Turn, error)
	FetchReply(ctx context.Context, turn chat.Turn) (string, error)
	FinishUserMessage(turn chat.Turn, reply string, fetchErr error) error
	OnChangeModel(newModel string) error
	Diagnostics(limit int) []events.Event
}

var _ Session = (*sessions.Controller)(nil)

// Options configures the App.
type Options struct {
	// Context bounds backend calls; it should be cancelled when the program exits.
	Context context.Context
	Keys    *KeyMap
	// Usage, when set, feeds the token usage shown in the help panel.
	Usage UsageSource
}

// UsageSource reports token usage per model.
type UsageSource interface {
	Usage() []storage.ModelUsage
}

// App is the root bubbletea model.
// Layout: CONVERSATION or HELP | STATUS | INPUT.
type App struct {
	session Session
	ctx     context.Context
	keys    KeyMap
	usage   UsageSource

	mode        Mode
	helpVisible bool

	conversation organisms.ConversationPanel
	status       organisms.StatusPanel

	width  int
	height int
}

// New creates the App around session.
func New(session Session, opts Options) App {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	keys := DefaultKeyMap
	if opts.Keys != nil {
		keys = *opts.Keys
	}

	a := App{
		session: session,
		ctx:     ctx,
		keys:    keys,
		usage:   opts.Usage,
		mode:    NewNormalMode(0),
		conversation: organisms.NewConversationPanel(80, 20, organisms.ConversationStyles{
			User:      UserStyle,
			Assistant: AssistantStyle,
			Muted:     MutedStyle,
		}),
		status: organisms.NewStatusPanel(organisms.StatusStyles{
			Bar:     StatusBarStyle,
			Warning: WarningStyle,
			Error:   ErrorStyle,
		}, ColorAssistant),
	}
	a.status.SetModel(session.Conversation().CurrentModel)
	a.conversation.SetMessages(session.Conversation().Messages)

	switch session.Origin() {
	case sessions.OriginLoaded:
		a.status.SetNotice(organisms.NoticeInfo, "resumed saved conversation")
	case sessions.OriginRecovered:
		a.status.SetNotice(organisms.NoticeWarning, "saved conversation unreadable, started fresh (F1 for details)")
	}
	return a
}

// Mode returns the active input mode.
func (a App) Mode() Mode { return a.mode }

// HelpVisible reports whether the help panel replaces the conversation.
func (a App) HelpVisible() bool { return a.helpVisible }

// Pending reports whether a reply is awaited.
func (a App) Pending() bool { return a.status.Pending() }

// Notice returns the diagnostic shown on the status line.
func (a App) Notice() string { return a.status.Notice() }

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateSizes()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case replyMsg:
		return a.handleReply(msg)
	}

	var cmd tea.Cmd
	a.status, cmd = a.status.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Interrupt):
		return a, tea.Quit
	case key.Matches(msg, a.keys.PageUp):
		a.conversation.PageUp()
		return a, nil
	case key.Matches(msg, a.keys.PageDown):
		a.conversation.PageDown()
		return a, nil
	}

	switch mode := a.mode.(type) {
	case NormalMode:
		return a.handleNormalKey(mode, msg)
	case ModelChangeMode:
		return a.handleModelChangeKey(mode, msg)
	}
	return a, nil
}

func (a App) handleNormalKey(mode NormalMode, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Help):
		a.helpVisible = !a.helpVisible
		return a, nil

	case key.Matches(msg, a.keys.ModelChange):
		if a.status.Pending() {
			a.status.SetNotice(organisms.NoticeInfo, "wait for the reply before changing model")
			return a, nil
		}
		a.mode = NewModelChangeMode(a.inputWidth())
		return a, nil

	case key.Matches(msg, a.keys.Back):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Submit):
		if a.status.Pending() {
			a.status.SetNotice(organisms.NoticeInfo, "still waiting for the previous reply")
			return a, nil
		}
		text := strings.TrimSpace(mode.Buffer())
		if text == "" {
			a.mode = NewNormalMode(a.inputWidth())
			return a, nil
		}
		return a.submit(text)
	}

	var cmd tea.Cmd
	a.mode, cmd = mode.update(msg)
	return a, cmd
}

func (a App) handleModelChangeKey(mode ModelChangeMode, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.mode = NewNormalMode(a.inputWidth())
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		a.mode = NewNormalMode(a.inputWidth())
		name := strings.TrimSpace(mode.Buffer())
		if name == "" {
			return a, nil
		}
		if err := a.session.OnChangeModel(name); err != nil {
			a.status.SetNotice(organisms.NoticeError, err.Error())
		} else {
			a.status.SetNotice(organisms.NoticeInfo, "model set to "+name)
		}
		a.status.SetModel(a.session.Conversation().CurrentModel)
		return a, nil
	}

	var cmd tea.Cmd
	a.mode, cmd = mode.update(msg)
	return a, cmd
}

// submit commits the user turn and dispatches the backend call. The call
// result comes back as a replyMsg.
func (a App) submit(text string) (tea.Model, tea.Cmd) {
	turn, err := a.session.StartUserMessage(text)
	if err != nil {
		a.status.SetNotice(organisms.NoticeError, err.Error())
	} else {
		a.status.ClearNotice()
	}
	a.mode = NewNormalMode(a.inputWidth())
	a.conversation.SetMessages(a.session.Conversation().Messages)

	session, ctx := a.session, a.ctx
	fetch := func() tea.Msg {
		reply, err := session.FetchReply(ctx, turn)
		return replyMsg{turn: turn, reply: reply, err: err}
	}
	return a, tea.Batch(fetch, a.status.SetPending(true))
}

func (a App) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	a.status.SetPending(false)
	if err := a.session.FinishUserMessage(msg.turn, msg.reply, msg.err); err != nil {
		a.status.SetNotice(organisms.NoticeError, err.Error())
	}
	a.conversation.SetMessages(a.session.Conversation().Messages)
	return a, nil
}

func (a *App) inputWidth() int {
	// border (2) + padding (2) + prompt (2)
	if w := a.width - 6; w > 0 {
		return w
	}
	return 0
}

func (a *App) updateSizes() {
	// top panel border + title (3), status (1), input box border + title + line (4)
	inner := a.height - 8
	if inner < 1 {
		inner = 1
	}
	w := a.width - 4
	if w < 1 {
		w = 1
	}
	a.conversation.SetSize(w, inner)
	a.status.SetWidth(a.width)
	a.mode = a.mode.setWidth(a.inputWidth())
}

func (a App) tokenUsage() []storage.ModelUsage {
	if a.usage == nil {
		return nil
	}
	return a.usage.Usage()
}

// View renders the full TUI layout.
func (a App) View() string {
	var top string
	if a.helpVisible {
		top = a.panel("Help", helpView(a.keys, a.width-4, a.session.Diagnostics(diagnosticsShown), a.tokenUsage()), PanelBorderStyle)
	} else {
		top = a.panel("Conversation", a.conversation.View(), PanelBorderStyle)
	}

	input := a.panel(a.mode.Title(), a.mode.view(), PromptBorderStyle)

	return lipgloss.JoinVertical(lipgloss.Left, top, a.status.View(), input)
}

func (a App) panel(title, body string, style lipgloss.Style) string {
	if a.width > 2 {
		style = style.Width(a.width - 2)
	}
	return style.Render(fmt.Sprintf("%s\n%s", atoms.PanelTitle(title, TitleStyle), body))
}
