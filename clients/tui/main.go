package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive loop on the terminal and blocks until the user
// quits. Pending backend calls are abandoned through ctx.
func Run(ctx context.Context, session Session, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts.Context = ctx
	app := New(session, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
