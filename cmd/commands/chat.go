package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/tinychat/clients/tui"
)

// NewChatCommand returns the chat subcommand, the interactive TUI.
func NewChatCommand() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Open the interactive chat (default)",
		Action: runChat,
	}
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "tinychat: not a terminal; use `tinychat ask <message>` for one-shot use")
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal: logs go to a file.
	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := newLogger(logFile, cfg, cmd.Bool("debug"))

	rt, err := newRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	log.Info("chat started", "driver", cfg.Backend.Driver, "key", rt.controller.Key(), "origin", rt.controller.Origin().String())
	return tui.Run(ctx, rt.controller, tui.Options{Usage: rt.usage})
}
