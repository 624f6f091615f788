package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/tinychat/internal/sessions"
)

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message in the saved conversation and print the reply",
		ArgsUsage: "<message> (or piped on stdin)",
		Action:    runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	message, err := askMessage(cmd.Args().Slice(), os.Stdin)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the reply: keep stderr quiet unless debugging.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if cmd.Bool("debug") {
		log = newLogger(os.Stderr, cfg, true)
	}

	rt, err := newRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	err = rt.controller.OnUserMessage(ctx, message)
	var writeErr *sessions.WriteError
	switch {
	case err == nil:
	case errors.As(err, &writeErr):
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	default:
		return fmt.Errorf("ask: %w", err)
	}

	if last, ok := rt.controller.Conversation().Last(); ok {
		fmt.Println(last.Content)
	}
	return nil
}

// askMessage takes the message from the arguments, or from stdin when it is
// not a terminal.
func askMessage(args []string, stdin *os.File) (string, error) {
	message := strings.Join(args, " ")
	if strings.TrimSpace(message) == "" && !term.IsTerminal(int(stdin.Fd())) {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		message = strings.TrimRight(string(data), "\n")
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("usage: tinychat ask <message>")
	}
	return message, nil
}
