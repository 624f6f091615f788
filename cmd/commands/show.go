package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/tinychat/internal/conversation"
	"github.com/dohr-michael/tinychat/internal/events"
	"github.com/dohr-michael/tinychat/internal/sessions"
	"github.com/dohr-michael/tinychat/internal/storage"
)

// NewShowCommand returns the show subcommand.
func NewShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the saved conversation",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the persisted document",
			},
			&cli.IntFlag{
				Name:  "events",
				Usage: "Also print the last N journaled events",
			},
		},
		Action: runShow,
	}
}

func runShow(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	conv, err := store.Load(cfg.Storage.Key)
	if errors.Is(err, sessions.ErrNotFound) {
		fmt.Println("No saved conversation.")
		return nil
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := sessions.Encode(conv)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	printConversation(os.Stdout, conv)

	if n := cmd.Int("events"); n > 0 {
		journal, err := storage.ReadJournal(cfg.Log.Events, int(n))
		if err != nil {
			return err
		}
		fmt.Println("\nRecent events:")
		for _, e := range journal {
			fmt.Printf("%s  %-15s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Type, events.Summary(e))
		}
	}
	return nil
}

func printConversation(w io.Writer, conv *conversation.Conversation) {
	fmt.Fprintf(w, "Model: %s\n", conv.CurrentModel)
	fmt.Fprintf(w, "Messages: %d\n", conv.Len())
	for _, m := range conv.Messages {
		label := "AI"
		if m.Sender == conversation.SenderUser {
			label = "You"
		}
		fmt.Fprintf(w, "\n[%s]\n%s\n", label, m.Content)
	}
}
