package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/tinychat/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "tinychat",
		Usage: "Chat with a local or hosted language model from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (.jsonc or .yaml)",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Default model for a fresh conversation",
			},
			&cli.StringFlag{
				Name:  "driver",
				Usage: "Backend driver (ollama, openai, mistral, anthropic, gemini)",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Backend base URL",
			},
			&cli.StringFlag{
				Name:    "session",
				Aliases: []string{"s"},
				Usage:   "Storage key of the conversation (file path, or row key with sqlite storage)",
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "Storage driver (file, sqlite)",
			},
		},
		Commands: []*cli.Command{
			NewChatCommand(),
			NewAskCommand(),
			NewShowCommand(),
		},
		DefaultCommand: "chat",
	}
}
