package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/nodeauth/cmd/app/commands"
	"github.com/allisson/nodeauth/internal/app"
)

func getTokenCommands() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Work with node tokens",
		Commands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Issue a token for a user on a node with the configured secrets",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "node",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Node name (e.g., https://db1.example.com)",
					},
					&cli.IntFlag{
						Name:     "uid",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "User id carried by the token",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					container := app.NewContainer(cfg)
					defer func() { _ = container.Shutdown(ctx) }()

					authenticator, err := container.Authenticator()
					if err != nil {
						return err
					}

					return commands.RunTokenIssue(
						ctx,
						authenticator,
						container.Logger(),
						cmd.Root().Writer,
						cmd.String("node"),
						int64(cmd.Int("uid")),
						cmd.String("format"),
					)
				},
			},
		},
	}
}
