package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/nodeauth/cmd/app/commands"
	"github.com/allisson/nodeauth/internal/app"
	"github.com/allisson/nodeauth/internal/config"
	secretsService "github.com/allisson/nodeauth/internal/secrets/service"
)

func getSecretsCommands() *cli.Command {
	return &cli.Command{
		Name:  "secrets",
		Usage: "Manage node signing secrets",
		Commands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "Generate a new random secret",
				ArgsUsage: "[size]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kms-key-uri",
						Value: "",
						Usage: "Also wrap the secret with this KMS key for MASTER_SECRETS (e.g., base64key://...)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() > 1 {
						return fmt.Errorf("usage: secrets new [size]")
					}
					size, err := commands.ParseSecretSize(cmd.Args().First())
					if err != nil {
						return err
					}

					container := app.NewContainer(config.Load())
					defer func() { _ = container.Shutdown(ctx) }()

					return commands.RunSecretsNew(
						ctx,
						container.KMSService(),
						container.Logger(),
						cmd.Root().Writer,
						size,
						cmd.String("kms-key-uri"),
					)
				},
			},
			{
				Name:      "derive",
				Usage:     "Print the secret the derived backend computes for a node",
				ArgsUsage: "<master_secret> <node_name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("usage: secrets derive <master_secret> <node_name>")
					}
					return commands.RunSecretsDerive(
						cmd.Root().Writer,
						cmd.Args().Get(0),
						cmd.Args().Get(1),
					)
				},
			},
			{
				Name:  "add",
				Usage: "Add a new current secret for a node to a secrets file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Required: true,
						Usage:    "Secrets file to update, created when missing",
					},
					&cli.StringFlag{
						Name:     "node",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Node name (e.g., https://db1.example.com)",
					},
					&cli.IntFlag{
						Name:  "size",
						Value: secretsService.DefaultNodeSecretSize,
						Usage: "Length of the secret in hex characters",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					defer func() { _ = container.Shutdown(ctx) }()

					return commands.RunSecretsAdd(
						container.Logger(),
						cmd.Root().Writer,
						cmd.String("file"),
						cmd.String("node"),
						int(cmd.Int("size")),
					)
				},
			},
			{
				Name:  "list",
				Usage: "List the nodes of one or more secrets files",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "file",
						Required: true,
						Usage:    "Secrets file to read, may be repeated",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunSecretsList(
						cmd.Root().Writer,
						cmd.StringSlice("file"),
						cmd.String("format"),
					)
				},
			},
		},
	}
}
