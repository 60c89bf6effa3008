package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/nodeauth/cmd/app/commands"
	"github.com/allisson/nodeauth/internal/app"
	"github.com/allisson/nodeauth/internal/config"
	"github.com/allisson/nodeauth/internal/database"
)

// loadConfig loads and validates the process configuration.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations for the SQL nonce cache backends",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "clean-expired-nonces",
			Usage: "Delete expired rows of the SQL nonce cache backends",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:    "older-than",
					Aliases: []string{"o"},
					Value:   0,
					Usage:   "Only delete rows that expired at least this long ago",
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

				purger, ok, err := container.ExpiredNoncePurger()
				if err != nil {
					return err
				}

				var txManager database.TxManager
				if ok {
					if txManager, err = container.TxManager(); err != nil {
						return err
					}
				}

				return commands.RunCleanExpiredNonces(
					ctx,
					purger,
					txManager,
					container.Logger(),
					cmd.Root().Writer,
					cmd.Duration("older-than"),
					cmd.String("format"),
				)
			},
		},
	}
}
