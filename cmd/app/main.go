// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fulfillment/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Webhook fulfillment service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the webhook intake server and the notification retry worker",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "clean-processed-events",
				Usage: "Delete processed event records older than specified days",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "days",
						Aliases:  []string{"d"},
						Required: true,
						Usage:    "Delete processed event records older than this many days",
					},
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Value:   false,
						Usage:   "Show how many records would be deleted without deleting",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCleanProcessedEvents(
						ctx,
						int(cmd.Int("days")),
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "send-test-notification",
				Usage: "Send a test email through the configured provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "to",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Recipient email address",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunSendTestNotification(ctx, cmd.String("to"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
