package main

import (
	"github.com/spf13/cobra"

	"github.com/loqalabs/taskflow/internal/config"
	"github.com/loqalabs/taskflow/internal/server"
)

func newCleanupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove completed interviews older than the retention horizon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := background(cmd)
			return opts.withApp(ctx, func(cfg *config.Config, app *server.App) error {
				if cfg.Interview.Retention <= 0 {
					cmd.Println("Retention is disabled (interview.retention = 0); nothing to do.")
					return nil
				}
				removed, err := app.Engine.Cleanup(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("Removed %d completed interview(s) older than %s.\n", len(removed), cfg.Interview.Retention)
				for _, id := range removed {
					cmd.Printf("  %s\n", id)
				}
				return nil
			})
		},
	}
}
