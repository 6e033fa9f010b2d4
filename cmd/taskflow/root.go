package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/loqalabs/taskflow/internal/config"
	"github.com/loqalabs/taskflow/internal/logging"
	"github.com/loqalabs/taskflow/internal/server"
)

// rootOptions are the global flags.
type rootOptions struct {
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "taskflow",
		Short: "taskflow - interview-driven issue intake for AI assistants",
		Long: `taskflow is an MCP server that turns ideas and bug reports into well-formed issues.

It runs a structured interview with durable progress, scores free-text thoughts
against the open issues of every configured repository, and creates the issue
through the GitHub API once the interview is complete.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "C", "", "config file (default is $HOME/.config/taskflow/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newServeCmd(opts),
		newServeHTTPCmd(opts),
		newCleanupCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads configuration and initializes logging from it.
func (o *rootOptions) loadConfig() (*config.Config, io.Closer, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	closer, err := logging.Init(logging.Options{Level: level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}

// withApp loads configuration, builds the app and runs fn with it.
func (o *rootOptions) withApp(ctx context.Context, fn func(*config.Config, *server.App) error) error {
	cfg, logCloser, err := o.loadConfig()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	app, err := server.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(cfg, app)
}
