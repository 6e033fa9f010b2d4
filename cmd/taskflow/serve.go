package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/loqalabs/taskflow/internal/config"
	"github.com/loqalabs/taskflow/internal/gateway"
	"github.com/loqalabs/taskflow/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server using the stdio transport.

Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "taskflow": {
        "command": "taskflow",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return opts.withApp(ctx, func(cfg *config.Config, app *server.App) error {
				go app.RunCleanup(ctx, cfg.Interview.CleanupInterval)
				return mcpserver.ServeStdio(app.MCP)
			})
		},
	}
}

func newServeHTTPCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-http",
		Short: "Serve the taskflow tools over HTTP",
		Long: `Serve the taskflow tools over HTTP.

Endpoints:
  POST /v1/invoke/{tool}   invoke a tool with a JSON object of arguments
  GET  /v1/tools           list tool names
  GET  /healthz            liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return opts.withApp(ctx, func(cfg *config.Config, app *server.App) error {
				if addr == "" {
					addr = cfg.HTTP.Addr
				}
				go app.RunCleanup(ctx, cfg.Interview.CleanupInterval)
				cmd.PrintErrf("taskflow gateway listening on %s\n", addr)
				return gateway.Serve(ctx, addr, gateway.NewRouter(app.Registry))
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from http.addr)")
	return cmd
}

// background returns cmd's context, or a fresh one when run outside Execute.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
