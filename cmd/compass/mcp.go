package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/contentcompass/compass/pkg/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the session over MCP on stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout so assistants
can fetch trend data, spend credits and generate plans through the same
session rules the CLI enforces. Logs go to stderr; stdout carries only
the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.log.Info("mcp server listening on stdio", zap.String("version", version))
			srv := mcp.New(a.sess, a.gen, a.rec, version, a.log)
			return srv.Run(ctx, os.Stdin, os.Stdout)
		},
	}
}
