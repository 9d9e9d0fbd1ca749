// Package main implements the HTTP bridge binary: a plain REST
// adapter over the MCP server's JSON-RPC surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quartzhollow/mcpgraph/internal/bridge"
	"github.com/quartzhollow/mcpgraph/internal/logging"
)

const (
	bridgeVersion   = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

var (
	flagPort         uint16
	flagLogLevel     string
	flagMCPServerURL string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mcp-bridge",
	Short: "HTTP bridge translating REST calls into MCP JSON-RPC requests",
	RunE:  run,
}

func init() {
	rootCmd.Flags().Uint16Var(&flagPort, "port", 3001, "bridge HTTP port")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level filter")
	rootCmd.Flags().StringVar(&flagMCPServerURL, "mcp-server-path", "http://mcp-server:3002", "MCP server base URL")
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(flagLogLevel, false)
	if err != nil {
		return fmt.Errorf("mcp-bridge: build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := bridge.NewClient(flagMCPServerURL, logger)

	// Startup probe: an unreachable MCP server aborts startup with a
	// non-zero exit rather than serving requests that can only fail.
	if _, err := client.ListTools(ctx); err != nil {
		return fmt.Errorf("mcp-bridge: startup probe against %s failed: %w", flagMCPServerURL, err)
	}

	server := bridge.NewServer(client, logger, bridge.Config{Version: bridgeVersion})

	addr := fmt.Sprintf(":%d", flagPort)
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("mcp-bridge: http server failed: %w", err)
	}
}
