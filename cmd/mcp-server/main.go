// Package main implements the MCP server binary: JSON-RPC dispatcher,
// plugin/tool registries, and the context-graph client, wired from
// CLI flags and NEO4J_*/HOMEASSISTANT_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartzhollow/mcpgraph/internal/config"
	"github.com/quartzhollow/mcpgraph/internal/contextgraph"
	"github.com/quartzhollow/mcpgraph/internal/logging"
	"github.com/quartzhollow/mcpgraph/internal/plugin"
	"github.com/quartzhollow/mcpgraph/internal/plugins/homeassistant"
	"github.com/quartzhollow/mcpgraph/internal/plugins/httpplugin"
	"github.com/quartzhollow/mcpgraph/internal/plugins/neo4jplugin"
	"github.com/quartzhollow/mcpgraph/internal/plugins/systeminfo"
	"github.com/quartzhollow/mcpgraph/internal/rpc"
	"github.com/quartzhollow/mcpgraph/internal/tool"
	"github.com/quartzhollow/mcpgraph/internal/transport"
)

const (
	serverVersion   = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

var (
	flagPort     uint16
	flagStdio    bool
	flagQuiet    bool
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "MCP server: JSON-RPC dispatcher over a plugin registry and context graph",
	RunE:  run,
}

func init() {
	rootCmd.Flags().Uint16Var(&flagPort, "port", 8080, "HTTP transport port")
	rootCmd.Flags().BoolVar(&flagStdio, "stdio", false, "run the stdio transport instead of HTTP (ignores --port)")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "suppress structured logging setup")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "debug", "log level filter")
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(flagLogLevel, flagQuiet)
	if err != nil {
		return fmt.Errorf("mcp-server: build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("mcp-server: load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graph, err := contextgraph.New(ctx, contextgraph.Config{
		URI:      cfg.Neo4j.URI,
		User:     cfg.Neo4j.User,
		Password: cfg.Neo4j.Password,
	}, logger)
	if err != nil {
		return fmt.Errorf("mcp-server: connect context graph: %w", err)
	}
	defer func() { _ = graph.Close(context.Background()) }()

	plugins := plugin.NewRegistry()
	if err := registerPlugins(ctx, plugins, graph, cfg); err != nil {
		return fmt.Errorf("mcp-server: register plugins: %w", err)
	}
	defer func() {
		if err := plugins.Shutdown(context.Background()); err != nil {
			logger.Error(context.Background(), "mcp-server: plugin shutdown errors", zap.Error(err))
		}
	}()

	tools := tool.NewRegistry()
	registerTools(tools, plugins)

	dispatcher := rpc.New(tools, plugins, logger, rpc.Config{ServerName: "mcpgraph", Version: serverVersion})

	if flagStdio {
		logger.Info(ctx, "mcp-server: starting stdio transport")
		adapter := transport.NewStdioAdapter(dispatcher, logger, os.Stdin, os.Stdout)
		return adapter.Run(ctx)
	}

	addr := fmt.Sprintf(":%d", flagPort)
	httpAdapter := transport.NewHTTPAdapter(dispatcher, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := httpAdapter.Start(addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpAdapter.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("mcp-server: http transport failed: %w", err)
	}
}

func registerPlugins(ctx context.Context, plugins *plugin.Registry, graph contextgraph.Graph, cfg *config.ServerConfig) error {
	if err := plugins.Register(ctx, systeminfo.New(graph)); err != nil {
		return err
	}
	if err := plugins.Register(ctx, homeassistant.New(homeassistant.Config{
		BaseURL: cfg.HomeAssistant.URL,
		Token:   cfg.HomeAssistant.Token,
	})); err != nil {
		return err
	}
	if err := plugins.Register(ctx, httpplugin.New()); err != nil {
		return err
	}
	if err := plugins.Register(ctx, neo4jplugin.New(graph)); err != nil {
		return err
	}
	return nil
}

func registerTools(tools *tool.Registry, plugins *plugin.Registry) {
	tools.Register(tool.NewSystemInfoTool(plugins))
	tools.Register(tool.NewHomeAssistantTool(plugins))
	tools.Register(tool.NewHTTPTool(plugins))
	tools.Register(tool.NewNeo4jTool(plugins))
}
