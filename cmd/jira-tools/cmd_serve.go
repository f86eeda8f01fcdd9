package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jiratools/internal/gateway"
	"jiratools/internal/mcp"
)

var serveAddr string

// mcpCmd runs the stdio MCP server
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve tools over MCP (stdio)",
	Long: `Runs a Model Context Protocol server on stdin/stdout.

Register it with an MCP client, for example:
  {"command": "jira-tools", "args": ["mcp"]}

Nothing but protocol messages is written to stdout.`,
	RunE: runMCP,
}

// serveCmd runs the HTTP gateway
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve tools over HTTP",
	Long: `Runs the HTTP tool gateway until SIGINT or SIGTERM.

Routes:
  GET  /health
  GET  /v1/tools
  POST /v1/tools/:name/call`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.http_addr)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := buildRegistry(cfg, false)
	if err != nil {
		return err
	}

	logger.Info("Starting MCP server", zap.Int("tools", registry.Count()))
	srv := mcp.NewServer(registry, cfg.Name, cfg.Version)
	if err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := buildRegistry(cfg, false)
	if err != nil {
		return err
	}

	addr := cfg.Server.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	router := gateway.NewRouter(gateway.RouterDeps{
		Registry:    registry,
		ServiceName: cfg.Name,
		Version:     cfg.Version,
	})

	logger.Info("Starting HTTP gateway", zap.String("addr", addr), zap.Int("tools", registry.Count()))
	opts := gateway.ServeOptions{
		Addr:            addr,
		ShutdownTimeout: cfg.GetShutdownTimeout(),
		MaxConns:        cfg.Server.MaxConnections,
	}
	if err := gateway.ListenAndServe(ctx, router, opts); err != nil {
		return err
	}
	logger.Info("HTTP gateway stopped")
	return nil
}
