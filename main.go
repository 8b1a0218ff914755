package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/alexbrainman/odbc"
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/godror/godror"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/peterbourgon/ff/v4"

	"odbc-mcp/internal/config"
	"odbc-mcp/internal/mcp"
	"odbc-mcp/internal/odbc"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, ff.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(2)
	}

	// stdout carries the protocol, logs go to stderr
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	connector, err := odbc.NewSQLConnector(cfg.Driver, cfg.PingTimeout)
	if err != nil {
		return err
	}

	// Define MCP Server
	mcpServer, err := mcp.NewMcpServer(cfg, connector, logger)
	if err != nil {
		return fmt.Errorf("setting up MCP server: %w", err)
	}
	defer mcpServer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in stdio
	if err := mcpServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serving stdio: %w", err)
	}
	return nil
}
