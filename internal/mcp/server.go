// Package mcp exposes the ODBC operations as MCP tools over stdio.
package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"odbc-mcp/internal/config"
	"odbc-mcp/internal/format"
	"odbc-mcp/internal/odbc"
)

// DbMCPServer holds the tool registry and the read-only state every tool
// invocation shares.
type DbMCPServer struct {
	server    *server.MCPServer
	registry  *Registry
	connector odbc.Connector
	formatter format.Formatter
	defaults  odbc.Descriptor
	apiKey    string
	logger    *slog.Logger
}

// NewMcpServer creates a new MCP server instance with every tool registered
func NewMcpServer(cfg *config.Config, connector odbc.Connector, logger *slog.Logger) (*DbMCPServer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dbMCPServer := &DbMCPServer{
		server: server.NewMCPServer(
			ServerName,
			ServerVersion,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		registry:  NewRegistry(logger),
		connector: connector,
		formatter: format.Formatter{KeepFalsyCells: cfg.KeepFalsyCells},
		defaults:  cfg.Datasource,
		apiKey:    cfg.APIKey,
		logger:    logger,
	}

	// Register tools
	if err := dbMCPServer.registerTools(); err != nil {
		return nil, err
	}
	dbMCPServer.registry.Attach(dbMCPServer.server)

	return dbMCPServer, nil
}

// Registry returns the tool registry
func (s *DbMCPServer) Registry() *Registry {
	return s.registry
}

// Start serves MCP over stdin/stdout until ctx is done or stdin closes
func (s *DbMCPServer) Start(ctx context.Context) error {
	stdio := server.NewStdioServer(s.server)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("serving MCP over stdio",
		"driver", s.connector.Driver(),
		"datasource", s.defaults,
		"tools", len(s.registry.Names()),
	)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// Close releases server resources. Connections are scoped to a single tool
// call, so nothing is held between calls.
func (s *DbMCPServer) Close() error {
	s.logger.Info("server stopped")
	return nil
}

func (s *DbMCPServer) registerTools() error {
	tools := []Tool{
		// Introspection
		s.toolGetSchemas(),
		s.toolVirtuosoGetSchemas(),
		s.toolGetTables(),
		s.toolFilterTableNames(),
		s.toolDescribeTable(),

		// Queries
		s.toolQueryDatabase(),
		s.toolQueryDatabaseMarkdown(),
		s.toolQueryDatabaseJSONL(),

		// Virtuoso stored functions
		s.toolSpasqlQuery(),
		s.toolSparqlQuery(),
		s.toolVirtuosoSupportAI(),
		s.toolChatPromptComplete(),

		// Data source
		s.toolTestConnection(),
		s.toolGetCurrentDataSource(),
		s.toolListDrivers(),
	}

	for _, t := range tools {
		if err := s.registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Shared arguments
// -----------------------------------------------------------------------------

// connArgs carries the per-call data source overrides every tool accepts
type connArgs struct {
	DSN      string `json:"dsn"`
	User     string `json:"user"`
	Password string `json:"password"`
}

func (a connArgs) descriptor() odbc.Descriptor {
	return odbc.Descriptor{DSN: a.DSN, User: a.User, Password: a.Password}
}

func connParams() []Param {
	return []Param{
		{Name: "dsn", Type: TypeString, Description: "Data source name (defaults to the configured ODBC_DSN)"},
		{Name: "user", Type: TypeString, Description: "Database user (defaults to the configured ODBC_USER)"},
		{Name: "password", Type: TypeString, Description: "Database password (defaults to the configured ODBC_PASSWORD)"},
	}
}

func formatParam(def format.Mode) Param {
	return Param{
		Name:        "format",
		Type:        TypeString,
		Description: "Output format: json, jsonl or md",
		Default:     string(def),
		Enum:        format.Modes,
	}
}

func params(ps ...[]Param) []Param {
	var out []Param
	for _, p := range ps {
		out = append(out, p...)
	}
	return out
}

// withConn resolves the descriptor for one call and runs fn on a scoped
// connection
func (s *DbMCPServer) withConn(ctx context.Context, args connArgs, fn func(conn odbc.Conn) error) error {
	desc := s.defaults.Merge(args.descriptor())
	s.logger.Debug("opening connection", "datasource", desc)
	return odbc.WithConn(ctx, s.connector, desc, fn)
}

// render formats rs in the mode named by the caller
func (s *DbMCPServer) render(rs odbc.ResultSet, mode string) (string, error) {
	m, err := format.ParseMode(mode)
	if err != nil {
		return "", err
	}
	return s.formatter.Format(rs, m)
}
