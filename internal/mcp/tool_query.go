package mcp

import (
	"context"

	"odbc-mcp/internal/format"
	"odbc-mcp/internal/odbc"
)

type queryArgs struct {
	connArgs
	Query  string `json:"query"`
	Format string `json:"format"`
}

func queryParam() Param {
	return Param{Name: "query", Type: TypeString, Description: "SQL statement, executed verbatim", Required: true}
}

func (s *DbMCPServer) toolQueryDatabase() Tool {
	return Tool{
		Name:        "query_database",
		Title:       "Query database",
		Description: "Execute a SQL statement and return the rows (json by default)",
		Params:      params([]Param{queryParam()}, connParams(), []Param{formatParam(format.JSON)}),
		Handler:     Typed(s.handleQueryDatabase),
	}
}

func (s *DbMCPServer) toolQueryDatabaseMarkdown() Tool {
	return Tool{
		Name:        "query_database_md",
		Title:       "Query database (Markdown)",
		Description: "Execute a SQL statement and return the rows as a Markdown table",
		Params:      params([]Param{queryParam()}, connParams()),
		Handler:     s.fixedFormat(format.Markdown),
	}
}

func (s *DbMCPServer) toolQueryDatabaseJSONL() Tool {
	return Tool{
		Name:        "query_database_jsonl",
		Title:       "Query database (JSON Lines)",
		Description: "Execute a SQL statement and return one JSON object per row and line",
		Params:      params([]Param{queryParam()}, connParams()),
		Handler:     s.fixedFormat(format.JSONL),
	}
}

// fixedFormat runs query_database with the output format pinned
func (s *DbMCPServer) fixedFormat(mode format.Mode) Handler {
	return Typed(func(ctx context.Context, in queryArgs) (string, error) {
		in.Format = string(mode)
		return s.handleQueryDatabase(ctx, in)
	})
}

func (s *DbMCPServer) handleQueryDatabase(ctx context.Context, in queryArgs) (string, error) {
	var out odbc.ResultSet
	err := s.withConn(ctx, in.connArgs, func(conn odbc.Conn) error {
		var err error
		out, err = conn.Query(ctx, in.Query)
		return err
	})
	if err != nil {
		return "", err
	}
	return s.render(out, in.Format)
}
