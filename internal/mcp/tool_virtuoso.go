package mcp

import (
	"context"
	"strings"

	"github.com/spf13/cast"

	"odbc-mcp/internal/odbc"
)

// scalar runs a stored function call and returns its single value as text.
// An empty result yields "".
func (s *DbMCPServer) scalar(ctx context.Context, conn connArgs, query string, args ...any) (string, error) {
	var out string
	err := s.withConn(ctx, conn, func(c odbc.Conn) error {
		rows, err := c.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		if v, ok := rows.FirstValue(); ok {
			out = cast.ToString(v)
		}
		return nil
	})
	return out, err
}

// nullIfEmpty binds "" as SQL NULL
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type spasqlArgs struct {
	connArgs
	Query   string `json:"query"`
	MaxRows int    `json:"max_rows"`
	Timeout int    `json:"timeout"`
	Format  string `json:"format"`
}

func (s *DbMCPServer) toolSpasqlQuery() Tool {
	return Tool{
		Name:        "spasql_query",
		Title:       "SPASQL query",
		Description: "Execute a SPASQL (SQL/SPARQL hybrid) query through the Virtuoso stored procedure",
		Params: params(
			[]Param{
				{Name: "query", Type: TypeString, Description: "SPASQL query text", Required: true},
				{Name: "max_rows", Type: TypeInteger, Description: "Maximum number of rows to return", Default: DefaultMaxRows},
				{Name: "timeout", Type: TypeInteger, Description: "Query timeout in milliseconds, enforced by the server", Default: DefaultTimeoutMs},
				{Name: "format", Type: TypeString, Description: "Result format understood by the stored procedure", Default: "json"},
			},
			connParams(),
		),
		Handler: Typed(s.handleSpasqlQuery),
	}
}

func (s *DbMCPServer) handleSpasqlQuery(ctx context.Context, in spasqlArgs) (string, error) {
	return s.scalar(ctx, in.connArgs, spasqlQuerySQL, in.Query, in.MaxRows, in.Format, in.Timeout)
}

type sparqlArgs struct {
	connArgs
	Query   string `json:"query"`
	Format  string `json:"format"`
	Timeout int    `json:"timeout"`
}

func (s *DbMCPServer) toolSparqlQuery() Tool {
	return Tool{
		Name:        "sparql_query",
		Title:       "SPARQL query",
		Description: "Execute a SPARQL query through the Virtuoso stored procedure",
		Params: params(
			[]Param{
				{Name: "query", Type: TypeString, Description: "SPARQL query text", Required: true},
				{Name: "format", Type: TypeString, Description: "Result format understood by the stored procedure", Default: "json"},
				{Name: "timeout", Type: TypeInteger, Description: "Query timeout in milliseconds, enforced by the server", Default: DefaultTimeoutMs},
			},
			connParams(),
		),
		Handler: Typed(s.handleSparqlQuery),
	}
}

func (s *DbMCPServer) handleSparqlQuery(ctx context.Context, in sparqlArgs) (string, error) {
	return s.scalar(ctx, in.connArgs, sparqlQuerySQL, in.Query, in.Format, in.Timeout)
}

type supportAIArgs struct {
	connArgs
	Prompt string `json:"prompt"`
	APIKey string `json:"api_key"`
}

func (s *DbMCPServer) toolVirtuosoSupportAI() Tool {
	return Tool{
		Name:        "virtuoso_support_ai",
		Title:       "Virtuoso support assistant",
		Description: "Send a prompt to the Virtuoso support assistant stored function",
		Params: params(
			[]Param{
				{Name: "prompt", Type: TypeString, Description: "Prompt text", Required: true},
				{Name: "api_key", Type: TypeString, Description: "API key (defaults to the configured API_KEY)"},
			},
			connParams(),
		),
		Handler: Typed(s.handleVirtuosoSupportAI),
	}
}

func (s *DbMCPServer) handleVirtuosoSupportAI(ctx context.Context, in supportAIArgs) (string, error) {
	return s.scalar(ctx, in.connArgs, virtuosoSupportAISQL, in.Prompt, s.resolveAPIKey(in.APIKey))
}

type chatPromptArgs struct {
	connArgs
	Model             string   `json:"model"`
	Prompt            string   `json:"prompt"`
	AssistantConfigID string   `json:"assistant_config_id"`
	Functions         []string `json:"functions"`
	Temperature       float64  `json:"temperature"`
	TopP              float64  `json:"top_p"`
	MaxTokens         int      `json:"max_tokens"`
	APIKey            string   `json:"api_key"`
}

func (s *DbMCPServer) toolChatPromptComplete() Tool {
	return Tool{
		Name:        "chat_prompt_complete",
		Title:       "Chat prompt completion",
		Description: "Run a chat completion through the OpenAI stored function of the database",
		Params: params(
			[]Param{
				{Name: "model", Type: TypeString, Description: "Model identifier", Required: true},
				{Name: "prompt", Type: TypeString, Description: "Prompt text", Required: true},
				{Name: "assistant_config_id", Type: TypeString, Description: "Assistant configuration id (optional)"},
				{Name: "functions", Type: TypeStringArray, Description: "Names of the functions the model may call (optional)"},
				{Name: "temperature", Type: TypeNumber, Description: "Sampling temperature", Default: DefaultTemperature},
				{Name: "top_p", Type: TypeNumber, Description: "Nucleus sampling threshold", Default: DefaultTopP},
				{Name: "max_tokens", Type: TypeInteger, Description: "Maximum number of tokens to generate", Default: DefaultMaxTokens},
				{Name: "api_key", Type: TypeString, Description: "API key (defaults to the configured API_KEY)"},
			},
			connParams(),
		),
		Handler: Typed(s.handleChatPromptComplete),
	}
}

func (s *DbMCPServer) handleChatPromptComplete(ctx context.Context, in chatPromptArgs) (string, error) {
	var functions any
	if len(in.Functions) > 0 {
		functions = strings.Join(in.Functions, ",")
	}
	return s.scalar(ctx, in.connArgs, chatPromptSQL,
		in.Model,
		in.Prompt,
		nullIfEmpty(in.AssistantConfigID),
		functions,
		in.Temperature,
		in.TopP,
		in.MaxTokens,
		s.resolveAPIKey(in.APIKey),
	)
}

func (s *DbMCPServer) resolveAPIKey(key string) string {
	if key == "" {
		return s.apiKey
	}
	return key
}
