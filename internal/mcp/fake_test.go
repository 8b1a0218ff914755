package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"odbc-mcp/internal/config"
	"odbc-mcp/internal/odbc"
)

func record(kv ...any) *odbc.Record {
	r := odbc.NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

type metadataCall struct {
	catalog, schema, table, extra string
}

type queryCall struct {
	query string
	args  []any
}

// fakeConn serves canned metadata. Tables answers the wildcard-catalog probe
// with probeRows and every other call with tables.
type fakeConn struct {
	mu sync.Mutex

	probeRows odbc.ResultSet
	tables    odbc.ResultSet
	columns   odbc.ResultSet
	rows      odbc.ResultSet

	tablesErr  error
	columnsErr error
	queryErr   error
	closeErr   error
	panicMsg   string

	tableCalls  []metadataCall
	columnCalls []metadataCall
	queries     []queryCall
	probes      int
	closed      int
}

func (c *fakeConn) Query(ctx context.Context, query string, args ...any) (odbc.ResultSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}
	c.queries = append(c.queries, queryCall{query, args})
	return c.rows, c.queryErr
}

func (c *fakeConn) Tables(ctx context.Context, catalog, schema, table, tableType string) (odbc.ResultSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}
	if catalog == odbc.Wildcard && schema == "" && table == "" && tableType == "" {
		c.probes++
		return c.probeRows, nil
	}
	c.tableCalls = append(c.tableCalls, metadataCall{catalog, schema, table, tableType})
	return c.tables, c.tablesErr
}

func (c *fakeConn) Columns(ctx context.Context, catalog, schema, table, column string) (odbc.ResultSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}
	c.columnCalls = append(c.columnCalls, metadataCall{catalog, schema, table, column})
	return c.columns, c.columnsErr
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return c.closeErr
}

type fakeConnector struct {
	conn       *fakeConn
	connectErr error
	seen       []odbc.Descriptor
}

func (f *fakeConnector) Connect(ctx context.Context, d odbc.Descriptor) (odbc.Conn, error) {
	f.seen = append(f.seen, d)
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.conn, nil
}

func (f *fakeConnector) Driver() odbc.DriverType {
	return odbc.DriverODBC
}

// catalogProbe makes the probe report catalog support
var catalogProbe = odbc.ResultSet{record(odbc.ColTableCat, "Demo", odbc.ColTableSchem, "demo", odbc.ColTableName, "Customers")}

// schemaProbe makes the probe report a schema-only driver
var schemaProbe = odbc.ResultSet{record(odbc.ColTableCat, nil, odbc.ColTableSchem, "Demo", odbc.ColTableName, "Customers")}

func testConfig() *config.Config {
	return &config.Config{
		Datasource: odbc.Descriptor{DSN: "Local Virtuoso", User: "demo", Password: "demo"},
		APIKey:     "none",
		Driver:     "odbc",
	}
}

func newTestServer(t *testing.T, conn *fakeConn) (*DbMCPServer, *fakeConnector) {
	t.Helper()
	connector := &fakeConnector{conn: conn}
	s, err := NewMcpServer(testConfig(), connector, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewMcpServer: %v", err)
	}
	return s, connector
}

// call dispatches a tool and fails the test on a protocol error
func call(t *testing.T, s *DbMCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := s.Registry().Dispatch(context.Background(), name, args)
	if err != nil {
		t.Fatalf("%s: unexpected protocol error: %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected exactly one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

var errBoom = errors.New("boom")
