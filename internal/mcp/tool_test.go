package mcp

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"odbc-mcp/internal/format"
	"odbc-mcp/internal/odbc"
)

func tableNames(t *testing.T, text string) []string {
	t.Helper()
	var rows []map[string]any
	if err := json.Unmarshal([]byte(text), &rows); err != nil {
		t.Fatalf("invalid JSON %q: %v", text, err)
	}
	names := []string{}
	for _, r := range rows {
		names = append(names, r[odbc.ColTableName].(string))
	}
	return names
}

var demoTables = odbc.ResultSet{
	record(odbc.ColTableCat, "Demo", odbc.ColTableSchem, "demo", odbc.ColTableName, "Customers", odbc.ColTableType, "TABLE"),
	record(odbc.ColTableCat, "Demo", odbc.ColTableSchem, "demo", odbc.ColTableName, "Orders", odbc.ColTableType, "TABLE"),
	record(odbc.ColTableCat, "Demo", odbc.ColTableSchem, "demo", odbc.ColTableName, "CustomerOrders", odbc.ColTableType, "TABLE"),
	record(odbc.ColTableCat, "Demo", odbc.ColTableSchem, "demo", odbc.ColTableName, "customers_archive", odbc.ColTableType, "TABLE"),
}

func TestFilterTableNames(t *testing.T) {
	conn := &fakeConn{probeRows: catalogProbe, tables: demoTables}
	s, _ := newTestServer(t, conn)

	res := call(t, s, "filter_table_names", map[string]any{"q": "Custom"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}

	if got, want := tableNames(t, resultText(t, res)), []string{"Customers", "CustomerOrders"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if want := []metadataCall{{odbc.Wildcard, "", "", odbc.TableTypeTable}}; !reflect.DeepEqual(conn.tableCalls, want) {
		t.Errorf("tables calls = %v, want %v", conn.tableCalls, want)
	}
	if conn.closed != 1 {
		t.Errorf("expected one close, got %d", conn.closed)
	}
}

func TestFilterTableNamesNoMatch(t *testing.T) {
	conn := &fakeConn{probeRows: schemaProbe, tables: demoTables}
	s, _ := newTestServer(t, conn)

	res := call(t, s, "filter_table_names", map[string]any{"q": "Invoice", "format": "md"})
	if text := resultText(t, res); text != format.NoResults {
		t.Errorf("expected %q, got %q", format.NoResults, text)
	}
}

func TestGetTablesSchemaSlot(t *testing.T) {
	tests := []struct {
		name  string
		probe odbc.ResultSet
		want  metadataCall
	}{
		{"catalog driver", catalogProbe, metadataCall{"Demo", "", "", odbc.TableTypeTable}},
		{"schema-only driver", schemaProbe, metadataCall{"", "Demo", "", odbc.TableTypeTable}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn := &fakeConn{probeRows: tc.probe, tables: demoTables}
			s, _ := newTestServer(t, conn)

			res := call(t, s, "get_tables", map[string]any{"schema": "Demo"})
			if res.IsError {
				t.Fatalf("unexpected error: %s", resultText(t, res))
			}
			if len(conn.tableCalls) != 1 || conn.tableCalls[0] != tc.want {
				t.Errorf("tables calls = %v, want [%v]", conn.tableCalls, tc.want)
			}
			if got := tableNames(t, resultText(t, res)); len(got) != len(demoTables) {
				t.Errorf("rows must be returned unmodified, got %v", got)
			}
		})
	}
}

func TestDescribeTableSchemaSlot(t *testing.T) {
	columns := odbc.ResultSet{
		record(odbc.ColTableName, "Customers", "COLUMN_NAME", "id", "TYPE_NAME", "INTEGER"),
		record(odbc.ColTableName, "Customers", "COLUMN_NAME", "name", "TYPE_NAME", "VARCHAR"),
	}

	tests := []struct {
		name  string
		probe odbc.ResultSet
		want  metadataCall
	}{
		{"catalog driver", catalogProbe, metadataCall{"Demo", "", "Customers", ""}},
		{"schema-only driver", schemaProbe, metadataCall{"", "Demo", "Customers", ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn := &fakeConn{probeRows: tc.probe, columns: columns}
			s, _ := newTestServer(t, conn)

			res := call(t, s, "describe_table", map[string]any{"schema": "Demo", "table": "Customers"})
			if res.IsError {
				t.Fatalf("unexpected error: %s", resultText(t, res))
			}
			if len(conn.columnCalls) != 1 || conn.columnCalls[0] != tc.want {
				t.Errorf("columns calls = %v, want [%v]", conn.columnCalls, tc.want)
			}
			if text := resultText(t, res); !strings.Contains(text, `"COLUMN_NAME": "name"`) {
				t.Errorf("column rows missing from %s", text)
			}
		})
	}
}

func TestDescribeTableRequiresArguments(t *testing.T) {
	conn := &fakeConn{}
	s, connector := newTestServer(t, conn)

	_, err := s.Registry().Dispatch(t.Context(), "describe_table", map[string]any{"schema": "Demo"})
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected %v, got %v", ErrInvalidArguments, err)
	}
	if len(connector.seen) != 0 {
		t.Error("no connection must be opened when validation fails")
	}
}

func TestGetSchemas(t *testing.T) {
	t.Run("catalogs", func(t *testing.T) {
		conn := &fakeConn{probeRows: odbc.ResultSet{
			record(odbc.ColTableCat, "Demo", odbc.ColTableName, "a"),
			record(odbc.ColTableCat, "DB", odbc.ColTableName, "b"),
			record(odbc.ColTableCat, "Demo", odbc.ColTableName, "c"),
		}}
		s, _ := newTestServer(t, conn)

		res := call(t, s, "get_schemas", map[string]any{"format": "jsonl"})
		want := `{"CATALOG_NAME":"Demo"}` + "\n" + `{"CATALOG_NAME":"DB"}`
		if text := resultText(t, res); text != want {
			t.Errorf("got %q, want %q", text, want)
		}
	})

	t.Run("schemas", func(t *testing.T) {
		conn := &fakeConn{
			probeRows: schemaProbe,
			tables: odbc.ResultSet{
				record(odbc.ColTableSchem, "public", odbc.ColTableName, "a"),
				record(odbc.ColTableSchem, "sales", odbc.ColTableName, "b"),
				record(odbc.ColTableSchem, "public", odbc.ColTableName, "c"),
			},
		}
		s, _ := newTestServer(t, conn)

		res := call(t, s, "get_schemas", map[string]any{"format": "jsonl"})
		want := `{"SCHEMA_NAME":"public"}` + "\n" + `{"SCHEMA_NAME":"sales"}`
		if text := resultText(t, res); text != want {
			t.Errorf("got %q, want %q", text, want)
		}
		if want := []metadataCall{{"", odbc.Wildcard, "", ""}}; !reflect.DeepEqual(conn.tableCalls, want) {
			t.Errorf("tables calls = %v, want %v", conn.tableCalls, want)
		}
	})
}

func TestQueryDatabaseFormats(t *testing.T) {
	rows := odbc.ResultSet{record("x", int64(0), "y", "a")}

	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"query_database", map[string]any{}, "[\n  {\n    \"x\": 0,\n    \"y\": \"a\"\n  }\n]"},
		{"query_database", map[string]any{"format": "md"}, "| x | y |\n| --- | --- |\n|  | a |"},
		{"query_database_md", map[string]any{"format": "json"}, "| x | y |\n| --- | --- |\n|  | a |"},
		{"query_database_jsonl", map[string]any{}, `{"x":0,"y":"a"}`},
	}

	for _, tc := range tests {
		t.Run(tc.tool, func(t *testing.T) {
			conn := &fakeConn{rows: rows}
			s, _ := newTestServer(t, conn)

			tc.args["query"] = "SELECT x, y FROM t"
			res := call(t, s, tc.tool, tc.args)
			if text := resultText(t, res); text != tc.want {
				t.Errorf("got %q, want %q", text, tc.want)
			}
			if len(conn.queries) != 1 || conn.queries[0].query != "SELECT x, y FROM t" {
				t.Errorf("query must run verbatim, got %v", conn.queries)
			}
		})
	}
}

func TestQueryDatabaseEmpty(t *testing.T) {
	for mode, want := range map[string]string{"json": "[]", "jsonl": "", "md": format.NoResults} {
		conn := &fakeConn{rows: odbc.ResultSet{}}
		s, _ := newTestServer(t, conn)

		res := call(t, s, "query_database", map[string]any{"query": "SELECT 1 WHERE 1=0", "format": mode})
		if text := resultText(t, res); text != want {
			t.Errorf("%s: got %q, want %q", mode, text, want)
		}
	}
}

func TestConnectionClosedOnce(t *testing.T) {
	tools := []struct {
		name string
		args map[string]any
	}{
		{"get_schemas", nil},
		{"virtuoso_get_schemas", nil},
		{"get_tables", map[string]any{"schema": "Demo"}},
		{"filter_table_names", map[string]any{"q": "Cust"}},
		{"describe_table", map[string]any{"schema": "Demo", "table": "Customers"}},
		{"query_database", map[string]any{"query": "SELECT a"}},
		{"query_database_md", map[string]any{"query": "SELECT a"}},
		{"query_database_jsonl", map[string]any{"query": "SELECT a"}},
		{"spasql_query", map[string]any{"query": "SPARQL SELECT * WHERE {?s ?p ?o}"}},
		{"sparql_query", map[string]any{"query": "SELECT * WHERE {?s ?p ?o}"}},
		{"virtuoso_support_ai", map[string]any{"prompt": "hello"}},
		{"chat_prompt_complete", map[string]any{"model": "gpt-4o", "prompt": "hi"}},
		{"test_connection", nil},
	}

	scenarios := []struct {
		name      string
		conn      func() *fakeConn
		wantError bool
	}{
		{"success", func() *fakeConn {
			return &fakeConn{tables: demoTables, columns: demoTables, rows: odbc.ResultSet{record("a", "b")}}
		}, false},
		{"operation error", func() *fakeConn {
			return &fakeConn{tablesErr: errBoom, columnsErr: errBoom, queryErr: errBoom}
		}, true},
		{"panic", func() *fakeConn {
			return &fakeConn{panicMsg: "driver exploded"}
		}, true},
		{"close error", func() *fakeConn {
			return &fakeConn{tables: demoTables, columns: demoTables, rows: odbc.ResultSet{record("a", "b")}, closeErr: errBoom}
		}, false},
	}

	for _, tool := range tools {
		for _, sc := range scenarios {
			t.Run(tool.name+"/"+sc.name, func(t *testing.T) {
				conn := sc.conn()
				s, _ := newTestServer(t, conn)

				res := call(t, s, tool.name, tool.args)
				if conn.closed != 1 {
					t.Errorf("expected exactly one close, got %d", conn.closed)
				}

				// test_connection runs nothing on the connection it opens
				wantError := sc.wantError && tool.name != "test_connection"
				if res.IsError != wantError {
					t.Errorf("isError = %v, want %v (%s)", res.IsError, wantError, resultText(t, res))
				}
			})
		}
	}
}

func TestVirtuosoGetSchemas(t *testing.T) {
	conn := &fakeConn{rows: odbc.ResultSet{
		record("CATALOG_NAME", "DB"),
		record("CATALOG_NAME", "Demo"),
	}}
	s, _ := newTestServer(t, conn)

	res := call(t, s, "virtuoso_get_schemas", map[string]any{"format": "jsonl"})
	want := `{"CATALOG_NAME":"DB"}` + "\n" + `{"CATALOG_NAME":"Demo"}`
	if text := resultText(t, res); text != want {
		t.Errorf("got %q, want %q", text, want)
	}
	if len(conn.queries) != 1 || conn.queries[0].query != virtuosoSchemasSQL || len(conn.queries[0].args) != 0 {
		t.Errorf("expected the system table query, got %v", conn.queries)
	}
	if conn.probes != 0 || len(conn.tableCalls) != 0 {
		t.Errorf("no metadata calls expected, got %d probes and %v", conn.probes, conn.tableCalls)
	}
}

func TestIntegerOutOfRangeIsRejected(t *testing.T) {
	s, connector := newTestServer(t, &fakeConn{})

	res, err := s.Registry().Dispatch(t.Context(), "spasql_query", map[string]any{"query": "q", "max_rows": 1e20})
	if res != nil || !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected protocol error wrapping %v, got %+v, %v", ErrInvalidArguments, res, err)
	}
	if len(connector.seen) != 0 {
		t.Error("no connection must be opened when validation fails")
	}
}

func TestCloseErrorDoesNotAlterEnvelope(t *testing.T) {
	conn := &fakeConn{rows: odbc.ResultSet{record("a", "b")}, closeErr: errBoom}
	s, _ := newTestServer(t, conn)

	res := call(t, s, "query_database_jsonl", map[string]any{"query": "SELECT a"})
	if res.IsError || resultText(t, res) != `{"a":"b"}` {
		t.Errorf("close error leaked into the envelope: %+v", res)
	}

	conn = &fakeConn{queryErr: errors.New("syntax error"), closeErr: errBoom}
	s, _ = newTestServer(t, conn)

	res = call(t, s, "query_database", map[string]any{"query": "SELEC a"})
	if !res.IsError || resultText(t, res) != "syntax error" {
		t.Errorf("expected the query error, got %+v", res)
	}
}

func TestConnectErrorEnvelope(t *testing.T) {
	s, connector := newTestServer(t, nil)
	connector.connectErr = odbc.ErrConnecting

	res := call(t, s, "get_tables", nil)
	if !res.IsError || resultText(t, res) != odbc.ErrConnecting.Error() {
		t.Errorf("expected connection error envelope, got %+v", res)
	}
}

func TestDescriptorOverrides(t *testing.T) {
	conn := &fakeConn{rows: odbc.ResultSet{}}
	s, connector := newTestServer(t, conn)

	call(t, s, "query_database", map[string]any{"query": "SELECT 1", "dsn": "Other", "password": "secret"})

	want := odbc.Descriptor{DSN: "Other", User: "demo", Password: "secret"}
	if len(connector.seen) != 1 || connector.seen[0] != want {
		t.Errorf("descriptors = %v, want [%v]", connector.seen, want)
	}
}

func TestHybridQueries(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		query    string
		wantArgs []any
	}{
		{
			name:     "spasql defaults",
			tool:     "spasql_query",
			args:     map[string]any{"query": "SPARQL SELECT * WHERE {?s ?p ?o}"},
			query:    spasqlQuerySQL,
			wantArgs: []any{"SPARQL SELECT * WHERE {?s ?p ?o}", DefaultMaxRows, "json", DefaultTimeoutMs},
		},
		{
			name:     "sparql",
			tool:     "sparql_query",
			args:     map[string]any{"query": "SELECT * WHERE {?s ?p ?o}", "format": "text/csv", "timeout": 1000},
			query:    sparqlQuerySQL,
			wantArgs: []any{"SELECT * WHERE {?s ?p ?o}", "text/csv", 1000},
		},
		{
			name:     "support ai uses configured key",
			tool:     "virtuoso_support_ai",
			args:     map[string]any{"prompt": "hello"},
			query:    virtuosoSupportAISQL,
			wantArgs: []any{"hello", "none"},
		},
		{
			name:     "chat prompt defaults",
			tool:     "chat_prompt_complete",
			args:     map[string]any{"model": "gpt-4o", "prompt": "hi"},
			query:    chatPromptSQL,
			wantArgs: []any{"gpt-4o", "hi", nil, nil, DefaultTemperature, DefaultTopP, DefaultMaxTokens, "none"},
		},
		{
			name: "chat prompt explicit",
			tool: "chat_prompt_complete",
			args: map[string]any{
				"model": "gpt-4o", "prompt": "hi", "assistant_config_id": "cfg",
				"functions": []any{"f1", "f2"}, "temperature": 0.7, "api_key": "sk-x",
			},
			query:    chatPromptSQL,
			wantArgs: []any{"gpt-4o", "hi", "cfg", "f1,f2", 0.7, DefaultTopP, DefaultMaxTokens, "sk-x"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn := &fakeConn{rows: odbc.ResultSet{record("result", `{"head":{}}`)}}
			s, _ := newTestServer(t, conn)

			res := call(t, s, tc.tool, tc.args)
			if text := resultText(t, res); text != `{"head":{}}` {
				t.Errorf("scalar must pass through unchanged, got %q", text)
			}
			if len(conn.queries) != 1 {
				t.Fatalf("expected one query, got %d", len(conn.queries))
			}
			if got := conn.queries[0]; got.query != tc.query || !reflect.DeepEqual(got.args, tc.wantArgs) {
				t.Errorf("got %q %#v, want %q %#v", got.query, got.args, tc.query, tc.wantArgs)
			}
		})
	}
}

func TestHybridQueryNoRows(t *testing.T) {
	conn := &fakeConn{rows: odbc.ResultSet{}}
	s, _ := newTestServer(t, conn)

	res := call(t, s, "sparql_query", map[string]any{"query": "ASK {}"})
	if res.IsError || resultText(t, res) != "" {
		t.Errorf("expected empty text, got %+v", res)
	}
}

func TestTestConnection(t *testing.T) {
	conn := &fakeConn{}
	s, _ := newTestServer(t, conn)

	res := call(t, s, "test_connection", map[string]any{"user": "dba", "password": "secret"})
	text := resultText(t, res)

	var status connectionStatus
	if err := json.Unmarshal([]byte(text), &status); err != nil {
		t.Fatal(err)
	}
	want := connectionStatus{Status: "connected", Driver: "odbc", DSN: "Local Virtuoso", User: "dba"}
	if status != want {
		t.Errorf("got %+v, want %+v", status, want)
	}
	if strings.Contains(text, "secret") {
		t.Error("password leaked into the result")
	}
	if conn.closed != 1 {
		t.Errorf("expected one close, got %d", conn.closed)
	}
}

func TestRegisteredTools(t *testing.T) {
	s, _ := newTestServer(t, &fakeConn{})
	want := []string{
		"get_schemas", "virtuoso_get_schemas", "get_tables", "filter_table_names", "describe_table",
		"query_database", "query_database_md", "query_database_jsonl",
		"spasql_query", "sparql_query", "virtuoso_support_ai", "chat_prompt_complete",
		"test_connection", "get_current_datasource", "list_database_drivers",
	}
	if got := s.Registry().Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDataSourceInfo(t *testing.T) {
	s, connector := newTestServer(t, &fakeConn{})

	current := resultText(t, call(t, s, "get_current_datasource", nil))
	if strings.Contains(current, "PWD") || !strings.Contains(current, `"dsn": "Local Virtuoso"`) {
		t.Errorf("unexpected data source description: %s", current)
	}

	var drivers struct {
		Supported []driverInfo `json:"supported_drivers"`
	}
	if err := json.Unmarshal([]byte(resultText(t, call(t, s, "list_database_drivers", nil))), &drivers); err != nil {
		t.Fatal(err)
	}
	active := 0
	for _, d := range drivers.Supported {
		if d.Active {
			active++
			if d.Driver != string(odbc.DriverODBC) {
				t.Errorf("wrong active driver %q", d.Driver)
			}
		}
	}
	if active != 1 || len(drivers.Supported) != len(supportedDrivers) {
		t.Errorf("expected one active driver among %d, got %+v", len(supportedDrivers), drivers.Supported)
	}
	if len(connector.seen) != 0 {
		t.Error("informational tools must not open connections")
	}
}
