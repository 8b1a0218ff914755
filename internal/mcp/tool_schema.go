package mcp

import (
	"context"
	"strings"

	"odbc-mcp/internal/format"
	"odbc-mcp/internal/odbc"
)

// Result columns of the schema listings
const (
	colCatalogName = "CATALOG_NAME"
	colSchemaName  = "SCHEMA_NAME"
)

type introspectionArgs struct {
	connArgs
	Format string `json:"format"`
}

func (s *DbMCPServer) toolGetSchemas() Tool {
	return Tool{
		Name:        "get_schemas",
		Title:       "Get schemas",
		Description: "Retrieve the catalog (or schema) names of the data source",
		Params:      params(connParams(), []Param{formatParam(format.JSON)}),
		ReadOnly:    true,
		Handler:     Typed(s.handleGetSchemas),
	}
}

func (s *DbMCPServer) handleGetSchemas(ctx context.Context, in introspectionArgs) (string, error) {
	var out odbc.ResultSet
	err := s.withConn(ctx, in.connArgs, func(conn odbc.Conn) error {
		var err error
		out, err = listSchemas(ctx, conn)
		return err
	})
	if err != nil {
		return "", err
	}
	return s.render(out, in.Format)
}

// listSchemas returns one record per distinct catalog, or per distinct
// schema when the driver has no catalogs, in first-seen order
func listSchemas(ctx context.Context, conn odbc.Conn) (odbc.ResultSet, error) {
	catalogs := odbc.SupportsCatalogs(ctx, conn)

	column := colSchemaName
	keys := []string{odbc.ColTableSchem, odbc.ColTableOwner}
	catalog, schema := "", odbc.Wildcard
	if catalogs {
		column = colCatalogName
		keys = []string{odbc.ColTableCat, odbc.ColTableQualifier}
		catalog, schema = odbc.Wildcard, ""
	}

	rows, err := conn.Tables(ctx, catalog, schema, "", "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := odbc.ResultSet{}
	for _, row := range rows {
		name := odbc.Field(row, keys...)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		r := odbc.NewRecord()
		r.Set(column, name)
		out = append(out, r)
	}
	return out, nil
}

func (s *DbMCPServer) toolVirtuosoGetSchemas() Tool {
	return Tool{
		Name:        "virtuoso_get_schemas",
		Title:       "Get Virtuoso catalogs",
		Description: "Retrieve the catalog names of a Virtuoso instance from its system tables",
		Params:      params(connParams(), []Param{formatParam(format.JSON)}),
		ReadOnly:    true,
		Handler:     Typed(s.handleVirtuosoGetSchemas),
	}
}

func (s *DbMCPServer) handleVirtuosoGetSchemas(ctx context.Context, in introspectionArgs) (string, error) {
	var out odbc.ResultSet
	err := s.withConn(ctx, in.connArgs, func(conn odbc.Conn) error {
		var err error
		out, err = conn.Query(ctx, virtuosoSchemasSQL)
		return err
	})
	if err != nil {
		return "", err
	}
	return s.render(out, in.Format)
}

type getTablesArgs struct {
	introspectionArgs
	Schema string `json:"schema"`
}

func (s *DbMCPServer) toolGetTables() Tool {
	return Tool{
		Name:        "get_tables",
		Title:       "Get tables",
		Description: "Retrieve the tables of a schema, or of every schema when none is given",
		Params: params(
			[]Param{{Name: "schema", Type: TypeString, Description: "Schema (or catalog) name (optional)"}},
			connParams(),
			[]Param{formatParam(format.JSON)},
		),
		ReadOnly: true,
		Handler:  Typed(s.handleGetTables),
	}
}

func (s *DbMCPServer) handleGetTables(ctx context.Context, in getTablesArgs) (string, error) {
	var out odbc.ResultSet
	err := s.withConn(ctx, in.connArgs, func(conn odbc.Conn) error {
		var err error
		out, err = listTables(ctx, conn, in.Schema)
		return err
	})
	if err != nil {
		return "", err
	}
	return s.render(out, in.Format)
}

func listTables(ctx context.Context, conn odbc.Conn, schema string) (odbc.ResultSet, error) {
	catalog, schem := odbc.CatalogSchemaArgs(odbc.SupportsCatalogs(ctx, conn), schema)
	return conn.Tables(ctx, catalog, schem, "", odbc.TableTypeTable)
}

type filterTableNamesArgs struct {
	getTablesArgs
	Q string `json:"q"`
}

func (s *DbMCPServer) toolFilterTableNames() Tool {
	return Tool{
		Name:        "filter_table_names",
		Title:       "Filter table names",
		Description: "Retrieve the tables whose name contains a substring (case-sensitive)",
		Params: params(
			[]Param{
				{Name: "q", Type: TypeString, Description: "Substring to look for in table names", Required: true},
				{Name: "schema", Type: TypeString, Description: "Schema (or catalog) name", Default: odbc.Wildcard},
			},
			connParams(),
			[]Param{formatParam(format.JSON)},
		),
		ReadOnly: true,
		Handler:  Typed(s.handleFilterTableNames),
	}
}

func (s *DbMCPServer) handleFilterTableNames(ctx context.Context, in filterTableNamesArgs) (string, error) {
	var out odbc.ResultSet
	err := s.withConn(ctx, in.connArgs, func(conn odbc.Conn) error {
		rows, err := listTables(ctx, conn, in.Schema)
		if err != nil {
			return err
		}
		out = odbc.ResultSet{}
		for _, row := range rows {
			if strings.Contains(odbc.Field(row, odbc.ColTableName), in.Q) {
				out = append(out, row)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return s.render(out, in.Format)
}

type describeTableArgs struct {
	introspectionArgs
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

func (s *DbMCPServer) toolDescribeTable() Tool {
	return Tool{
		Name:        "describe_table",
		Title:       "Describe table",
		Description: "Retrieve the columns of a table (name, type, size, nullability, default)",
		Params: params(
			[]Param{
				{Name: "schema", Type: TypeString, Description: "Schema (or catalog) name", Required: true},
				{Name: "table", Type: TypeString, Description: "Table name", Required: true},
			},
			connParams(),
			[]Param{formatParam(format.JSON)},
		),
		ReadOnly: true,
		Handler:  Typed(s.handleDescribeTable),
	}
}

func (s *DbMCPServer) handleDescribeTable(ctx context.Context, in describeTableArgs) (string, error) {
	var out odbc.ResultSet
	err := s.withConn(ctx, in.connArgs, func(conn odbc.Conn) error {
		catalog, schem := odbc.CatalogSchemaArgs(odbc.SupportsCatalogs(ctx, conn), in.Schema)
		var err error
		out, err = conn.Columns(ctx, catalog, schem, in.Table, "")
		return err
	})
	if err != nil {
		return "", err
	}
	return s.render(out, in.Format)
}
