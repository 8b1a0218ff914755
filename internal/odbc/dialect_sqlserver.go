package odbc

import "fmt"

// SQLServerDialect implements Dialect for SQL Server
type SQLServerDialect struct {
	BaseDialect
	infoSchema
}

// NewSQLServerDialect creates a new SQL Server dialect
func NewSQLServerDialect() *SQLServerDialect {
	return &SQLServerDialect{
		BaseDialect: BaseDialect{driver: DriverSQLServer},
		infoSchema:  infoSchema{CatalogExpr: "TABLE_CATALOG", SchemaExpr: "TABLE_SCHEMA"},
	}
}

// Placeholder returns @p1, @p2, etc.
func (d *SQLServerDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index)
}

// QuoteIdentifier returns [name]
func (d *SQLServerDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf("[%s]", name)
}

// ConnString injects credentials into sqlserver:// URLs that carry none
func (d *SQLServerDialect) ConnString(desc Descriptor) (string, error) {
	return withURLCredentials(desc.DSN, desc, "sqlserver")
}

// TablesQuery lists INFORMATION_SCHEMA.TABLES
func (d *SQLServerDialect) TablesQuery(f TableFilter) (string, []any) {
	return d.tablesQuery(d, f)
}

// ColumnsQuery lists INFORMATION_SCHEMA.COLUMNS
func (d *SQLServerDialect) ColumnsQuery(f ColumnFilter) (string, []any) {
	return d.columnsQuery(d, f)
}
