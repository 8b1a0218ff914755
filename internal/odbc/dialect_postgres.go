package odbc

import "fmt"

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct {
	BaseDialect
	infoSchema
}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{
		BaseDialect: BaseDialect{driver: DriverPostgresSQL},
		infoSchema:  infoSchema{CatalogExpr: "table_catalog", SchemaExpr: "table_schema"},
	}
}

// Placeholder returns $1, $2, etc.
func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// ConnString injects credentials into postgres:// URLs that carry none
func (d *PostgresDialect) ConnString(desc Descriptor) (string, error) {
	return withURLCredentials(desc.DSN, desc, "postgres", "postgresql")
}

// TablesQuery lists information_schema.tables
func (d *PostgresDialect) TablesQuery(f TableFilter) (string, []any) {
	return d.tablesQuery(d, f)
}

// ColumnsQuery lists information_schema.columns
func (d *PostgresDialect) ColumnsQuery(f ColumnFilter) (string, []any) {
	return d.columnsQuery(d, f)
}
