package odbc

// ODBCDialect implements Dialect for ODBC data sources reached through a
// driver manager DSN (Virtuoso by default)
type ODBCDialect struct {
	BaseDialect
	infoSchema
}

// NewODBCDialect creates a new ODBC dialect
func NewODBCDialect() *ODBCDialect {
	return &ODBCDialect{
		BaseDialect: BaseDialect{driver: DriverODBC},
		infoSchema:  infoSchema{CatalogExpr: "TABLE_CATALOG", SchemaExpr: "TABLE_SCHEMA"},
	}
}

// ConnString returns DSN=<dsn>;UID=<user>;PWD=<password>
func (d *ODBCDialect) ConnString(desc Descriptor) (string, error) {
	return desc.ConnectionString(), nil
}

// TablesQuery lists INFORMATION_SCHEMA.TABLES
func (d *ODBCDialect) TablesQuery(f TableFilter) (string, []any) {
	return d.tablesQuery(d, f)
}

// ColumnsQuery lists INFORMATION_SCHEMA.COLUMNS
func (d *ODBCDialect) ColumnsQuery(f ColumnFilter) (string, []any) {
	return d.columnsQuery(d, f)
}
