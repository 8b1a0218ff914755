package odbc

import "fmt"

// sqliteSchema is the only schema a plain SQLite connection exposes
const sqliteSchema = "main"

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct {
	BaseDialect
}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{
		BaseDialect: BaseDialect{driver: DriverSQLite},
	}
}

// ConnString returns the database file path; SQLite has no credentials
func (d *SQLiteDialect) ConnString(desc Descriptor) (string, error) {
	return desc.DSN, nil
}

// TablesQuery lists sqlite_master tables and views
func (d *SQLiteDialect) TablesQuery(f TableFilter) (string, []any) {
	q := d.QuoteIdentifier
	query := fmt.Sprintf(
		"SELECT NULL AS %s, '%s' AS %s, name AS %s, UPPER(type) AS %s, NULL AS %s FROM sqlite_master",
		q(ColTableCat), sqliteSchema, q(ColTableSchem), q(ColTableName), q(ColTableType), q("REMARKS"),
	)

	where := newWhereBuilder(d, "type IN ('table', 'view')", "name NOT LIKE 'sqlite_%'")
	where.like(fmt.Sprintf("'%s'", sqliteSchema), f.Schema)
	where.like("name", f.Table)
	where.in("UPPER(type)", splitTableTypes(f.TableType))

	return query + where.String() + " ORDER BY name", where.args
}

// ColumnsQuery joins sqlite_master with pragma_table_info
func (d *SQLiteDialect) ColumnsQuery(f ColumnFilter) (string, []any) {
	q := d.QuoteIdentifier
	query := fmt.Sprintf(
		"SELECT NULL AS %s, '%s' AS %s, m.name AS %s, p.name AS %s, p.type AS %s, "+
			"NULL AS %s, NULL AS %s, CASE p.\"notnull\" WHEN 0 THEN 1 ELSE 0 END AS %s, "+
			"p.dflt_value AS %s, p.cid + 1 AS %s, CASE p.\"notnull\" WHEN 0 THEN 'YES' ELSE 'NO' END AS %s "+
			"FROM sqlite_master AS m JOIN pragma_table_info(m.name) AS p",
		q(ColTableCat), sqliteSchema, q(ColTableSchem), q(ColTableName), q("COLUMN_NAME"), q("TYPE_NAME"),
		q("COLUMN_SIZE"), q("DECIMAL_DIGITS"), q("NULLABLE"),
		q("COLUMN_DEF"), q("ORDINAL_POSITION"), q("IS_NULLABLE"),
	)

	where := newWhereBuilder(d, "m.type IN ('table', 'view')", "m.name NOT LIKE 'sqlite_%'")
	where.like(fmt.Sprintf("'%s'", sqliteSchema), f.Schema)
	where.like("m.name", f.Table)
	where.like("p.name", f.Column)

	return query + where.String() + " ORDER BY m.name, p.cid", where.args
}
