package odbc

import (
	"fmt"
	"strings"
)

// OracleDialect implements Dialect for Oracle. Oracle has no catalogs; owners
// are reported as schemas.
type OracleDialect struct {
	BaseDialect
}

// NewOracleDialect creates a new Oracle dialect
func NewOracleDialect() *OracleDialect {
	return &OracleDialect{
		BaseDialect: BaseDialect{driver: DriverOracle},
	}
}

// Placeholder returns :1, :2, etc.
func (d *OracleDialect) Placeholder(index int) string {
	return fmt.Sprintf(":%d", index)
}

// ConnString returns user/password@connectString unless the DSN already
// carries credentials
func (d *OracleDialect) ConnString(desc Descriptor) (string, error) {
	if desc.User == "" || strings.Contains(desc.DSN, "@") || strings.Contains(desc.DSN, "user=") {
		return desc.DSN, nil
	}
	return fmt.Sprintf("%s/%s@%s", desc.User, desc.Password, desc.DSN), nil
}

// TablesQuery lists ALL_OBJECTS tables and views
func (d *OracleDialect) TablesQuery(f TableFilter) (string, []any) {
	q := d.QuoteIdentifier
	query := fmt.Sprintf(
		"SELECT NULL AS %s, OWNER AS %s, OBJECT_NAME AS %s, OBJECT_TYPE AS %s, NULL AS %s FROM ALL_OBJECTS",
		q(ColTableCat), q(ColTableSchem), q(ColTableName), q(ColTableType), q("REMARKS"),
	)

	where := newWhereBuilder(d, "OBJECT_TYPE IN ('TABLE', 'VIEW')")
	where.like("OWNER", f.Schema)
	where.like("OBJECT_NAME", f.Table)
	where.in("OBJECT_TYPE", splitTableTypes(f.TableType))

	return query + where.String() + " ORDER BY OWNER, OBJECT_NAME", where.args
}

// ColumnsQuery lists ALL_TAB_COLUMNS
func (d *OracleDialect) ColumnsQuery(f ColumnFilter) (string, []any) {
	q := d.QuoteIdentifier
	query := fmt.Sprintf(
		"SELECT NULL AS %s, OWNER AS %s, TABLE_NAME AS %s, COLUMN_NAME AS %s, DATA_TYPE AS %s, "+
			"DATA_LENGTH AS %s, DATA_SCALE AS %s, CASE NULLABLE WHEN 'Y' THEN 1 ELSE 0 END AS %s, "+
			"NULL AS %s, COLUMN_ID AS %s, CASE NULLABLE WHEN 'Y' THEN 'YES' ELSE 'NO' END AS %s FROM ALL_TAB_COLUMNS",
		q(ColTableCat), q(ColTableSchem), q(ColTableName), q("COLUMN_NAME"), q("TYPE_NAME"),
		q("COLUMN_SIZE"), q("DECIMAL_DIGITS"), q("NULLABLE"),
		q("COLUMN_DEF"), q("ORDINAL_POSITION"), q("IS_NULLABLE"),
	)

	where := newWhereBuilder(d)
	where.like("OWNER", f.Schema)
	where.like("TABLE_NAME", f.Table)
	where.like("COLUMN_NAME", f.Column)

	return query + where.String() + " ORDER BY OWNER, TABLE_NAME, COLUMN_ID", where.args
}
