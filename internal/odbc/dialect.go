package odbc

import (
	"fmt"
	"net/url"
	"strings"
)

// DriverType is the database/sql driver name a dialect opens connections with
type DriverType string

// Dialect defines how a driver's connection string is built and how its
// catalog views are mapped onto SQLTables / SQLColumns shaped rows
type Dialect interface {
	// Driver returns the driver type
	Driver() DriverType

	// Placeholder returns the parameter placeholder for the given index (1-based)
	Placeholder(index int) string

	// QuoteIdentifier quotes an identifier (column alias, table name)
	QuoteIdentifier(name string) string

	// ConnString builds the driver connection string for a descriptor
	ConnString(d Descriptor) (string, error)

	// TablesQuery returns SQL listing tables with the SQLTables columns
	TablesQuery(f TableFilter) (string, []any)

	// ColumnsQuery returns SQL listing columns with the SQLColumns columns
	ColumnsQuery(f ColumnFilter) (string, []any)
}

// TableFilter holds SQLTables arguments
type TableFilter struct {
	Catalog   string
	Schema    string
	Table     string
	TableType string
}

// ColumnFilter holds SQLColumns arguments
type ColumnFilter struct {
	Catalog string
	Schema  string
	Table   string
	Column  string
}

// BaseDialect provides common functionality for all dialects
type BaseDialect struct {
	driver DriverType
}

// Driver returns the driver type
func (d *BaseDialect) Driver() DriverType {
	return d.driver
}

// Placeholder default implementation
func (d *BaseDialect) Placeholder(index int) string {
	return "?"
}

// QuoteIdentifier default implementation
func (d *BaseDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf(`"%s"`, name)
}

// NewDialect creates the dialect for the given driver name
func NewDialect(driver string) (Dialect, error) {
	switch NormalizeDriver(driver) {
	case DriverODBC:
		return NewODBCDialect(), nil
	case DriverSQLServer:
		return NewSQLServerDialect(), nil
	case DriverPostgresSQL:
		return NewPostgresDialect(), nil
	case DriverMySQL:
		return NewMySQLDialect(), nil
	case DriverOracle:
		return NewOracleDialect(), nil
	case DriverSQLite:
		return NewSQLiteDialect(), nil
	default:
		return nil, fmt.Errorf("%w: '%s'. Supported drivers: odbc, sqlserver, postgres, mysql, sqlite, oracle", ErrInvalidDriver, driver)
	}
}

// NormalizeDriver converts user-friendly driver names to internal driver names
func NormalizeDriver(driver string) DriverType {
	switch strings.ToLower(driver) {
	case "", "odbc", "virtuoso":
		return DriverODBC
	case "sqlserver", "mssql":
		return DriverSQLServer
	case "postgres", "postgresql":
		return DriverPostgresSQL
	case "mysql":
		return DriverMySQL
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "oracle", "godror":
		return DriverOracle
	default:
		return ""
	}
}

// -----------------------------------------------------------------------------
// Filter building
// -----------------------------------------------------------------------------

// isWildcard reports whether a metadata argument matches everything
func isWildcard(v string) bool {
	return v == "" || v == Wildcard
}

// splitTableTypes parses a SQLTables type list such as "'TABLE','VIEW'"
func splitTableTypes(tableType string) []string {
	var types []string
	for _, t := range strings.Split(tableType, ",") {
		t = strings.ToUpper(strings.Trim(strings.TrimSpace(t), "'"))
		if t != "" {
			types = append(types, t)
		}
	}
	return types
}

// whereBuilder accumulates conditions and their bound arguments
type whereBuilder struct {
	dialect    Dialect
	conditions []string
	args       []any
}

func newWhereBuilder(d Dialect, fixed ...string) *whereBuilder {
	return &whereBuilder{dialect: d, conditions: fixed}
}

func (w *whereBuilder) bind(v any) string {
	w.args = append(w.args, v)
	return w.dialect.Placeholder(len(w.args))
}

// equal adds expr = value unless value is a wildcard or expr is not available
func (w *whereBuilder) equal(expr, value string) {
	if isWildcard(value) || expr == "" {
		return
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s = %s", expr, w.bind(value)))
}

// like adds expr LIKE pattern unless pattern is a wildcard or expr is not available
func (w *whereBuilder) like(expr, pattern string) {
	if isWildcard(pattern) || expr == "" {
		return
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s LIKE %s", expr, w.bind(pattern)))
}

// in adds expr IN (...) for a non-empty value list
func (w *whereBuilder) in(expr string, values []string) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = w.bind(v)
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s IN (%s)", expr, strings.Join(placeholders, ", ")))
}

func (w *whereBuilder) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// -----------------------------------------------------------------------------
// INFORMATION_SCHEMA
// -----------------------------------------------------------------------------

// infoSchema maps INFORMATION_SCHEMA.TABLES / COLUMNS onto SQLTables and
// SQLColumns rows. CatalogExpr or SchemaExpr is empty when the engine has
// no such dimension.
type infoSchema struct {
	CatalogExpr string
	SchemaExpr  string
}

const infoSchemaTableType = "CASE TABLE_TYPE WHEN 'BASE TABLE' THEN 'TABLE' ELSE TABLE_TYPE END"

func orNull(expr string) string {
	if expr == "" {
		return "NULL"
	}
	return expr
}

func (s infoSchema) tablesQuery(d Dialect, f TableFilter) (string, []any) {
	q := d.QuoteIdentifier
	query := fmt.Sprintf(
		"SELECT %s AS %s, %s AS %s, TABLE_NAME AS %s, %s AS %s, NULL AS %s FROM INFORMATION_SCHEMA.TABLES",
		orNull(s.CatalogExpr), q(ColTableCat),
		orNull(s.SchemaExpr), q(ColTableSchem),
		q(ColTableName),
		infoSchemaTableType, q(ColTableType),
		q("REMARKS"),
	)

	where := newWhereBuilder(d)
	where.equal(s.CatalogExpr, f.Catalog)
	where.like(s.SchemaExpr, f.Schema)
	where.like("TABLE_NAME", f.Table)
	where.in(infoSchemaTableType, splitTableTypes(f.TableType))

	orderBy := []string{"TABLE_NAME"}
	if s.SchemaExpr != "" {
		orderBy = append([]string{s.SchemaExpr}, orderBy...)
	}
	if s.CatalogExpr != "" {
		orderBy = append([]string{s.CatalogExpr}, orderBy...)
	}

	return query + where.String() + " ORDER BY " + strings.Join(orderBy, ", "), where.args
}

func (s infoSchema) columnsQuery(d Dialect, f ColumnFilter) (string, []any) {
	q := d.QuoteIdentifier
	query := fmt.Sprintf(
		"SELECT %s AS %s, %s AS %s, TABLE_NAME AS %s, COLUMN_NAME AS %s, DATA_TYPE AS %s, "+
			"COALESCE(CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION) AS %s, NUMERIC_SCALE AS %s, "+
			"CASE IS_NULLABLE WHEN 'YES' THEN 1 ELSE 0 END AS %s, COLUMN_DEFAULT AS %s, "+
			"ORDINAL_POSITION AS %s, IS_NULLABLE AS %s FROM INFORMATION_SCHEMA.COLUMNS",
		orNull(s.CatalogExpr), q(ColTableCat),
		orNull(s.SchemaExpr), q(ColTableSchem),
		q(ColTableName), q("COLUMN_NAME"), q("TYPE_NAME"),
		q("COLUMN_SIZE"), q("DECIMAL_DIGITS"),
		q("NULLABLE"), q("COLUMN_DEF"),
		q("ORDINAL_POSITION"), q("IS_NULLABLE"),
	)

	where := newWhereBuilder(d)
	where.equal(s.CatalogExpr, f.Catalog)
	where.like(s.SchemaExpr, f.Schema)
	where.like("TABLE_NAME", f.Table)
	where.like("COLUMN_NAME", f.Column)

	return query + where.String() + " ORDER BY TABLE_NAME, ORDINAL_POSITION", where.args
}

// withURLCredentials adds user and password to a URL-style DSN that carries
// none. Other DSN forms are returned unchanged.
func withURLCredentials(dsn string, d Descriptor, schemes ...string) (string, error) {
	if d.User == "" {
		return dsn, nil
	}
	for _, scheme := range schemes {
		if !strings.HasPrefix(dsn, scheme+"://") {
			continue
		}
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDSN, err)
		}
		if u.User == nil {
			u.User = url.UserPassword(d.User, d.Password)
		}
		return u.String(), nil
	}
	return dsn, nil
}
