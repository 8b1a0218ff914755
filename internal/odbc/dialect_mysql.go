package odbc

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL/MariaDB. Databases are reported
// as catalogs, the way MySQL Connector/ODBC does.
type MySQLDialect struct {
	BaseDialect
	infoSchema
}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{
		BaseDialect: BaseDialect{driver: DriverMySQL},
		infoSchema:  infoSchema{CatalogExpr: "TABLE_SCHEMA"},
	}
}

// QuoteIdentifier returns `name`
func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return fmt.Sprintf("`%s`", name)
}

// ConnString fills in user and password when the DSN has no user
func (d *MySQLDialect) ConnString(desc Descriptor) (string, error) {
	cfg, err := mysql.ParseDSN(desc.DSN)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDSN, err)
	}
	if cfg.User == "" {
		cfg.User = desc.User
		cfg.Passwd = desc.Password
	}
	return cfg.FormatDSN(), nil
}

// TablesQuery lists INFORMATION_SCHEMA.TABLES
func (d *MySQLDialect) TablesQuery(f TableFilter) (string, []any) {
	return d.tablesQuery(d, f)
}

// ColumnsQuery lists INFORMATION_SCHEMA.COLUMNS
func (d *MySQLDialect) ColumnsQuery(f ColumnFilter) (string, []any) {
	return d.columnsQuery(d, f)
}
