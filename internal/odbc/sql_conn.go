package odbc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLConnector opens one database/sql connection per Connect call. The
// driver must be registered with database/sql by the caller.
type SQLConnector struct {
	dialect     Dialect
	pingTimeout time.Duration
}

// NewSQLConnector creates a connector for the given driver name
func NewSQLConnector(driver string, pingTimeout time.Duration) (*SQLConnector, error) {
	dialect, err := NewDialect(driver)
	if err != nil {
		return nil, err
	}
	if pingTimeout <= 0 {
		pingTimeout = DefaultPingTimeout
	}
	return &SQLConnector{dialect: dialect, pingTimeout: pingTimeout}, nil
}

// Driver returns the driver type of the connector's dialect
func (c *SQLConnector) Driver() DriverType {
	return c.dialect.Driver()
}

// Connect opens a database handle limited to a single connection and pins
// that connection for the lifetime of the returned Conn.
func (c *SQLConnector) Connect(ctx context.Context, d Descriptor) (Conn, error) {
	connString, err := c.dialect.ConnString(d)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(c.dialect.Driver()), connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnecting, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	conn, err := db.Conn(pingCtx)
	if err == nil {
		err = conn.PingContext(pingCtx)
		if err != nil {
			conn.Close()
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnecting, err)
	}

	return &sqlConn{db: db, conn: conn, dialect: c.dialect}, nil
}

type sqlConn struct {
	db      *sql.DB
	conn    *sql.Conn
	dialect Dialect
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) (ResultSet, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanResultSet(rows)
}

func (c *sqlConn) Tables(ctx context.Context, catalog, schema, table, tableType string) (ResultSet, error) {
	query, args := c.dialect.TablesQuery(TableFilter{
		Catalog:   catalog,
		Schema:    schema,
		Table:     table,
		TableType: tableType,
	})
	rs, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingTables, err)
	}
	return rs, nil
}

func (c *sqlConn) Columns(ctx context.Context, catalog, schema, table, column string) (ResultSet, error) {
	query, args := c.dialect.ColumnsQuery(ColumnFilter{
		Catalog: catalog,
		Schema:  schema,
		Table:   table,
		Column:  column,
	})
	rs, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingColumns, err)
	}
	return rs, nil
}

func (c *sqlConn) Close() error {
	return errors.Join(c.conn.Close(), c.db.Close())
}

func scanResultSet(rows *sql.Rows) (ResultSet, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievingNames, err)
	}

	results := ResultSet{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err = rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadingRow, err)
		}

		row := NewRecord()
		for i, col := range columns {
			row.Set(col, normalizeValue(values[i]))
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadingResults, err)
	}
	return results, nil
}
