package odbc

import "context"

// Conn is a single open connection to a data source.
type Conn interface {
	// Query executes a statement verbatim with optional bound parameters.
	Query(ctx context.Context, query string, args ...any) (ResultSet, error)

	// Tables lists table metadata the way SQLTables does. Empty arguments and
	// the "%" wildcard match everything.
	Tables(ctx context.Context, catalog, schema, table, tableType string) (ResultSet, error)

	// Columns lists column metadata the way SQLColumns does.
	Columns(ctx context.Context, catalog, schema, table, column string) (ResultSet, error)

	// Close releases the connection.
	Close() error
}

// Connector opens connections.
type Connector interface {
	Connect(ctx context.Context, d Descriptor) (Conn, error)

	// Driver returns the driver the connector opens connections with
	Driver() DriverType
}

// WithConn opens a connection, runs fn and closes the connection exactly
// once, whatever fn does (including panicking). The close error is dropped
// so it can never replace the result or error of fn.
func WithConn(ctx context.Context, c Connector, d Descriptor, fn func(conn Conn) error) error {
	conn, err := c.Connect(ctx, d)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	return fn(conn)
}
