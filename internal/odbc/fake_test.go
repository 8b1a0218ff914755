package odbc

import (
	"context"
	"errors"
)

func record(kv ...any) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

type tablesCall struct {
	catalog, schema, table, tableType string
}

type fakeConn struct {
	tables    ResultSet
	tablesErr error
	calls     []tablesCall
	closed    int
	closeErr  error
}

func (c *fakeConn) Query(ctx context.Context, query string, args ...any) (ResultSet, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeConn) Tables(ctx context.Context, catalog, schema, table, tableType string) (ResultSet, error) {
	c.calls = append(c.calls, tablesCall{catalog, schema, table, tableType})
	return c.tables, c.tablesErr
}

func (c *fakeConn) Columns(ctx context.Context, catalog, schema, table, column string) (ResultSet, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeConn) Close() error {
	c.closed++
	return c.closeErr
}

type fakeConnector struct {
	conn       *fakeConn
	connectErr error
}

func (f *fakeConnector) Connect(ctx context.Context, d Descriptor) (Conn, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.conn, nil
}

func (f *fakeConnector) Driver() DriverType {
	return DriverODBC
}
