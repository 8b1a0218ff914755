package odbc

import (
	"fmt"
	"log/slog"
)

// Descriptor identifies the data source and credentials for one connection.
// It is built per invocation and never persisted.
type Descriptor struct {
	DSN      string
	User     string
	Password string
}

// Merge returns d with every non-empty field of override applied on top.
func (d Descriptor) Merge(override Descriptor) Descriptor {
	if override.DSN != "" {
		d.DSN = override.DSN
	}
	if override.User != "" {
		d.User = override.User
	}
	if override.Password != "" {
		d.Password = override.Password
	}
	return d
}

// ConnectionString renders the ODBC connection string.
func (d Descriptor) ConnectionString() string {
	return fmt.Sprintf("DSN=%s;UID=%s;PWD=%s", d.DSN, d.User, d.Password)
}

// LogValue keeps the password out of logs.
func (d Descriptor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dsn", d.DSN),
		slog.String("user", d.User),
	)
}

// String masks the password.
func (d Descriptor) String() string {
	return fmt.Sprintf("DSN=%s;UID=%s;PWD=***", d.DSN, d.User)
}
