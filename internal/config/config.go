// Package config resolves the process-wide configuration snapshot.
//
// Values are taken, in order of precedence, from command-line flags, the
// environment, an optional key-value file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"odbc-mcp/internal/odbc"
)

// EnvFileVar names the variable holding the key-value file path
const EnvFileVar = "ODBC_ENV_FILE"

// DefaultEnvFile is read when EnvFileVar is unset
const DefaultEnvFile = ".env"

// DefaultAPIKey is passed to the AI stored functions when none is configured
const DefaultAPIKey = "none"

// Config is the immutable configuration snapshot built once at start.
type Config struct {
	// Datasource holds the connection defaults tools fall back to.
	Datasource odbc.Descriptor
	// APIKey is passed to the AI stored functions.
	APIKey string
	// Driver selects the database/sql driver ("odbc" by default).
	Driver string
	// PingTimeout bounds opening a connection.
	PingTimeout time.Duration
	// LogLevel is the minimum slog level written to stderr.
	LogLevel slog.Level
	// KeepFalsyCells renders 0/false/"" literally in Markdown tables.
	KeepFalsyCells bool
}

// Load builds the configuration from args (without the program name). On a
// flag error, or when help is requested, usage is written to out.
func Load(args []string, out io.Writer) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	flags := ff.NewFlagSet("odbc-mcp")
	dsn := flags.StringLong("odbc-dsn", odbc.DefaultDSN, "ODBC data source name (or native DSN for non-ODBC drivers)")
	user := flags.StringLong("odbc-user", odbc.DefaultUser, "Database user")
	password := flags.StringLong("odbc-password", odbc.DefaultPassword, "Database password")
	apiKey := flags.StringLong("api-key", DefaultAPIKey, "API key passed to the AI stored functions")
	driver := flags.StringLong("odbc-driver", string(odbc.DriverODBC), "Driver: odbc, sqlserver, postgres, mysql, sqlite, oracle")
	pingTimeout := flags.DurationLong("ping-timeout", odbc.DefaultPingTimeout, "Timeout for opening a connection")
	logLevel := flags.StringLong("log-level", "info", "Log level: debug, info, warn, error")
	keepFalsy := flags.BoolLong("md-keep-falsy", "Render 0, false and empty strings literally in Markdown tables")

	if err := ff.Parse(flags, args, ff.WithEnvVars()); err != nil {
		fmt.Fprintf(out, "%s\n", ffhelp.Flags(flags))
		return nil, err
	}

	if odbc.NormalizeDriver(*driver) == "" {
		return nil, fmt.Errorf("%w: %q", odbc.ErrInvalidDriver, *driver)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}

	return &Config{
		Datasource: odbc.Descriptor{
			DSN:      *dsn,
			User:     *user,
			Password: *password,
		},
		APIKey:         *apiKey,
		Driver:         *driver,
		PingTimeout:    *pingTimeout,
		LogLevel:       level,
		KeepFalsyCells: *keepFalsy,
	}, nil
}

// loadEnvFile merges the key-value file into the environment without
// overriding variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	path := os.Getenv(EnvFileVar)
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
