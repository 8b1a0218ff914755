package odbc

import "time"

// Connection defaults
const (
	DefaultDSN      = "Local Virtuoso"
	DefaultUser     = "demo"
	DefaultPassword = "demo"

	DefaultPingTimeout = 5 * time.Second
)

// TimestampLayout renders time values with their fraction and zone
const TimestampLayout = "2006-01-02 15:04:05.999999999Z07:00"

// Drivers
const (
	DriverODBC        DriverType = "odbc"
	DriverSQLServer   DriverType = "sqlserver"
	DriverPostgresSQL DriverType = "postgres"
	DriverMySQL       DriverType = "mysql"
	DriverOracle      DriverType = "godror"
	DriverSQLite      DriverType = "sqlite3"
)

// Metadata column names as reported by SQLTables / SQLColumns.
// ODBC 2.x drivers use the QUALIFIER/OWNER spellings.
const (
	ColTableCat       = "TABLE_CAT"
	ColTableQualifier = "TABLE_QUALIFIER"
	ColTableSchem     = "TABLE_SCHEM"
	ColTableOwner     = "TABLE_OWNER"
	ColTableName      = "TABLE_NAME"
	ColTableType      = "TABLE_TYPE"
)

// Wildcard is the catalog/schema/table pattern matching everything
const Wildcard = "%"

// TableTypeTable restricts table listings to base tables
const TableTypeTable = "TABLE"
