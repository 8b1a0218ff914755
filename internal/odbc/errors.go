package odbc

import "errors"

// Connection errors
var (
	ErrConnecting        = errors.New("error connecting to database")
	ErrTestingConnection = errors.New("error testing connection")
	ErrInvalidDriver     = errors.New("invalid database driver")
	ErrInvalidDSN        = errors.New("invalid data source")
)

// Execution errors
var (
	ErrReadingRow      = errors.New("error reading row")
	ErrReadingResults  = errors.New("error reading results")
	ErrListingTables   = errors.New("error listing tables")
	ErrListingColumns  = errors.New("error listing columns")
	ErrRetrievingNames = errors.New("error retrieving columns")
)
