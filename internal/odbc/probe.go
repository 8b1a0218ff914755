package odbc

import "context"

// SupportsCatalogs reports whether the driver behind conn describes tables
// with a catalog qualifier (catalog+schema) rather than a schema only.
//
// It lists tables with a wildcard catalog and looks at the first row. Any
// failure counts as "no catalogs".
func SupportsCatalogs(ctx context.Context, conn Conn) bool {
	rows, err := conn.Tables(ctx, Wildcard, "", "", "")
	if err != nil || len(rows) == 0 {
		return false
	}
	return Field(rows[0], ColTableQualifier, ColTableCat) != ""
}

// CatalogSchemaArgs places a schema name in the catalog or the schema slot
// of a metadata call depending on the driver capability.
func CatalogSchemaArgs(catalogs bool, schema string) (catalog, schem string) {
	if catalogs {
		return schema, ""
	}
	return "", schema
}
