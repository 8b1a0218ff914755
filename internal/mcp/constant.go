package mcp

// Server identity
const (
	ServerName    = "ODBC MCP"
	ServerVersion = "1.0.0"
)

// Hybrid query defaults
const (
	DefaultMaxRows   = 20
	DefaultTimeoutMs = 30000
)

// Chat completion defaults
const (
	DefaultTemperature = 0.2
	DefaultTopP        = 0.5
	DefaultMaxTokens   = 4096
)

// Stored functions on the Virtuoso side
const (
	spasqlQuerySQL       = "SELECT Demo.demo.execute_spasql_query(charset_recode(?, '_WIDE_', 'UTF-8'), ?, ?, ?) AS result"
	sparqlQuerySQL       = `SELECT "UB".dba."sparqlQuery"(?, ?, ?) AS result`
	virtuosoSupportAISQL = "SELECT DEMO.DBA.OAI_VIRTUOSO_SUPPORT_AI(?, ?) AS result"
	chatPromptSQL        = "SELECT OAI.DBA.chatPromptComplete(?, ?, ?, ?, ?, ?, ?, ?) AS result"
	virtuosoSchemasSQL   = "SELECT DISTINCT name_part(KEY_TABLE, 0) AS CATALOG_NAME FROM DB.DBA.SYS_KEYS"
)
