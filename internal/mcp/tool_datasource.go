package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"odbc-mcp/internal/odbc"
)

type connectionStatus struct {
	Status string `json:"status"`
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	User   string `json:"user"`
}

func (s *DbMCPServer) toolTestConnection() Tool {
	return Tool{
		Name:        "test_connection",
		Title:       "Test connection",
		Description: "Open and close a connection to check that the data source is reachable",
		Params:      connParams(),
		ReadOnly:    true,
		Handler:     Typed(s.handleTestConnection),
	}
}

func (s *DbMCPServer) handleTestConnection(ctx context.Context, in connArgs) (string, error) {
	err := s.withConn(ctx, in, func(odbc.Conn) error { return nil })
	if err != nil {
		return "", fmt.Errorf("%w: %v", odbc.ErrTestingConnection, err)
	}

	desc := s.defaults.Merge(in.descriptor())
	jsonData, err := json.MarshalIndent(connectionStatus{
		Status: "connected",
		Driver: string(s.connector.Driver()),
		DSN:    desc.DSN,
		User:   desc.User,
	}, "", "  ")
	if err != nil {
		return "", ErrSerializingJSON
	}
	return string(jsonData), nil
}

func (s *DbMCPServer) toolGetCurrentDataSource() Tool {
	return Tool{
		Name:        "get_current_datasource",
		Title:       "Get current data source",
		Description: "Show the configured default data source and driver (the password is never returned)",
		ReadOnly:    true,
		Handler:     s.handleGetCurrentDataSource,
	}
}

func (s *DbMCPServer) handleGetCurrentDataSource(ctx context.Context, _ Arguments) (string, error) {
	jsonData, err := json.MarshalIndent(connectionStatus{
		Status: "configured",
		Driver: string(s.connector.Driver()),
		DSN:    s.defaults.DSN,
		User:   s.defaults.User,
	}, "", "  ")
	if err != nil {
		return "", ErrSerializingJSON
	}
	return string(jsonData), nil
}

type driverInfo struct {
	Driver string `json:"driver"`
	Name   string `json:"name"`
	DSN    string `json:"dsn_format"`
	Active bool   `json:"active"`
}

var supportedDrivers = []driverInfo{
	{Driver: string(odbc.DriverODBC), Name: "ODBC (Virtuoso or any configured data source)", DSN: "Local Virtuoso"},
	{Driver: string(odbc.DriverSQLServer), Name: "Microsoft SQL Server", DSN: "sqlserver://host:1433?database=dbname"},
	{Driver: string(odbc.DriverPostgresSQL), Name: "PostgreSQL", DSN: "postgres://host:5432/dbname?sslmode=disable"},
	{Driver: string(odbc.DriverMySQL), Name: "MySQL / MariaDB", DSN: "tcp(host:3306)/dbname"},
	{Driver: string(odbc.DriverSQLite), Name: "SQLite", DSN: "/path/to/database.db"},
	{Driver: string(odbc.DriverOracle), Name: "Oracle Database", DSN: "host:1521/service_name"},
}

func (s *DbMCPServer) toolListDrivers() Tool {
	return Tool{
		Name:        "list_database_drivers",
		Title:       "List database drivers",
		Description: "List the supported drivers and their data source formats; user and password are added from the configuration",
		ReadOnly:    true,
		Handler:     s.handleListDrivers,
	}
}

func (s *DbMCPServer) handleListDrivers(ctx context.Context, _ Arguments) (string, error) {
	drivers := make([]driverInfo, len(supportedDrivers))
	for i, d := range supportedDrivers {
		d.Active = odbc.DriverType(d.Driver) == s.connector.Driver()
		drivers[i] = d
	}

	jsonData, err := json.MarshalIndent(map[string]any{"supported_drivers": drivers}, "", "  ")
	if err != nil {
		return "", ErrSerializingJSON
	}
	return string(jsonData), nil
}
