package mcp

import "errors"

// Argument errors
var (
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrMissingRequired  = errors.New("missing required parameter")
	ErrWrongType        = errors.New("wrong parameter type")
	ErrNotInEnum        = errors.New("value not allowed")
)

// Registry errors
var (
	ErrUnknownTool   = errors.New("unknown tool")
	ErrDuplicateTool = errors.New("tool already registered")
)

// Operation errors
var (
	ErrUnexpected      = errors.New("unexpected failure")
	ErrSerializingJSON = errors.New("error serializing JSON")
)
