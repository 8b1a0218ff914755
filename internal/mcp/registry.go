package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
)

// ParamType is the JSON type of a tool parameter
type ParamType string

const (
	TypeString      ParamType = "string"
	TypeNumber      ParamType = "number"
	TypeInteger     ParamType = "integer"
	TypeBoolean     ParamType = "boolean"
	TypeStringArray ParamType = "array"
)

// Param declares one named tool argument
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
	Enum        []string
}

// Arguments holds validated tool arguments with defaults applied
type Arguments map[string]any

// Bind decodes the arguments into an operation's argument struct
func (a Arguments) Bind(dst any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// Handler runs one operation and returns the text payload of the envelope
type Handler func(ctx context.Context, args Arguments) (string, error)

// Typed adapts an operation taking its own argument struct to a Handler
func Typed[T any](fn func(ctx context.Context, in T) (string, error)) Handler {
	return func(ctx context.Context, args Arguments) (string, error) {
		var in T
		if err := args.Bind(&in); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		return fn(ctx, in)
	}
}

// Tool is a named, schema-validated entry point
type Tool struct {
	Name        string
	Title       string
	Description string
	Params      []Param
	ReadOnly    bool
	Handler     Handler
}

// Registry binds tool names to operations. It is filled once at start and
// only read afterwards.
type Registry struct {
	tools  map[string]*Tool
	names  []string
	logger *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
	}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(t Tool) error {
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
	}
	r.tools[t.Name] = &t
	r.names = append(r.names, t.Name)
	return nil
}

// Names returns registered tool names in registration order
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Lookup returns the tool registered under name
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Dispatch validates raw against the tool's parameters and runs it.
//
// Validation and binding failures are returned as errors and mcp-go reports
// them as JSON-RPC errors. Operation failures, including panics, come back as
// an error envelope.
func (r *Registry) Dispatch(ctx context.Context, name string, raw map[string]any) (*mcp.CallToolResult, error) {
	tool, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	args, err := tool.validate(raw)
	if err != nil {
		r.logger.Info("rejected tool call", "tool", name, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	logger := r.logger.With("call_id", uuid.NewString(), "tool", name)
	start := time.Now()

	text, err := invoke(ctx, tool.Handler, args)
	if errors.Is(err, ErrInvalidArguments) {
		logger.Info("rejected tool call", "error", err)
		return nil, err
	}
	if err != nil {
		logger.Warn("tool failed", "error", err, "duration", time.Since(start))
		return mcp.NewToolResultError(err.Error()), nil
	}

	logger.Debug("tool completed", "duration", time.Since(start), "bytes", len(text))
	return mcp.NewToolResultText(text), nil
}

func invoke(ctx context.Context, h Handler, args Arguments) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrUnexpected, p)
		}
	}()
	return h(ctx, args)
}

// Attach registers every tool with an mcp-go server
func (r *Registry) Attach(s *server.MCPServer) {
	for _, name := range r.names {
		s.AddTool(r.tools[name].MCPTool(), r.handle)
	}
}

func (r *Registry) handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return r.Dispatch(ctx, request.Params.Name, request.GetArguments())
}

// -----------------------------------------------------------------------------
// Validation
// -----------------------------------------------------------------------------

func (t *Tool) validate(raw map[string]any) (Arguments, error) {
	args := make(Arguments, len(t.Params))
	for _, p := range t.Params {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, fmt.Errorf("%w: %s", ErrMissingRequired, p.Name)
			}
			if p.Default != nil {
				args[p.Name] = p.Default
			}
			continue
		}

		value, err := p.coerce(v)
		if err != nil {
			return nil, err
		}
		args[p.Name] = value
	}
	return args, nil
}

func (p Param) coerce(v any) (any, error) {
	switch p.Type {
	case TypeNumber, TypeInteger:
		if !isNumeric(v) {
			return nil, p.typeError(v)
		}
		f, err := cast.ToFloat64E(v)
		if err != nil || (p.Type == TypeInteger && !isInt(f)) {
			return nil, p.typeError(v)
		}
		return f, nil

	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, p.typeError(v)
		}
		return b, nil

	case TypeStringArray:
		switch items := v.(type) {
		case []string:
			return items, nil
		case []any:
			out := make([]string, len(items))
			for i, item := range items {
				s, ok := item.(string)
				if !ok {
					return nil, p.typeError(v)
				}
				out[i] = s
			}
			return out, nil
		default:
			return nil, p.typeError(v)
		}

	default:
		s, ok := v.(string)
		if !ok {
			return nil, p.typeError(v)
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, fmt.Errorf("%w: %s=%q (allowed: %s)", ErrNotInEnum, p.Name, s, strings.Join(p.Enum, ", "))
		}
		return s, nil
	}
}

func (p Param) typeError(v any) error {
	return fmt.Errorf("%w: %s must be %s, got %T", ErrWrongType, p.Name, p.Type, v)
}

// isInt reports whether f is integral and fits an int
func isInt(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt && f < -math.MinInt
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// MCP schema
// -----------------------------------------------------------------------------

// MCPTool renders the tool definition as an mcp-go tool schema
func (t *Tool) MCPTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(t.Description),
		mcp.WithReadOnlyHintAnnotation(t.ReadOnly),
		mcp.WithDestructiveHintAnnotation(!t.ReadOnly),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	if t.Title != "" {
		opts = append(opts, mcp.WithTitleAnnotation(t.Title))
	}
	for _, p := range t.Params {
		opts = append(opts, p.option())
	}
	return mcp.NewTool(t.Name, opts...)
}

func (p Param) option() mcp.ToolOption {
	props := []mcp.PropertyOption{mcp.Description(p.Description)}
	if p.Required {
		props = append(props, mcp.Required())
	}

	switch p.Type {
	case TypeNumber, TypeInteger:
		if p.Default != nil {
			props = append(props, mcp.DefaultNumber(cast.ToFloat64(p.Default)))
		}
		return mcp.WithNumber(p.Name, props...)
	case TypeBoolean:
		if b, ok := p.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(b))
		}
		return mcp.WithBoolean(p.Name, props...)
	case TypeStringArray:
		props = append(props, mcp.WithStringItems())
		return mcp.WithArray(p.Name, props...)
	default:
		if s, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(s))
		}
		if len(p.Enum) > 0 {
			props = append(props, mcp.Enum(p.Enum...))
		}
		return mcp.WithString(p.Name, props...)
	}
}
