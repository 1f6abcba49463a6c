// Package tool implements the function-calling capabilities attached to
// roles: a small Tool interface, a generic function adapter, and the
// company-data providers the default workforce is equipped with. Providers
// are opaque, side-effect-free data sources keyed by tenant.
package tool

import (
	"context"
	"fmt"
)

// Tool defines a structured capability a role can invoke during a run.
//
// Implementations should be side-effect free with respect to run state: the
// orchestration layer treats tool output as opaque data handed back to the
// requesting role.
type Tool interface {
	// Name returns the unique identifier (snake_case) used in function
	// call declarations and routing.
	Name() string

	// Description is the natural-language summary exposed to the runtime
	// so it knows when to use the tool.
	Description() string

	// Parameters returns a minimal JSON-Schema-like map describing the
	// accepted arguments.
	Parameters() map[string]any

	// Call executes the tool. Arguments arrive already decoded from JSON.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolError normalizes tool execution failures.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// FunctionTool adapts a plain Go function into a Tool.
//
// A FunctionTool has no internal mutable state after construction and is
// safe for concurrent use by multiple sessions.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// implementation. Pass nil parameters for a no-argument tool.
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to the runtime.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the declared argument schema.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call invokes the wrapped function, wrapping non-ToolError failures so
// callers receive consistent codes.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: "EXECUTION_ERROR"}
	}
	return result, nil
}
