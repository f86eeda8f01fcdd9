// Package tools provides modular tool definitions served to LLM clients.
//
// Each tool is standalone: a name, a JSON schema for its arguments and an
// Execute function that never fails past its own boundary. Failures come back
// as a Result with IsError set, so callers branch on the result rather than on
// a Go error.
//
// Architecture:
//
//	MCP server / HTTP gateway / CLI → Registry.Call() → Tool.Execute() → Result
package tools

import (
	"context"
)

// ToolCategory classifies tools for listing and filtering.
type ToolCategory string

const (
	// CategoryProjects covers Jira project lookup and search.
	CategoryProjects ToolCategory = "/projects"

	// CategoryGeneral is for tools that fit no narrower category.
	CategoryGeneral ToolCategory = "/general"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
	Enum []any  `json:"enum,omitempty"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// JSONSchema renders the schema as a JSON Schema object, the shape MCP
// clients expect in inputSchema.
func (s ToolSchema) JSONSchema() map[string]any {
	props := s.Properties
	if props == nil {
		props = map[string]Property{}
	}
	required := s.Required
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// ExecuteFunc is the signature for tool execution.
// Implementations must return a non-nil Result and report failures through
// Result.IsError instead of panicking or returning nil.
type ExecuteFunc func(ctx context.Context, args map[string]any) *Result

// Tool defines a modular tool.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string

	// Description explains what the tool does.
	// Used for LLM tool calling and documentation.
	Description string

	// Category classifies the tool.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Priority orders listings. Higher first (default 50).
	Priority int
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// WithPriority returns a copy of the tool with the given priority.
func (t *Tool) WithPriority(priority int) *Tool {
	copy := *t
	copy.Priority = priority
	return &copy
}

// CallRecord wraps the result of one tool call with metadata.
type CallRecord struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// CallID correlates log lines for this call.
	CallID string

	// Result is what the tool returned.
	Result *Result

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool reported no error.
func (r *CallRecord) IsSuccess() bool {
	return r.Result != nil && !r.Result.IsError
}
