package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jiratools/internal/logging"
)

// Registry holds all available tools and provides lookup functionality.
// It is thread-safe and supports registration at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool

	// byCategory provides fast lookup by category.
	byCategory map[ToolCategory][]*Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]*Tool),
		byCategory: make(map[ToolCategory][]*Tool),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}

	if tool.Priority == 0 {
		tool.Priority = 50
	}

	r.tools[tool.Name] = tool
	r.byCategory[tool.Category] = append(r.byCategory[tool.Category], tool)

	logging.ToolsDebug("Registered tool: %s (category=%s, priority=%d)", tool.Name, tool.Category, tool.Priority)
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at init time.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// ByCategory returns all tools in a category, sorted by priority (descending).
func (r *Registry) ByCategory(category ToolCategory) []*Tool {
	r.mu.RLock()
	tools := make([]*Tool, len(r.byCategory[category]))
	copy(tools, r.byCategory[category])
	r.mu.RUnlock()

	sortTools(tools)
	return tools
}

// All returns all registered tools, highest priority first, then by name.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	result := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	r.mu.RUnlock()

	sortTools(result)
	return result
}

func sortTools(tools []*Tool) {
	sort.Slice(tools, func(i, j int) bool {
		if tools[i].Priority != tools[j].Priority {
			return tools[i].Priority > tools[j].Priority
		}
		return tools[i].Name < tools[j].Name
	})
}

// Names returns all registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Restrict returns a new registry holding only the named tools.
// An empty list returns the receiver unchanged. Unknown names are an error.
func (r *Registry) Restrict(names []string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	out := NewRegistry()
	for _, name := range names {
		tool := r.Get(name)
		if tool == nil {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
		}
		if out.Has(name) {
			continue
		}
		if err := out.Register(tool); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Call runs a tool by name with the given arguments.
// Returns ErrToolNotFound if the tool doesn't exist and ErrMissingRequiredArg
// when a required argument is absent. Tool-level failures are reported in the
// returned record's Result, never as an error.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (*CallRecord, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if err := validateArgs(tool, args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}

	callID := uuid.NewString()
	start := time.Now()
	log := logging.Get(logging.CategoryTools).With("call_id", callID, "tool", tool.Name)

	log.Debug("Executing tool: %s", tool.Name)
	logging.Audit(logging.AuditEvent{Type: logging.AuditToolCall, Tool: tool.Name, CallID: callID})

	result := execute(ctx, log, tool, args)

	duration := time.Since(start)
	log.Debug("Tool %s completed in %v (success=%v)", tool.Name, duration, !result.IsError)

	ev := logging.AuditEvent{Type: logging.AuditToolComplete, Tool: tool.Name, CallID: callID, DurationMs: duration.Milliseconds()}
	if result.IsError {
		ev.Type = logging.AuditToolError
		ev.Message = result.Text()
	}
	logging.Audit(ev)

	return &CallRecord{
		ToolName:   tool.Name,
		CallID:     callID,
		Result:     result,
		DurationMs: duration.Milliseconds(),
	}, nil
}

// execute runs the tool, converting a panic or nil result into an error result.
func execute(ctx context.Context, log *logging.Logger, tool *Tool, args map[string]any) (result *Result) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("Tool %s panicked: %v", tool.Name, p)
			result = ErrorResult(fmt.Sprintf("tool %s failed: %v", tool.Name, p))
		}
	}()

	result = tool.Execute(ctx, args)
	if result == nil {
		result = ErrorResult(fmt.Sprintf("tool %s returned no result", tool.Name))
	}
	return result
}

// validateArgs checks that all required arguments are present.
func validateArgs(tool *Tool, args map[string]any) error {
	for _, required := range tool.Schema.Required {
		if _, ok := args[required]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
		}
	}
	return nil
}
