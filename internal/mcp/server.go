package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"jiratools/internal/logging"
	"jiratools/internal/tools"
)

// maxMessageSize bounds a single JSON-RPC line.
const maxMessageSize = 4 * 1024 * 1024

// Server answers MCP requests from a tool registry.
type Server struct {
	registry *tools.Registry
	info     ServerInfo

	mu          sync.Mutex // guards writes and initialized
	initialized bool
}

// NewServer creates a server over registry.
func NewServer(registry *tools.Registry, name, version string) *Server {
	return &Server{
		registry: registry,
		info:     ServerInfo{Name: name, Version: version},
	}
}

// Serve reads one JSON-RPC message per line from r and writes responses to w.
// It returns nil when r is exhausted and ctx.Err() when ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	logging.MCP("MCP server %s %s listening on stdio", s.info.Name, s.info.Version)
	enc := json.NewEncoder(w)

	for {
		select {
		case <-ctx.Done():
			logging.MCP("MCP server stopping: %v", ctx.Err())
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read request: %w", err)
				}
				logging.MCP("MCP server input closed")
				return nil
			}
			if len(line) == 0 {
				continue
			}
			resp := s.handleMessage(ctx, line)
			if resp == nil {
				continue
			}
			if err := s.write(enc, resp); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
}

// Initialized reports whether the client has sent notifications/initialized.
func (s *Server) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Server) write(enc *json.Encoder, resp *mcpResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return enc.Encode(resp)
}

// handleMessage decodes one line and dispatches it. Notifications return nil.
func (s *Server) handleMessage(ctx context.Context, line []byte) *mcpResponse {
	var req mcpRequest
	if err := json.Unmarshal(line, &req); err != nil {
		logging.Get(logging.CategoryMCP).Warn("Failed to parse request: %v", err)
		return errorResponse(json.RawMessage("null"), &mcpError{Code: CodeParseError, Message: "parse error", Data: err.Error()})
	}

	if req.isNotification() {
		s.handleNotification(req)
		return nil
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		return errorResponse(req.ID, &mcpError{Code: CodeInvalidRequest, Message: "invalid request"})
	}

	logging.MCPDebug("-> %s id=%s", req.Method, string(req.ID))
	result, rpcErr := s.dispatch(ctx, req)
	if rpcErr != nil {
		logging.MCPDebug("<- %s id=%s error %d: %s", req.Method, string(req.ID), rpcErr.Code, rpcErr.Message)
		return errorResponse(req.ID, rpcErr)
	}
	return &mcpResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) handleNotification(req mcpRequest) {
	switch req.Method {
	case MethodInitialized:
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		logging.MCP("Client initialized")
	default:
		logging.MCPDebug("Ignoring notification %s", req.Method)
	}
}

func (s *Server) dispatch(ctx context.Context, req mcpRequest) (any, *mcpError) {
	switch req.Method {
	case MethodInitialize:
		return InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    MCPCapabilities{Tools: &ToolsCapability{}},
			ServerInfo:      s.info,
		}, nil
	case MethodPing:
		return struct{}{}, nil
	case MethodToolsList:
		return s.listTools(), nil
	case MethodToolsCall:
		return s.callTool(ctx, req.Params)
	default:
		return nil, &mcpError{Code: CodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
}

func (s *Server) listTools() ListToolsResult {
	all := s.registry.All()
	out := ListToolsResult{Tools: make([]MCPToolSchema, 0, len(all))}
	for _, t := range all {
		out.Tools = append(out.Tools, MCPToolSchema{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema.JSONSchema(),
		})
	}
	return out
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, *mcpError) {
	var params CallToolParams
	if len(raw) == 0 {
		return nil, &mcpError{Code: CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &mcpError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	if params.Name == "" {
		return nil, &mcpError{Code: CodeInvalidParams, Message: "tool name is required"}
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	rec, err := s.registry.Call(ctx, params.Name, params.Arguments)
	switch {
	case errors.Is(err, tools.ErrToolNotFound):
		return nil, &mcpError{
			Code:    CodeInvalidParams,
			Message: fmt.Sprintf("unknown tool: %s", params.Name),
			Data:    map[string]any{"tool": params.Name, "available": s.registry.Names()},
		}
	case errors.Is(err, tools.ErrMissingRequiredArg):
		return nil, &mcpError{Code: CodeInvalidParams, Message: err.Error(), Data: map[string]any{"tool": params.Name}}
	case err != nil:
		return nil, &mcpError{Code: CodeInternalError, Message: err.Error()}
	}

	logging.MCP("tools/call %s finished in %dms (error=%v)", params.Name, rec.DurationMs, rec.Result.IsError)
	return rec.Result, nil
}

func errorResponse(id json.RawMessage, err *mcpError) *mcpResponse {
	return &mcpResponse{JSONRPC: "2.0", ID: id, Error: err}
}
