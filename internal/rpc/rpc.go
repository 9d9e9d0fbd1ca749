// Package rpc implements the JSON-RPC 2.0 request dispatcher at the
// center of the MCP server: one request in, one response out, gating
// every method but initialize behind an initialization flag.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quartzhollow/mcpgraph/internal/logging"
	"github.com/quartzhollow/mcpgraph/internal/plugin"
	"github.com/quartzhollow/mcpgraph/internal/tool"
)

// JSON-RPC error codes. The negative-one tool-execution code is
// deliberately outside the reserved -32xxx range so bridge clients can
// tell a tool failure from a protocol failure.
const (
	CodeParseError          = -32700
	CodeMethodNotFound      = -32601
	CodeInvalidParams       = -32602
	CodePluginExecFailed    = -32603
	CodeNotInitialized      = -32002
	CodeToolExecutionFailed = -1
)

const protocolVersion = "2024-11-05"

// Request is one parsed JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Error is the JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Response is one JSON-RPC 2.0 response. Result and Error are
// mutually exclusive: a successful response omits Error, a failed one
// omits Result.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Dispatcher routes parsed requests to the initialize/tools/plugins
// method table. It is safe for concurrent use: the tool and plugin
// registries it wraps guard their own state, and Dispatcher adds no
// additional locking around plugin I/O.
type Dispatcher struct {
	tools       *tool.Registry
	plugins     *plugin.Registry
	logger      *logging.Logger
	serverName  string
	version     string
	initialized atomic.Bool
}

// Config names the server reported in the initialize result.
type Config struct {
	ServerName string
	Version    string
}

// New builds a Dispatcher over the given tool and plugin registries.
func New(tools *tool.Registry, plugins *plugin.Registry, logger *logging.Logger, cfg Config) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = "mcpgraph"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	return &Dispatcher{tools: tools, plugins: plugins, logger: logger, serverName: cfg.ServerName, version: cfg.Version}
}

// Handle parses one request string and returns the encoded response.
// A blank (post-trim) input yields a blank output, matching the
// stdio adapter's idle-keepalive behaviour. Over HTTP, a blank
// /tools/call body also yields a blank output, which the HTTP adapter
// answers with a 500.
func (d *Dispatcher) Handle(ctx context.Context, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var req Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return encode(errorResponse(nil, CodeParseError, "Parse error", nil))
	}

	resp := d.dispatch(ctx, req)
	return encode(resp)
}

// HandleBytes is Handle for callers that already have a byte slice
// (the HTTP adapter's request body).
func (d *Dispatcher) HandleBytes(ctx context.Context, raw []byte) []byte {
	return []byte(d.Handle(ctx, string(raw)))
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) Response {
	if req.Method != "initialize" && !d.initialized.Load() {
		return errorResponse(req.ID, CodeNotInitialized, "Server not initialized", nil)
	}

	switch req.Method {
	case "initialize":
		return d.handleInitialize(req)
	case "tools/list":
		return d.handleToolsList(req)
	case "tools/call":
		return d.handleToolsCall(ctx, req)
	case "plugins/list":
		return d.handlePluginsList(req)
	case "plugins/call":
		return d.handlePluginsCall(ctx, req)
	default:
		return errorResponse(req.ID, CodeMethodNotFound, "Method not found", nil)
	}
}

func (d *Dispatcher) handleInitialize(req Request) Response {
	if d.initialized.Load() {
		return errorResponse(req.ID, CodeNotInitialized, "Server already initialized", nil)
	}
	d.initialized.Store(true)

	result := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		"serverInfo": map[string]any{
			"name":    d.serverName,
			"version": d.version,
		},
	}
	return successResponse(req.ID, result)
}

func (d *Dispatcher) handleToolsList(req Request) Response {
	return successResponse(req.ID, map[string]any{"tools": d.tools.List()})
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, req Request) Response {
	var params toolsCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		}
	}
	if params.Name == "" {
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params", "name is required")
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	ctx = logging.WithCorrelationID(ctx, uuid.NewString())
	d.logger.Debug(ctx, "dispatching tool call", zap.String("tool", params.Name))

	content, err := d.tools.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		d.logger.Warn(ctx, "tool call failed", zap.String("tool", params.Name), zap.Error(err))
		return errorResponse(req.ID, CodeToolExecutionFailed, "Tool execution failed", err.Error())
	}
	if content == nil {
		content = []tool.ContentBlock{}
	}
	return successResponse(req.ID, map[string]any{"content": content})
}

func (d *Dispatcher) handlePluginsList(req Request) Response {
	return successResponse(req.ID, map[string]any{"plugins": d.plugins.List()})
}

type pluginsCallParams struct {
	Name   string         `json:"name"`
	Action string         `json:"action"`
	Args   map[string]any `json:"args"`
}

func (d *Dispatcher) handlePluginsCall(ctx context.Context, req Request) Response {
	var params pluginsCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		}
	}
	if params.Name == "" || params.Action == "" {
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params", "name and action are required")
	}
	if params.Args == nil {
		params.Args = map[string]any{}
	}

	p, ok := d.plugins.Get(params.Name)
	if !ok {
		return errorResponse(req.ID, CodeMethodNotFound, "Method not found", fmt.Sprintf("plugin %q not registered", params.Name))
	}

	execCtx := plugin.NewExecutionContext(params.Args)
	ctx = logging.WithCorrelationID(ctx, execCtx.CorrelationID)
	d.logger.Debug(ctx, "dispatching plugin call",
		zap.String("plugin", params.Name), zap.String("action", params.Action))

	result, err := p.Execute(ctx, params.Action, execCtx, params.Args)
	if err != nil {
		d.logger.Warn(ctx, "plugin call failed",
			zap.String("plugin", params.Name), zap.String("action", params.Action), zap.Error(err))
		return errorResponse(req.ID, CodePluginExecFailed, "Plugin execution failed", err.Error())
	}
	return successResponse(req.ID, result)
}

func successResponse(id any, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id any, code int, message string, data any) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: message, Data: data}}
}

func encode(resp Response) string {
	b, err := json.Marshal(resp)
	if err != nil {
		// Marshaling our own Response struct cannot fail under normal
		// circumstances; fall back to a minimal parse-error envelope
		// rather than panicking on a request path.
		return `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`
	}
	return string(b)
}
