// Package bridge implements the HTTP bridge: a separate process that
// speaks plain REST HTTP to clients and MCP-over-HTTP to the MCP
// server.
package bridge

// ContentBlock mirrors the MCP server's tool.ContentBlock on the
// bridge's wire surface.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolInfo is the bridge's REST-facing view of a tool, snake_case
// throughout (unlike the MCP server's camelCase inputSchema).
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// serverToolDef is the shape a tool definition arrives in from the
// MCP server (camelCase inputSchema).
type serverToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func (t serverToolDef) toToolInfo() ToolInfo {
	return ToolInfo{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
}

// CallResult is the bridge's {success, content, error} contract for
// POST /tools/call, always delivered with HTTP 200. Content and Error
// are serialized even when nil: callers key off the explicit null, so
// neither field is omitted from the body.
type CallResult struct {
	Success bool           `json:"success"`
	Content []ContentBlock `json:"content"`
	Error   *string        `json:"error"`
}
