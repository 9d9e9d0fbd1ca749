// Package tool implements the MCP-facing view of a plugin capability:
// the Tool contract, a registry that backs tools/list and tools/call,
// and the ContentBlock wire shape every successful tool call returns.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/quartzhollow/mcpgraph/internal/plugin"
)

// ErrNotFound is returned by Registry.Call when no tool is registered
// under the requested name.
var ErrNotFound = errors.New("tool: not found")

// ContentBlock is the tagged-variant element of a tool's response
// payload. Today only the text variant exists, but the Type
// discriminator is preserved on the wire so future variants (image,
// binary) stay compatible.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolDefinition is the immutable, wire-facing description of a tool,
// as surfaced by tools/list.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Tool is the MCP-facing view of one plugin capability.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Call(ctx context.Context, args map[string]any) ([]ContentBlock, error)
}

// Definition builds the wire ToolDefinition for t.
func Definition(t Tool) ToolDefinition {
	return ToolDefinition{Name: t.Name(), Description: t.Description(), InputSchema: t.InputSchema()}
}

// Registry is the catalogue of tools surfaced via tools/list and
// dispatched via tools/call. Registration order is preserved so that
// two successive List calls, absent configuration change, return
// tools in the same stable order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Tool
}

// NewRegistry returns an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts t under its own Name(). A duplicate name replaces
// the prior entry in place, keeping its original position in the
// registration order.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// List returns the ToolDefinition view of every registered tool, in
// registration order.
func (r *Registry) List() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, Definition(r.tools[name]))
	}
	return defs
}

// Call dispatches args to the named tool's Call method. It returns
// ErrNotFound if no tool is registered under name.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) ([]ContentBlock, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t.Call(ctx, args)
}

// resultToContent converts a plugin.Result's Data into a single
// pretty-printed text ContentBlock.
func resultToContent(result *plugin.Result) ([]ContentBlock, error) {
	encoded, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tool: encode result data: %w", err)
	}
	return []ContentBlock{{Type: "text", Text: string(encoded)}}, nil
}

// schemaFromParameters builds a JSON-schema object literal from a
// plugin capability's ordered parameter list.
func schemaFromParameters(params []plugin.ParameterDefinition) map[string]any {
	properties := make(map[string]any, len(params))
	required := make([]string, 0, len(params))
	for _, p := range params {
		properties[p.Name] = map[string]any{
			"type":        jsonSchemaType(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func jsonSchemaType(t plugin.ParameterType) string {
	switch t {
	case plugin.ParameterTypeString:
		return "string"
	case plugin.ParameterTypeNumber:
		return "number"
	case plugin.ParameterTypeBoolean:
		return "boolean"
	case plugin.ParameterTypeArray:
		return "array"
	case plugin.ParameterTypeObject:
		return "object"
	default:
		return "string"
	}
}
