package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/quartzhollow/mcpgraph/internal/plugin"
)

// pluginLookup is the subset of *plugin.Registry an adapter needs.
// Defined here (rather than importing the concrete type everywhere)
// so tests can substitute a fake without a real plugin registry.
type pluginLookup interface {
	Get(name string) (plugin.Plugin, bool)
}

// routeToCapability executes capability on the named plugin with the
// internal correlation sentinel (tool-to-plugin routing carries no
// external correlation id) and converts the result to the wire
// ContentBlock form.
func routeToCapability(ctx context.Context, plugins pluginLookup, pluginName, capability string, args map[string]any) ([]ContentBlock, error) {
	p, ok := plugins.Get(pluginName)
	if !ok {
		return nil, fmt.Errorf("tool: plugin %q not registered", pluginName)
	}

	execCtx := plugin.ExecutionContext{
		CorrelationID: plugin.InternalCorrelationID,
		Timestamp:     time.Now().UTC(),
		Parameters:    args,
	}

	result, err := p.Execute(ctx, capability, execCtx, args)
	if err != nil {
		return nil, err
	}
	return resultToContent(result)
}

// singleCapabilityTool adapts a plugin through one fixed capability:
// the tool always invokes that capability name, as the system_info,
// http, and neo4j tools do. Other capabilities of the plugin (such as
// system_info's get_memory_usage) are not reachable through the tool.
type singleCapabilityTool struct {
	name        string
	description string
	schema      map[string]any
	pluginName  string
	capability  string
	plugins     pluginLookup
}

func (t *singleCapabilityTool) Name() string { return t.name }

func (t *singleCapabilityTool) Description() string { return t.description }

func (t *singleCapabilityTool) InputSchema() map[string]any { return t.schema }

func (t *singleCapabilityTool) Call(ctx context.Context, args map[string]any) ([]ContentBlock, error) {
	return routeToCapability(ctx, t.plugins, t.pluginName, t.capability, args)
}

// NewSystemInfoTool adapts the system_info plugin's fixed
// get_system_info capability.
func NewSystemInfoTool(plugins pluginLookup) Tool {
	return &singleCapabilityTool{
		name:        "system_info",
		description: "Get current CPU, memory, and host information",
		schema:      map[string]any{"type": "object", "properties": map[string]any{}},
		pluginName:  "system_info",
		capability:  "get_system_info",
		plugins:     plugins,
	}
}

// NewHTTPTool adapts the http plugin's fixed request capability.
func NewHTTPTool(plugins pluginLookup) Tool {
	return &singleCapabilityTool{
		name:        "http_request",
		description: "Issue an HTTP request and return its status, headers, and body",
		schema: schemaFromParameters([]plugin.ParameterDefinition{
			{Name: "method", Description: "HTTP method", Type: plugin.ParameterTypeString, Required: true},
			{Name: "url", Description: "Target URL", Type: plugin.ParameterTypeString, Required: true},
			{Name: "headers", Description: "Request headers", Type: plugin.ParameterTypeObject, Required: false},
			{Name: "body", Description: "Request body", Type: plugin.ParameterTypeString, Required: false},
			{Name: "timeout_seconds", Description: "Request timeout in seconds (default 30)", Type: plugin.ParameterTypeNumber, Required: false},
		}),
		pluginName: "http",
		capability: "request",
		plugins:    plugins,
	}
}

// NewNeo4jTool adapts the neo4j plugin's fixed query capability.
func NewNeo4jTool(plugins pluginLookup) Tool {
	return &singleCapabilityTool{
		name:        "neo4j_query",
		description: "Run a Cypher statement against the context graph and return its rows",
		schema: schemaFromParameters([]plugin.ParameterDefinition{
			{Name: "query", Description: "Cypher statement to execute", Type: plugin.ParameterTypeString, Required: true},
			{Name: "params", Description: "Named parameters for the statement", Type: plugin.ParameterTypeObject, Required: false},
		}),
		pluginName: "neo4j",
		capability: "query",
		plugins:    plugins,
	}
}

// homeAssistantActions maps the tool's "action" argument to the
// home_assistant plugin's capability names.
var homeAssistantActions = map[string]string{
	"get_states":   "get_states",
	"get_state":    "get_state",
	"call_service": "call_service",
	"get_services": "get_services",
}

// homeAssistantTool adapts the home_assistant plugin's discriminated
// capability set: the tool reads a distinguished "action" field from
// its arguments and maps it to a capability name.
type homeAssistantTool struct {
	plugins pluginLookup
}

// NewHomeAssistantTool adapts the home_assistant plugin.
func NewHomeAssistantTool(plugins pluginLookup) Tool {
	return &homeAssistantTool{plugins: plugins}
}

func (t *homeAssistantTool) Name() string { return "homeassistant" }

func (t *homeAssistantTool) Description() string {
	return "Interact with Home Assistant: get entity states, call a service, or list services"
}

func (t *homeAssistantTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"description": "One of get_states, get_state, call_service, get_services",
				"enum":        []string{"get_states", "get_state", "call_service", "get_services"},
			},
			"entity_id":    map[string]any{"type": "string", "description": "ID of the entity to query (get_state)"},
			"domain":       map[string]any{"type": "string", "description": "Service domain (call_service)"},
			"service":      map[string]any{"type": "string", "description": "Service name (call_service)"},
			"service_data": map[string]any{"type": "object", "description": "Data to pass to the service call (call_service)"},
		},
		"required": []string{"action"},
	}
}

func (t *homeAssistantTool) Call(ctx context.Context, args map[string]any) ([]ContentBlock, error) {
	action, ok := args["action"].(string)
	if !ok || action == "" {
		return nil, fmt.Errorf("tool: homeassistant requires an \"action\" argument")
	}
	capability, ok := homeAssistantActions[action]
	if !ok {
		return nil, fmt.Errorf("tool: homeassistant unknown action %q", action)
	}
	return routeToCapability(ctx, t.plugins, "home_assistant", capability, args)
}
