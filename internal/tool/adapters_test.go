package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quartzhollow/mcpgraph/internal/plugin"
)

type fakePlugin struct {
	name        string
	lastCap     string
	lastParams  map[string]any
	lastExecCtx plugin.ExecutionContext
	result      *plugin.Result
	err         error
}

func (f *fakePlugin) Name() string { return f.name }

func (f *fakePlugin) Version() string { return "1.0.0" }

func (f *fakePlugin) Capabilities() []plugin.Capability { return nil }

func (f *fakePlugin) Initialize(ctx context.Context) error { return nil }

func (f *fakePlugin) Shutdown(ctx context.Context) error { return nil }
func (f *fakePlugin) Execute(ctx context.Context, capability string, execCtx plugin.ExecutionContext, params map[string]any) (*plugin.Result, error) {
	f.lastCap = capability
	f.lastParams = params
	f.lastExecCtx = execCtx
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeLookup struct {
	plugins map[string]plugin.Plugin
}

func (f *fakeLookup) Get(name string) (plugin.Plugin, bool) {
	p, ok := f.plugins[name]
	return p, ok
}

func TestSingleCapabilityTool_RoutesToFixedCapability(t *testing.T) {
	p := &fakePlugin{name: "system_info", result: &plugin.Result{Success: true, Data: map[string]any{"cpu_usage": 1.5}}}
	lookup := &fakeLookup{plugins: map[string]plugin.Plugin{"system_info": p}}

	sysInfoTool := NewSystemInfoTool(lookup)
	content, err := sysInfoTool.Call(context.Background(), map[string]any{})
	require.NoError(t, err)
	require.Equal(t, "get_system_info", p.lastCap)
	require.Equal(t, plugin.InternalCorrelationID, p.lastExecCtx.CorrelationID)
	require.Len(t, content, 1)
	require.Equal(t, "text", content[0].Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(content[0].Text), &decoded))
	require.Equal(t, 1.5, decoded["cpu_usage"])
}

func TestSingleCapabilityTool_PluginNotRegistered(t *testing.T) {
	lookup := &fakeLookup{plugins: map[string]plugin.Plugin{}}
	httpTool := NewHTTPTool(lookup)

	_, err := httpTool.Call(context.Background(), map[string]any{"method": "GET", "url": "http://x"})
	require.Error(t, err)
}

func TestSingleCapabilityTool_PluginExecutionErrorPropagates(t *testing.T) {
	p := &fakePlugin{name: "http", err: fmt.Errorf("request failed")}
	lookup := &fakeLookup{plugins: map[string]plugin.Plugin{"http": p}}

	httpTool := NewHTTPTool(lookup)
	_, err := httpTool.Call(context.Background(), map[string]any{"method": "GET", "url": "http://x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}

func TestHomeAssistantTool_RequiresAction(t *testing.T) {
	lookup := &fakeLookup{plugins: map[string]plugin.Plugin{}}
	haTool := NewHomeAssistantTool(lookup)

	_, err := haTool.Call(context.Background(), map[string]any{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "action")
}

func TestHomeAssistantTool_DispatchesActionToCapability(t *testing.T) {
	p := &fakePlugin{name: "home_assistant", result: &plugin.Result{Success: true, Data: map[string]any{}}}
	lookup := &fakeLookup{plugins: map[string]plugin.Plugin{"home_assistant": p}}

	haTool := NewHomeAssistantTool(lookup)
	_, err := haTool.Call(context.Background(), map[string]any{"action": "get_state", "entity_id": "light.kitchen"})
	require.NoError(t, err)
	require.Equal(t, "get_state", p.lastCap)
}

func TestHomeAssistantTool_UnknownAction(t *testing.T) {
	p := &fakePlugin{name: "home_assistant"}
	lookup := &fakeLookup{plugins: map[string]plugin.Plugin{"home_assistant": p}}

	haTool := NewHomeAssistantTool(lookup)
	_, err := haTool.Call(context.Background(), map[string]any{"action": "reboot_the_house"})
	require.Error(t, err)
}

func TestNeo4jTool_InputSchemaRequiresQuery(t *testing.T) {
	lookup := &fakeLookup{plugins: map[string]plugin.Plugin{}}
	neo4jTool := NewNeo4jTool(lookup)

	schema := neo4jTool.InputSchema()
	required, ok := schema["required"].([]string)
	require.True(t, ok)
	require.Contains(t, required, "query")
}
