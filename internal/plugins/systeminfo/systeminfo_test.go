package systeminfo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quartzhollow/mcpgraph/internal/contextgraph"
	"github.com/quartzhollow/mcpgraph/internal/plugin"
)

type recordingGraph struct {
	states        []map[string]any
	metrics       []string
	relationships int
}

func (g *recordingGraph) StoreMetric(ctx context.Context, metricType string, value any, timestamp time.Time) (*contextgraph.Node, error) {
	g.metrics = append(g.metrics, metricType)
	return &contextgraph.Node{ID: metricType, Type: contextgraph.NodeTypeMetric, Timestamp: timestamp}, nil
}

func (g *recordingGraph) StoreSystemState(ctx context.Context, state map[string]any) (*contextgraph.Node, error) {
	g.states = append(g.states, state)
	return &contextgraph.Node{ID: "state-1", Type: contextgraph.NodeTypeSystemState, Timestamp: time.Now().UTC()}, nil
}

func (g *recordingGraph) CreateRelationship(ctx context.Context, fromID, toID string, relType contextgraph.RelationType, properties map[string]string) error {
	g.relationships++
	return nil
}

func (g *recordingGraph) FindPatterns(ctx context.Context, nodeType contextgraph.NodeType, window time.Duration) ([]*contextgraph.Node, error) {
	return nil, nil
}

func (g *recordingGraph) RunQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return nil, nil
}

func (g *recordingGraph) Close(ctx context.Context) error { return nil }

func TestPlugin_GetSystemInfo_PersistsStateAndMetrics(t *testing.T) {
	graph := &recordingGraph{}
	p := New(graph)

	execCtx := plugin.NewExecutionContext(nil)
	result, err := p.Execute(context.Background(), "get_system_info", execCtx, map[string]any{})
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data.(map[string]any)
	require.Contains(t, data, "cpu_usage")
	require.Contains(t, data, "total_memory_kb")
	require.Contains(t, data, "memory_usage_percent")

	require.Len(t, graph.states, 1)
	require.NotEmpty(t, graph.metrics)
	require.Equal(t, len(graph.metrics), graph.relationships)
}

func TestPlugin_GetMemoryUsage(t *testing.T) {
	p := New(nil)
	execCtx := plugin.NewExecutionContext(nil)
	result, err := p.Execute(context.Background(), "get_memory_usage", execCtx, map[string]any{})
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data.(map[string]any)
	require.Contains(t, data, "memory_usage_percent")
	require.NotContains(t, data, "cpu_usage")
}

func TestPlugin_Execute_UnknownCapability(t *testing.T) {
	p := New(nil)
	execCtx := plugin.NewExecutionContext(nil)
	_, err := p.Execute(context.Background(), "reboot", execCtx, map[string]any{})
	require.Error(t, err)
}

func TestPlugin_NilGraphSkipsPersistence(t *testing.T) {
	p := New(nil)
	execCtx := plugin.NewExecutionContext(nil)
	result, err := p.Execute(context.Background(), "get_system_info", execCtx, map[string]any{})
	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestPlugin_Capabilities(t *testing.T) {
	p := New(nil)
	names := make([]string, 0)
	for _, c := range p.Capabilities() {
		names = append(names, c.Name)
	}
	require.Contains(t, names, "get_system_info")
	require.Contains(t, names, "get_memory_usage")
}
