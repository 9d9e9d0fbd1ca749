// Package neo4jplugin implements the neo4j plugin: a single "query"
// capability that runs an arbitrary Cypher statement against the
// context graph and returns its rows, for clients that need direct
// graph access rather than one of the fixed store/find primitives.
package neo4jplugin

import (
	"context"
	"fmt"

	"github.com/quartzhollow/mcpgraph/internal/contextgraph"
	"github.com/quartzhollow/mcpgraph/internal/plugin"
)

const (
	pluginName      = "neo4j"
	pluginVersion   = "1.0.0"
	capabilityQuery = "query"
)

// Plugin executes Cypher statements via a contextgraph.Graph.
type Plugin struct {
	plugin.Base
	graph contextgraph.Graph
}

// New constructs the neo4j plugin. graph is required: without a
// connection there is nothing for this plugin's capability to run.
func New(graph contextgraph.Graph) *Plugin {
	return &Plugin{graph: graph}
}

func (p *Plugin) Name() string { return pluginName }

func (p *Plugin) Version() string { return pluginVersion }

func (p *Plugin) Capabilities() []plugin.Capability {
	return []plugin.Capability{
		{
			Name:        capabilityQuery,
			Description: "Run a Cypher statement against the context graph and return its rows",
			Parameters: []plugin.ParameterDefinition{
				{Name: "query", Description: "Cypher statement to execute", Type: plugin.ParameterTypeString, Required: true},
				{Name: "params", Description: "Named parameters for the statement", Type: plugin.ParameterTypeObject, Required: false},
			},
		},
	}
}

func (p *Plugin) Execute(ctx context.Context, capability string, execCtx plugin.ExecutionContext, params map[string]any) (*plugin.Result, error) {
	if capability != capabilityQuery {
		return nil, fmt.Errorf("neo4j: unknown capability %q", capability)
	}
	if p.graph == nil {
		return nil, fmt.Errorf("neo4j: context graph not configured")
	}

	query, ok := params["query"].(string)
	if !ok || query == "" {
		return nil, fmt.Errorf("neo4j: query is required")
	}

	queryParams, _ := params["params"].(map[string]any)
	if queryParams == nil {
		queryParams = map[string]any{}
	}

	rows, err := p.graph.RunQuery(ctx, query, queryParams)
	if err != nil {
		return nil, fmt.Errorf("neo4j: run query: %w", err)
	}

	return &plugin.Result{Success: true, Data: map[string]any{"rows": rows, "count": len(rows)}}, nil
}
