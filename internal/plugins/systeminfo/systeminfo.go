// Package systeminfo implements the system_info plugin: operating
// system and resource introspection via gopsutil, the Go analogue of
// the sysinfo crate the original implementation was built on.
package systeminfo

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quartzhollow/mcpgraph/internal/contextgraph"
	"github.com/quartzhollow/mcpgraph/internal/plugin"
)

const (
	capabilityGetSystemInfo  = "get_system_info"
	capabilityGetMemoryUsage = "get_memory_usage"
	pluginName               = "system_info"
	pluginVersion            = "1.0.0"
)

// Plugin reports CPU/memory/host facts and records each reading in
// the context graph.
type Plugin struct {
	plugin.Base
	graph contextgraph.Graph
}

// New constructs the system_info plugin. graph may be nil, in which
// case readings are not persisted (useful for tests).
func New(graph contextgraph.Graph) *Plugin {
	return &Plugin{graph: graph}
}

func (p *Plugin) Name() string { return pluginName }

func (p *Plugin) Version() string { return pluginVersion }

func (p *Plugin) Capabilities() []plugin.Capability {
	return []plugin.Capability{
		{Name: capabilityGetSystemInfo, Description: "Get current CPU, memory, and host information"},
		{Name: capabilityGetMemoryUsage, Description: "Get current memory usage only"},
	}
}

func (p *Plugin) Execute(ctx context.Context, capability string, execCtx plugin.ExecutionContext, params map[string]any) (*plugin.Result, error) {
	switch capability {
	case capabilityGetSystemInfo:
		return p.getSystemInfo(ctx)
	case capabilityGetMemoryUsage:
		return p.getMemoryUsage(ctx)
	default:
		return nil, fmt.Errorf("system_info: unknown capability %q", capability)
	}
}

func (p *Plugin) getSystemInfo(ctx context.Context) (*plugin.Result, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("system_info: cpu percent: %w", err)
	}
	cpuUsage := 0.0
	if len(percents) > 0 {
		cpuUsage = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("system_info: virtual memory: %w", err)
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("system_info: host info: %w", err)
	}

	data := map[string]any{
		"cpu_usage":            cpuUsage,
		"total_memory_kb":      vm.Total / 1024,
		"used_memory_kb":       vm.Used / 1024,
		"memory_usage_percent": vm.UsedPercent,
		"os_name":              info.Platform,
		"os_version":           info.PlatformVersion,
		"hostname":             info.Hostname,
	}

	if err := p.persist(ctx, data); err != nil {
		return nil, err
	}

	return &plugin.Result{Success: true, Data: data}, nil
}

func (p *Plugin) getMemoryUsage(ctx context.Context) (*plugin.Result, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("system_info: virtual memory: %w", err)
	}

	data := map[string]any{
		"total_memory_kb":      vm.Total / 1024,
		"used_memory_kb":       vm.Used / 1024,
		"memory_usage_percent": vm.UsedPercent,
	}

	if err := p.persist(ctx, data); err != nil {
		return nil, err
	}

	return &plugin.Result{Success: true, Data: data}, nil
}

// persist writes a SystemState node plus one Metric node per numeric
// field, connected by CONTAINS relationships, matching the write
// pattern the original system_info plugin performed on every call.
func (p *Plugin) persist(ctx context.Context, data map[string]any) error {
	if p.graph == nil {
		return nil
	}

	state, err := p.graph.StoreSystemState(ctx, data)
	if err != nil {
		return fmt.Errorf("system_info: store system state: %w", err)
	}

	for key, value := range data {
		numeric, ok := asFloat(value)
		if !ok {
			continue
		}
		metric, err := p.graph.StoreMetric(ctx, key, numeric, state.Timestamp)
		if err != nil {
			return fmt.Errorf("system_info: store metric %s: %w", key, err)
		}
		if err := p.graph.CreateRelationship(ctx, state.ID, metric.ID, contextgraph.RelationContains, nil); err != nil {
			return fmt.Errorf("system_info: relate metric %s: %w", key, err)
		}
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
