// Package plugin defines the capability-provider contract that every
// concrete plugin (system info, Home Assistant, HTTP, Neo4j) implements,
// and the execution-context/result shapes that flow through a call.
package plugin

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ParameterType enumerates the wire-level argument types a capability
// can declare for one of its parameters.
type ParameterType string

const (
	ParameterTypeString  ParameterType = "string"
	ParameterTypeNumber  ParameterType = "number"
	ParameterTypeBoolean ParameterType = "boolean"
	ParameterTypeObject  ParameterType = "object"
	ParameterTypeArray   ParameterType = "array"
)

// ParameterDefinition describes one named argument of a Capability.
type ParameterDefinition struct {
	Name        string
	Description string
	Type        ParameterType
	Required    bool
}

// Capability is a single named operation a Plugin exposes.
type Capability struct {
	Name        string
	Description string
	Parameters  []ParameterDefinition
}

// ExecutionContext carries per-call metadata into Plugin.Execute.
type ExecutionContext struct {
	CorrelationID string
	Timestamp     time.Time
	Parameters    map[string]any
}

// NewExecutionContext builds a context with a fresh correlation id.
func NewExecutionContext(params map[string]any) ExecutionContext {
	return ExecutionContext{
		CorrelationID: uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Parameters:    params,
	}
}

// InternalCorrelationID is the fixed sentinel used when a tool adapter
// routes a call to its plugin internally, rather than on behalf of an
// externally supplied correlation id.
const InternalCorrelationID = "tool_call"

// Result is what a single capability invocation produces. It is
// returned verbatim as the result of a plugins/call request, so the
// field tags are the wire contract.
type Result struct {
	Success        bool               `json:"success"`
	Data           any                `json:"data,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	ContextUpdates map[string]any     `json:"context_updates,omitempty"`
}

// Plugin is the single polymorphism point for every capability
// provider. Implementations must be safe for concurrent use: the
// registry releases its lock before Execute runs, so multiple calls
// into the same plugin can interleave.
type Plugin interface {
	Name() string
	Version() string
	Capabilities() []Capability
	Execute(ctx context.Context, capability string, execCtx ExecutionContext, params map[string]any) (*Result, error)
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Base gives a concrete plugin default no-op lifecycle hooks; embed it
// to avoid repeating empty Initialize/Shutdown bodies on plugins that
// have no setup or teardown work.
type Base struct{}

func (Base) Initialize(ctx context.Context) error { return nil }
func (Base) Shutdown(ctx context.Context) error   { return nil }
