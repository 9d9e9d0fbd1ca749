// Package homeassistant implements the home_assistant plugin: a thin
// REST client over the Home Assistant HTTP API, with four
// capabilities (get_states, get_state, call_service, get_services).
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/quartzhollow/mcpgraph/internal/plugin"
)

const (
	pluginName    = "home_assistant"
	pluginVersion = "1.0.0"

	capabilityGetStates   = "get_states"
	capabilityGetState    = "get_state"
	capabilityCallService = "call_service"
	capabilityGetServices = "get_services"
)

// Config is the plugin's connection configuration, sourced from
// HOMEASSISTANT_URL and HOMEASSISTANT_TOKEN.
type Config struct {
	BaseURL string
	Token   string
}

// Plugin talks to a Home Assistant instance over its REST API.
type Plugin struct {
	plugin.Base
	cfg    Config
	client *http.Client
}

// New constructs the home_assistant plugin.
func New(cfg Config) *Plugin {
	return &Plugin{cfg: cfg, client: &http.Client{}}
}

func (p *Plugin) Name() string { return pluginName }

func (p *Plugin) Version() string { return pluginVersion }

func (p *Plugin) Capabilities() []plugin.Capability {
	return []plugin.Capability{
		{Name: capabilityGetStates, Description: "Get all entity states from Home Assistant"},
		{
			Name:        capabilityGetState,
			Description: "Get state of a specific entity",
			Parameters: []plugin.ParameterDefinition{
				{Name: "entity_id", Description: "ID of the entity to query", Type: plugin.ParameterTypeString, Required: true},
			},
		},
		{
			Name:        capabilityCallService,
			Description: "Call a Home Assistant service",
			Parameters: []plugin.ParameterDefinition{
				{Name: "domain", Description: "Service domain", Type: plugin.ParameterTypeString, Required: true},
				{Name: "service", Description: "Service name", Type: plugin.ParameterTypeString, Required: true},
				{Name: "service_data", Description: "Data to pass to the service call", Type: plugin.ParameterTypeObject, Required: false},
			},
		},
		{Name: capabilityGetServices, Description: "Get list of available Home Assistant services"},
	}
}

func (p *Plugin) Execute(ctx context.Context, capability string, execCtx plugin.ExecutionContext, params map[string]any) (*plugin.Result, error) {
	switch capability {
	case capabilityGetStates:
		data, err := p.do(ctx, http.MethodGet, "/api/states", nil)
		if err != nil {
			return nil, err
		}
		return &plugin.Result{Success: true, Data: data}, nil

	case capabilityGetState:
		entityID, ok := params["entity_id"].(string)
		if !ok || entityID == "" {
			return nil, fmt.Errorf("home_assistant: entity_id is required")
		}
		data, err := p.do(ctx, http.MethodGet, "/api/states/"+entityID, nil)
		if err != nil {
			return nil, err
		}
		return &plugin.Result{Success: true, Data: data}, nil

	case capabilityCallService:
		domain, ok := params["domain"].(string)
		if !ok || domain == "" {
			return nil, fmt.Errorf("home_assistant: domain is required")
		}
		service, ok := params["service"].(string)
		if !ok || service == "" {
			return nil, fmt.Errorf("home_assistant: service is required")
		}
		serviceData := params["service_data"]
		if serviceData == nil {
			serviceData = map[string]any{}
		}
		path := fmt.Sprintf("/api/services/%s/%s", domain, service)
		data, err := p.do(ctx, http.MethodPost, path, serviceData)
		if err != nil {
			return nil, err
		}
		return &plugin.Result{Success: true, Data: data}, nil

	case capabilityGetServices:
		data, err := p.do(ctx, http.MethodGet, "/api/services", nil)
		if err != nil {
			return nil, err
		}
		return &plugin.Result{Success: true, Data: data}, nil

	default:
		return nil, fmt.Errorf("home_assistant: unknown capability %q", capability)
	}
}

// do issues an authenticated call against the Home Assistant REST
// API and decodes a JSON response. A missing token fails every
// capability, matching the original plugin's lazy auth-header check.
func (p *Plugin) do(ctx context.Context, method, path string, body any) (any, error) {
	if p.cfg.Token == "" {
		return nil, fmt.Errorf("home_assistant: token not configured, set HOMEASSISTANT_TOKEN")
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("home_assistant: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("home_assistant: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("home_assistant: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("home_assistant: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("home_assistant: %s %s failed: %s", method, path, string(respBody))
	}

	if len(respBody) == 0 {
		return map[string]any{}, nil
	}

	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("home_assistant: decode response: %w", err)
	}
	return decoded, nil
}
