// Package httpplugin implements the generic HTTP-request plugin: a
// single "request" capability that issues an arbitrary HTTP call on
// the caller's behalf.
package httpplugin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quartzhollow/mcpgraph/internal/plugin"
)

const (
	pluginName        = "http"
	pluginVersion     = "1.0.0"
	capabilityRequest = "request"
	defaultTimeout    = 30 * time.Second
)

// Plugin issues outbound HTTP requests. It uses plain net/http rather
// than a retrying client: the capability is a single-attempt call
// whose timeout surfaces as a plugin failure, never retried on the
// caller's behalf.
type Plugin struct {
	plugin.Base
	client *http.Client
}

// New constructs the http plugin.
func New() *Plugin {
	return &Plugin{client: &http.Client{}}
}

func (p *Plugin) Name() string { return pluginName }

func (p *Plugin) Version() string { return pluginVersion }

func (p *Plugin) Capabilities() []plugin.Capability {
	return []plugin.Capability{
		{
			Name:        capabilityRequest,
			Description: "Issue an HTTP request and return its status, headers, and body",
			Parameters: []plugin.ParameterDefinition{
				{Name: "method", Description: "HTTP method", Type: plugin.ParameterTypeString, Required: true},
				{Name: "url", Description: "Target URL", Type: plugin.ParameterTypeString, Required: true},
				{Name: "headers", Description: "Request headers", Type: plugin.ParameterTypeObject, Required: false},
				{Name: "body", Description: "Request body", Type: plugin.ParameterTypeString, Required: false},
				{Name: "timeout_seconds", Description: "Request timeout in seconds (default 30)", Type: plugin.ParameterTypeNumber, Required: false},
			},
		},
	}
}

func (p *Plugin) Execute(ctx context.Context, capability string, execCtx plugin.ExecutionContext, params map[string]any) (*plugin.Result, error) {
	if capability != capabilityRequest {
		return nil, fmt.Errorf("http: unknown capability %q", capability)
	}

	method, ok := params["method"].(string)
	if !ok || method == "" {
		return nil, fmt.Errorf("http: method is required")
	}
	url, ok := params["url"].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("http: url is required")
	}

	var body io.Reader
	if b, ok := params["body"].(string); ok && b != "" {
		body = bytes.NewBufferString(b)
	}

	timeout := defaultTimeout
	if secs, ok := params["timeout_seconds"].(float64); ok && secs > 0 {
		timeout = time.Duration(secs * float64(time.Second))
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	if headers, ok := params["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				req.Header.Set(k, s)
			}
			// non-string header values are dropped: the wire format
			// for a header is always a string.
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read response body: %w", err)
	}

	respHeaders := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		respHeaders[k] = resp.Header.Get(k)
	}

	data := map[string]any{
		"status":      resp.StatusCode,
		"status_text": http.StatusText(resp.StatusCode),
		"headers":     respHeaders,
		"body":        string(respBody),
	}

	return &plugin.Result{Success: true, Data: data}, nil
}
