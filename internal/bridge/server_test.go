package bridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServer_Health(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tools":[]}`))
	}))
	t.Cleanup(upstream.Close)

	client := NewClient(upstream.URL, nil)
	server := NewServer(client, nil, Config{Version: "9.9.9"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp.Status)
	require.Equal(t, "9.9.9", resp.Version)
}

func TestServer_Tools_NormalizesToSnakeCase(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tools":[{"name":"system_info","description":"d","inputSchema":{"type":"object"}}]}`))
	}))
	t.Cleanup(upstream.Close)

	client := NewClient(upstream.URL, nil)
	server := NewServer(client, nil, Config{})

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"input_schema"`)
	require.NotContains(t, rec.Body.String(), `"inputSchema"`)
}

func TestServer_ToolsCall_AlwaysReturns200(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tools/list":
			_, _ = w.Write([]byte(`{"tools":[]}`))
		case "/tools/call":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-1,"message":"Tool execution failed","data":"no token configured"}}`))
		}
	}))
	t.Cleanup(upstream.Close)

	client := NewClient(upstream.URL, nil)
	server := NewServer(client, nil, Config{})

	body, _ := json.Marshal(toolsCallRequest{ToolName: "homeassistant", Arguments: map[string]any{"action": "get_state"}})
	req := httptest.NewRequest(http.MethodPost, "/tools/call", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"content":null`)

	var result CallResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	require.Equal(t, "no token configured", *result.Error)
}

func TestServer_ToolsCall_MissingToolNameIs400(t *testing.T) {
	client := NewClient("http://unused", nil)
	server := NewServer(client, nil, Config{})

	req := httptest.NewRequest(http.MethodPost, "/tools/call", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_OpenAPIDocument(t *testing.T) {
	client := NewClient("http://unused", nil)
	server := NewServer(client, nil, Config{})

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "3.0.3")
}
