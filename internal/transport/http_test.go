package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPAdapter_Version(t *testing.T) {
	adapter := NewHTTPAdapter(newTestDispatcher(), nil)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	adapter.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1.0.0", rec.Body.String())
}

func TestHTTPAdapter_ToolsList_UnwrapsEnvelope(t *testing.T) {
	d := newTestDispatcher()
	d.Handle(context.Background(), `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	adapter := NewHTTPAdapter(d, nil)

	req := httptest.NewRequest(http.MethodGet, "/tools/list", nil)
	rec := httptest.NewRecorder()
	adapter.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"tools"`)
	require.NotContains(t, rec.Body.String(), `"jsonrpc"`)
}

func TestHTTPAdapter_ToolsCall_ReturnsEnvelope(t *testing.T) {
	d := newTestDispatcher()
	d.Handle(context.Background(), `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	adapter := NewHTTPAdapter(d, nil)

	body := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"missing","arguments":{}}}`
	req := httptest.NewRequest(http.MethodPost, "/tools/call", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	adapter.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"jsonrpc"`)
	require.Contains(t, rec.Body.String(), `"error"`)
}

func TestHTTPAdapter_CORSHeaders(t *testing.T) {
	adapter := NewHTTPAdapter(newTestDispatcher(), nil)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	adapter.echo.ServeHTTP(rec, req)

	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
