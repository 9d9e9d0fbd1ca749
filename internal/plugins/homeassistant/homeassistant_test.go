package homeassistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quartzhollow/mcpgraph/internal/plugin"
)

func TestPlugin_Execute_GetStates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/states", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"entity_id":"light.kitchen","state":"on"}]`))
	}))
	t.Cleanup(srv.Close)

	p := New(Config{BaseURL: srv.URL, Token: "secret"})
	execCtx := plugin.NewExecutionContext(nil)
	result, err := p.Execute(context.Background(), "get_states", execCtx, map[string]any{})

	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestPlugin_Execute_GetState_RequiresEntityID(t *testing.T) {
	p := New(Config{BaseURL: "http://unused", Token: "secret"})
	execCtx := plugin.NewExecutionContext(nil)
	_, err := p.Execute(context.Background(), "get_state", execCtx, map[string]any{})
	require.Error(t, err)
}

func TestPlugin_Execute_NoTokenFails(t *testing.T) {
	p := New(Config{BaseURL: "http://unused"})
	execCtx := plugin.NewExecutionContext(nil)
	_, err := p.Execute(context.Background(), "get_states", execCtx, map[string]any{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "token not configured")
}

func TestPlugin_Execute_CallService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/services/light/turn_on", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	p := New(Config{BaseURL: srv.URL, Token: "secret"})
	execCtx := plugin.NewExecutionContext(nil)
	result, err := p.Execute(context.Background(), "call_service", execCtx, map[string]any{
		"domain":       "light",
		"service":      "turn_on",
		"service_data": map[string]any{"entity_id": "light.kitchen"},
	})

	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestPlugin_Execute_CallService_RequiresDomainAndService(t *testing.T) {
	p := New(Config{BaseURL: "http://unused", Token: "secret"})
	execCtx := plugin.NewExecutionContext(nil)

	_, err := p.Execute(context.Background(), "call_service", execCtx, map[string]any{"service": "turn_on"})
	require.Error(t, err)

	_, err = p.Execute(context.Background(), "call_service", execCtx, map[string]any{"domain": "light"})
	require.Error(t, err)
}

func TestPlugin_Execute_GetServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/services", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	p := New(Config{BaseURL: srv.URL, Token: "secret"})
	execCtx := plugin.NewExecutionContext(nil)
	result, err := p.Execute(context.Background(), "get_services", execCtx, map[string]any{})
	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestPlugin_Execute_NonOKStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
	}))
	t.Cleanup(srv.Close)

	p := New(Config{BaseURL: srv.URL, Token: "secret"})
	execCtx := plugin.NewExecutionContext(nil)
	_, err := p.Execute(context.Background(), "get_states", execCtx, map[string]any{})
	require.Error(t, err)
}
