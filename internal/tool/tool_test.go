package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name        string
	description string
	schema      map[string]any
	calls       int
	result      []ContentBlock
	err         error
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Description() string { return s.description }

func (s *stubTool) InputSchema() map[string]any { return s.schema }
func (s *stubTool) Call(ctx context.Context, args map[string]any) ([]ContentBlock, error) {
	s.calls++
	return s.result, s.err
}

func TestRegistry_ListIsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "b"})
	r.Register(&stubTool{name: "a"})
	r.Register(&stubTool{name: "c"})

	defs := r.List()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	require.Equal(t, []string{"b", "a", "c"}, names)
}

func TestRegistry_RegisterDuplicateReplacesInPlace(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "x", description: "first"})
	r.Register(&stubTool{name: "y"})
	r.Register(&stubTool{name: "x", description: "second"})

	defs := r.List()
	require.Len(t, defs, 2)
	require.Equal(t, "x", defs[0].Name)
	require.Equal(t, "second", defs[0].Description)
	require.Equal(t, "y", defs[1].Name)
}

func TestRegistry_CallDispatchesToNamedTool(t *testing.T) {
	r := NewRegistry()
	want := []ContentBlock{{Type: "text", Text: "hello"}}
	st := &stubTool{name: "echo", result: want}
	r.Register(st)

	got, err := r.Call(context.Background(), "echo", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, 1, st.calls)
}

func TestRegistry_CallNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrNotFound)
}
