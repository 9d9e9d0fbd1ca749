package plugin

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultWireShape(t *testing.T) {
	result := &Result{
		Success: true,
		Data:    map[string]any{"rows": 3},
		Metrics: map[string]float64{"elapsed_ms": 12.5},
	}

	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"data":{"rows":3},"metrics":{"elapsed_ms":12.5}}`, string(encoded))
}

func TestResultWireShape_FailureOmitsEmptyFields(t *testing.T) {
	encoded, err := json.Marshal(&Result{Success: false})
	require.NoError(t, err)
	require.JSONEq(t, `{"success":false}`, string(encoded))
}

func TestNewExecutionContext_FreshCorrelationID(t *testing.T) {
	a := NewExecutionContext(nil)
	b := NewExecutionContext(nil)
	require.NotEmpty(t, a.CorrelationID)
	require.NotEqual(t, a.CorrelationID, b.CorrelationID)
}
