package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dconrad/dispatch/registry"
)

func TestToOutcome_OkValue(t *testing.T) {
	t.Parallel()
	o := toOutcome[int](registry.Outcome{ID: 2, OK: true, Value: 9})
	require.True(t, o.OK)
	require.Equal(t, 9, o.Value)
	require.NoError(t, o.Err)
}

func TestToOutcome_ErrCarriesJobID(t *testing.T) {
	t.Parallel()
	o := toOutcome[int](registry.Outcome{ID: 3, OK: false, ErrText: "division by zero"})
	require.False(t, o.OK)

	var jerr *JobError
	require.ErrorAs(t, o.Err, &jerr)
	require.Equal(t, 3, jerr.ID)
	require.Contains(t, jerr.Error(), "division by zero")
}

func TestToOutcome_TypeMismatchBecomesErr(t *testing.T) {
	t.Parallel()
	o := toOutcome[int](registry.Outcome{ID: 0, OK: true, Value: "not an int"})
	require.False(t, o.OK)
	require.Error(t, o.Err)
}

func TestToOutcomes_PreservesOrder(t *testing.T) {
	t.Parallel()
	raw := []registry.Outcome{
		{ID: 0, OK: true, Value: 0},
		{ID: 1, OK: true, Value: 1},
		{ID: 2, OK: false, ErrText: "boom"},
	}
	out := toOutcomes[int](raw)
	require.Len(t, out, 3)
	require.Equal(t, 1, out[1].Value)
	require.False(t, out[2].OK)
}
