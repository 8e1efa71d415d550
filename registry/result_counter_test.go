package registry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignature_ScalarsByValueOthersByType(t *testing.T) {
	t.Parallel()
	require.Equal(t, "int:7", signature(7))
	require.Equal(t, "float:1.5", signature(1.5))
	require.Equal(t, "bool:true", signature(true))
	require.Equal(t, "string:ok", signature("ok"))
	require.Equal(t, "nil", signature(nil))

	type payload struct{ X int }
	require.Equal(t, "type:registry.payload", signature(payload{X: 1}))
	require.Equal(t, "type:[]int", signature([]int{1, 2}))
}

func TestResultCounter_CountsRepeats(t *testing.T) {
	t.Parallel()
	c := newResultCounter()
	now := time.Now()
	c.observe(1, now)
	c.observe(1, now.Add(time.Second))
	c.observe("x", now)

	counts, seen := c.snapshot()
	require.Equal(t, 2, counts["int:1"])
	require.Equal(t, 1, counts["string:x"])
	require.Equal(t, now.Add(time.Second), seen["int:1"])
}

func TestResultCounter_CapFoldsIntoOverflow(t *testing.T) {
	t.Parallel()
	c := newResultCounter()
	now := time.Now()
	for i := 0; i < maxCounterCardinality; i++ {
		c.observe(i, now)
	}
	// Distinct signatures past the cap share the overflow bucket.
	c.observe(1000, now)
	c.observe(2000, now)

	counts, _ := c.snapshot()
	require.Len(t, counts, maxCounterCardinality+1)
	require.Equal(t, 2, counts["…overflow"])
	// An already-tracked signature still counts individually.
	c.observe(0, now)
	counts, _ = c.snapshot()
	require.Equal(t, 2, counts[fmt.Sprintf("int:%d", 0)])
}

func TestOrderedSink_FlushesContiguousPrefix(t *testing.T) {
	t.Parallel()
	s := newOrderedSink(4)
	s.insert(Outcome{ID: 2, OK: true, Value: 4})
	require.Equal(t, 0, s.next)

	s.insert(Outcome{ID: 0, OK: true, Value: 0})
	require.Equal(t, 1, s.next)

	s.insert(Outcome{ID: 1, OK: true, Value: 1})
	require.Equal(t, 3, s.next)

	s.insert(Outcome{ID: 3, OK: true, Value: 9})
	require.Equal(t, 4, s.next)

	out := s.ordered()
	for i, o := range out {
		require.Equal(t, i, o.ID)
		require.Equal(t, i*i, o.Value)
	}
}
