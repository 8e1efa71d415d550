package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dconrad/dispatch/registry"
)

func TestZip_SingleIterable(t *testing.T) {
	t.Parallel()
	got := Zip([]int{10, 20, 30})
	require.Equal(t, []registry.Args{{10}, {20}, {30}}, got)
}

func TestZip_TwoIterables(t *testing.T) {
	t.Parallel()
	got := Zip([]int{0, 1, 2}, []int{5, 6, 7})
	require.Equal(t, []registry.Args{{0, 5}, {1, 6}, {2, 7}}, got)
}

func TestZip_Empty(t *testing.T) {
	t.Parallel()
	require.Nil(t, Zip[int]())
	require.Empty(t, Zip([]int{}))
}

func TestZip_MismatchedLengthsPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { Zip([]int{1, 2}, []int{3}) })
}
