package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFree_buddyCoalesce(t *testing.T) {
	a, _ := newTestAllocator(t, 16)

	p, ok := a.Allocate(1)
	require.True(t, ok)
	q, ok := a.Allocate(1)
	require.True(t, ok)

	a.Free(p)
	a.Free(q)

	require.Equal(t, []int{0, 0, 0, 0, 1}, a.Report().FreeCounts, "state must be bit-identical to post-init")
	require.Empty(t, a.ActiveAllocations())
}

func TestFree_doubleFreePanics(t *testing.T) {
	a, _ := newTestAllocator(t, 16)

	p, ok := a.Allocate(4)
	require.True(t, ok)
	a.Free(p)

	requirePanicReason(t, ReasonNotAllocated, func() {
		a.Free(p)
	})
}

func TestFree_midBlockFreePanics(t *testing.T) {
	a, _ := newTestAllocator(t, 16)

	p, ok := a.Allocate(4)
	require.True(t, ok)

	requirePanicReason(t, ReasonNotAllocated, func() {
		a.Free(p + uintptr(a.pageSize))
	})
}

func TestFree_nilPointerPanics(t *testing.T) {
	a, _ := newTestAllocator(t, 16)
	requirePanicReason(t, ReasonNilPointer, func() { a.Free(0) })
}

func TestFree_misalignedPointerPanics(t *testing.T) {
	a, _ := newTestAllocator(t, 16)
	requirePanicReason(t, ReasonMisaligned, func() { a.Free(a.RegionStart() + 1) })
}

func TestFree_outOfRangePanics(t *testing.T) {
	a, _ := newTestAllocator(t, 16)
	requirePanicReason(t, ReasonOutOfRange, func() { a.Free(a.RegionStart() - uintptr(a.pageSize)) })
	requirePanicReason(t, ReasonOutOfRange, func() { a.Free(a.RegionEnd()) })
}

func TestFree_maximalCoalescing(t *testing.T) {
	a, _ := newTestAllocator(t, 16)

	ptrs := make([]uintptr, 0, 16)
	for i := 0; i < 16; i++ {
		p, ok := a.Allocate(1)
		require.True(t, ok)
		ptrs = append(ptrs, p)
	}
	for _, p := range ptrs {
		a.Free(p)
	}

	for _, n := range a.nodes {
		if n.state != stateFree || n.sibling == noSentinel {
			continue
		}
		sibling := a.node(n.sibling)
		require.NotEqual(t, stateFree, sibling.state, "node %d and its sibling %d are both free after full release", n.id, sibling.id)
	}
	require.Equal(t, []int{0, 0, 0, 0, 1}, a.Report().FreeCounts)
}

func TestFree_roundTrip(t *testing.T) {
	a, _ := newTestAllocator(t, 16)

	before := a.Report().FreeCounts
	p, ok := a.Allocate(4)
	require.True(t, ok)
	a.Free(p)
	after := a.Report().FreeCounts

	require.Equal(t, before, after)
	require.Empty(t, a.ActiveAllocations())
}
