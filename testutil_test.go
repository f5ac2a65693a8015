package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestAllocator builds a small buddy allocator (pageCount pages,
// DefaultPageSize each) backed by an in-memory region, for tests that
// want to exercise exhaustion and coalescing without paying for a 64 MiB
// mmap every run.
func newTestAllocator(t *testing.T, pageCount int) (*Allocator, *recordingEnvironment) {
	t.Helper()
	region, err := NewMemRegion(pageCount*DefaultPageSize, DefaultPageSize)
	require.NoError(t, err)
	env := newRecordingEnvironment()
	a, err := NewAllocator(region, env, Config{PageCount: pageCount})
	require.NoError(t, err)
	return a, env
}

// requirePanicReason runs fn, requires it panics with a *PanicError, and
// asserts its Reason matches want.
func requirePanicReason(t *testing.T, want PanicReason, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		pe, ok := r.(*PanicError)
		require.True(t, ok, "expected a *PanicError, got %T: %v", r, r)
		require.Equal(t, want, pe.Reason)
	}()
	fn()
}
