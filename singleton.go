package buddy

import (
	"fmt"
	"sync"
)

// global is the package-level singleton used by Init/Allocate/Free/Report,
// mirroring the kernel's single process-wide allocator instance. It is
// deliberately a thin wrapper around *Allocator rather than a second
// implementation: callers who want more than one region (tests, mostly)
// should use NewAllocator directly instead of this singleton.
var (
	globalOnce sync.Once
	global     *Allocator
	globalErr  error
)

// Init builds the package-level singleton allocator over an
// anonymously-mmapped region sized DefaultPageCount*DefaultPageSize bytes,
// using the production Environment. It corresponds to the kernel calling
// init() once during startup, before any Allocate/Free/Report. Calling it
// more than once is a no-op; only the first call's outcome is recorded.
func Init() error {
	globalOnce.Do(func() {
		region, err := NewMmapRegion(DefaultPageCount * DefaultPageSize)
		if err != nil {
			globalErr = fmt.Errorf("buddy: Init: %w", err)
			return
		}
		global, globalErr = NewAllocator(region, NewEnvironment(), Config{})
	})
	return globalErr
}

// Allocate calls Allocate on the package-level singleton allocator set up
// by Init. It panics if Init has not been called or failed — this is a
// programmer error, not one of the documented Allocate failure modes.
func Allocate(pageCount int) (uintptr, bool) {
	return mustGlobal().Allocate(pageCount)
}

// Free calls Free on the package-level singleton allocator.
func Free(ptr uintptr) {
	mustGlobal().Free(ptr)
}

// Report calls Report on the package-level singleton allocator.
func Report() Stats {
	return mustGlobal().Report()
}

func mustGlobal() *Allocator {
	if global == nil {
		panic("buddy: Init has not been called successfully")
	}
	return global
}
