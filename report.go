package buddy

import (
	"fmt"
	"strings"

	"github.com/google/btree"
)

// activeItem is one entry in the active-allocation index, ordered by base
// address. Only base participates in ordering/equality (Delete only needs
// to match base); size rides along so ActiveAllocations can report it
// without a second lookup.
type activeItem struct {
	base uintptr
	size int32
}

func (a activeItem) Less(other btree.Item) bool {
	return a.base < other.(activeItem).base
}

// ActiveAllocation describes one currently-outstanding allocation.
type ActiveAllocation struct {
	Base uintptr
	Size int // pages
}

// Stats is a snapshot diagnostic report: used/free page totals and the
// free-list length at every level. It may be taken without the lock, in
// which case it is a best-effort snapshot; callers wanting a consistent
// view must hold the lock themselves (there is no exported way to do so —
// wrap Report in your own Environment-aware caller if you need that).
type Stats struct {
	PageSize   int
	UsedPages  int
	FreePages  int
	FreeCounts []int // FreeCounts[l] = number of FREE nodes at level l
}

// String renders Stats the way the original kernel's print_cur_info did:
// one line, levels 0-9 individually, levels 10 and up folded into a single
// bucket (counted in blocks of 2^10 pages, not node counts, to keep the
// fold meaningful).
func (s Stats) String() string {
	const foldAt = 10
	var b strings.Builder
	fmt.Fprintf(&b, "used = %d, free = %d, sizes: ", s.UsedPages, s.FreePages)
	folded := 0
	for l, c := range s.FreeCounts {
		if l < foldAt {
			fmt.Fprintf(&b, "%d, ", c)
		} else {
			folded += c << l >> foldAt
		}
	}
	fmt.Fprintf(&b, "%d", folded)
	return b.String()
}

// Report returns a snapshot of used/free page counts and per-level
// free-list lengths.
func (a *Allocator) Report() Stats {
	freeCounts := make([]int, a.depth)
	freePages := 0
	for l, c := range a.counts {
		freeCounts[l] = int(c)
		freePages += int(c) << l
	}
	return Stats{
		PageSize:   a.pageSize,
		UsedPages:  a.pageCount - freePages,
		FreePages:  freePages,
		FreeCounts: freeCounts,
	}
}

// ActiveAllocations returns every currently-USED node's (base, size) pair,
// sorted by base address. Supplements the original's aggregate-only
// diagnostics with an enumerable view, useful for leak-hunting and for
// property tests that want to check for overlapping ranges directly.
func (a *Allocator) ActiveAllocations() []ActiveAllocation {
	out := make([]ActiveAllocation, 0, a.active.Len())
	a.active.Ascend(func(item btree.Item) bool {
		it := item.(activeItem)
		out = append(out, ActiveAllocation{Base: it.base, Size: int(it.size)})
		return true
	})
	return out
}
