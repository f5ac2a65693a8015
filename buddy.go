// Package buddy implements a buddy allocator for fixed-size pages.
//
// It hands out contiguous runs of pages whose length is a power of two, up
// to the configured page count, and reclaims them on release, coalescing
// free siblings back into larger blocks. The allocator is organized as a
// perfect binary tree over a fixed arena of node records: the root covers
// the whole managed region, each internal node covers a run twice the size
// of its children, and leaves cover a single page.
//
// The allocator is deliberately ignorant of where its backing bytes come
// from (see Region) and of how its critical section is synchronized, how
// it reports fatal misuse, and how it logs (see Environment). A production
// kernel-style caller wires a real Region and Environment; tests wire fakes.
package buddy

import (
	"fmt"
	"math/bits"

	"github.com/google/btree"
)

// DefaultPageSize is the page size assumed by the package-level singleton
// and by NewAllocator when Config.PageSize is zero.
const DefaultPageSize = 4096

// DefaultPageCount is the number of pages managed by the package-level
// singleton and by NewAllocator when Config.PageCount is zero: 512*32,
// i.e. 64 MiB of 4 KiB pages.
const DefaultPageCount = 512 * 32

// noSentinel marks the absence of a parent, child, or sibling link — used
// at the root (its own parent/sibling, per the source's convention, is
// rendered here as "no parent/sibling" instead) and at leaves (no children).
const noSentinel int32 = -1

// Config configures an Allocator's tree shape. The zero Config is valid
// and selects DefaultPageSize / DefaultPageCount, matching the hardcoded
// constants of the original kernel source. Tests that want a small tree
// to exercise exhaustion and coalescing quickly may set PageCount to a
// small power of two instead.
type Config struct {
	// PageSize is the size in bytes of one page. Zero selects DefaultPageSize.
	PageSize int
	// PageCount is the number of pages the allocator manages; must be a
	// power of two. Zero selects DefaultPageCount.
	PageCount int
}

func (c Config) withDefaults() Config {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageCount == 0 {
		c.PageCount = DefaultPageCount
	}
	return c
}

func (c Config) validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("buddy: page size must be positive, got %d", c.PageSize)
	}
	if c.PageCount <= 0 || !isPowerOfTwo(c.PageCount) {
		return fmt.Errorf("buddy: page count must be a positive power of two, got %d", c.PageCount)
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// depthFor returns the tree depth for a page count: leaves are level 0, the
// root is level depth-1, and 2^(depth-1) == pageCount.
func depthFor(pageCount int) int {
	return bits.TrailingZeros(uint(pageCount)) + 1
}

// Allocator is a buddy allocator over one Region. The zero Allocator is
// not usable; construct one with NewAllocator.
type Allocator struct {
	env    Environment
	region Region

	pageSize  int
	pageCount int
	depth     int
	base      uintptr

	nodes  []node
	lists  []int32 // per-level free-list head, noSentinel if empty
	counts []int32 // per-level free-list length

	// active indexes currently-USED nodes by base address, for
	// ActiveAllocations. It is a projection of nodes/lists, not an
	// independent source of truth, and is maintained under the same
	// lock as the rest of the allocator's state.
	active *btree.BTree
}

// NewAllocator builds the node table over region, seeds the root as the
// single free block, and returns a ready-to-use Allocator. This corresponds
// to the kernel's init(): called once, before any Allocate or Free.
func NewAllocator(region Region, env Environment, cfg Config) (*Allocator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	wantBytes := cfg.PageSize * cfg.PageCount
	if region.Size() < wantBytes {
		return nil, fmt.Errorf("buddy: region too small: have %d bytes, need %d", region.Size(), wantBytes)
	}
	if region.Base()%uintptr(cfg.PageSize) != 0 {
		return nil, fmt.Errorf("buddy: region base %#x is not page-aligned to %d", region.Base(), cfg.PageSize)
	}

	a := &Allocator{
		env:       env,
		region:    region,
		pageSize:  cfg.PageSize,
		pageCount: cfg.PageCount,
		depth:     depthFor(cfg.PageCount),
		base:      region.Base(),
		active:    btree.New(32),
	}
	a.buildTree()
	return a, nil
}

// PageSize returns the configured page size in bytes.
func (a *Allocator) PageSize() int { return a.pageSize }

// PageCount returns the total number of pages the allocator manages.
func (a *Allocator) PageCount() int { return a.pageCount }

// Depth returns the height of the buddy tree (root level + 1).
func (a *Allocator) Depth() int { return a.depth }

// RegionStart returns the first address the allocator can hand out.
func (a *Allocator) RegionStart() uintptr { return a.base }

// RegionEnd returns the first address past the managed region.
func (a *Allocator) RegionEnd() uintptr { return a.base + uintptr(a.pageCount*a.pageSize) }
