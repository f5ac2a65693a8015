package buddy

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Region is the backing bytes the allocator hands out pointers into. It is
// the Go rendition of "the first byte at or above the end-of-kernel
// symbol, page-aligned up" (REGION_START) paired with the managed region's
// length — a real kernel's physical memory, simulated here by bytes this
// process actually owns.
type Region interface {
	// Base is the address of the first byte of the region. Must be
	// page-aligned.
	Base() uintptr
	// Size is the length of the region in bytes.
	Size() int
	// Bytes exposes the region's backing storage, len(Bytes()) == Size().
	Bytes() []byte
}

// mmapRegion reserves its bytes via an anonymous, private mapping so that
// addresses handed out by the allocator are real, page-aligned virtual
// addresses a caller can read and write through Bytes(), not merely
// offsets into a slice. Grounded in the teacher's MmapPager mmap setup,
// stripped of the file-backing, growth, and flush machinery that
// mmap-backed page storage needs and a fixed-size physical-memory
// simulation does not.
type mmapRegion struct {
	base uintptr
	data []byte
}

// NewMmapRegion reserves size bytes (must be a positive multiple of the
// system page size) via mmap and returns a Region backed by it. Call
// Close when done to unmap.
func NewMmapRegion(size int) (*mmapRegion, error) {
	pageSize := unix.Getpagesize()
	if size <= 0 || size%pageSize != 0 {
		return nil, fmt.Errorf("buddy: region size %d is not a positive multiple of the page size %d", size, pageSize)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("buddy: mmap: %w", err)
	}
	return &mmapRegion{
		base: uintptr(unsafe.Pointer(&data[0])),
		data: data,
	}, nil
}

func (r *mmapRegion) Base() uintptr { return r.base }
func (r *mmapRegion) Size() int     { return len(r.data) }
func (r *mmapRegion) Bytes() []byte { return r.data }

// Close unmaps the region. The Region must not be used afterward.
func (r *mmapRegion) Close() error {
	return unix.Munmap(r.data)
}

// memRegion is a plain-slice-backed Region for tests that don't want to
// touch mmap. Grounded in the teacher's MemoryPager fake, which backs a
// page store with plain in-memory pages instead of a real file mapping.
type memRegion struct {
	base uintptr
	data []byte
}

// NewMemRegion allocates size bytes from the Go heap and returns a Region
// backed by them. size must be a positive multiple of pageSize.
func NewMemRegion(size, pageSize int) (*memRegion, error) {
	if size <= 0 || pageSize <= 0 || size%pageSize != 0 {
		return nil, fmt.Errorf("buddy: region size %d is not a positive multiple of page size %d", size, pageSize)
	}
	// Over-allocate by one page so the slice's first byte can be rounded
	// up to a page boundary: a heap-allocated []byte has no alignment
	// guarantee of its own.
	raw := make([]byte, size+pageSize)
	base := uintptr(unsafe.Pointer(&raw[0]))
	aligned := (base + uintptr(pageSize) - 1) &^ (uintptr(pageSize) - 1)
	offset := aligned - base
	return &memRegion{
		base: aligned,
		data: raw[offset : offset+uintptr(size)],
	}, nil
}

func (r *memRegion) Base() uintptr { return r.base }
func (r *memRegion) Size() int     { return len(r.data) }
func (r *memRegion) Bytes() []byte { return r.data }
