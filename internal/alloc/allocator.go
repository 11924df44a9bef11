package alloc

import (
	"fmt"
	"sync"
)

// Allocator hands out file space for a file being written. Space is only
// ever appended at the end of the file; rewritten object headers leave their
// old copy behind.
type Allocator struct {
	mu sync.Mutex

	// eofAddr is the next allocation point.
	eofAddr uint64

	// baseAddr is the lowest allocatable address, right after the root
	// group header.
	baseAddr uint64

	allocations []Allocation
}

// Allocation is a single block handed out by the allocator.
type Allocation struct {
	Addr uint64
	Size uint64
	Tag  string
}

// New creates an Allocator starting at baseAddr.
func New(baseAddr uint64) *Allocator {
	return &Allocator{
		eofAddr:  baseAddr,
		baseAddr: baseAddr,
	}
}

// Alloc reserves size bytes at the end of the file and returns their address.
// The tag names the block in Validate errors. A zero size returns the current
// end of file without recording anything.
func (a *Allocator) Alloc(size uint64, tag string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if size == 0 {
		return a.eofAddr
	}
	addr := a.eofAddr
	a.eofAddr += size
	a.allocations = append(a.allocations, Allocation{Addr: addr, Size: size, Tag: tag})
	return addr
}

// EOFAddr returns the current end-of-file address.
func (a *Allocator) EOFAddr() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eofAddr
}

// Allocations returns a copy of all allocations in the order they were made.
func (a *Allocator) Allocations() []Allocation {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]Allocation, len(a.allocations))
	copy(result, a.allocations)
	return result
}

// Validate checks that every allocation lies in [base, EOF) and that no two
// allocations overlap.
func (a *Allocator) Validate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, cur := range a.allocations {
		if cur.Addr < a.baseAddr {
			return fmt.Errorf("%s at 0x%x is before base address 0x%x", cur.Tag, cur.Addr, a.baseAddr)
		}
		if cur.Addr+cur.Size > a.eofAddr {
			return fmt.Errorf("%s at 0x%x size %d extends past EOF 0x%x", cur.Tag, cur.Addr, cur.Size, a.eofAddr)
		}
		// Allocations are appended, so only the predecessor can overlap.
		if i > 0 {
			prev := a.allocations[i-1]
			if prev.Addr+prev.Size > cur.Addr {
				return fmt.Errorf("overlapping allocations: %s [0x%x, size %d] and %s [0x%x, size %d]",
					prev.Tag, prev.Addr, prev.Size, cur.Tag, cur.Addr, cur.Size)
			}
		}
	}
	return nil
}
