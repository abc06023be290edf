package ptr

import (
	"sync"

	"github.com/nff-go/nff/pkg/nffcore"
)

// Alloc reserves size bytes of process memory and returns an owning
// Pointer. Ownership must be released exactly once via Dealloc;
// spec.md §8 requires that a redundant dealloc fails InvalidOwnership
// rather than corrupting the heap.
func Alloc(size int64) (Pointer, error) {
	addr, err := osAllocData(size)
	if err != nil {
		return Pointer{}, nffcore.Wrap("ptr.Alloc", nffcore.AllocationFailed,
			"data allocation failed", err)
	}
	p := Pointer{addr: addr, owned: true}
	trackOwned(p.addr, size)
	return p, nil
}

// Dealloc releases memory obtained from Alloc. Calling it on a
// non-owning Pointer, or calling it twice on the same owning Pointer,
// fails InvalidOwnership per spec.md §4.A/§7.
func Dealloc(p *Pointer) error {
	const op = "ptr.Dealloc"
	if !p.owned {
		return nffcore.New(op, nffcore.InvalidOwnership, "dealloc called on a non-owning pointer")
	}
	size, ok := untrackOwned(p.addr)
	if !ok {
		return nffcore.New(op, nffcore.InvalidOwnership, "pointer already released")
	}
	if err := osFreeData(p.addr, size); err != nil {
		return nffcore.Wrap(op, nffcore.InvalidOwnership, "OS free failed", err)
	}
	p.owned = false
	p.addr = 0
	return nil
}

// ownedRegions tracks {address: size} for every live Alloc result so
// Dealloc can detect double-frees and hand the OS layer the original
// size (mmap/VirtualFree both need it).
var (
	ownedMu      sync.Mutex
	ownedRegions = map[Address]int64{}
)

func trackOwned(addr Address, size int64) {
	ownedMu.Lock()
	defer ownedMu.Unlock()
	ownedRegions[addr] = size
}

func untrackOwned(addr Address) (int64, bool) {
	ownedMu.Lock()
	defer ownedMu.Unlock()
	size, ok := ownedRegions[addr]
	if ok {
		delete(ownedRegions, addr)
	}
	return size, ok
}
