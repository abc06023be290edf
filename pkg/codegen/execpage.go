// Package codegen implements spec.md §4.E: the executable-memory
// primitive shared by callback thunks, detour dispatch stubs, and
// detour trampolines, plus the minimum-instruction-length decoder and
// relocation logic needed to safely copy a function's prologue.
package codegen

import (
	"sync"

	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// Page is a page-aligned region that is writable while code is being
// emitted into it and executable afterwards. W^X toggling is
// serialized by mu, per spec.md §5: "W^X toggling, when used, happens
// only during emission and is serialised by the engine's lock."
type Page struct {
	mu          sync.Mutex
	addr        ptr.Address
	size        int
	executable  bool
	external    bool // true for WrapExisting: not owned, Free is a no-op
	patchOffset int   // addr -> actual content start, nonzero only for external pages
}

// Alloc reserves a writable page of at least size bytes.
func Alloc(size int) (*Page, error) {
	if size <= 0 {
		size = osPageSize()
	}
	rounded := roundUpToPage(size)
	addr, err := osAllocRW(rounded)
	if err != nil {
		return nil, nffcore.Wrap("codegen.Alloc", nffcore.ExecutableAllocationFailed,
			"failed to reserve writable page", err)
	}
	return &Page{addr: addr, size: rounded}, nil
}

// WrapExisting returns a Page view over already-mapped, already-
// executable memory at target (e.g. a hooked function's own
// prologue), covering at least minSize bytes from target. Unlike
// Alloc, this Page does not own the mapping: Free is a no-op, and
// Write/Patch toggle protection on the containing page(s) rather than
// a page this package allocated. Used by pkg/detour to rewrite a
// target function's entry in place.
func WrapExisting(target ptr.Address, minSize int) *Page {
	ps := osPageSize()
	base := uintptr(target) &^ uintptr(ps-1)
	offsetInPage := int(uintptr(target) - base)
	size := roundUpToPage(offsetInPage + minSize)
	return &Page{
		addr:        ptr.Address(base),
		size:        size,
		executable:  true,
		external:    true,
		patchOffset: offsetInPage,
	}
}

func (p *Page) Addr() ptr.Address { return p.addr + ptr.Address(p.patchOffset) }
func (p *Page) Size() int         { return p.size - p.patchOffset }

// Write copies code into the page at offset. The page must not yet
// have been made executable; toggling back to writable to patch a
// live trampoline is a separate, narrower operation (see Patch).
func (p *Page) Write(offset int, code []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.patchOffset+offset+len(code) > p.size {
		return nffcore.New("codegen.Page.Write", nffcore.ExecutableAllocationFailed, "write exceeds page size")
	}
	dst, err := ptr.Wrap(p.addr).Bytes(int64(p.size))
	if err != nil {
		return err
	}
	copy(dst[p.patchOffset+offset:], code)
	return nil
}

// MakeExecutable flips the page from writable to executable.
func (p *Page) MakeExecutable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := osMakeExecutable(p.addr, p.size); err != nil {
		return nffcore.Wrap("codegen.Page.MakeExecutable", nffcore.ExecutableAllocationFailed,
			"mprotect to PROT_EXEC failed", err)
	}
	p.executable = true
	return nil
}

// Patch rewrites live, already-executable bytes in place: it toggles
// the page back to writable, copies code, then restores PROT_EXEC.
// Used by the detour engine's two-stage install (see pkg/detour).
func (p *Page) Patch(offset int, code []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	wasExecutable := p.executable
	if wasExecutable {
		if err := osMakeWritable(p.addr, p.size); err != nil {
			return err
		}
	}
	dst, err := ptr.Wrap(p.addr).Bytes(int64(p.size))
	if err != nil {
		return err
	}
	copy(dst[p.patchOffset+offset:], code)
	if wasExecutable {
		if err := osMakeExecutable(p.addr, p.size); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) Free() error {
	if p.external {
		return nil
	}
	return osFree(p.addr, p.size)
}

func roundUpToPage(n int) int {
	ps := osPageSize()
	return (n + ps - 1) / ps * ps
}
