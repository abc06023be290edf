// Package module implements spec.md §4.B: opening a shared module by
// path, caching it by absolute path, resolving exported symbols, and
// reporting the loaded image's base address and size so the signature
// scanner has a range to search.
package module

import (
	"path/filepath"

	"github.com/nff-go/nff/pkg/ptr"
)

// Record is the parsed view of an opened module (spec.md §3).
type Record struct {
	Path    string
	Base    ptr.Address
	Size    int64
	handle  uintptr
}

// Image returns a byte slice over [Base, Base+Size), suitable for
// sigscan.Find. The slice is only valid while the module stays mapped,
// which for this bridge's lifetime model is "for the life of the
// process" (spec.md §3: "destroyed on process exit; no unload is
// required, and none is safe while hooks may live inside").
func (r *Record) Image() ([]byte, error) {
	return ptr.Wrap(r.Base).Bytes(r.Size)
}

func platformExt() string {
	if isWindows {
		return ".dll"
	}
	return ".so"
}

func absPath(path string) (string, error) {
	return filepath.Abs(path)
}
