package module

import (
	"os"
	"sync"

	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// Registry caches opened modules by absolute path so repeated Open
// calls for the same module return the same Record, per spec.md §4.B.
// It is process-wide and guarded by a lock with a brief critical
// section, per spec.md §5.
type Registry struct {
	mu      sync.RWMutex
	byPath  map[string]*Record
}

// Default is the process-wide registry singleton. Tests that need
// isolation should construct their own Registry instead (spec.md §9:
// "safe-for-tests designs make [global registries] injectable").
var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{byPath: make(map[string]*Record)}
}

// Open tries path as given, then appends the platform extension when
// path has no extension, caching the result by absolute path. srvCheck
// narrows the platform loader's search toward the controlling
// process's own directory (see osOpen), per spec.md §4.B.
func (r *Registry) Open(path string, srvCheck bool) (*Record, error) {
	const op = "module.Open"

	abs, err := absPath(candidatePath(path))
	if err == nil {
		if rec := r.lookup(abs); rec != nil {
			return rec, nil
		}
	}

	handle, base, size, resolvedPath, err := r.tryOpen(path, srvCheck)
	if err != nil {
		return nil, nffcore.Wrap(op, nffcore.ModuleNotFound, "module not found: "+path, err)
	}

	finalAbs, err := absPath(resolvedPath)
	if err != nil {
		finalAbs = resolvedPath
	}

	r.mu.Lock()
	if existing, ok := r.byPath[finalAbs]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	rec := &Record{Path: finalAbs, Base: base, Size: size, handle: handle}
	r.byPath[finalAbs] = rec
	r.mu.Unlock()
	return rec, nil
}

func (r *Registry) lookup(absPath string) *Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byPath[absPath]
}

// tryOpen attempts path as given, falling back to path+platformExt()
// if the bare path fails to open and has no file extension at all, per
// spec.md §4.B.
func (r *Registry) tryOpen(path string, srvCheck bool) (handle uintptr, base ptr.Address, size int64, resolved string, err error) {
	candidates := []string{path}
	if filepathExt(path) == "" {
		candidates = append(candidates, path+platformExt())
	}

	var lastErr error
	for _, cand := range candidates {
		h, b, s, openErr := osOpen(cand, srvCheck)
		if openErr == nil {
			return h, b, s, cand, nil
		}
		lastErr = openErr
	}
	return 0, 0, 0, "", lastErr
}

func candidatePath(path string) string {
	if filepathExt(path) == "" {
		return path + platformExt()
	}
	return path
}

func filepathExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/' && path[i] != '\\'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

// FindSymbol resolves an exported symbol. A missing symbol returns
// (0, nil) rather than an error, per spec.md §4.B, so callers can fall
// back to signature scanning.
func (r *Record) FindSymbol(name string) (ptr.Address, error) {
	addr, err := osSymbol(r.handle, name)
	if err != nil {
		return 0, nil
	}
	return addr, nil
}

// controllingProcessDir is used by srvCheck to restrict the search
// path to the directory of the running executable.
func controllingProcessDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return dirOf(exe), nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[:i]
		}
	}
	return "."
}
