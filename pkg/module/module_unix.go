//go:build !windows

package module

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ebitengine/purego"
	"github.com/nff-go/nff/pkg/ptr"
)

const isWindows = false

// osOpen dlopen()s path via purego (cgo-free on the platforms purego
// supports) and measures the module's mapped image from /proc's maps
// file. With srvCheck, a relative path is loaded from the controlling
// process's own directory when the file exists there; otherwise dlopen's
// ordinary search applies.
func osOpen(path string, srvCheck bool) (handle uintptr, base ptr.Address, size int64, err error) {
	resolved := path
	if srvCheck && !strings.HasPrefix(path, "/") {
		if dir, derr := controllingProcessDir(); derr == nil {
			if _, statErr := os.Stat(dir + "/" + path); statErr == nil {
				resolved = dir + "/" + path
			}
		}
	}

	h, err := purego.Dlopen(resolved, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, 0, 0, err
	}

	b, s, err := mappedRange(resolved)
	if err != nil {
		// The module loaded successfully even if we couldn't measure
		// its image from /proc (e.g. sandboxed environments without
		// /proc); report a zero-sized image rather than failing open.
		return h, 0, 0, nil
	}
	return h, b, s, nil
}

func osSymbol(handle uintptr, name string) (ptr.Address, error) {
	addr, err := purego.Dlsym(handle, name)
	if err != nil {
		return 0, err
	}
	return ptr.Address(addr), nil
}

// mappedRange scans /proc/self/maps for every region backed by
// soPath, returning the lowest start and the total contiguous span.
// This stands in for proper ELF program-header parsing (see
// DESIGN.md): the loading process's own view of what it just mapped
// is a reliable, already-relocated source of truth for image_size.
func mappedRange(soPath string) (ptr.Address, int64, error) {
	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var lo, hi uint64
	found := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasSuffix(strings.TrimSpace(line), soPath) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		parts := strings.SplitN(fields[0], "-", 2)
		if len(parts) != 2 {
			continue
		}
		start, e1 := strconv.ParseUint(parts[0], 16, 64)
		end, e2 := strconv.ParseUint(parts[1], 16, 64)
		if e1 != nil || e2 != nil {
			continue
		}
		if !found || start < lo {
			lo = start
		}
		if end > hi {
			hi = end
		}
		found = true
	}
	if !found {
		return 0, 0, fmt.Errorf("module.mappedRange: %s not found in /proc/self/maps", soPath)
	}
	return ptr.Address(lo), int64(hi - lo), nil
}
