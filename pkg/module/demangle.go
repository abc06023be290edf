package module

import "github.com/ianlancetaylor/demangle"

// Demangle renders a C++ mangled export name in human-readable form
// for diagnostics and the `nff symbols --demangle` CLI flag. Lookup
// itself never uses this — spec.md §4.B requires callers to supply
// the exact export name, mangled or not.
func Demangle(name string) string {
	readable, err := demangle.ToString(name)
	if err != nil {
		return name
	}
	return readable
}
