//go:build windows

package module

import (
	"sort"

	"github.com/saferwall/pe"

	"github.com/nff-go/nff/pkg/nffcore"
)

// Exports lists the function names in this module's PE export
// directory, for the "nff symbols" host-scripting demo (spec.md §6's
// EXPANSION section). Grounded on the same saferwall/pe dependency
// peImageSize already uses for image-size resolution.
func (r *Record) Exports() ([]string, error) {
	const op = "module.Exports"
	f, err := pe.New(r.Path, &pe.Options{})
	if err != nil {
		return nil, nffcore.Wrap(op, nffcore.ModuleNotFound, "failed to open PE file for export listing", err)
	}
	defer f.Close()
	if err := f.Parse(); err != nil {
		return nil, nffcore.Wrap(op, nffcore.ModuleNotFound, "failed to parse PE file", err)
	}

	var names []string
	for _, fn := range f.Export.Functions {
		if fn.Name != "" {
			names = append(names, fn.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}
