//go:build !windows

package module

import (
	"debug/elf"
	"sort"

	"github.com/nff-go/nff/pkg/nffcore"
)

// Exports lists the defined, globally-visible dynamic symbols in this
// module, for the "nff symbols" host-scripting demo (spec.md §6's
// EXPANSION section). No example repo in the retrieved pack carries
// an ELF export-table library, so this one path falls back to the
// standard library's debug/elf — see DESIGN.md.
func (r *Record) Exports() ([]string, error) {
	const op = "module.Exports"
	f, err := elf.Open(r.Path)
	if err != nil {
		return nil, nffcore.Wrap(op, nffcore.ModuleNotFound, "failed to open ELF file for export listing", err)
	}
	defer f.Close()

	syms, err := f.DynamicSymbols()
	if err != nil {
		return nil, nffcore.Wrap(op, nffcore.ModuleNotFound, "failed to read dynamic symbol table", err)
	}

	var names []string
	for _, s := range syms {
		if s.Name == "" || s.Section == elf.SHN_UNDEF {
			continue
		}
		switch elf.ST_BIND(s.Info) {
		case elf.STB_GLOBAL, elf.STB_WEAK:
			names = append(names, s.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}
