package main

import (
	"github.com/nff-go/nff/pkg/descriptor"
	"github.com/nff-go/nff/pkg/module"
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
	"github.com/nff-go/nff/pkg/sigscan"
)

// resolveIdentifier opens modPath and resolves identifier to an
// address: a byte-pattern scan when identifier looks like a hex
// pattern, otherwise an exported-symbol lookup, per spec.md §6's
// identifier-format rule. Neither form falls back to the other.
func resolveIdentifier(modPath, identifier string, srvCheck bool) (ptr.Address, error) {
	const op = "nff.resolveIdentifier"

	rec, err := module.Default.Open(modPath, srvCheck)
	if err != nil {
		return 0, err
	}

	if descriptor.IsPattern(identifier) {
		pattern, err := sigscan.ParsePattern(identifier)
		if err != nil {
			return 0, err
		}
		image, err := rec.Image()
		if err != nil {
			return 0, err
		}
		return sigscan.Find(image, rec.Base, pattern)
	}

	addr, err := rec.FindSymbol(identifier)
	if err != nil {
		return 0, err
	}
	if addr == 0 {
		return 0, nffcore.New(op, nffcore.SymbolNotFound, "symbol not found: "+identifier)
	}
	return addr, nil
}
