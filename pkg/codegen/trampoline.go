package codegen

import (
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// BuildTrampoline implements spec.md §4.F steps 1-2: allocate an
// executable page, copy the target's relocated prologue into it, and
// append a jump back into the target just past the overwritten bytes.
// It returns the trampoline's Page (still owned by the caller — the
// detour Record keeps it alive for the hook's lifetime) and the number
// of original bytes it captured.
func BuildTrampoline(target ptr.Address, minOverwrite int) (page *Page, prologueLen int, err error) {
	const op = "codegen.BuildTrampoline"

	img, err := ptr.Wrap(target).Bytes(int64(minOverwrite) + 16)
	if err != nil {
		return nil, 0, nffcore.Wrap(op, nffcore.UnsupportedPrologue, "failed to read target prologue", err)
	}

	n, err := MinPrologueLength(img, minOverwrite)
	if err != nil {
		return nil, 0, err
	}

	page, err = Alloc(n + 16)
	if err != nil {
		return nil, 0, err
	}

	relocated, err := Relocate(img[:n], target, page.Addr())
	if err != nil {
		page.Free()
		return nil, 0, err
	}
	if err := page.Write(0, relocated); err != nil {
		page.Free()
		return nil, 0, err
	}

	jumpBack := jumpTo(uint64(page.Addr())+uint64(n), uint64(target)+uint64(n))
	if err := page.Write(n, jumpBack); err != nil {
		page.Free()
		return nil, 0, err
	}
	if err := page.MakeExecutable(); err != nil {
		page.Free()
		return nil, 0, err
	}
	return page, n, nil
}

// BuildDispatchStub allocates an executable page whose only content is
// an unconditional jump to dispatchTarget. The detour engine points
// the patched target prologue at this stub's address; the stub itself
// is what actually runs the pre/post callback pipeline (implemented in
// pkg/detour, which marshals registers before jumping here in the
// fully general case — this codegen-level stub covers the common case
// of redirecting straight into a Go dispatcher reachable via
// callframe.MakeCallback, per spec.md §4.F's "dispatch stub").
func BuildDispatchStub(dispatchTarget ptr.Address) (*Page, error) {
	page, err := Alloc(16)
	if err != nil {
		return nil, err
	}
	jump := jumpTo(uint64(page.Addr()), uint64(dispatchTarget))
	if err := page.Write(0, jump); err != nil {
		page.Free()
		return nil, err
	}
	if err := page.MakeExecutable(); err != nil {
		page.Free()
		return nil, err
	}
	return page, nil
}

// EmitDetourPatch builds the bytes to overwrite at target: a jump to
// stubAddr padded with NOPs to fill prologueLen, per spec.md §4.F
// step 3 ("pad remainder of overwritten bytes with NOPs so no partial
// instruction remains").
func EmitDetourPatch(target, stubAddr ptr.Address, prologueLen int) []byte {
	jump := jumpTo(uint64(target), uint64(stubAddr))
	if len(jump) >= prologueLen {
		return jump[:prologueLen]
	}
	out := make([]byte, prologueLen)
	copy(out, jump)
	copy(out[len(jump):], EmitNop(prologueLen-len(jump)))
	return out
}

// jumpTo picks the shortest correct encoding for a jump from siteAddr
// to target: a 5-byte rel32 when in range, else a 12/16-byte absolute
// form.
func jumpTo(siteAddr, target uint64) []byte {
	if FitsRel32(siteAddr, target) {
		return EmitRel32Jump(siteAddr, target)
	}
	return EmitAbsoluteJump(target)
}
