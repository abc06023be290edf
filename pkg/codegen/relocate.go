//go:build amd64 || 386

package codegen

import (
	"encoding/binary"

	"golang.org/x/arch/x86/x86asm"

	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// Relocate copies code (a decoded whole-instruction prologue, as
// produced by MinPrologueLength) to a buffer suitable for placement
// at to, fixing up any rel32 CALL/JMP/Jcc displacement so it still
// targets the same absolute address it did at from, per spec.md
// §4.E: "Relocate control-transfer instructions copied into the
// trampoline whose displacements would be wrong at the new address;
// other prologue instructions copy verbatim."
func Relocate(code []byte, from, to ptr.Address) ([]byte, error) {
	const op = "codegen.Relocate"
	out := make([]byte, len(code))
	copy(out, code)

	offset := 0
	for offset < len(code) {
		inst, err := x86asm.Decode(code[offset:], 64)
		if err != nil {
			return nil, nffcore.Wrap(op, nffcore.UnsupportedPrologue, "failed to decode instruction for relocation", err)
		}
		if isRel32ControlTransfer(inst) {
			if err := fixupRel32(out, offset, inst, from, to); err != nil {
				return nil, err
			}
		}
		offset += inst.Len
	}
	return out, nil
}

func isRel32ControlTransfer(inst x86asm.Inst) bool {
	switch inst.Op {
	case x86asm.CALL, x86asm.JMP, x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE,
		x86asm.JE, x86asm.JG, x86asm.JGE, x86asm.JL, x86asm.JLE, x86asm.JNE,
		x86asm.JNO, x86asm.JNP, x86asm.JNS, x86asm.JO, x86asm.JP, x86asm.JS:
		return inst.Len >= 5
	default:
		return false
	}
}

// fixupRel32 locates the trailing 4-byte displacement of a rel32
// CALL/JMP/Jcc at code[offset:offset+inst.Len] and rewrites it so the
// absolute target is preserved after the instruction moves from
// (from+offset) to (to+offset).
func fixupRel32(code []byte, offset int, inst x86asm.Inst, from, to ptr.Address) error {
	const op = "codegen.fixupRel32"
	if inst.Len < 5 {
		return nffcore.New(op, nffcore.UnsupportedPrologue, "instruction too short to carry a rel32 operand")
	}
	dispOff := offset + inst.Len - 4
	oldDisp := int32(binary.LittleEndian.Uint32(code[dispOff : dispOff+4]))

	oldNextIP := int64(from) + int64(offset) + int64(inst.Len)
	target := oldNextIP + int64(oldDisp)

	newNextIP := int64(to) + int64(offset) + int64(inst.Len)
	newDisp := target - newNextIP
	if newDisp > int64(int32(1<<31-1)) || newDisp < int64(int32(-1<<31)) {
		return nffcore.New(op, nffcore.UnsupportedPrologue, "relocated displacement overflows rel32")
	}

	binary.LittleEndian.PutUint32(code[dispOff:dispOff+4], uint32(int32(newDisp)))
	return nil
}
