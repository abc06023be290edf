//go:build amd64 || 386

package codegen

import (
	"golang.org/x/arch/x86/x86asm"

	"github.com/nff-go/nff/pkg/nffcore"
)

// MinPrologueLength decodes whole instructions from the start of code
// until at least minBytes have been consumed, per spec.md §4.E: "for
// the target ISA, determine the smallest n >= 5 such that the first n
// bytes of the target form whole instructions." Callers copy exactly
// the returned n bytes into the trampoline.
//
// A short (rel8) conditional jump inside the window is
// UnsupportedPrologue: its displacement cannot be relocated to a
// distant trampoline address without potentially overflowing an int8,
// matching spec.md's explicit example ("short rel8 conditional jump").
func MinPrologueLength(code []byte, minBytes int) (int, error) {
	const op = "codegen.MinPrologueLength"
	total := 0
	mode := 64
	for total < minBytes {
		if total >= len(code) {
			return 0, nffcore.New(op, nffcore.UnsupportedPrologue, "ran out of bytes before reaching the minimum length")
		}
		inst, err := x86asm.Decode(code[total:], mode)
		if err != nil {
			return 0, nffcore.Wrap(op, nffcore.UnsupportedPrologue, "failed to decode instruction", err)
		}
		if inst.Len == 0 {
			return 0, nffcore.New(op, nffcore.UnsupportedPrologue, "decoder produced a zero-length instruction")
		}
		if isShortRelativeJump(inst) {
			return 0, nffcore.New(op, nffcore.UnsupportedPrologue, "short rel8 conditional jump cannot be relocated")
		}
		total += inst.Len
	}
	return total, nil
}

// isShortRelativeJump reports whether inst is a rel8-encoded jump
// (Jcc or JMP short form), the one class of prologue instruction
// spec.md §4.E calls out as non-relocatable.
func isShortRelativeJump(inst x86asm.Inst) bool {
	switch inst.Op {
	case x86asm.JMP, x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE, x86asm.JCXZ,
		x86asm.JECXZ, x86asm.JRCXZ, x86asm.JE, x86asm.JG, x86asm.JGE, x86asm.JL,
		x86asm.JLE, x86asm.JNE, x86asm.JNO, x86asm.JNP, x86asm.JNS, x86asm.JO,
		x86asm.JP, x86asm.JS:
		// inst.Len of 2 means a one-byte opcode plus a one-byte rel8
		// operand — the short encoding; the rel32 (near) encodings of
		// the same mnemonics are longer and are relocated normally in
		// Relocate.
		return inst.Len == 2
	default:
		return false
	}
}
