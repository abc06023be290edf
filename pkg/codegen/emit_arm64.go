//go:build arm64

package codegen

import "encoding/binary"

// EmitAbsoluteJump encodes an absolute branch via a literal pool load
// into a scratch register (X16, the ARM64 procedure-call standard's
// "intra-procedure-call temporary") followed by BR X16:
//
//	LDR X16, #8     ; 58 00 00 50 -> load the 8 bytes after BR
//	BR  X16         ; d6 1f 02 00
//	<8 bytes: target address>
//
// This mirrors the teacher's pkg/asm register-constant convention (a
// fixed, documented scratch register rather than one chosen by a
// register allocator) — appropriate here since a detour/trampoline
// jump runs outside any compiled function's live range.
func EmitAbsoluteJump(target uint64) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint32(out[0:4], 0x58000050)  // LDR X16, #8
	binary.LittleEndian.PutUint32(out[4:8], 0xD61F0200)  // BR X16
	binary.LittleEndian.PutUint64(out[8:16], target)
	return out
}

// FitsRel32 is always false on arm64 in this implementation: every
// jump we emit goes through EmitAbsoluteJump's literal-pool form, so
// callers never need the narrower encoding.
func FitsRel32(_, _ uint64) bool { return false }

// EmitRel32Jump has no arm64 encoding (there is no rel32 branch form
// on this ISA); FitsRel32 always reports false so jumpTo never calls
// this, but it must exist to satisfy the shared trampoline.go call
// site across architectures.
func EmitRel32Jump(_, _ uint64) []byte {
	panic("codegen: EmitRel32Jump is unreachable on arm64 (FitsRel32 always false)")
}

// EmitNop fills n bytes with four-byte NOP instructions (D503201F).
// n must be a multiple of 4; the detour engine only ever overwrites
// whole arm64 instructions, so this invariant holds by construction.
func EmitNop(n int) []byte {
	out := make([]byte, n)
	for i := 0; i+4 <= n; i += 4 {
		binary.LittleEndian.PutUint32(out[i:i+4], 0xD503201F)
	}
	return out
}
