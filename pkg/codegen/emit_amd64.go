//go:build amd64

package codegen

import "encoding/binary"

// EmitRel32Jump encodes a near JMP rel32 (opcode 0xE9) from the
// instruction immediately following it to target. Used both for the
// detour's overwrite-the-prologue jump and for a trampoline's
// jump-back, when target is within +/-2GiB.
func EmitRel32Jump(siteAddr, target uint64) []byte {
	const instrLen = 5
	disp := int64(target) - int64(siteAddr+instrLen)
	out := make([]byte, instrLen)
	out[0] = 0xE9
	binary.LittleEndian.PutUint32(out[1:], uint32(int32(disp)))
	return out
}

// FitsRel32 reports whether target is reachable from siteAddr with a
// single near jmp once the jump itself is emitted there.
func FitsRel32(siteAddr, target uint64) bool {
	disp := int64(target) - int64(siteAddr+5)
	return disp <= int64(int32(1<<31-1)) && disp >= int64(int32(-1<<31))
}

// EmitAbsoluteJump encodes `movabs rax, imm64; jmp rax` (REX.W B8 +
// imm64, FF E0) — 12 bytes, always reaches any 64-bit target
// regardless of distance. Used as the fallback when FitsRel32 is
// false, and for every jump emitted on arm64-unreachable cross-module
// distances.
func EmitAbsoluteJump(target uint64) []byte {
	out := make([]byte, 12)
	out[0] = 0x48 // REX.W
	out[1] = 0xB8 // MOV RAX, imm64
	binary.LittleEndian.PutUint64(out[2:10], target)
	out[10] = 0xFF // JMP
	out[11] = 0xE0 // ModRM: /4, RAX
	return out
}

// EmitNop fills n bytes with single-byte NOPs (0x90), used to pad the
// remainder of an overwritten prologue so no partial instruction is
// left behind, per spec.md §4.F step 3.
func EmitNop(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = 0x90
	}
	return out
}
