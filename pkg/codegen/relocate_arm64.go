//go:build arm64

package codegen

import (
	"encoding/binary"

	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// Relocate fixes up PC-relative B/BL instructions (opcode bits 31:26 =
// 0b000101 for B, 0b100101 for BL) copied into the trampoline; every
// other arm64 instruction in a prologue is position-independent with
// respect to the copy (ADRP is the one common exception, deliberately
// left unrelocated here and documented as an UnsupportedPrologue
// source in DESIGN.md, since an ADRP literal pool reference moved to a
// distant trampoline page needs a full re-materialization this
// code-generator does not attempt).
func Relocate(code []byte, from, to ptr.Address) ([]byte, error) {
	const op = "codegen.Relocate"
	out := make([]byte, len(code))
	copy(out, code)

	for off := 0; off+4 <= len(code); off += 4 {
		word := binary.LittleEndian.Uint32(code[off : off+4])
		if !isBranchImm(word) {
			continue
		}
		imm26 := int32(word&0x03FFFFFF) << 6 >> 6 // sign-extend 26-bit field
		oldTarget := int64(from) + int64(off) + int64(imm26)*4
		newDisp := (oldTarget - (int64(to) + int64(off))) / 4
		if newDisp > (1<<25-1) || newDisp < -(1<<25) {
			return nil, nffcore.New(op, nffcore.UnsupportedPrologue, "relocated branch displacement overflows imm26")
		}
		newWord := (word &^ 0x03FFFFFF) | (uint32(newDisp) & 0x03FFFFFF)
		binary.LittleEndian.PutUint32(out[off:off+4], newWord)
	}
	return out, nil
}

func isBranchImm(word uint32) bool {
	top6 := word >> 26
	return top6 == 0b000101 || top6 == 0b100101
}
