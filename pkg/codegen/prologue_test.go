//go:build amd64 || 386

package codegen

import "testing"

func TestMinPrologueLength(t *testing.T) {
	// push rbp; mov rbp,rsp; sub rsp,0x10 -- classic x86-64 prologue.
	code := []byte{0x55, 0x48, 0x89, 0xE5, 0x48, 0x83, 0xEC, 0x10, 0x90, 0x90}
	n, err := MinPrologueLength(code, 5)
	if err != nil {
		t.Fatalf("MinPrologueLength: %v", err)
	}
	if n < 5 {
		t.Errorf("MinPrologueLength = %d, want >= 5", n)
	}
	if n > len(code) {
		t.Fatalf("MinPrologueLength = %d exceeds input length %d", n, len(code))
	}
}

func TestMinPrologueLengthShortJumpUnsupported(t *testing.T) {
	// A short conditional jump (EB/7x rel8) right at the start.
	code := []byte{0x75, 0x02, 0x90, 0x90, 0x90, 0x90, 0x90}
	if _, err := MinPrologueLength(code, 5); err == nil {
		t.Fatal("expected UnsupportedPrologue for a short rel8 jump in the window")
	}
}

func TestRelocateRel32Call(t *testing.T) {
	// call rel32 (E8 + 4-byte displacement) targeting from+0x100.
	code := make([]byte, 5)
	code[0] = 0xE8
	putLE32(code[1:], 0x100-5)

	relocated, err := Relocate(code, 0x1000, 0x9000)
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	disp := int32(getLE32(relocated[1:]))
	newTarget := int64(0x9000) + 5 + int64(disp)
	wantTarget := int64(0x1000) + 0x100
	if newTarget != wantTarget {
		t.Errorf("relocated call targets %#x, want %#x", newTarget, wantTarget)
	}
}

func putLE32(b []byte, v int32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getLE32(b []byte) int32 {
	return int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16 | int32(b[3])<<24
}
