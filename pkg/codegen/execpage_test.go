package codegen

import "testing"

func TestPageWriteExecuteFree(t *testing.T) {
	page, err := Alloc(64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer page.Free()

	if err := page.Write(0, []byte{0xC3}); err != nil { // ret
		t.Fatalf("Write: %v", err)
	}
	if err := page.MakeExecutable(); err != nil {
		t.Fatalf("MakeExecutable: %v", err)
	}
	if err := page.Patch(0, []byte{0x90, 0xC3}); err != nil {
		t.Fatalf("Patch: %v", err)
	}
}

func TestEmitDetourPatchPadsWithNop(t *testing.T) {
	patch := EmitDetourPatch(0x1000, 0x1000, 8)
	if len(patch) != 8 {
		t.Fatalf("len(patch) = %d, want 8", len(patch))
	}
}
