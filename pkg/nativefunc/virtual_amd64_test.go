//go:build amd64

package nativefunc

import (
	"testing"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/codegen"
	"github.com/nff-go/nff/pkg/ptr"
)

// buildReturn100Function allocates an executable page holding a
// hand-written amd64 function equivalent to `int GetHealth() { return
// 100; }` (mov eax, 100; ret) that never reads its implicit `this`
// argument, so the same bytes are valid under either amd64 calling
// convention this module targets.
func buildReturn100Function(t *testing.T) *codegen.Page {
	t.Helper()
	page, err := codegen.Alloc(16)
	if err != nil {
		t.Fatalf("codegen.Alloc: %v", err)
	}
	code := []byte{0xB8, 0x64, 0x00, 0x00, 0x00, 0xC3} // mov eax, 100; ret
	if err := page.Write(0, code); err != nil {
		t.Fatalf("Page.Write: %v", err)
	}
	if err := page.MakeExecutable(); err != nil {
		t.Fatalf("Page.MakeExecutable: %v", err)
	}
	return page
}

// TestMakeVirtualDispatchesThroughVtable exercises spec.md §8 scenario
// 3 directly: an object whose vtable contains at slot 3 a function
// `int GetHealth()` yields 100 when called via MakeVirtual.
func TestMakeVirtualDispatchesThroughVtable(t *testing.T) {
	fn := buildReturn100Function(t)
	defer fn.Free()

	const pointerWidth = 8
	vtable, err := ptr.Alloc(4 * pointerWidth)
	if err != nil {
		t.Fatalf("Alloc vtable: %v", err)
	}
	defer ptr.Dealloc(&vtable)
	for i := int64(0); i < 4; i++ {
		if err := vtable.SetPtr(0, i*pointerWidth); err != nil {
			t.Fatalf("SetPtr: %v", err)
		}
	}
	if err := vtable.SetPtr(fn.Addr(), 3*pointerWidth); err != nil {
		t.Fatalf("SetPtr slot 3: %v", err)
	}

	obj, err := ptr.Alloc(pointerWidth)
	if err != nil {
		t.Fatalf("Alloc object: %v", err)
	}
	defer ptr.Dealloc(&obj)
	if err := obj.SetPtr(vtable.Address(), 0); err != nil {
		t.Fatalf("SetPtr vtable pointer: %v", err)
	}

	bound, err := MakeVirtual(obj, 0, 3, abi.THISCALL, abi.MustParseSignature(")i"))
	if err != nil {
		t.Fatalf("MakeVirtual: %v", err)
	}

	got, err := bound.Call()
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.(int32) != 100 {
		t.Fatalf("Call = %v, want 100", got)
	}
}
