package nativefunc

import (
	"testing"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/detour"
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

func TestCallTrampolineWithoutHookIsNotHooked(t *testing.T) {
	h := NewWithEngine(ptr.Address(0x1234), abi.CDECL, abi.MustParseSignature("i)i"), detour.New())
	if _, err := h.CallTrampoline(1); !nffcore.Is(err, nffcore.NotHooked) {
		t.Fatalf("CallTrampoline without a hook: got %v, want NotHooked", err)
	}
}

func TestIsHookedFalseByDefault(t *testing.T) {
	h := NewWithEngine(ptr.Address(0x1234), abi.CDECL, abi.MustParseSignature("i)i"), detour.New())
	if h.IsHooked() {
		t.Fatal("fresh handle reported IsHooked true")
	}
}

func TestMakeVirtualNullVtable(t *testing.T) {
	obj, err := ptr.Alloc(8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer ptr.Dealloc(&obj)
	if err := obj.SetPtr(ptr.Address(0), 0); err != nil {
		t.Fatalf("SetPtr: %v", err)
	}

	_, err = MakeVirtual(obj, 0, 0, abi.THISCALL, abi.MustParseSignature(")v"))
	if !nffcore.Is(err, nffcore.NullDereference) {
		t.Fatalf("MakeVirtual over a null vtable: got %v, want NullDereference", err)
	}
}
