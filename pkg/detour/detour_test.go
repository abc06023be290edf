package detour

import (
	"testing"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

func TestUnhookWithoutHookIsNotHooked(t *testing.T) {
	e := New()
	err := e.Unhook(ptr.Address(0x1234))
	if !nffcore.Is(err, nffcore.NotHooked) {
		t.Fatalf("Unhook on a never-hooked target: got %v, want NotHooked", err)
	}
}

func TestHookNullTargetIsNullDereference(t *testing.T) {
	e := New()
	sig := abi.MustParseSignature("i)i")
	_, err := e.Hook(0, abi.CDECL, sig, nil, nil)
	if !nffcore.Is(err, nffcore.NullDereference) {
		t.Fatalf("Hook(0, ...): got %v, want NullDereference", err)
	}
}

func TestGetTrampolineWithoutHookIsNotHooked(t *testing.T) {
	e := New()
	if _, err := e.GetTrampoline(ptr.Address(0x1234)); !nffcore.Is(err, nffcore.NotHooked) {
		t.Fatalf("GetTrampoline on a never-hooked target: got %v, want NotHooked", err)
	}
}

func TestIsHookedReportsFalseInitially(t *testing.T) {
	e := New()
	if e.IsHooked(ptr.Address(0x1234)) {
		t.Fatal("IsHooked on a fresh engine reported true")
	}
}
