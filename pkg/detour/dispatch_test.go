//go:build amd64 && !windows

package detour

import (
	"testing"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/callframe"
	"github.com/nff-go/nff/pkg/codegen"
	"github.com/nff-go/nff/pkg/ptr"
)

// buildAddFunction allocates an executable page holding a hand-written
// System V AMD64 function equivalent to `int32 add(int32 a, int32 b) {
// return a + b; }`: mov eax, edi; add eax, esi; ret. Writing the bytes
// by hand (the same technique pkg/codegen's own prologue/relocate
// tests use) gives Hook's install() a real, fully decodable function
// to relocate and patch, rather than depending on the exact bytes a
// third-party callback generator happens to emit.
func buildAddFunction(t *testing.T) *codegen.Page {
	t.Helper()
	page, err := codegen.Alloc(32)
	if err != nil {
		t.Fatalf("codegen.Alloc: %v", err)
	}
	code := []byte{0x89, 0xF8, 0x01, 0xF0, 0xC3}
	if err := page.Write(0, code); err != nil {
		t.Fatalf("Page.Write: %v", err)
	}
	if err := page.MakeExecutable(); err != nil {
		t.Fatalf("Page.MakeExecutable: %v", err)
	}
	return page
}

func TestHookRunsPreThenOriginalThenPost(t *testing.T) {
	page := buildAddFunction(t)
	defer page.Free()

	e := New()
	sig := abi.MustParseSignature("ii)i")

	var order []string
	pre := func(args []any) ([]any, abi.HookAction, any) {
		order = append(order, "pre")
		return nil, abi.ActionContinue, nil
	}
	post := func(args []any, result any) (any, abi.HookAction) {
		order = append(order, "post")
		if result.(int32) != 7 {
			t.Errorf("post saw result %v, want 7 (original must have run)", result)
		}
		return nil, abi.ActionContinue
	}

	rec, err := e.Hook(page.Addr(), abi.CDECL, sig, pre, post)
	if err != nil {
		t.Fatalf("Hook: %v", err)
	}
	defer e.Unhook(page.Addr())

	if !e.IsHooked(page.Addr()) {
		t.Fatal("IsHooked reported false right after Hook")
	}

	got, err := callframe.Invoke(page.Addr(), abi.CDECL, sig, []any{int32(3), int32(4)})
	if err != nil {
		t.Fatalf("Invoke on hooked target: %v", err)
	}
	if got.(int32) != 7 {
		t.Fatalf("Invoke on hooked target = %v, want 7", got)
	}
	if len(order) != 2 || order[0] != "pre" || order[1] != "post" {
		t.Fatalf("callback order = %v, want [pre post]", order)
	}
	if rec.LastAction() != abi.ActionContinue {
		t.Errorf("LastAction = %v, want CONTINUE", rec.LastAction())
	}
}

func TestHookOverrideSuppressesOriginal(t *testing.T) {
	page := buildAddFunction(t)
	defer page.Free()

	e := New()
	sig := abi.MustParseSignature("ii)i")

	pre := func(args []any) ([]any, abi.HookAction, any) {
		return nil, abi.ActionOverride, int32(99)
	}
	postSawResult := int32(-1)
	post := func(args []any, result any) (any, abi.HookAction) {
		postSawResult = result.(int32)
		return nil, abi.ActionContinue
	}

	rec, err := e.Hook(page.Addr(), abi.CDECL, sig, pre, post)
	if err != nil {
		t.Fatalf("Hook: %v", err)
	}
	defer e.Unhook(page.Addr())

	// Arguments that would sum to 7 if the original ran; an override
	// must suppress that call entirely and short-circuit to 99.
	got, err := callframe.Invoke(page.Addr(), abi.CDECL, sig, []any{int32(3), int32(4)})
	if err != nil {
		t.Fatalf("Invoke on hooked target: %v", err)
	}
	if got.(int32) != 99 {
		t.Fatalf("Invoke with OVERRIDE pre = %v, want 99 (original must not have run)", got)
	}
	if postSawResult != 99 {
		t.Errorf("post saw result %v, want the overridden 99", postSawResult)
	}
	if rec.LastAction() != abi.ActionOverride {
		t.Errorf("LastAction = %v, want OVERRIDE (the strongest of OVERRIDE, CONTINUE)", rec.LastAction())
	}
}

func TestHookPostModifiesResult(t *testing.T) {
	page := buildAddFunction(t)
	defer page.Free()

	e := New()
	sig := abi.MustParseSignature("ii)i")

	post := func(args []any, result any) (any, abi.HookAction) {
		return int32(55), abi.ActionModified
	}

	rec, err := e.Hook(page.Addr(), abi.CDECL, sig, nil, post)
	if err != nil {
		t.Fatalf("Hook: %v", err)
	}
	defer e.Unhook(page.Addr())

	got, err := callframe.Invoke(page.Addr(), abi.CDECL, sig, []any{int32(3), int32(4)})
	if err != nil {
		t.Fatalf("Invoke on hooked target: %v", err)
	}
	if got.(int32) != 55 {
		t.Fatalf("Invoke with MODIFIED post = %v, want 55", got)
	}
	if rec.LastAction() != abi.ActionModified {
		t.Errorf("LastAction = %v, want MODIFIED (the strongest of CONTINUE, MODIFIED)", rec.LastAction())
	}
}

func TestUnhookRestoresOriginalBytesExactly(t *testing.T) {
	page := buildAddFunction(t)
	defer page.Free()

	before, err := ptr.Wrap(page.Addr()).Bytes(5)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	beforeCopy := append([]byte(nil), before...)

	e := New()
	sig := abi.MustParseSignature("ii)i")
	if _, err := e.Hook(page.Addr(), abi.CDECL, sig, nil, nil); err != nil {
		t.Fatalf("Hook: %v", err)
	}

	patched, err := ptr.Wrap(page.Addr()).Bytes(5)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	patchedCopy := append([]byte(nil), patched...)
	allEqual := true
	for i := range beforeCopy {
		if beforeCopy[i] != patchedCopy[i] {
			allEqual = false
			break
		}
	}
	if allEqual {
		t.Fatal("target bytes are unchanged after Hook; expected a patch to the dispatch stub")
	}

	if err := e.Unhook(page.Addr()); err != nil {
		t.Fatalf("Unhook: %v", err)
	}
	if e.IsHooked(page.Addr()) {
		t.Fatal("IsHooked reported true after the only Unhook")
	}

	after, err := ptr.Wrap(page.Addr()).Bytes(5)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	for i := range beforeCopy {
		if beforeCopy[i] != after[i] {
			t.Fatalf("byte %d after Unhook = %#x, want original %#x", i, after[i], beforeCopy[i])
		}
	}

	got, err := callframe.Invoke(page.Addr(), abi.CDECL, sig, []any{int32(10), int32(32)})
	if err != nil {
		t.Fatalf("Invoke after Unhook: %v", err)
	}
	if got.(int32) != 42 {
		t.Fatalf("Invoke after Unhook = %v, want 42 (original function, not a trampoline)", got)
	}
}

func TestHookRefCountsRepeatedHookCalls(t *testing.T) {
	page := buildAddFunction(t)
	defer page.Free()

	e := New()
	sig := abi.MustParseSignature("ii)i")

	if _, err := e.Hook(page.Addr(), abi.CDECL, sig, nil, nil); err != nil {
		t.Fatalf("first Hook: %v", err)
	}
	if _, err := e.Hook(page.Addr(), abi.CDECL, sig, nil, nil); err != nil {
		t.Fatalf("second Hook: %v", err)
	}

	if err := e.Unhook(page.Addr()); err != nil {
		t.Fatalf("first Unhook: %v", err)
	}
	if !e.IsHooked(page.Addr()) {
		t.Fatal("IsHooked reported false after only one of two Unhook calls")
	}

	if err := e.Unhook(page.Addr()); err != nil {
		t.Fatalf("second Unhook: %v", err)
	}
	if e.IsHooked(page.Addr()) {
		t.Fatal("IsHooked reported true after both Unhook calls")
	}
}
