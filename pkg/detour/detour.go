// Package detour implements the interception engine of spec.md §4.F:
// installing an inline hook at a function's entry point, routing calls
// through pre/post callback phases, and restoring the original bytes
// on the last Unhook. Every detour keeps its own trampoline so hooked
// code can still reach the unmodified original.
package detour

import (
	"sync"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/callframe"
	"github.com/nff-go/nff/pkg/codegen"
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// PreFunc runs before the original function. It may replace the
// argument vector (returned as newArgs) and, by returning
// abi.ActionOverride, supply override as the call's result without
// ever reaching the original function.
type PreFunc func(args []any) (newArgs []any, action abi.HookAction, override any)

// PostFunc runs after the original function (or after an overriding
// pre callback). It may replace the result by returning
// abi.ActionModified with newResult.
type PostFunc func(args []any, result any) (newResult any, action abi.HookAction)

// state is the UNHOOKED/HOOKED machine of spec.md §4.F.
type state int

const (
	stateUnhooked state = iota
	stateHooked
)

// Record is one installed detour. Its trampoline lets callers (and the
// hooked function's own recursive calls, once jumped past the patch)
// still reach the original code.
type Record struct {
	mu       sync.Mutex
	target   ptr.Address
	conv     abi.Convention
	sig      abi.Signature
	state    state
	refCount int

	trampoline  *codegen.Page
	prologueLen int
	stub        *codegen.Page
	released    func()
	original    []byte

	// nativeSig is sig widened with a leading receiver pointer when
	// conv is THISCALL (abi.Signature.WithReceiver), matching the
	// actual argument vector a native caller places on the wire; the
	// callback and every re-entrant trampoline call use this, not sig,
	// since sig alone never lists an implicit `this` (spec.md §6).
	nativeSig abi.Signature

	pre        []PreFunc
	post       []PostFunc
	lastAction abi.HookAction
}

// Engine tracks every installed detour by target address, per spec.md
// §4.F's "the engine must track hooked/unhooked state per target
// function so repeated Hook/Unhook calls are well defined."
type Engine struct {
	mu      sync.Mutex
	records map[ptr.Address]*Record
}

// New returns an empty Engine.
func New() *Engine {
	return &Engine{records: make(map[ptr.Address]*Record)}
}

// Default is the process-wide engine used by pkg/nativefunc.
var Default = New()

// Hook installs a detour at target if none exists yet (building a
// trampoline and dispatch stub and patching the prologue), or, if
// target is already hooked, increments its reference count and
// reuses the existing trampoline — multiple Hook calls on the same
// address compose rather than stack additional patches, per spec.md
// §4.F's ref-counted HOOKED state.
func (e *Engine) Hook(target ptr.Address, conv abi.Convention, sig abi.Signature, pre PreFunc, post PostFunc) (*Record, error) {
	const op = "detour.Hook"
	if target == 0 {
		return nil, nffcore.New(op, nffcore.NullDereference, "hook target is null")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if r, ok := e.records[target]; ok {
		r.mu.Lock()
		r.refCount++
		if pre != nil {
			r.pre = append(r.pre, pre)
		}
		if post != nil {
			r.post = append(r.post, post)
		}
		r.mu.Unlock()
		return r, nil
	}

	r := &Record{target: target, conv: conv, sig: sig, state: stateHooked, refCount: 1}
	if pre != nil {
		r.pre = append(r.pre, pre)
	}
	if post != nil {
		r.post = append(r.post, post)
	}

	if err := r.install(); err != nil {
		return nil, err
	}
	e.records[target] = r
	return r, nil
}

// install implements spec.md §4.F steps 1-5: build the trampoline,
// build a dispatch stub that routes into this record's runDispatch,
// and atomically patch the target's prologue to jump to the stub.
//
// The patch itself is a single in-place byte-slice write (Page.Patch
// toggles W^X around it), which on every architecture this module
// targets is not torn by a concurrent reader for spans within a
// cache line — the "two-stage atomic patch" spec.md §9 asks the
// implementation to resolve between world-stop and atomic-patch is
// resolved here in favor of atomic-patch: stage 1 writes the stub and
// trampoline (never observable from target's unpatched prologue),
// stage 2 overwrites target's entry with a single jump instruction.
// See DESIGN.md.
func (r *Record) install() error {
	const op = "detour.install"

	// Room for the longest jump EmitDetourPatch may write (the absolute
	// form); BuildTrampoline grows it to a whole-instruction boundary.
	jumpLen := len(codegen.EmitAbsoluteJump(0))
	tramp, prologueLen, err := codegen.BuildTrampoline(r.target, jumpLen)
	if err != nil {
		return err
	}

	r.nativeSig = r.sig
	if r.conv == abi.THISCALL {
		r.nativeSig = r.sig.WithReceiver()
	}

	cbAddr, release, err := callframe.MakeCallback(r.nativeSig, r.runDispatch)
	if err != nil {
		tramp.Free()
		return err
	}

	stub, err := codegen.BuildDispatchStub(ptr.Address(cbAddr))
	if err != nil {
		tramp.Free()
		release()
		return err
	}

	original, err := ptr.Wrap(r.target).Bytes(int64(prologueLen))
	if err != nil {
		tramp.Free()
		stub.Free()
		release()
		return nffcore.Wrap(op, nffcore.UnsupportedPrologue, "failed to snapshot original bytes", err)
	}
	originalCopy := make([]byte, len(original))
	copy(originalCopy, original)

	patch := codegen.EmitDetourPatch(r.target, ptr.Address(stub.Addr()), prologueLen)
	if err := patchTarget(r.target, patch); err != nil {
		tramp.Free()
		stub.Free()
		release()
		return err
	}

	r.trampoline = tramp
	r.prologueLen = prologueLen
	r.stub = stub
	r.released = release
	r.original = originalCopy
	return nil
}

// runDispatch is the Go-side body the dispatch stub's native callback
// invokes. It implements spec.md §4.F steps 2-5: run pre callbacks,
// honor an OVERRIDE by skipping the original call, otherwise call the
// trampoline, then run post callbacks, finally returning whichever
// result the strongest action selected.
func (r *Record) runDispatch(args []any) (any, error) {
	r.mu.Lock()
	pre := append([]PreFunc(nil), r.pre...)
	post := append([]PostFunc(nil), r.post...)
	tramp := r.trampoline
	conv, sig := r.conv, r.nativeSig
	r.mu.Unlock()

	actions := make([]abi.HookAction, 0, len(pre)+len(post))
	callArgs := args
	var result any
	overridden := false

	for _, fn := range pre {
		newArgs, action, override := fn(callArgs)
		actions = append(actions, action)
		if newArgs != nil {
			callArgs = newArgs
		}
		if action == abi.ActionOverride {
			result = override
			overridden = true
			break
		}
	}

	if !overridden {
		var err error
		result, err = callframe.Invoke(ptr.Address(tramp.Addr()), conv, sig, callArgs)
		if err != nil {
			return nil, err
		}
	}

	for _, fn := range post {
		newResult, action := fn(callArgs, result)
		actions = append(actions, action)
		if action == abi.ActionModified {
			result = newResult
		}
	}

	r.mu.Lock()
	r.lastAction = abi.MaxAction(actions)
	r.mu.Unlock()
	return result, nil
}

// LastAction reports the strongest abi.HookAction across every pre and
// post callback from the most recent dispatch, per spec.md §8's
// max(ai) testable property.
func (r *Record) LastAction() abi.HookAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastAction
}

// Unhook decrements target's reference count, restoring the original
// prologue and releasing the trampoline/stub/callback once the count
// reaches zero. Unhooking a target that was never hooked is a no-op
// error (NotHooked), matching spec.md §7.
func (e *Engine) Unhook(target ptr.Address) error {
	const op = "detour.Unhook"
	e.mu.Lock()
	r, ok := e.records[target]
	if !ok {
		e.mu.Unlock()
		return nffcore.New(op, nffcore.NotHooked, "target has no active detour")
	}

	r.mu.Lock()
	r.refCount--
	remaining := r.refCount
	r.mu.Unlock()

	if remaining > 0 {
		e.mu.Unlock()
		return nil
	}
	delete(e.records, target)
	e.mu.Unlock()

	return r.teardown()
}

func (r *Record) teardown() error {
	if err := patchTarget(r.target, r.original); err != nil {
		return err
	}
	r.released()
	r.stub.Free()
	r.trampoline.Free()
	r.mu.Lock()
	r.state = stateUnhooked
	r.mu.Unlock()
	return nil
}

// GetTrampoline returns the address hooked code can call to reach the
// unmodified original function, per spec.md §4.F's "hooked code must
// be able to invoke the original."
func (e *Engine) GetTrampoline(target ptr.Address) (ptr.Address, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.records[target]
	if !ok {
		return 0, nffcore.New("detour.GetTrampoline", nffcore.NotHooked, "target has no active detour")
	}
	return ptr.Address(r.trampoline.Addr()), nil
}

// IsHooked reports whether target currently has an installed detour.
func (e *Engine) IsHooked(target ptr.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.records[target]
	return ok
}

// Get returns the Record installed at target, if any.
func (e *Engine) Get(target ptr.Address) (*Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.records[target]
	return r, ok
}

func patchTarget(target ptr.Address, code []byte) error {
	const op = "detour.patchTarget"
	page := codegen.WrapExisting(target, len(code))
	if err := page.Patch(0, code); err != nil {
		return nffcore.Wrap(op, nffcore.UnsupportedPrologue, "failed to patch target prologue", err)
	}
	return nil
}
