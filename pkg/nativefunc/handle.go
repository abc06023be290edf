// Package nativefunc implements spec.md §4.G: the typed Function
// Handle that binds a resolved address to a calling convention and
// signature, and the BoundMethod wrapper for virtual/instance calls.
package nativefunc

import (
	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/callframe"
	"github.com/nff-go/nff/pkg/detour"
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// Handle is a callable, hookable reference to a native function at a
// fixed address, per spec.md §4.G.
type Handle struct {
	Address    ptr.Address
	Convention abi.Convention
	Sig        abi.Signature

	engine *detour.Engine
}

// New binds addr to conv/sig using the package-wide detour engine.
func New(addr ptr.Address, conv abi.Convention, sig abi.Signature) *Handle {
	return &Handle{Address: addr, Convention: conv, Sig: sig, engine: detour.Default}
}

// NewWithEngine is like New but lets callers (tests, or a host that
// wants isolated hook bookkeeping) supply their own detour.Engine.
func NewWithEngine(addr ptr.Address, conv abi.Convention, sig abi.Signature, engine *detour.Engine) *Handle {
	return &Handle{Address: addr, Convention: conv, Sig: sig, engine: engine}
}

// Call invokes the function at h.Address. While a detour is installed
// there, the patched entry routes the call through its pre/post
// callbacks; CallTrampoline reaches the unhooked original.
func (h *Handle) Call(args ...any) (any, error) {
	return callframe.Invoke(h.Address, h.Convention, h.Sig, args)
}

// CallTrampoline invokes the original, unhooked code path through the
// detour engine's trampoline, per spec.md §4.F's "hooked code must be
// able to reach the original" — it fails with NotHooked if the
// function currently has no installed detour, since without a hook
// there is no trampoline distinct from the function's own address.
func (h *Handle) CallTrampoline(args ...any) (any, error) {
	addr, err := h.engine.GetTrampoline(h.Address)
	if err != nil {
		return nil, err
	}
	return callframe.Invoke(addr, h.Convention, h.Sig, args)
}

// Hook installs a detour on this handle's address, per spec.md §4.F,
// or adds pre/post to the one already installed there. It returns only
// an error; the detour.Record is reachable through the engine's Get.
func (h *Handle) Hook(pre detour.PreFunc, post detour.PostFunc) error {
	_, err := h.engine.Hook(h.Address, h.Convention, h.Sig, pre, post)
	return err
}

// Unhook removes this handle's detour (or decrements its ref count).
func (h *Handle) Unhook() error {
	return h.engine.Unhook(h.Address)
}

// IsHooked reports whether this handle's address currently has an
// active detour.
func (h *Handle) IsHooked() bool {
	return h.engine.IsHooked(h.Address)
}

// LastAction reports the strongest abi.HookAction observed across the
// most recent dispatch through this handle's detour, if any is
// installed.
func (h *Handle) LastAction() (abi.HookAction, bool) {
	r, ok := h.engine.Get(h.Address)
	if !ok {
		return abi.ActionContinue, false
	}
	return r.LastAction(), true
}

// BoundMethod pairs a Handle with an implicit receiver ("this"),
// implementing spec.md §4.G's instance-method calling form. On the
// unified 64-bit ABI this module targets, THISCALL's receiver is
// simply prepended as argument 0 (see pkg/callframe.Invoke's doc
// comment), so BoundMethod only needs to own that prepending.
type BoundMethod struct {
	Handle *Handle
	This   ptr.Pointer
}

// Bind returns a BoundMethod that calls h with this as the implicit
// receiver.
func (h *Handle) Bind(this ptr.Pointer) BoundMethod {
	return BoundMethod{Handle: h, This: this}
}

// Call invokes the bound method, prepending This to args. The
// receiver is never part of Handle.Sig (spec.md §6's "parameters"
// never lists it), so the signature hit the wire must be widened to
// match — see abi.Signature.WithReceiver.
func (b BoundMethod) Call(args ...any) (any, error) {
	full := make([]any, 0, len(args)+1)
	full = append(full, b.This)
	full = append(full, args...)
	return callframe.Invoke(b.Handle.Address, b.Handle.Convention, b.Handle.Sig.WithReceiver(), full)
}

// MakeVirtual resolves a virtual function through this's vtable:
// vtable is read as a pointer at offset vtableOffset from this
// (commonly 0), and the target function pointer is read at
// slotIndex*pointer-width within that vtable, per spec.md §6's
// VirtualFunctionRecord. The resulting Handle is bound fresh each
// call rather than cached, since a vtable slot's contents can change
// between calls (e.g. under a hot-patching host).
func MakeVirtual(this ptr.Pointer, vtableOffset int64, slotIndex int, conv abi.Convention, sig abi.Signature) (BoundMethod, error) {
	const op = "nativefunc.MakeVirtual"
	vtableAddr, err := this.GetPtr(vtableOffset)
	if err != nil {
		return BoundMethod{}, nffcore.Wrap(op, nffcore.NullDereference, "failed to read vtable pointer", err)
	}
	if !vtableAddr.Valid() {
		return BoundMethod{}, nffcore.New(op, nffcore.NullDereference, "vtable pointer is null")
	}

	const pointerWidth = 8
	fnAddr, err := ptr.Wrap(vtableAddr).GetPtr(int64(slotIndex) * pointerWidth)
	if err != nil {
		return BoundMethod{}, nffcore.Wrap(op, nffcore.NullDereference, "failed to read vtable slot", err)
	}

	h := New(fnAddr, conv, sig)
	return h.Bind(this), nil
}
