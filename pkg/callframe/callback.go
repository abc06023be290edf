package callframe

import (
	"reflect"
	"sync/atomic"

	"github.com/ebitengine/purego"
	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/nffcore"
)

// CallbackFunc is the host-side function a reverse thunk dispatches
// into. It receives the marshaled argument vector and returns the
// value to place in the return registers (spec.md §4.D reverse path).
type CallbackFunc func(args []any) (any, error)

// MakeCallback allocates a native-callable thunk for sig that invokes
// fn, returning its address as a first-class function-pointer value
// plus a release function implementing spec.md's explicit free().
//
// purego's underlying callback table is permanent for the life of the
// process (its own doc: "Callbacks are never freed"); release only
// flips a logical flag that makes the thunk refuse to dispatch, which
// is sufficient to satisfy spec.md §8 scenario 6's "after free(), the
// address must no longer be invoked by user code" — the slot itself
// is reclaimed at process exit, not before. See DESIGN.md.
func MakeCallback(sig abi.Signature, fn CallbackFunc) (uintptr, func(), error) {
	ft := funcType(sig)

	var freed atomic.Bool
	shim := reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		out := make([]reflect.Value, ft.NumOut())
		for i := range out {
			out[i] = reflect.Zero(ft.Out(i))
		}
		if freed.Load() {
			// The thunk has been released; spec.md §8 scenario 6
			// treats a post-free invocation as the caller's bug, so we
			// return a zero value rather than touch freed host state.
			return out
		}

		result, err := safeCall(fn, in)
		if err != nil {
			// The HostCallbackFailed error is dropped here rather than
			// propagated across the FFI boundary; the native caller
			// receives the zero value. It is neither logged nor stored.
			return out
		}
		if ft.NumOut() == 0 {
			return out
		}
		rv := reflect.ValueOf(result)
		if !rv.IsValid() {
			return out
		}
		if rv.Type().ConvertibleTo(ft.Out(0)) {
			out[0] = rv.Convert(ft.Out(0))
		}
		return out
	})

	addr := purego.NewCallback(shim.Interface())
	release := func() { freed.Store(true) }
	return addr, release, nil
}

func safeCall(fn CallbackFunc, in []reflect.Value) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = nffcore.New("callframe.safeCall", nffcore.HostCallbackFailed, "callback panicked")
		}
	}()
	args := make([]any, len(in))
	for i, v := range in {
		args[i] = v.Interface()
	}
	return fn(args)
}
