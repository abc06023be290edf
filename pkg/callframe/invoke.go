package callframe

import (
	"reflect"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// Invoke builds a call frame for (conv, sig) at addr, marshals args in
// per sig.Args, calls addr, and decodes the return per sig.Return.
//
// THISCALL's implicit receiver is not special-cased here: on a unified
// 64-bit ABI the "this" slot is simply argument 0 (spec.md §4.D). sig
// must already account for it when one is present — callers that bind
// an implicit receiver (nativefunc.BoundMethod.Call, pkg/detour
// hooking a THISCALL target) widen sig via abi.Signature.WithReceiver
// before calling Invoke, rather than prepending only to args.
func Invoke(addr ptr.Address, conv abi.Convention, sig abi.Signature, args []any) (any, error) {
	const op = "callframe.Invoke"
	if addr == 0 {
		return nil, nffcore.New(op, nffcore.NullDereference, "call target address is null")
	}
	if err := abi.CheckArgs(op, sig, args); err != nil {
		return nil, err
	}

	ft := funcType(sig)
	fnPtr := reflect.New(ft)
	purego.RegisterFunc(fnPtr.Interface(), uintptr(addr))

	in := make([]reflect.Value, len(sig.Args))
	for i, tag := range sig.Args {
		v, err := marshalArg(op, tag, args[i])
		if err != nil {
			return nil, err
		}
		in[i] = v
	}

	out := fnPtr.Elem().Call(in)
	if sig.Return == abi.TagVoid {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func marshalArg(op string, tag abi.Tag, v any) (reflect.Value, error) {
	target := goType(tag)

	switch tag {
	case abi.TagPointer, abi.TagCString:
		addr, err := asAddress(v)
		if err != nil {
			return reflect.Value{}, nffcore.Wrap(op, nffcore.ArgumentOutOfRange, "pointer argument", err)
		}
		return reflect.ValueOf(addr).Convert(target), nil
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().ConvertibleTo(target) {
		return reflect.Value{}, nffcore.New(op, nffcore.ArgumentOutOfRange,
			"value of type "+rv.Type().String()+" is not convertible to tag "+tag.String())
	}
	return rv.Convert(target), nil
}

func asAddress(v any) (uintptr, error) {
	switch n := v.(type) {
	case ptr.Pointer:
		return uintptr(n.Address()), nil
	case ptr.Address:
		return uintptr(n), nil
	case uintptr:
		return n, nil
	case int:
		return uintptr(n), nil
	case int64:
		return uintptr(n), nil
	case uint64:
		return uintptr(n), nil
	case string:
		// A raw Go string passed for a 't' tag is copied once into an
		// owned, NUL-terminated buffer; the caller owns pointer-typed
		// arguments for every other case.
		b := append([]byte(n), 0)
		return uintptr(unsafe.Pointer(&b[0])), nil
	case nil:
		return 0, nil
	default:
		return 0, nffcore.New("callframe.asAddress", nffcore.ArgumentOutOfRange, "unsupported pointer argument type")
	}
}
