// Package callframe implements spec.md §4.D: given {address,
// convention, param_sig, args}, build the native call frame, invoke
// the target, and decode the return. On the 64-bit targets this
// bridge ships for, the four conventions of spec.md §3 collapse to a
// single ABI (spec.md §4.D's own note), so the real marshaling work —
// matching Go's calling convention to C's — is delegated to
// github.com/ebitengine/purego's reflect-driven RegisterFunc/NewCallback,
// and this package supplies the signature parsing, validation,
// convention bookkeeping, and the reverse (inbound) dispatch path that
// purego does not know about.
package callframe

import (
	"reflect"
	"sync"

	"github.com/nff-go/nff/pkg/abi"
)

var (
	funcTypeMu    sync.Mutex
	funcTypeCache = map[string]reflect.Type{}
)

// funcType returns (and caches) the reflect.Type of a Go func matching
// sig's argument and return tags, suitable for purego.RegisterFunc /
// purego.NewCallback.
func funcType(sig abi.Signature) reflect.Type {
	key := sig.String()

	funcTypeMu.Lock()
	defer funcTypeMu.Unlock()
	if t, ok := funcTypeCache[key]; ok {
		return t
	}

	in := make([]reflect.Type, len(sig.Args))
	for i, tag := range sig.Args {
		in[i] = goType(tag)
	}
	var out []reflect.Type
	if sig.Return != abi.TagVoid {
		out = []reflect.Type{goType(sig.Return)}
	}

	t := reflect.FuncOf(in, out, false)
	funcTypeCache[key] = t
	return t
}

// goType maps one abi.Tag to the Go type purego should marshal it as.
// purego routes uintptr-sized integer types through the integer
// register/stack file and float32/float64 through the floating-point
// one, which is exactly the register-file split spec.md §4.D requires.
func goType(t abi.Tag) reflect.Type {
	switch t {
	case abi.TagBool:
		return reflect.TypeOf(bool(false))
	case abi.TagInt8:
		return reflect.TypeOf(int8(0))
	case abi.TagUint8:
		return reflect.TypeOf(uint8(0))
	case abi.TagInt16:
		return reflect.TypeOf(int16(0))
	case abi.TagUint16:
		return reflect.TypeOf(uint16(0))
	case abi.TagInt32:
		return reflect.TypeOf(int32(0))
	case abi.TagUint32:
		return reflect.TypeOf(uint32(0))
	case abi.TagLong:
		return reflect.TypeOf(int64(0))
	case abi.TagULong:
		return reflect.TypeOf(uint64(0))
	case abi.TagInt64:
		return reflect.TypeOf(int64(0))
	case abi.TagUint64:
		return reflect.TypeOf(uint64(0))
	case abi.TagFloat32:
		return reflect.TypeOf(float32(0))
	case abi.TagFloat64:
		return reflect.TypeOf(float64(0))
	case abi.TagPointer, abi.TagCString:
		return reflect.TypeOf(uintptr(0))
	default:
		return reflect.TypeOf(uintptr(0))
	}
}
