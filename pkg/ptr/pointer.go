// Package ptr implements the Pointer abstraction of spec.md §3/§4.A: a
// typed view over a raw Address with load/store, arithmetic, copy, and
// alloc/dealloc primitives. A Pointer never owns the memory it names
// unless it was returned by Alloc.
package ptr

import (
	"math"
	"unsafe"

	"github.com/nff-go/nff/pkg/nffcore"
)

// Address is a pointer-width integer. The zero value means invalid.
type Address uintptr

// Valid reports whether the address is non-zero.
func (a Address) Valid() bool { return a != 0 }

// Pointer is an Address carrying operations but not necessarily
// ownership. Wrapping an existing Address (Wrap) produces a non-owning
// Pointer; only Alloc produces an owning one.
type Pointer struct {
	addr  Address
	owned bool
}

// Wrap produces a non-owning Pointer over an existing Address, e.g.
// one resolved by the module loader or signature scanner.
func Wrap(addr Address) Pointer { return Pointer{addr: addr} }

// Null is the canonical invalid Pointer.
var Null = Pointer{}

// Address returns the raw address this Pointer names.
func (p Pointer) Address() Address { return p.addr }

// IsNull reports whether the pointer is the null address.
func (p Pointer) IsNull() bool { return p.addr == 0 }

// Owned reports whether this Pointer was produced by Alloc and has not
// yet been released.
func (p Pointer) Owned() bool { return p.owned }

// Add returns a new non-owning Pointer offset by n bytes. Pointer
// arithmetic is always in bytes per spec.md §3.
func (p Pointer) Add(n int64) Pointer {
	return Pointer{addr: Address(int64(p.addr) + n)}
}

// Sub returns the byte distance between two pointers.
func (p Pointer) Sub(other Pointer) int64 {
	return int64(p.addr) - int64(other.addr)
}

// Equal reports address equality (ownership is not part of identity).
func (p Pointer) Equal(other Pointer) bool { return p.addr == other.addr }

// Less orders pointers by raw address.
func (p Pointer) Less(other Pointer) bool { return p.addr < other.addr }

func requireNonNull(op string, p Pointer) error {
	if p.addr == 0 {
		return nffcore.New(op, nffcore.NullDereference, "pointer operation on null address")
	}
	return nil
}

func (p Pointer) unsafeAt(offset int64) unsafe.Pointer {
	return unsafe.Pointer(uintptr(int64(p.addr) + offset))
}

// --- typed load/store ---

func (p Pointer) GetBool(offset int64) (bool, error) {
	v, err := p.GetUint8(offset)
	return v != 0, err
}

func (p Pointer) SetBool(v bool, offset int64) error {
	var b uint8
	if v {
		b = 1
	}
	return p.SetUint8(b, offset)
}

func (p Pointer) GetInt8(offset int64) (int8, error) {
	if err := requireNonNull("ptr.GetInt8", p); err != nil {
		return 0, err
	}
	return *(*int8)(p.unsafeAt(offset)), nil
}

func (p Pointer) SetInt8(v int8, offset int64) error {
	if err := requireNonNull("ptr.SetInt8", p); err != nil {
		return err
	}
	*(*int8)(p.unsafeAt(offset)) = v
	return nil
}

func (p Pointer) GetUint8(offset int64) (uint8, error) {
	if err := requireNonNull("ptr.GetUint8", p); err != nil {
		return 0, err
	}
	return *(*uint8)(p.unsafeAt(offset)), nil
}

func (p Pointer) SetUint8(v uint8, offset int64) error {
	if err := requireNonNull("ptr.SetUint8", p); err != nil {
		return err
	}
	*(*uint8)(p.unsafeAt(offset)) = v
	return nil
}

func (p Pointer) GetInt16(offset int64) (int16, error) {
	if err := requireNonNull("ptr.GetInt16", p); err != nil {
		return 0, err
	}
	return *(*int16)(p.unsafeAt(offset)), nil
}

func (p Pointer) SetInt16(v int16, offset int64) error {
	if err := requireNonNull("ptr.SetInt16", p); err != nil {
		return err
	}
	*(*int16)(p.unsafeAt(offset)) = v
	return nil
}

func (p Pointer) GetUint16(offset int64) (uint16, error) {
	if err := requireNonNull("ptr.GetUint16", p); err != nil {
		return 0, err
	}
	return *(*uint16)(p.unsafeAt(offset)), nil
}

func (p Pointer) SetUint16(v uint16, offset int64) error {
	if err := requireNonNull("ptr.SetUint16", p); err != nil {
		return err
	}
	*(*uint16)(p.unsafeAt(offset)) = v
	return nil
}

func (p Pointer) GetInt32(offset int64) (int32, error) {
	if err := requireNonNull("ptr.GetInt32", p); err != nil {
		return 0, err
	}
	return *(*int32)(p.unsafeAt(offset)), nil
}

func (p Pointer) SetInt32(v int32, offset int64) error {
	if err := requireNonNull("ptr.SetInt32", p); err != nil {
		return err
	}
	*(*int32)(p.unsafeAt(offset)) = v
	return nil
}

func (p Pointer) GetUint32(offset int64) (uint32, error) {
	if err := requireNonNull("ptr.GetUint32", p); err != nil {
		return 0, err
	}
	return *(*uint32)(p.unsafeAt(offset)), nil
}

func (p Pointer) SetUint32(v uint32, offset int64) error {
	if err := requireNonNull("ptr.SetUint32", p); err != nil {
		return err
	}
	*(*uint32)(p.unsafeAt(offset)) = v
	return nil
}

func (p Pointer) GetInt64(offset int64) (int64, error) {
	if err := requireNonNull("ptr.GetInt64", p); err != nil {
		return 0, err
	}
	return *(*int64)(p.unsafeAt(offset)), nil
}

func (p Pointer) SetInt64(v int64, offset int64) error {
	if err := requireNonNull("ptr.SetInt64", p); err != nil {
		return err
	}
	*(*int64)(p.unsafeAt(offset)) = v
	return nil
}

func (p Pointer) GetUint64(offset int64) (uint64, error) {
	if err := requireNonNull("ptr.GetUint64", p); err != nil {
		return 0, err
	}
	return *(*uint64)(p.unsafeAt(offset)), nil
}

func (p Pointer) SetUint64(v uint64, offset int64) error {
	if err := requireNonNull("ptr.SetUint64", p); err != nil {
		return err
	}
	*(*uint64)(p.unsafeAt(offset)) = v
	return nil
}

// GetLong / SetLong handle the ABI-sized "l"/"L" tags: 8 bytes on LP64
// targets, 4 on Windows. abi.Tag.Size reports the width; these always
// operate at 64-bit width, on Windows too, and leave narrowing to the
// caller (the call-frame builder range-checks "l" arguments as int64).
func (p Pointer) GetLong(offset int64) (int64, error) { return p.GetInt64(offset) }
func (p Pointer) SetLong(v int64, offset int64) error { return p.SetInt64(v, offset) }

func (p Pointer) GetFloat32(offset int64) (float32, error) {
	if err := requireNonNull("ptr.GetFloat32", p); err != nil {
		return 0, err
	}
	return math.Float32frombits(*(*uint32)(p.unsafeAt(offset))), nil
}

func (p Pointer) SetFloat32(v float32, offset int64) error {
	if err := requireNonNull("ptr.SetFloat32", p); err != nil {
		return err
	}
	*(*uint32)(p.unsafeAt(offset)) = math.Float32bits(v)
	return nil
}

func (p Pointer) GetFloat64(offset int64) (float64, error) {
	if err := requireNonNull("ptr.GetFloat64", p); err != nil {
		return 0, err
	}
	return math.Float64frombits(*(*uint64)(p.unsafeAt(offset))), nil
}

func (p Pointer) SetFloat64(v float64, offset int64) error {
	if err := requireNonNull("ptr.SetFloat64", p); err != nil {
		return err
	}
	*(*uint64)(p.unsafeAt(offset)) = math.Float64bits(v)
	return nil
}

// GetPtr / SetPtr read or write a machine word.
func (p Pointer) GetPtr(offset int64) (Address, error) {
	if err := requireNonNull("ptr.GetPtr", p); err != nil {
		return 0, err
	}
	return Address(*(*uintptr)(p.unsafeAt(offset))), nil
}

func (p Pointer) SetPtr(v Address, offset int64) error {
	if err := requireNonNull("ptr.SetPtr", p); err != nil {
		return err
	}
	*(*uintptr)(p.unsafeAt(offset)) = uintptr(v)
	return nil
}

// GetString reads a NUL-terminated C string at *(self+offset) — a
// pointer-to-pointer indirection, per spec.md §4.A.
func (p Pointer) GetString(offset int64) (string, error) {
	inner, err := p.GetPtr(offset)
	if err != nil {
		return "", err
	}
	if inner == 0 {
		return "", nffcore.New("ptr.GetString", nffcore.NullDereference, "string pointer is null")
	}
	return readCString(Wrap(inner), 0)
}

// GetStringArray reads a NUL-terminated string inline at self+offset.
func (p Pointer) GetStringArray(offset int64) (string, error) {
	return readCString(p, offset)
}

func readCString(p Pointer, offset int64) (string, error) {
	if err := requireNonNull("ptr.readCString", p); err != nil {
		return "", err
	}
	var buf []byte
	for i := int64(0); ; i++ {
		b := *(*byte)(p.unsafeAt(offset + i))
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

// SetStringArray writes text plus a terminating NUL into a fixed-size
// inline buffer, failing CapacityExceeded if it doesn't fit, per
// spec.md §4.A.
func (p Pointer) SetStringArray(text string, offset int64, capacity int64) error {
	if err := requireNonNull("ptr.SetStringArray", p); err != nil {
		return err
	}
	if int64(len(text))+1 > capacity {
		return nffcore.New("ptr.SetStringArray", nffcore.CapacityExceeded,
			"text plus NUL terminator does not fit in capacity")
	}
	for i, c := range []byte(text) {
		*(*byte)(p.unsafeAt(offset + int64(i))) = c
	}
	*(*byte)(p.unsafeAt(offset + int64(len(text)))) = 0
	return nil
}

// Copy performs a bit-exact byte copy from p into dst.
func (p Pointer) Copy(dst Pointer, size int64) error {
	if err := requireNonNull("ptr.Copy", p); err != nil {
		return err
	}
	if err := requireNonNull("ptr.Copy", dst); err != nil {
		return err
	}
	src := unsafe.Slice((*byte)(p.unsafeAt(0)), size)
	out := unsafe.Slice((*byte)(dst.unsafeAt(0)), size)
	copy(out, src)
	return nil
}

// Bytes returns a []byte view over [p, p+size) without copying. Used
// internally by the signature scanner and codegen packages; callers
// must not retain the slice past the pointer's validity window.
func (p Pointer) Bytes(size int64) ([]byte, error) {
	if err := requireNonNull("ptr.Bytes", p); err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(p.unsafeAt(0)), size), nil
}
