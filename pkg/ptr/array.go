package ptr

import "github.com/nff-go/nff/pkg/nffcore"

// scalar is the set of Go types the generic array view knows how to
// load/store directly; it mirrors the fixed-width tags of abi.Tag
// minus the ones needing bespoke encoding (bool, string, pointer).
type scalar interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Array is a lazy sequence view over contiguous elements of type T
// starting at a Pointer, implementing spec.md §4.A's make_<T>_array.
// Nothing is read until Get is called.
type Array[T scalar] struct {
	base   Pointer
	length int
}

// MakeArray constructs a lazy array view of length elements of T at p.
func MakeArray[T scalar](p Pointer, length int) Array[T] {
	return Array[T]{base: p, length: length}
}

func (a Array[T]) Len() int { return a.length }

func (a Array[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || i >= a.length {
		return zero, nffcore.New("ptr.Array.Get", nffcore.ArgumentOutOfRange, "index out of bounds")
	}
	if err := requireNonNull("ptr.Array.Get", a.base); err != nil {
		return zero, err
	}
	elem := a.base.unsafeAt(int64(i) * int64(sizeOf[T]()))
	return *(*T)(elem), nil
}

func (a Array[T]) Set(i int, v T) error {
	if i < 0 || i >= a.length {
		return nffcore.New("ptr.Array.Set", nffcore.ArgumentOutOfRange, "index out of bounds")
	}
	if err := requireNonNull("ptr.Array.Set", a.base); err != nil {
		return err
	}
	elem := a.base.unsafeAt(int64(i) * int64(sizeOf[T]()))
	*(*T)(elem) = v
	return nil
}

func sizeOf[T scalar]() int {
	var v T
	switch any(v).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	default:
		return 8
	}
}

// PtrArrayConverter projects a raw element Pointer into a host value,
// e.g. constructing a typed view struct over a heterogeneous element.
type PtrArrayConverter func(elem Pointer) (any, error)

// PtrArray is a lazy sequence view over heterogeneous elements of a
// fixed stride, implementing make_ptr_array(element_size, length,
// converter) from spec.md §4.A.
type PtrArray struct {
	base        Pointer
	elementSize int64
	length      int
	convert     PtrArrayConverter
}

func MakePtrArray(p Pointer, elementSize int64, length int, convert PtrArrayConverter) PtrArray {
	return PtrArray{base: p, elementSize: elementSize, length: length, convert: convert}
}

func (a PtrArray) Len() int { return a.length }

func (a PtrArray) Get(i int) (any, error) {
	if i < 0 || i >= a.length {
		return nil, nffcore.New("ptr.PtrArray.Get", nffcore.ArgumentOutOfRange, "index out of bounds")
	}
	elem := a.base.Add(int64(i) * a.elementSize)
	return a.convert(elem)
}
