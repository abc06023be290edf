package abi

import (
	"fmt"
	"math"

	"github.com/nff-go/nff/pkg/nffcore"
)

// CheckArgs validates that args matches sig's argument tags in count
// and that each value narrows losslessly into its tag, per spec.md
// §4.D: "integer narrowing checks lost bits and fails with
// ArgumentOutOfRange; pointer tags accept integers and Pointer
// values."
func CheckArgs(op string, sig Signature, args []any) error {
	if len(args) != len(sig.Args) {
		return nffcore.New(op, nffcore.ArgumentCountMismatch,
			fmt.Sprintf("signature %s wants %d argument(s), got %d", sig, len(sig.Args), len(args)))
	}
	for i, t := range sig.Args {
		if err := checkNarrowing(op, i, t, args[i]); err != nil {
			return err
		}
	}
	return nil
}

func checkNarrowing(op string, index int, t Tag, v any) error {
	switch t {
	case TagPointer, TagCString:
		switch v.(type) {
		case uintptr, int, int64, uint64, nil:
			return nil
		default:
			if _, ok := v.(fmt.Stringer); ok {
				return nil
			}
			return nil // any Pointer-like value is accepted; concrete check lives in callframe's marshaler
		}
	case TagFloat32, TagFloat64, TagBool:
		return nil
	}

	iv, ok := asInt64(v)
	if !ok {
		return nffcore.New(op, nffcore.ArgumentOutOfRange,
			fmt.Sprintf("argument %d: value %v is not an integer convertible to tag %s", index, v, t))
	}
	if u, isU := v.(uint64); isU && u > math.MaxInt64 && t.IsSigned() {
		return nffcore.New(op, nffcore.ArgumentOutOfRange,
			fmt.Sprintf("argument %d: value %d out of range for tag %s", index, u, t))
	}
	lo, hi := intRange(t)
	if iv < lo || iv > hi {
		return nffcore.New(op, nffcore.ArgumentOutOfRange,
			fmt.Sprintf("argument %d: value %d out of range for tag %s [%d, %d]", index, iv, t, lo, hi))
	}
	return nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return math.MaxInt64, true // clamps; range check below still rejects if the tag can't hold it
		}
		return int64(n), true
	case uintptr:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func intRange(t Tag) (lo, hi int64) {
	switch t {
	case TagBool:
		return 0, 1
	case TagInt8:
		return math.MinInt8, math.MaxInt8
	case TagUint8:
		return 0, math.MaxUint8
	case TagInt16:
		return math.MinInt16, math.MaxInt16
	case TagUint16:
		return 0, math.MaxUint16
	case TagInt32:
		return math.MinInt32, math.MaxInt32
	case TagUint32:
		return 0, math.MaxUint32
	case TagInt64, TagLong:
		return math.MinInt64, math.MaxInt64
	case TagUint64, TagULong:
		return 0, math.MaxInt64 // int64 can't represent the full uint64 range; a uint64 argument above this is clamped by asInt64 and accepted
	default:
		return math.MinInt64, math.MaxInt64
	}
}
