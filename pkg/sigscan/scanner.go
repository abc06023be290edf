package sigscan

import (
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
)

// Find performs the naive left-to-right scan of spec.md §4.C over
// [base, base+len(image)), returning the lowest matching address. The
// complexity is O(len(image)*pattern.Len()); modules are a few
// megabytes and patterns a few dozen bytes, so this is acceptable —
// there's no reason to adopt Boyer-Moore.
func Find(image []byte, base ptr.Address, p Pattern) (ptr.Address, error) {
	const op = "sigscan.Find"
	if p.Len() == 0 {
		return 0, nffcore.New(op, nffcore.SignatureMalformed, "pattern is empty")
	}
	if p.Len() > len(image) {
		return 0, nffcore.New(op, nffcore.SignatureNotFound, "pattern longer than image")
	}

	for start := 0; start+p.Len() <= len(image); start++ {
		if matchesAt(image, start, p) {
			return base + ptr.Address(start), nil
		}
	}
	return 0, nffcore.New(op, nffcore.SignatureNotFound, "no match in image")
}

func matchesAt(image []byte, start int, p Pattern) bool {
	for i := 0; i < p.Len(); i++ {
		if p.IsWild[i] {
			continue
		}
		if image[start+i] != p.Bytes[i] {
			return false
		}
	}
	return true
}

// GetPointer finds pattern in image, then reads a machine word at
// match+offset, per spec.md §4.C.
func GetPointer(image []byte, base ptr.Address, p Pattern, offset int64) (ptr.Address, error) {
	match, err := Find(image, base, p)
	if err != nil {
		return 0, err
	}
	return ptr.Wrap(match).GetPtr(offset)
}
