// Package nffcore defines the error taxonomy shared by every bridge
// component: module loading, signature scanning, call-frame building,
// trampoline generation, and detour hooking all fail through the same
// Kind enumeration so a caller can switch on failure class without
// caring which package raised it.
package nffcore

import (
	"errors"
	"fmt"
)

// Kind classifies a bridge failure. The zero value is never returned
// by the bridge itself.
type Kind int

const (
	_ Kind = iota
	ModuleNotFound
	SymbolNotFound
	SignatureNotFound
	SignatureMalformed
	ParameterSignatureMalformed
	ArgumentCountMismatch
	ArgumentOutOfRange
	NullDereference
	CapacityExceeded
	InvalidOwnership
	UnsupportedPrologue
	ExecutableAllocationFailed // OS refuses an executable mapping (pkg/codegen.Alloc)
	AllocationFailed           // OS refuses an ordinary data mapping (pkg/ptr.Alloc)
	NotHooked
	HostCallbackFailed
)

var kindNames = map[Kind]string{
	ModuleNotFound:               "ModuleNotFound",
	SymbolNotFound:               "SymbolNotFound",
	SignatureNotFound:            "SignatureNotFound",
	SignatureMalformed:           "SignatureMalformed",
	ParameterSignatureMalformed:  "ParameterSignatureMalformed",
	ArgumentCountMismatch:        "ArgumentCountMismatch",
	ArgumentOutOfRange:           "ArgumentOutOfRange",
	NullDereference:              "NullDereference",
	CapacityExceeded:             "CapacityExceeded",
	InvalidOwnership:             "InvalidOwnership",
	UnsupportedPrologue:          "UnsupportedPrologue",
	ExecutableAllocationFailed:   "ExecutableAllocationFailed",
	AllocationFailed:             "AllocationFailed",
	NotHooked:                    "NotHooked",
	HostCallbackFailed:           "HostCallbackFailed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownKind"
}

// Error is the concrete error value every bridge package returns. Op
// names the failing operation ("module.Open", "callframe.Invoke", ...)
// so a logged error reads like a call stack without needing one.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(op string, k Kind, msg string) *Error {
	return &Error{Op: op, Kind: k, Msg: msg}
}

// Wrap builds an *Error around an existing error.
func Wrap(op string, k Kind, msg string, err error) *Error {
	return &Error{Op: op, Kind: k, Msg: msg, Err: err}
}

// Is reports whether err is (or wraps) an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == k
}
