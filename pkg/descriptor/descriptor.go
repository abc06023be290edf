// Package descriptor implements the declarative record shapes of
// spec.md §6: the normalised key/value records an external loader
// (pkg/iniconfig, or any other source) hands to this module to
// describe functions, virtual functions, and struct attributes.
package descriptor

import (
	"strconv"
	"strings"

	"github.com/nff-go/nff/pkg/abi"
	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/sigscan"
)

// Flags is the read/write access declared for an AttributeRecord.
type Flags int

const (
	Read Flags = 1 << iota
	Write
)

const ReadWrite = Read | Write

// FunctionRecord describes one free or instance function, per
// spec.md §6's function-record table.
type FunctionRecord struct {
	Binary        string
	Identifier    string // symbol name, or a space-separated hex pattern
	Parameters    abi.Signature
	Convention    abi.Convention
	SrvCheck      bool
	Converter     string
	Documentation string
}

// VirtualFunctionRecord describes one vtable-indexed method.
type VirtualFunctionRecord struct {
	Slot          int
	Parameters    abi.Signature
	Convention    abi.Convention
	Converter     string
	Documentation string
}

// AttributeRecord describes one struct field read by offset.
type AttributeRecord struct {
	Converter     string
	Offset        int64
	Length        int64
	IsArray       bool
	Aligned       bool
	Flags         Flags
	Documentation string
}

// Validate enforces spec.md §6's attribute invariants: length is only
// meaningful for arrays or string_array converters, and aligned is
// only meaningful for nested-type (non-primitive) converters or
// arrays.
func (a AttributeRecord) Validate() error {
	const op = "descriptor.AttributeRecord.Validate"
	if a.Length != -1 && !a.IsArray && a.Converter != "string_array" {
		return nffcore.New(op, nffcore.ParameterSignatureMalformed,
			"length is only permitted when is_array is set or converter is string_array")
	}
	if a.Aligned && !a.IsArray && isPrimitiveConverter(a.Converter) {
		return nffcore.New(op, nffcore.ParameterSignatureMalformed,
			"aligned is forbidden on non-nested primitive converters")
	}
	return nil
}

func isPrimitiveConverter(name string) bool {
	switch name {
	case "bool", "char", "uchar", "short", "ushort", "int", "uint",
		"long", "ulong", "longlong", "ulonglong", "float", "double",
		"ptr", "string", "string_array":
		return true
	default:
		return false
	}
}

// IsPattern reports whether identifier is a byte-pattern identifier
// (spec.md §6: "spaces and two-hex-digit tokens") rather than a
// symbol name.
func IsPattern(identifier string) bool {
	return sigscan.LooksLikePattern(identifier)
}

// ParseOffset parses an AttributeRecord/VirtualFunctionRecord
// identifier that is numeric (byte offset or vtable slot), accepting
// both decimal and 0x-prefixed hex, as spec.md §6's example
// (`identifier = 0x48`) shows.
func ParseOffset(s string) (int64, error) {
	const op = "descriptor.ParseOffset"
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, nffcore.Wrap(op, nffcore.ParameterSignatureMalformed, "identifier is not a valid integer", err)
	}
	return v, nil
}

// Override resolves spec.md §6's "any key K may be specialised as
// K_nt (Windows) or K_posix (non-Windows)" rule: the OS-specific
// value wins if present, else the bare key, else ok is false so the
// caller applies its own default.
func Override(values map[string]string, key string, windows bool) (string, bool) {
	suffix := "_posix"
	if windows {
		suffix = "_nt"
	}
	if v, ok := values[key+suffix]; ok {
		return v, true
	}
	if v, ok := values[key]; ok {
		return v, true
	}
	return "", false
}

// DefaultConvention returns spec.md §6's default convention: THISCALL
// for methods (function records with no explicit convention key,
// inside the loader's method context), CDECL otherwise.
func DefaultConvention(isMethod bool) abi.Convention {
	if isMethod {
		return abi.THISCALL
	}
	return abi.CDECL
}
