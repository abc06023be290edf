package abi

import (
	"strings"

	"github.com/nff-go/nff/pkg/nffcore"
)

// Signature is a parsed parameter signature "P…P)R".
type Signature struct {
	Args   []Tag
	Return Tag
	raw    string
}

func (s Signature) String() string { return s.raw }

// ArgCount is the number of arguments the signature declares.
func (s Signature) ArgCount() int { return len(s.Args) }

// ParseSignature parses the "P…P)R" grammar from spec.md §3. The
// closing paren is mandatory; `v` is only legal in the return
// position.
func ParseSignature(raw string) (Signature, error) {
	const op = "abi.ParseSignature"
	paren := strings.IndexByte(raw, ')')
	if paren < 0 {
		return Signature{}, nffcore.New(op, nffcore.ParameterSignatureMalformed,
			"missing ')' separating arguments from return tag")
	}
	argPart, retPart := raw[:paren], raw[paren+1:]
	if len(retPart) != 1 {
		return Signature{}, nffcore.New(op, nffcore.ParameterSignatureMalformed,
			"return tag must be exactly one character after ')'")
	}
	ret := Tag(retPart[0])
	if !ret.Valid() {
		return Signature{}, nffcore.New(op, nffcore.ParameterSignatureMalformed,
			"unknown return tag "+ret.String())
	}

	args := make([]Tag, 0, len(argPart))
	for i := 0; i < len(argPart); i++ {
		t := Tag(argPart[i])
		if !t.Valid() {
			return Signature{}, nffcore.New(op, nffcore.ParameterSignatureMalformed,
				"unknown argument tag "+t.String())
		}
		if t == TagVoid {
			return Signature{}, nffcore.New(op, nffcore.ParameterSignatureMalformed,
				"'v' is only legal in the return position")
		}
		args = append(args, t)
	}
	return Signature{Args: args, Return: ret, raw: raw}, nil
}

// MustParseSignature is a convenience for tests and for signatures
// known to be valid at compile time (e.g. CLI flag defaults).
func MustParseSignature(raw string) Signature {
	sig, err := ParseSignature(raw)
	if err != nil {
		panic(err)
	}
	return sig
}

// WithReceiver returns a copy of s with a leading pointer tag
// prepended to Args, modeling the implicit `this` that a bound method
// call or a THISCALL hook adds ahead of a function/virtual-function
// record's declared parameters (spec.md §6: "parameters" never lists
// the receiver itself). Every caller that actually places `this` onto
// the wire — nativefunc.BoundMethod.Call, and pkg/detour when it
// hooks a THISCALL target — must call this before handing the
// signature to callframe.Invoke/MakeCallback, since those only see
// the flat argument vector and cannot tell a declared argument from
// an implicit receiver on their own.
func (s Signature) WithReceiver() Signature {
	args := make([]Tag, 0, len(s.Args)+1)
	args = append(args, TagPointer)
	args = append(args, s.Args...)
	return Signature{Args: args, Return: s.Return, raw: string(TagPointer) + s.raw}
}
