// Package sigscan implements spec.md §4.C: a naive left-to-right scan
// of a module's loaded image for a byte pattern with wildcard bytes,
// plus a pointer-indirection helper built on top of it.
package sigscan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nff-go/nff/pkg/nffcore"
)

// Wildcard is the distinguished byte value that matches any byte, per
// spec.md §3: 0x2A ('*'). This is the sole meaning of 0x2A inside a
// pattern — spec.md's Open Question on this is resolved in DESIGN.md:
// 0x2A always means wildcard, never a literal match byte.
const Wildcard = 0x2A

// Pattern is a parsed, ordered sequence of pattern bytes. IsWild[i]
// reports whether byte i is the wildcard.
type Pattern struct {
	Bytes  []byte
	IsWild []bool
}

func (p Pattern) Len() int { return len(p.Bytes) }

// ParsePattern parses the space-separated two-hex-digit token grammar
// of spec.md §6 identifier format, e.g. "55 8B EC * * 56". An empty
// pattern, an odd-length hex token, or a non-hex/non-space/non-'*'
// character is SignatureMalformed.
func ParsePattern(s string) (Pattern, error) {
	const op = "sigscan.ParsePattern"
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return Pattern{}, nffcore.New(op, nffcore.SignatureMalformed, "pattern is empty")
	}

	out := Pattern{Bytes: make([]byte, 0, len(tokens)), IsWild: make([]bool, 0, len(tokens))}
	for _, tok := range tokens {
		if tok == "*" {
			out.Bytes = append(out.Bytes, Wildcard)
			out.IsWild = append(out.IsWild, true)
			continue
		}
		if len(tok) != 2 {
			return Pattern{}, nffcore.New(op, nffcore.SignatureMalformed,
				fmt.Sprintf("token %q is not a two-hex-digit byte or '*'", tok))
		}
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return Pattern{}, nffcore.Wrap(op, nffcore.SignatureMalformed,
				"token "+tok+" is not valid hex", err)
		}
		out.Bytes = append(out.Bytes, byte(b))
		out.IsWild = append(out.IsWild, byte(b) == Wildcard)
	}
	return out, nil
}

// LooksLikePattern reports whether an identifier string (spec.md §6)
// is a byte-signature rather than a symbol name: it contains a space
// and every whitespace-separated token is either "*" or two hex
// digits.
func LooksLikePattern(identifier string) bool {
	tokens := strings.Fields(identifier)
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		if tok == "*" {
			continue
		}
		if len(tok) != 2 {
			return false
		}
		if _, err := strconv.ParseUint(tok, 16, 8); err != nil {
			return false
		}
	}
	return true
}
