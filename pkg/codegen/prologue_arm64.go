//go:build arm64

package codegen

import "github.com/nff-go/nff/pkg/nffcore"

// MinPrologueLength on arm64 needs no opcode-length table: every
// instruction is 4 bytes, so the smallest whole-instruction count
// covering minBytes is just the next multiple of 4.
func MinPrologueLength(code []byte, minBytes int) (int, error) {
	n := ((minBytes + 3) / 4) * 4
	if n > len(code) {
		return 0, nffcore.New("codegen.MinPrologueLength", nffcore.UnsupportedPrologue,
			"ran out of bytes before reaching the minimum length")
	}
	return n, nil
}
