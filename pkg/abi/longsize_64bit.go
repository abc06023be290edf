//go:build !windows

package abi

// longSize is the width in bytes of the ABI "long" tags (l, L) under
// the LP64 data model used by every non-Windows target this bridge
// supports.
const longSize = 8
