//go:build windows

package abi

// longSize is the width in bytes of the ABI "long" tags (l, L) under
// the LLP64 data model Windows uses even on 64-bit builds.
const longSize = 4
