//go:build windows

package codegen

import (
	"golang.org/x/sys/windows"

	"github.com/nff-go/nff/pkg/ptr"
)

func osPageSize() int { return 4096 }

func osAllocRW(size int) (ptr.Address, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE,
		windows.PAGE_READWRITE)
	if err != nil {
		return 0, err
	}
	return ptr.Address(addr), nil
}

func osMakeExecutable(addr ptr.Address, size int) error {
	var old uint32
	return windows.VirtualProtect(uintptr(addr), uintptr(size), windows.PAGE_EXECUTE_READ, &old)
}

func osMakeWritable(addr ptr.Address, size int) error {
	var old uint32
	return windows.VirtualProtect(uintptr(addr), uintptr(size), windows.PAGE_READWRITE, &old)
}

func osFree(addr ptr.Address, size int) error {
	return windows.VirtualFree(uintptr(addr), 0, windows.MEM_RELEASE)
}
