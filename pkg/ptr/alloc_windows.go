//go:build windows

package ptr

import "golang.org/x/sys/windows"

func osAllocData(size int64) (Address, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE,
		windows.PAGE_READWRITE)
	if err != nil {
		return 0, err
	}
	return Address(addr), nil
}

func osFreeData(addr Address, _ int64) error {
	return windows.VirtualFree(uintptr(addr), 0, windows.MEM_RELEASE)
}
