//go:build !windows

package codegen

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/nff-go/nff/pkg/ptr"
)

func osPageSize() int { return unix.Getpagesize() }

func osAllocRW(size int) (ptr.Address, error) {
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, err
	}
	return ptr.Address(uintptr(unsafe.Pointer(&region[0]))), nil
}

func osMakeExecutable(addr ptr.Address, size int) error {
	region := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), size)
	return unix.Mprotect(region, unix.PROT_READ|unix.PROT_EXEC)
}

func osMakeWritable(addr ptr.Address, size int) error {
	region := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), size)
	return unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE)
}

func osFree(addr ptr.Address, size int) error {
	region := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), size)
	return unix.Munmap(region)
}
