//go:build !windows

package ptr

import "golang.org/x/sys/unix"

func osAllocData(size int64) (Address, error) {
	region, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, err
	}
	return Address(uintptrOf(region)), nil
}

func osFreeData(addr Address, size int64) error {
	return unix.Munmap(sliceOf(addr, size))
}
