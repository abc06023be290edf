//go:build windows

package module

import (
	"fmt"

	"github.com/nff-go/nff/pkg/ptr"
	"github.com/saferwall/pe"
	"golang.org/x/sys/windows"
)

const isWindows = true

// osOpen loads path via LoadLibrary. On Windows the returned HMODULE
// *is* the module's base load address, so no separate base lookup is
// needed; the image size comes from the PE optional header via
// saferwall/pe, since Windows gives us no simpler runtime query for
// the mapped span of an arbitrary loaded module.
func osOpen(path string, srvCheck bool) (handle uintptr, base ptr.Address, size int64, err error) {
	var h windows.Handle
	if srvCheck {
		h, err = windows.LoadLibraryEx(path, 0, windows.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS)
	} else {
		h, err = windows.LoadLibrary(path)
	}
	if err != nil {
		return 0, 0, 0, err
	}

	sizeOfImage, sizeErr := peImageSize(path)
	if sizeErr != nil {
		return uintptr(h), ptr.Address(h), 0, nil
	}
	return uintptr(h), ptr.Address(h), int64(sizeOfImage), nil
}

func osSymbol(handle uintptr, name string) (ptr.Address, error) {
	addr, err := windows.GetProcAddress(windows.Handle(handle), name)
	if err != nil {
		return 0, err
	}
	return ptr.Address(addr), nil
}

// peImageSize reads SizeOfImage from the PE optional header on disk.
// This mirrors the relocated in-memory size closely enough for the
// signature scanner's bounds check; actual loaded size can differ by
// section alignment padding, which only widens the scan window.
func peImageSize(path string) (uint32, error) {
	f, err := pe.New(path, &pe.Options{})
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if err := f.Parse(); err != nil {
		return 0, err
	}

	switch oh := f.NtHeader.OptionalHeader.(type) {
	case pe.ImageOptionalHeader32:
		return oh.SizeOfImage, nil
	case pe.ImageOptionalHeader64:
		return oh.SizeOfImage, nil
	default:
		return 0, fmt.Errorf("module.peImageSize: unrecognized optional header type for %s", path)
	}
}
