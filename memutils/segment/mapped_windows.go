//go:build windows

package segment

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

func pageSize() int {
	return windows.Getpagesize()
}

// reserve reserves size bytes of address space without committing memory
func reserve(size uint) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reserve %d bytes of address space", size)
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size)), nil
}

func commit(pages []byte) error {
	_, err := windows.VirtualAlloc(uintptr(unsafe.Pointer(unsafe.SliceData(pages))), uintptr(len(pages)), windows.MEM_COMMIT, windows.PAGE_READWRITE)
	return err
}

func release(reservation []byte) error {
	err := windows.VirtualFree(uintptr(unsafe.Pointer(unsafe.SliceData(reservation))), 0, windows.MEM_RELEASE)
	if err != nil {
		return errors.Wrap(err, "failed to release address space")
	}

	return nil
}
