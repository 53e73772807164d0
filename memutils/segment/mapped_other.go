//go:build !unix && !windows

package segment

import (
	"unsafe"

	"github.com/vkngwrapper/brk/memutils"
)

func pageSize() int {
	return 4096
}

// reserve falls back to an ordinary Go allocation on platforms without virtual memory
// controls. Everything is committed up front.
func reserve(size uint) ([]byte, error) {
	words := make([]uint64, memutils.AlignUp(size, wordSize)/wordSize+1)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size), nil
}

func commit(pages []byte) error {
	return nil
}

func release(reservation []byte) error {
	return nil
}
