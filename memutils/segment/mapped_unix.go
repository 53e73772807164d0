//go:build unix

package segment

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func pageSize() int {
	return unix.Getpagesize()
}

// reserve maps size bytes with no access rights. A protected, private, anonymous
// mapping does not commit memory.
func reserve(size uint) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reserve %d bytes of address space", size)
	}

	return buf, nil
}

func commit(pages []byte) error {
	return unix.Mprotect(pages, unix.PROT_READ|unix.PROT_WRITE)
}

func release(reservation []byte) error {
	err := unix.Munmap(reservation)
	if err != nil {
		return errors.Wrap(err, "failed to release address space")
	}

	return nil
}
