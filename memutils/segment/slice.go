package segment

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/brk/memutils"
)

const wordSize = uint(unsafe.Sizeof(uint64(0)))

// Slice is a Segment carved out of a single Go allocation of a fixed size. It is portable
// and cheap to create, which makes it the usual backing for tests, but its full limit is
// allocated up front.
type Slice struct {
	words []uint64
	// len(buf) is the break, cap(buf) is the limit
	buf []byte
}

var _ Segment = &Slice{}

// NewSlice creates a Slice segment that can grow to limit bytes. The base is aligned to
// 8 bytes.
func NewSlice(limit uint) *Slice {
	// One spare word keeps Break inside the allocation when the segment is full
	words := make([]uint64, memutils.AlignUp(limit, wordSize)/wordSize+1)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), limit)

	return &Slice{
		words: words,
		buf:   buf[:0],
	}
}

func (s *Slice) Base() unsafe.Pointer {
	return unsafe.Pointer(&s.words[0])
}

func (s *Slice) Break() unsafe.Pointer {
	return unsafe.Add(s.Base(), len(s.buf))
}

func (s *Slice) Len() uint {
	return uint(len(s.buf))
}

// Limit returns the size the segment was created with
func (s *Slice) Limit() uint {
	return uint(cap(s.buf))
}

func (s *Slice) Extend(n uint) (unsafe.Pointer, error) {
	if s.words == nil {
		return nil, errors.New("slice segment has been released")
	}

	remaining := uint(cap(s.buf) - len(s.buf))
	if n > remaining {
		return nil, errors.Wrapf(memutils.HeapExhaustedError, "cannot extend slice segment by %d bytes, only %d of %d remain", n, remaining, cap(s.buf))
	}

	previous := s.Break()
	s.buf = s.buf[:len(s.buf)+int(n)]
	return previous, nil
}

func (s *Slice) Release() error {
	s.words = nil
	s.buf = nil
	return nil
}
