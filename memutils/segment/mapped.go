package segment

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vkngwrapper/brk/memutils"
)

// Mapped is a Segment backed by virtual memory reserved from the operating system. The
// full limit is reserved when the segment is created but pages are only committed as the
// break advances past them, so a large limit costs address space rather than memory.
// The reservation never moves.
type Mapped struct {
	// The slice covers the entire reservation:
	//   - len(buf) is the committed memory, always a whole number of pages
	//   - cap(buf) is the reserved address space, limit rounded up to a page
	buf      []byte
	brk      uint
	limit    uint
	pageSize uint
}

var _ Segment = &Mapped{}

// NewMapped reserves limit bytes of address space for a new segment
func NewMapped(limit uint) (*Mapped, error) {
	if limit == 0 {
		return nil, errors.New("a mapped segment requires a limit greater than 0")
	}

	pageSize := uint(pageSize())
	memutils.DebugCheckPow2(pageSize, "pageSize")

	reserved, ok := memutils.AlignUpChecked(limit, pageSize)
	if !ok || reserved > math.MaxInt {
		return nil, errors.Wrapf(memutils.HeapExhaustedError, "cannot reserve %d bytes of address space", limit)
	}

	buf, err := reserve(reserved)
	if err != nil {
		return nil, err
	}

	return &Mapped{
		buf:      buf[:0],
		limit:    limit,
		pageSize: pageSize,
	}, nil
}

func (m *Mapped) Base() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(m.buf))
}

func (m *Mapped) Break() unsafe.Pointer {
	return unsafe.Add(m.Base(), m.brk)
}

func (m *Mapped) Len() uint {
	return m.brk
}

// Limit returns the size the segment was created with
func (m *Mapped) Limit() uint {
	return m.limit
}

// Committed returns the number of bytes currently backed by readable, writable pages
func (m *Mapped) Committed() uint {
	return uint(len(m.buf))
}

// PageSize returns the granularity in which memory is committed
func (m *Mapped) PageSize() uint {
	return m.pageSize
}

func (m *Mapped) Extend(n uint) (unsafe.Pointer, error) {
	if cap(m.buf) == 0 {
		return nil, errors.New("mapped segment has been released")
	}

	if n > m.limit-m.brk {
		return nil, errors.Wrapf(memutils.HeapExhaustedError, "cannot extend mapped segment by %d bytes, only %d of %d remain", n, m.limit-m.brk, m.limit)
	}

	previous := m.Break()
	newBrk := m.brk + n

	committed := uint(len(m.buf))
	if newBrk > committed {
		// The reservation is page-rounded, so this never passes cap(m.buf)
		target := memutils.AlignUp(newBrk, m.pageSize)

		err := commit(m.buf[committed:target])
		if err != nil {
			return nil, errors.Wrapf(memutils.HeapExhaustedError, "failed to commit %d bytes: %v", target-committed, err)
		}

		m.buf = m.buf[:target]
	}

	m.brk = newBrk
	return previous, nil
}

func (m *Mapped) Release() error {
	if cap(m.buf) == 0 {
		return nil
	}

	err := release(m.buf[:cap(m.buf)])
	if err != nil {
		return err
	}

	m.buf = nil
	m.brk = 0
	return nil
}
