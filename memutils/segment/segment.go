// Package segment provides the raw, monotonically growing address ranges that heaps are
// built on. A Segment behaves like the classic brk/sbrk pair: it has a fixed base, a
// current break, and a single operation that moves the break forward.
package segment

import "unsafe"

//go:generate mockgen -source segment.go -destination mocks/segment.go

// Segment is a contiguous range of address space whose end (the break) only ever moves
// forward. Memory between Base and Break is readable and writable and never moves for
// the lifetime of the Segment.
type Segment interface {
	// Base returns the first address of the range. It does not change.
	Base() unsafe.Pointer
	// Break returns the current end of the range, the address Extend will return next.
	Break() unsafe.Pointer
	// Extend moves the break forward by n bytes and returns the previous break. When the
	// range cannot grow by n bytes, Extend returns nil and an error wrapping
	// memutils.HeapExhaustedError, and the break does not move.
	Extend(n uint) (unsafe.Pointer, error)
	// Len returns the number of bytes between Base and Break.
	Len() uint
	// Release returns the range to the system. The Segment must not be used afterward.
	Release() error
}
