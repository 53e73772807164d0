// Package heap implements a first-fit allocator that lays a small header in front of every
// allocation and grows a segment.Segment on demand, in the manner of a classic brk/sbrk
// malloc.
//
// Blocks are never split, merged or returned to the segment. A freed block stays in the
// block list and is handed out again to the first later request it is large enough for,
// keeping its original capacity. Heaps are single-threaded unless created with
// CreateSynchronized.
package heap

import (
	"context"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/brk/internal/utils"
	"github.com/vkngwrapper/brk/memutils"
	"github.com/vkngwrapper/brk/memutils/segment"
	"golang.org/x/exp/slog"
)

// Heap hands out payloads carved from a single segment. The zero value is not usable;
// create heaps with New.
type Heap struct {
	logger  *slog.Logger
	segment segment.Segment
	mutex   utils.OptionalMutex

	// start is the offset from the segment base where the first block goes
	start uint
	// head is the offset of the first block header, or noBlock before the first allocation
	head uint
}

func (h *Heap) header(offset uint) *blockHeader {
	return (*blockHeader)(unsafe.Add(h.segment.Base(), offset))
}

func (h *Heap) offsetOf(ptr unsafe.Pointer) uint {
	return uint(uintptr(ptr) - uintptr(h.segment.Base()))
}

func (h *Heap) checkActive() {
	if h.segment == nil {
		panic(errors.AssertionFailedf("heap used after release"))
	}
}

// Allocate returns a pointer to at least size bytes of uninitialized memory.
//
// A size of 0 returns nil with no error and leaves the heap untouched. If no free block is
// large enough and the segment cannot grow, Allocate returns nil and an error wrapping
// memutils.HeapExhaustedError.
func (h *Heap) Allocate(size uint) (unsafe.Pointer, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	ptr, err := h.allocate(size)
	memutils.DebugValidate(memutils.ValidateFunc(h.validate))
	return ptr, err
}

// Deallocate returns the allocation at ptr to the free list. A nil ptr is ignored.
//
// ptr must have come from this heap and must not have been deallocated already. Anything
// else is a programming error and panics with an assertion failure.
func (h *Heap) Deallocate(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.release(h.liveBlock(ptr, "deallocate"))
	memutils.DebugValidate(memutils.ValidateFunc(h.validate))
}

// Resize returns a pointer to at least newSize bytes holding the contents of the
// allocation at ptr.
//
//   - A nil ptr behaves exactly like Allocate(newSize).
//   - A newSize of 0 returns nil with no error and leaves the allocation at ptr live.
//   - If the block at ptr already holds newSize bytes, ptr itself is returned.
//   - Otherwise the contents move to a new allocation and ptr is deallocated. If the new
//     allocation fails, ptr is untouched and the error is returned.
func (h *Heap) Resize(ptr unsafe.Pointer, newSize uint) (unsafe.Pointer, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	newPtr, err := h.resize(ptr, newSize)
	memutils.DebugValidate(memutils.ValidateFunc(h.validate))
	return newPtr, err
}

// ZeroAllocate allocates count*elementSize bytes and zeroes them. The product is not
// checked for overflow. Failures are reported as they are by Allocate.
func (h *Heap) ZeroAllocate(count, elementSize uint) (unsafe.Pointer, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	ptr, err := h.allocate(count * elementSize)
	if ptr == nil {
		return nil, err
	}

	block := headerFor(ptr)
	clear(Bytes(ptr, block.size))

	memutils.DebugValidate(memutils.ValidateFunc(h.validate))
	return ptr, nil
}

// UsableSize returns the capacity of the live allocation at ptr, which may be larger than
// what was requested when the block was reused. A nil ptr returns 0. Any other pointer is
// held to the same rules as Deallocate.
func (h *Heap) UsableSize(ptr unsafe.Pointer) uint {
	if ptr == nil {
		return 0
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.liveBlock(ptr, "usable size").size
}

func (h *Heap) allocate(size uint) (unsafe.Pointer, error) {
	h.checkActive()

	if size == 0 {
		return nil, nil
	}

	block, last := h.findFreeBlock(size)
	if block != nil {
		block.free = false
		block.tag = TagReused

		h.logger.LogAttrs(context.Background(), slog.LevelDebug, "reused free block",
			slog.Uint64("offset", uint64(h.offsetOf(unsafe.Pointer(block)))),
			slog.Uint64("capacity", uint64(block.size)),
			slog.Uint64("requested", uint64(size)))

		return block.payload(), nil
	}

	block, err := h.requestSpace(last, size)
	if err != nil {
		return nil, err
	}

	return block.payload(), nil
}

// findFreeBlock walks the block list in growth order and returns the first free block
// that can hold size bytes. It also returns the last block it visited, which is the tail
// of the list when nothing fits.
func (h *Heap) findFreeBlock(size uint) (found *blockHeader, last *blockHeader) {
	for offset := h.head; offset != noBlock; {
		block := h.header(offset)
		if block.free && block.size >= size {
			return block, last
		}

		last = block
		offset = block.next
	}

	return nil, last
}

// requestSpace grows the segment by enough for a new block and links the block after
// last, or makes it the head of the list when last is nil.
func (h *Heap) requestSpace(last *blockHeader, size uint) (*blockHeader, error) {
	growth, ok := growthFor(size)
	if !ok {
		return nil, errors.Wrapf(memutils.HeapExhaustedError, "a %d-byte block does not fit in the address space", size)
	}

	expected := h.segment.Break()
	request, err := h.segment.Extend(growth)
	if err != nil {
		h.logger.LogAttrs(context.Background(), slog.LevelDebug, "failed to grow heap",
			slog.Uint64("growth", uint64(growth)),
			slog.Any("error", err))

		return nil, errors.Wrapf(err, "failed to grow heap by %d bytes", growth)
	}

	if request != expected {
		panic(errors.AssertionFailedf("heap break moved from %p to %p outside the allocator", expected, request))
	}

	block := (*blockHeader)(request)
	block.size = size
	block.next = noBlock
	block.free = false
	block.tag = TagGrown

	offset := h.offsetOf(request)
	if last != nil {
		last.next = offset
	} else {
		h.head = offset
	}

	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "grew heap",
		slog.Uint64("offset", uint64(offset)),
		slog.Uint64("size", uint64(size)),
		slog.Uint64("growth", uint64(growth)))

	return block, nil
}

// liveBlock recovers the header in front of ptr and panics unless it is a live block
// belonging to this heap. The range and alignment checks run before the header is read.
func (h *Heap) liveBlock(ptr unsafe.Pointer, operation string) *blockHeader {
	h.checkActive()

	addr := uintptr(ptr)
	base := uintptr(h.segment.Base())
	lowest := base + uintptr(h.start+headerSize)
	if h.head == noBlock || addr < lowest || addr >= uintptr(h.segment.Break()) || addr%uintptr(headerAlign) != 0 {
		panic(errors.AssertionFailedf("%s: %p is not an allocation from this heap", errors.Safe(operation), ptr))
	}

	block := headerFor(ptr)
	if block.free {
		panic(errors.AssertionFailedf("%s: %p has already been deallocated", errors.Safe(operation), ptr))
	}

	if !block.live() {
		panic(errors.AssertionFailedf("%s: %p has a corrupt header tagged %s", errors.Safe(operation), ptr, errors.Safe(block.tag.String())))
	}

	return block
}

func (h *Heap) release(block *blockHeader) {
	block.free = true
	block.tag = TagFreed
}

func (h *Heap) resize(ptr unsafe.Pointer, newSize uint) (unsafe.Pointer, error) {
	if ptr == nil {
		return h.allocate(newSize)
	}

	if newSize == 0 {
		// The old allocation deliberately stays live
		return nil, nil
	}

	block := h.liveBlock(ptr, "resize")
	if block.size >= newSize {
		return ptr, nil
	}

	newPtr, err := h.allocate(newSize)
	if err != nil {
		return nil, err
	}

	copy(Bytes(newPtr, block.size), Bytes(ptr, block.size))
	h.release(block)
	return newPtr, nil
}

// Release logs any allocations that are still live and returns the segment to the
// system. The heap and every pointer it handed out must not be used afterward.
func (h *Heap) Release() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.segment == nil {
		return nil
	}

	for offset := h.head; offset != noBlock; {
		block := h.header(offset)
		if !block.free {
			h.logger.LogAttrs(context.Background(), slog.LevelWarn, "[UNRELEASED MEMORY] live allocation at heap release",
				slog.Uint64("offset", uint64(offset)),
				slog.Uint64("size", uint64(block.size)),
				slog.String("tag", block.tag.String()))
		}
		offset = block.next
	}

	err := h.segment.Release()
	if err != nil {
		h.logger.LogAttrs(context.Background(), slog.LevelError, "failed to release heap segment", slog.Any("error", err))
		return errors.Wrap(err, "failed to release heap segment")
	}

	h.segment = nil
	h.head = noBlock
	return nil
}
