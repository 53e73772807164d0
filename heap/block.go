package heap

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/vkngwrapper/brk/memutils"
)

// Tag is a debug marker stored in every block header. It records how the block reached its
// current state and is only ever used to check the allocator's own consistency.
type Tag uint32

const (
	// TagGrown marks a live block that was carved from fresh heap growth
	TagGrown Tag = 0x12345678
	// TagReused marks a live block that was handed out again from the free list
	TagReused Tag = 0x77777777
	// TagFreed marks a block that is available for reuse
	TagFreed Tag = 0x55555555
)

var tagMapping = map[Tag]string{
	TagGrown:  "TagGrown",
	TagReused: "TagReused",
	TagFreed:  "TagFreed",
}

func (t Tag) String() string {
	name, ok := tagMapping[t]
	if !ok {
		return fmt.Sprintf("Tag(0x%08x)", uint32(t))
	}
	return name
}

// noBlock terminates the block list
const noBlock = uint(math.MaxUint)

// blockHeader sits immediately in front of every payload. next holds the offset of the
// following header from the segment base rather than a pointer, so headers never contain
// anything the garbage collector needs to see.
type blockHeader struct {
	size uint
	next uint
	free bool
	tag  Tag
}

const (
	headerSize  = uint(unsafe.Sizeof(blockHeader{}))
	headerAlign = uint(unsafe.Alignof(blockHeader{}))
)

func (b *blockHeader) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), headerSize)
}

func (b *blockHeader) live() bool {
	return !b.free && (b.tag == TagGrown || b.tag == TagReused)
}

// footprint is the number of bytes of address space the block occupies, header included
func (b *blockHeader) footprint() uint {
	growth, _ := growthFor(b.size)
	return growth
}

func headerFor(payload unsafe.Pointer) *blockHeader {
	return (*blockHeader)(unsafe.Add(payload, -int(headerSize)))
}

// growthFor returns how far the break must move to hold a block with a size-byte payload.
// The payload is padded so the next header lands on its natural alignment. It returns
// false when the result cannot be represented.
func growthFor(size uint) (uint, bool) {
	padded, ok := memutils.AlignUpChecked(size, headerAlign)
	if !ok {
		return 0, false
	}

	return memutils.AddChecked(padded, headerSize)
}

// Bytes returns a byte slice over the first n bytes of the payload at ptr. It returns nil
// when ptr is nil or n is 0. The slice aliases heap memory and is only valid while the
// allocation is live.
func Bytes(ptr unsafe.Pointer, n uint) []byte {
	if ptr == nil || n == 0 {
		return nil
	}

	return unsafe.Slice((*byte)(ptr), n)
}
