package heap

import (
	"strconv"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/brk/memutils"
	"golang.org/x/exp/slices"
)

// BlockVisitor receives one block per call from VisitAllBlocks. ptr is the block's payload
// and size its capacity. Returning an error stops the walk.
type BlockVisitor func(offset uint, ptr unsafe.Pointer, size uint, free bool) error

// VisitAllBlocks calls visit for every block the heap has ever created, in growth order.
// offset is the position of the block header from the segment base.
func (h *Heap) VisitAllBlocks(visit BlockVisitor) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.visitAllBlocks(visit)
}

func (h *Heap) visitAllBlocks(visit BlockVisitor) error {
	if h.segment == nil {
		return nil
	}

	for offset := h.head; offset != noBlock; {
		block := h.header(offset)
		err := visit(offset, block.payload(), block.size, block.free)
		if err != nil {
			return err
		}
		offset = block.next
	}

	return nil
}

// Validate performs internal consistency checks on the block list. When the heap is used
// correctly it should not be possible for this method to return an error.
//
// Blocks must tile the segment from the heap's starting offset to the break with no gaps,
// each header's free flag must agree with its tag, and the list must not revisit a header.
func (h *Heap) Validate() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.validate()
}

func (h *Heap) validate() error {
	if h.segment == nil {
		return errors.New("the heap has been released")
	}

	end := h.segment.Len()
	if h.head == noBlock {
		if end != h.start {
			return errors.Errorf("the heap has no blocks, but the segment grew from %d to %d bytes", h.start, end)
		}
		return nil
	}

	if h.head != h.start {
		return errors.Errorf("the first block is at offset %d, but the heap starts at offset %d", h.head, h.start)
	}

	expected := h.start
	var blockIndex int
	for offset := h.head; offset != noBlock; blockIndex++ {
		if offset != expected {
			return errors.Errorf("block %d is at offset %d, but the previous block ends at offset %d", blockIndex, offset, expected)
		}

		if offset > end || end-offset < headerSize {
			return errors.Errorf("block %d header at offset %d extends past the break at offset %d", blockIndex, offset, end)
		}

		block := h.header(offset)
		if block.free && block.tag != TagFreed {
			return errors.Errorf("block %d at offset %d is free but tagged %s", blockIndex, offset, block.tag)
		} else if !block.free && !block.live() {
			return errors.Errorf("block %d at offset %d is live but tagged %s", blockIndex, offset, block.tag)
		}

		growth, ok := growthFor(block.size)
		if !ok || growth > end-offset {
			return errors.Errorf("block %d at offset %d has size %d, which extends past the break at offset %d", blockIndex, offset, block.size, end)
		}

		expected = offset + growth
		offset = block.next
	}

	if expected != end {
		return errors.Errorf("the last block ends at offset %d, but the break is at offset %d", expected, end)
	}

	return nil
}

func (h *Heap) addDetailedStatistics(stats *memutils.DetailedStatistics) {
	_ = h.visitAllBlocks(func(offset uint, ptr unsafe.Pointer, size uint, free bool) error {
		footprint := headerFor(ptr).footprint()

		stats.BlockCount++
		stats.BlockBytes += int(size)
		stats.HeaderBytes += int(footprint - size)

		if free {
			stats.AddFreeBlock(int(size))
		} else {
			stats.AddAllocation(int(size))
		}

		return nil
	})
}

// AddStatistics sums this heap's block statistics into the statistics currently present
// in the provided memutils.Statistics object.
func (h *Heap) AddStatistics(stats *memutils.Statistics) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	_ = h.visitAllBlocks(func(offset uint, ptr unsafe.Pointer, size uint, free bool) error {
		footprint := headerFor(ptr).footprint()

		stats.BlockCount++
		stats.BlockBytes += int(size)
		stats.HeaderBytes += int(footprint - size)

		if !free {
			stats.AllocationCount++
			stats.AllocationBytes += int(size)
		}

		return nil
	})
}

// AddDetailedStatistics sums this heap's block statistics into the statistics currently
// present in the provided memutils.DetailedStatistics object.
func (h *Heap) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.addDetailedStatistics(stats)
}

// BuildStatsString returns a json document describing the heap. With detailed set it also
// lists every block and counts free blocks by capacity, which shows how fragmented the
// free list has become.
func (h *Heap) BuildStatsString(detailed bool) string {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	writer := jwriter.NewWriter()
	obj := writer.Object()

	var segmentBytes int
	if h.segment != nil {
		segmentBytes = int(h.segment.Len() - h.start)
	}
	obj.Name("HeapBytes").Int(segmentBytes)

	var stats memutils.DetailedStatistics
	stats.Clear()
	h.addDetailedStatistics(&stats)

	total := obj.Name("Total").Object()
	stats.PrintJson(&total)
	total.End()

	if detailed {
		h.printDetailedMap(&obj)
	}

	obj.End()
	return string(writer.Bytes())
}

func (h *Heap) printDetailedMap(json *jwriter.ObjectState) {
	freeBySize := swiss.NewMap[uint, int](42)

	blocks := json.Name("Blocks").Array()
	_ = h.visitAllBlocks(func(offset uint, ptr unsafe.Pointer, size uint, free bool) error {
		block := blocks.Object()
		block.Name("Offset").Int(int(offset))
		block.Name("Size").Int(int(size))
		block.Name("Free").Bool(free)
		block.Name("Tag").String(headerFor(ptr).tag.String())
		block.End()

		if free {
			count, _ := freeBySize.Get(size)
			freeBySize.Put(size, count+1)
		}
		return nil
	})
	blocks.End()

	sizes := make([]uint, 0, freeBySize.Count())
	freeBySize.Iter(func(size uint, count int) bool {
		sizes = append(sizes, size)
		return false
	})
	slices.Sort(sizes)

	freeSizes := json.Name("FreeBlocksBySize").Object()
	for _, size := range sizes {
		count, _ := freeBySize.Get(size)
		freeSizes.Name(strconv.FormatUint(uint64(size), 10)).Int(count)
	}
	freeSizes.End()
}
