package heap

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/brk/internal/utils"
	"github.com/vkngwrapper/brk/memutils/segment"
	"github.com/vkngwrapper/core/v2/common"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific heap behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateSynchronized guards every operation on the heap with a mutex. Heaps are
	// single-threaded by default: without this flag, concurrent calls race on the break
	// and on the block list.
	CreateSynchronized CreateFlags = 1 << iota
)

func init() {
	CreateSynchronized.Register("CreateSynchronized")
}

// CreateOptions contains optional settings when creating a heap
type CreateOptions struct {
	// Flags indicates specific heap behaviors to activate or deactivate
	Flags CreateFlags
}

// New creates a Heap that grows into seg. The heap's first block is placed at the
// segment's current break, which must be aligned for a block header; bytes already below
// the break are left alone.
//
// logger - Receives debug records for growth and reuse, and reports problems during
// Release. If nil, log output is discarded.
//
// seg - The address range the heap grows into. The heap assumes it is the only thing
// extending seg from now on.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, seg segment.Segment, options CreateOptions) (*Heap, error) {
	if seg == nil {
		return nil, errors.New("a segment is required to create a heap")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	brk := seg.Break()
	if uintptr(brk)%uintptr(headerAlign) != 0 {
		return nil, errors.Newf("segment break %p is not aligned to %d bytes", brk, headerAlign)
	}

	start := seg.Len()
	h := &Heap{
		logger:  logger,
		segment: seg,
		mutex:   utils.OptionalMutex{UseMutex: options.Flags&CreateSynchronized != 0},
		start:   start,
		head:    noBlock,
	}

	logger.Debug("created heap",
		slog.Uint64("start", uint64(start)),
		slog.String("flags", options.Flags.String()))

	return h, nil
}
