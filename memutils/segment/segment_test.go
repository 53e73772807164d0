package segment_test

import (
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/brk/memutils"
	"github.com/vkngwrapper/brk/memutils/segment"
)

func mapped(t *testing.T, limit uint) segment.Segment {
	seg, err := segment.NewMapped(limit)
	require.NoError(t, err)
	return seg
}

func TestSegmentExtend(t *testing.T) {
	tests := []struct {
		name string
		seg  func(t *testing.T) segment.Segment
	}{
		{
			name: "mapped",
			seg:  func(t *testing.T) segment.Segment { return mapped(t, 3*4096) },
		},
		{
			name: "slice",
			seg:  func(t *testing.T) segment.Segment { return segment.NewSlice(3 * 4096) },
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			seg := tc.seg(t)
			defer func() {
				require.NoError(t, seg.Release())
			}()

			base := seg.Base()
			require.NotNil(t, base)
			require.Equal(t, base, seg.Break())
			require.Equal(t, uint(0), seg.Len())
			require.Zero(t, uintptr(base)%8)

			previous, err := seg.Extend(100)
			require.NoError(t, err)
			require.Equal(t, base, previous)
			require.Equal(t, unsafe.Add(base, 100), seg.Break())
			require.Equal(t, uint(100), seg.Len())

			// Newly extended memory is writable and stays where it was
			data := unsafe.Slice((*byte)(previous), 100)
			for i := range data {
				data[i] = byte(i)
			}

			previous, err = seg.Extend(0)
			require.NoError(t, err)
			require.Equal(t, unsafe.Add(base, 100), previous)

			previous, err = seg.Extend(2 * 4096)
			require.NoError(t, err)
			require.Equal(t, unsafe.Add(base, 100), previous)
			require.Equal(t, base, seg.Base())

			for i := range data {
				require.Equal(t, byte(i), data[i])
			}

			tail := unsafe.Slice((*byte)(previous), 2*4096)
			for i := range tail {
				tail[i] = 0xAB
			}

			_, err = seg.Extend(4096)
			require.Error(t, err)
			require.True(t, errors.Is(err, memutils.HeapExhaustedError))
			require.Equal(t, uint(100+2*4096), seg.Len())

			previous, err = seg.Extend(4096 - 100)
			require.NoError(t, err)
			require.Equal(t, unsafe.Add(base, 100+2*4096), previous)
			require.Equal(t, uint(3*4096), seg.Len())

			_, err = seg.Extend(1)
			require.True(t, errors.Is(err, memutils.HeapExhaustedError))
		})
	}
}

func TestMappedCommitsLazily(t *testing.T) {
	seg, err := segment.NewMapped(1 << 30)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, seg.Release())
	}()

	pageSize := seg.PageSize()
	require.NoError(t, memutils.CheckPow2(pageSize, "pageSize"))
	require.Equal(t, uint(1<<30), seg.Limit())
	require.Equal(t, uint(0), seg.Committed())

	_, err = seg.Extend(1)
	require.NoError(t, err)
	require.Equal(t, pageSize, seg.Committed())

	_, err = seg.Extend(pageSize - 1)
	require.NoError(t, err)
	require.Equal(t, pageSize, seg.Committed())

	_, err = seg.Extend(1)
	require.NoError(t, err)
	require.Equal(t, 2*pageSize, seg.Committed())
	require.Equal(t, pageSize+1, seg.Len())
}

func TestMappedHugeLimit(t *testing.T) {
	_, err := segment.NewMapped(^uint(0))
	require.True(t, errors.Is(err, memutils.HeapExhaustedError))

	_, err = segment.NewMapped(0)
	require.Error(t, err)
}

func TestSliceRelease(t *testing.T) {
	seg := segment.NewSlice(64)
	require.Equal(t, uint(64), seg.Limit())
	require.NoError(t, seg.Release())

	_, err := seg.Extend(8)
	require.Error(t, err)
	require.False(t, errors.Is(err, memutils.HeapExhaustedError))
}
