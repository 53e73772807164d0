package memutils_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/brk/memutils"
)

func TestAlignUp(t *testing.T) {
	require.Equal(t, uint(0), memutils.AlignUp[uint](0, 8))
	require.Equal(t, uint(8), memutils.AlignUp[uint](1, 8))
	require.Equal(t, uint(8), memutils.AlignUp[uint](8, 8))
	require.Equal(t, uint32(4096), memutils.AlignUp[uint32](4095, 4096))
}

func TestAlignUpChecked(t *testing.T) {
	aligned, ok := memutils.AlignUpChecked(17, 8)
	require.True(t, ok)
	require.Equal(t, uint(24), aligned)

	aligned, ok = memutils.AlignUpChecked(math.MaxUint-7, 8)
	require.True(t, ok)
	require.Equal(t, uint(math.MaxUint-7), aligned)

	_, ok = memutils.AlignUpChecked(math.MaxUint-6, 8)
	require.False(t, ok)

	_, ok = memutils.AlignUpChecked(math.MaxUint, 8)
	require.False(t, ok)
}

func TestAddChecked(t *testing.T) {
	sum, ok := memutils.AddChecked(24, 40)
	require.True(t, ok)
	require.Equal(t, uint(64), sum)

	_, ok = memutils.AddChecked(math.MaxUint, 1)
	require.False(t, ok)
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(uint(1), "alignment"))
	require.NoError(t, memutils.CheckPow2(4096, "alignment"))

	err := memutils.CheckPow2(uint(24), "alignment")
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
	require.ErrorContains(t, err, "alignment is 24")

	require.True(t, errors.Is(memutils.CheckPow2(0, "alignment"), memutils.PowerOfTwoError))
}

func TestDetailedStatistics(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.Clear()

	stats.AddAllocation(100)
	stats.AddAllocation(20)
	stats.AddFreeBlock(64)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			AllocationCount: 2,
			AllocationBytes: 120,
		},
		FreeBlockCount:    1,
		AllocationSizeMin: 20,
		AllocationSizeMax: 100,
		FreeBlockSizeMin:  64,
		FreeBlockSizeMax:  64,
	}, stats)

	var other memutils.DetailedStatistics
	other.Clear()
	other.BlockCount = 3
	other.AddAllocation(500)
	other.AddFreeBlock(8)

	stats.AddDetailedStatistics(&other)
	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			BlockCount:      3,
			AllocationCount: 3,
			AllocationBytes: 620,
		},
		FreeBlockCount:    2,
		AllocationSizeMin: 20,
		AllocationSizeMax: 500,
		FreeBlockSizeMin:  8,
		FreeBlockSizeMax:  64,
	}, stats)
}

func TestDetailedStatisticsPrintJson(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.Clear()

	writer := jwriter.NewWriter()
	obj := writer.Object()
	stats.PrintJson(&obj)
	obj.End()

	require.Equal(t, `{"BlockCount":0,"AllocationCount":0,"BlockBytes":0,"AllocationBytes":0,"HeaderBytes":0,"FreeBlockCount":0}`, string(writer.Bytes()))

	stats.BlockCount = 1
	stats.BlockBytes = 32
	stats.HeaderBytes = 24
	stats.AddAllocation(32)

	writer = jwriter.NewWriter()
	obj = writer.Object()
	stats.PrintJson(&obj)
	obj.End()

	require.Equal(t, `{"BlockCount":1,"AllocationCount":1,"BlockBytes":32,"AllocationBytes":32,"HeaderBytes":24,"FreeBlockCount":0,"AllocationSizeMin":32,"AllocationSizeMax":32}`, string(writer.Bytes()))
}
