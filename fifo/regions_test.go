package fifo_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/andresovela/fifoarena"
	"github.com/andresovela/fifoarena/fifo"
	"github.com/stretchr/testify/require"
)

func TestArenaDetailedStatistics(t *testing.T) {
	arena, err := fifo.New(nil, fifo.Config{BufferSize: 100, MinBlockSize: 5, MaxBlockSize: 10})
	require.NoError(t, err)

	var stats fifoarena.DetailedStatistics
	stats.Clear()
	arena.AddDetailedStatistics(&stats)

	require.Equal(t, fifoarena.DetailedStatistics{
		Statistics: fifoarena.Statistics{
			ArenaCount:      1,
			ArenaBytes:      100,
			AllocationCount: 0,
			AllocationBytes: 0,
		},
		UnusedRangeCount:   1,
		AllocationSizeMin:  math.MaxInt,
		AllocationSizeMax:  0,
		UnusedRangeSizeMin: 100,
		UnusedRangeSizeMax: 100,
	}, stats)

	_, err = arena.Alloc(10)
	require.NoError(t, err)
	_, err = arena.Alloc(5)
	require.NoError(t, err)

	stats.Clear()
	arena.AddDetailedStatistics(&stats)

	require.Equal(t, fifoarena.DetailedStatistics{
		Statistics: fifoarena.Statistics{
			ArenaCount:      1,
			ArenaBytes:      100,
			AllocationCount: 2,
			AllocationBytes: 15,
		},
		UnusedRangeCount:   1,
		AllocationSizeMin:  5,
		AllocationSizeMax:  10,
		UnusedRangeSizeMin: 85,
		UnusedRangeSizeMax: 85,
	}, stats)
}

func TestArenaStatistics(t *testing.T) {
	arena, err := fifo.New(nil, fifo.Config{BufferSize: 100, MinBlockSize: 5, MaxBlockSize: 10})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err = arena.Alloc(6)
		require.NoError(t, err)
	}
	require.NoError(t, arena.Free())

	var stats fifoarena.Statistics
	arena.AddStatistics(&stats)

	require.Equal(t, fifoarena.Statistics{
		ArenaCount:      1,
		ArenaBytes:      100,
		AllocationCount: 3,
		AllocationBytes: 18,
	}, stats)
}

func TestArenaVisitAllRegionsOrder(t *testing.T) {
	arena, err := fifo.New(nil, fifo.Config{BufferSize: 100, MinBlockSize: 5, MaxBlockSize: 10})
	require.NoError(t, err)

	_, err = arena.Alloc(7)
	require.NoError(t, err)
	_, err = arena.Alloc(9)
	require.NoError(t, err)

	type region struct {
		offset int
		size   int
		kind   fifo.RegionKind
	}
	var regions []region
	err = arena.VisitAllRegions(func(offset, size int, kind fifo.RegionKind) error {
		regions = append(regions, region{offset, size, kind})
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, []region{
		{0, 7, fifo.RegionBlock},
		{7, 9, fifo.RegionBlock},
		{16, 84, fifo.RegionFree},
	}, regions)
}

func TestArenaBuildStatsString(t *testing.T) {
	arena, err := fifo.New(nil, fifo.Config{BufferSize: 100, MinBlockSize: 5, MaxBlockSize: 10})
	require.NoError(t, err)

	_, err = arena.Alloc(8)
	require.NoError(t, err)

	str := arena.BuildStatsString()
	require.NotEmpty(t, str)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(str), &decoded))
	require.Equal(t, float64(100), decoded["TotalBytes"])
	require.Equal(t, float64(92), decoded["FreeBytes"])
	require.Equal(t, float64(1), decoded["Allocations"])
}
