package fifo

import (
	"github.com/andresovela/fifoarena"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// RegionKind identifies what a region visited by VisitAllRegions holds.
type RegionKind uint32

const (
	// RegionBlock is an outstanding block, oldest first.
	RegionBlock RegionKind = iota
	// RegionPadding is a dead run at the end of the data region, skipped at allocation
	// time so the block that follows it could stay contiguous. Padding is reclaimed
	// together with that block.
	RegionPadding
	// RegionFree is the span available to future allocations.
	RegionFree
)

var regionKindMapping = map[RegionKind]string{
	RegionBlock:   "Block",
	RegionPadding: "Padding",
	RegionFree:    "Free",
}

func (k RegionKind) String() string {
	return regionKindMapping[k]
}

// VisitAllRegions calls the provided callback once per region of the data ring, in ring
// order starting from the oldest outstanding block: blocks and wrap padding first, then
// a single region for the free span. The free span is reported at the head offset even
// when it physically wraps. Iteration stops at the first error, which is returned.
func (a *Arena) VisitAllRegions(handleRegion func(offset, size int, kind RegionKind) error) error {
	blockCount := a.sizeRing.utilization()
	dataTail := a.dataRing.tail
	sizeTail := a.sizeRing.tail

	for i := 0; i < blockCount; i++ {
		size := int(a.blockSizes[sizeTail])
		if size > a.dataRing.ringLen-dataTail {
			err := handleRegion(dataTail, a.dataRing.ringLen-dataTail, RegionPadding)
			if err != nil {
				return err
			}
			dataTail = 0
		}

		err := handleRegion(dataTail, size, RegionBlock)
		if err != nil {
			return err
		}

		dataTail = fifoarena.NextRingIndex(dataTail, size, a.dataRing.ringLen)
		sizeTail = fifoarena.NextRingIndex(sizeTail, 1, a.sizeRing.ringLen)
	}

	free := a.dataRing.spaceAvailable()
	if free > 0 {
		return handleRegion(a.dataRing.head, free, RegionFree)
	}

	return nil
}

// AddStatistics sums this arena's allocation statistics into the statistics currently
// present in the provided fifoarena.Statistics object.
func (a *Arena) AddStatistics(stats *fifoarena.Statistics) {
	stats.ArenaCount++
	stats.ArenaBytes += a.Capacity()
	stats.AllocationCount += a.AllocationCount()
	stats.AllocationBytes += a.outstandingBytes()
}

// AddDetailedStatistics sums this arena's allocation statistics into the statistics
// currently present in the provided fifoarena.DetailedStatistics object. Wrap padding
// and the free span both count as unused ranges.
func (a *Arena) AddDetailedStatistics(stats *fifoarena.DetailedStatistics) {
	stats.ArenaCount++
	stats.ArenaBytes += a.Capacity()

	_ = a.VisitAllRegions(
		func(offset, size int, kind RegionKind) error {
			if kind == RegionBlock {
				stats.AddAllocation(size)
			} else {
				stats.AddUnusedRange(size)
			}

			return nil
		})
}

// ArenaJsonData populates a json object with information about this arena
func (a *Arena) ArenaJsonData(json jwriter.ObjectState) {
	json.Name("TotalBytes").Int(a.Capacity())
	json.Name("FreeBytes").Int(a.SumFreeSize())
	json.Name("Allocations").Int(a.AllocationCount())
	json.Name("AllocationBytes").Int(a.outstandingBytes())
	json.Name("MinBlockSize").Int(a.minBlockSize)
	json.Name("MaxBlockSize").Int(a.maxBlockSize)

	regions := json.Name("Regions").Array()
	defer regions.End()

	_ = a.VisitAllRegions(
		func(offset, size int, kind RegionKind) error {
			obj := regions.Object()
			obj.Name("Kind").String(kind.String())
			obj.Name("Offset").Int(offset)
			obj.Name("Size").Int(size)
			obj.End()

			return nil
		})
}

// BuildStatsString returns a JSON description of the arena's current state, for
// diagnostic purposes.
func (a *Arena) BuildStatsString() string {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	a.ArenaJsonData(obj)
	obj.End()

	return string(writer.Bytes())
}
