package fifoarena

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
)

// MaxBlockSize is the largest block length an arena can hand out. Block lengths are
// recorded as single bytes in the size ring, which caps them at 255.
const MaxBlockSize = math.MaxUint8

// CheckBlockSizeBounds verifies that a [min, max] block length range is usable: positive,
// ordered, and small enough to record in a single byte.
func CheckBlockSizeBounds(minSize, maxSize int, name string) error {
	if minSize <= 0 || maxSize < minSize || maxSize > MaxBlockSize {
		return cerrors.Wrapf(BlockSizeRangeError, "%s has min %d and max %d", name, minSize, maxSize)
	}
	return nil
}

// NextRingIndex advances index by delta within a ring backed by ringLen slots, wrapping
// back to the start when the end of the ring is passed. delta must not exceed ringLen.
// The conditional subtraction is deliberate: it keeps the cost flat on targets without a
// hardware divide, where a modulus would not.
func NextRingIndex(index, delta, ringLen int) int {
	index += delta
	if index >= ringLen {
		index -= ringLen
	}
	return index
}
