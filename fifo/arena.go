// Package fifo implements a bounded FIFO byte-arena: a fixed-capacity allocator that
// hands out contiguous byte blocks of caller-chosen length from a preallocated region
// and reclaims them strictly in allocation order. It is meant for transient message
// buffers, log-line staging, and packet queues in places where a general-purpose
// allocator is unwelcome.
package fifo

import (
	"io"

	"github.com/andresovela/fifoarena"
	cerrors "github.com/cockroachdb/errors"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// Config controls the dimensions and behavior of a single Arena.
type Config struct {
	// BufferSize is the number of bytes of block storage. It must be at least
	// MaxBlockSize, so that every supported block length can actually be allocated.
	BufferSize int
	// MinBlockSize is the smallest block length Alloc will accept, in bytes. It must
	// be at least 1.
	MinBlockSize int
	// MaxBlockSize is the largest block length Alloc will accept, in bytes. It must be
	// at least MinBlockSize and no larger than fifoarena.MaxBlockSize, because block
	// lengths are recorded in single bytes.
	MaxBlockSize int

	// Provider supplies the backing regions for the arena. When nil, regions come from
	// the Go heap via HeapProvider.
	Provider BackingProvider

	// ZeroOnFree scrubs block contents, along with any wrap padding being skipped, as
	// Free passes over them. Off by default: freed bytes are normally left untouched.
	ZeroOnFree bool
}

// Arena is a bounded FIFO byte allocator built from two circular buffers operated in
// lockstep: a data ring holding block contents and a size ring holding one length byte
// per outstanding block. Alloc advances both heads, Free advances both tails, and the
// size ring is what lets Free reclaim variable-length blocks without receiving a handle.
//
// An Arena is a passive data structure. No operation blocks, suspends, or spawns work,
// and the arena performs no locking of its own; callers sharing one across goroutines
// must provide external mutual exclusion.
type Arena struct {
	logger *slog.Logger

	minBlockSize int
	maxBlockSize int
	zeroOnFree   bool

	provider BackingProvider

	data       []byte
	blockSizes []byte
	dataRing   ringCursor
	sizeRing   ringCursor
}

var _ fifoarena.Validatable = &Arena{}

// New creates an Arena with the dimensions in config.
//
// The data region is one byte longer than config.BufferSize and the size region holds
// one byte per smallest-possible block, plus one slot each so a full ring stays
// distinguishable from an empty one. If the provider refuses either region, New
// releases whatever it already acquired and returns an error wrapping ErrAcquireFailed.
//
// logger receives Debug-level traces around successful allocations and frees. It may
// be nil, in which case diagnostics are discarded.
func New(logger *slog.Logger, config Config) (*Arena, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	err := fifoarena.CheckBlockSizeBounds(config.MinBlockSize, config.MaxBlockSize, "fifo.Config")
	if err != nil {
		return nil, err
	}
	if config.BufferSize < config.MaxBlockSize {
		return nil, errors.Errorf("the buffer size %d cannot hold even one block of the maximum size %d", config.BufferSize, config.MaxBlockSize)
	}

	provider := config.Provider
	if provider == nil {
		provider = HeapProvider{}
	}

	dataLen := config.BufferSize + 1
	sizeLen := config.BufferSize/config.MinBlockSize + 1

	data := provider.Acquire(dataLen)
	if data == nil {
		return nil, cerrors.Wrapf(ErrAcquireFailed, "data region of %d bytes", dataLen)
	}
	blockSizes := provider.Acquire(sizeLen)
	if blockSizes == nil {
		provider.Release(data)
		return nil, cerrors.Wrapf(ErrAcquireFailed, "size region of %d bytes", sizeLen)
	}

	return &Arena{
		logger:       logger,
		minBlockSize: config.MinBlockSize,
		maxBlockSize: config.MaxBlockSize,
		zeroOnFree:   config.ZeroOnFree,
		provider:     provider,
		data:         data,
		blockSizes:   blockSizes,
		dataRing:     ringCursor{ringLen: dataLen},
		sizeRing:     ringCursor{ringLen: sizeLen},
	}, nil
}

// Destroy releases both backing regions to the provider. Blocks still outstanding are
// reported at Warn level and then dropped; every view handed out by Alloc or Peek
// becomes invalid. The arena must not be used after Destroy returns.
func (a *Arena) Destroy() error {
	if a.data == nil {
		return errors.New("the arena has already been destroyed")
	}

	if !a.IsEmpty() {
		a.logger.Warn("[UNRELEASED BLOCKS] destroying an arena with outstanding blocks",
			slog.Int("allocationCount", a.AllocationCount()),
			slog.Int("allocationBytes", a.outstandingBytes()))
	}

	a.provider.Release(a.blockSizes)
	a.provider.Release(a.data)
	a.blockSizes = nil
	a.data = nil
	return nil
}

// Capacity returns the number of bytes of block storage, as requested at creation.
func (a *Arena) Capacity() int {
	return a.dataRing.ringLen - 1
}

// MinBlockSize returns the smallest block length Alloc accepts.
func (a *Arena) MinBlockSize() int {
	return a.minBlockSize
}

// MaxBlockSize returns the largest block length Alloc accepts.
func (a *Arena) MaxBlockSize() int {
	return a.maxBlockSize
}

// SumFreeSize returns the total number of free bytes in the data ring. A successful
// Alloc additionally needs a contiguous run of the requested length, so an Alloc of up
// to SumFreeSize bytes may still fail near the wrap boundary.
func (a *Arena) SumFreeSize() int {
	return a.dataRing.spaceAvailable()
}

// AllocationCount returns the number of outstanding blocks.
func (a *Arena) AllocationCount() int {
	return a.sizeRing.utilization()
}

// IsEmpty will return true if this arena has no outstanding blocks
func (a *Arena) IsEmpty() bool {
	return a.dataRing.isEmpty()
}

// Alloc hands out a block of exactly size bytes and returns a view of it. The view
// aliases the arena's backing region: its contents are uninitialized, it may be read
// and written freely, and it stays valid until the Free call that reclaims this block.
//
// Alloc returns an error wrapping ErrUnsupportedSize when size falls outside the
// configured bounds, and one wrapping ErrOutOfMemory when no contiguous free run can
// hold the block. Neither failure mutates the arena.
func (a *Arena) Alloc(size int) ([]byte, error) {
	if size < a.minBlockSize || size > a.maxBlockSize {
		return nil, cerrors.Wrapf(ErrUnsupportedSize, "requested %d bytes, this arena accepts %d to %d", size, a.minBlockSize, a.maxBlockSize)
	}

	offset, padding, ok := a.placeBlock(size)
	if !ok {
		return nil, cerrors.Wrapf(ErrOutOfMemory, "requested %d bytes with %d free", size, a.dataRing.spaceAvailable())
	}

	a.dataRing.advanceHead(padding + size)
	a.blockSizes[a.sizeRing.head] = byte(size)
	a.sizeRing.advanceHead(1)

	fifoarena.DebugValidate(a)
	a.logger.Debug("Arena::Alloc",
		slog.Int("size", size),
		slog.Int("offset", offset),
		slog.Int("padding", padding),
		slog.Int("freeBytes", a.dataRing.spaceAvailable()))

	return a.data[offset : offset+size : offset+size], nil
}

// Peek returns a view of the oldest outstanding block without reclaiming it. The view
// is backed by the same bytes the matching Alloc returned. Peek is idempotent and
// returns ErrNotFound when the arena is empty.
func (a *Arena) Peek() ([]byte, error) {
	if a.dataRing.isEmpty() {
		return nil, ErrNotFound
	}

	offset, size, _ := a.oldestBlock()
	return a.data[offset : offset+size : offset+size], nil
}

// Free reclaims the oldest outstanding block. Only the single oldest block is freed per
// call, and ErrNotFound is returned when there is nothing to free. Freed bytes are left
// untouched unless the arena was created with ZeroOnFree.
func (a *Arena) Free() error {
	if a.dataRing.isEmpty() {
		return ErrNotFound
	}

	offset, size, padding := a.oldestBlock()
	if a.zeroOnFree {
		a.scrub(offset, size, padding)
	}

	a.sizeRing.advanceTail(1)
	a.dataRing.advanceTail(padding + size)

	fifoarena.DebugValidate(a)
	a.logger.Debug("Arena::Free",
		slog.Int("size", size),
		slog.Int("offset", offset),
		slog.Int("padding", padding),
		slog.Int("freeBytes", a.dataRing.spaceAvailable()))

	return nil
}

// Clear drops every outstanding block and returns the arena to its freshly-created
// state. Views handed out before Clear become invalid. Nothing is scrubbed, even with
// ZeroOnFree set: Clear discards bookkeeping, not contents.
func (a *Arena) Clear() {
	a.dataRing.reset()
	a.sizeRing.reset()
	a.logger.Debug("Arena::Clear")
}

// placeBlock finds the contiguous run that will hold a block of the given size. Blocks
// never straddle the wrap boundary: when the run at the end of the data region is too
// short, the block is placed at index zero instead and the trailing run is consumed as
// padding. oldestBlock recovers that padding from the recorded block length alone, so
// nothing extra is written here.
func (a *Arena) placeBlock(size int) (offset, padding int, ok bool) {
	ring := &a.dataRing
	space := ring.spaceAvailable()

	if ring.head < ring.tail {
		// The in-use span wraps, so the free bytes form a single run below the tail.
		if size <= space {
			return ring.head, 0, true
		}
		return 0, 0, false
	}

	if size <= ring.ringLen-ring.head && size <= space {
		return ring.head, 0, true
	}

	// The block would cross the wrap boundary; retry at index zero with the trailing
	// run counted as padding.
	padding = ring.ringLen - ring.head
	if padding+size <= space {
		return 0, padding, true
	}

	return 0, 0, false
}

// oldestBlock locates the block at the tail of the data ring. A recorded length larger
// than the run between the tail and the end of the region proves the block was placed
// at index zero at allocation time; the skipped run is returned as padding.
func (a *Arena) oldestBlock() (offset, size, padding int) {
	size = int(a.blockSizes[a.sizeRing.tail])
	offset = a.dataRing.tail
	if size > a.dataRing.ringLen-offset {
		padding = a.dataRing.ringLen - offset
		offset = 0
	}
	return offset, size, padding
}

func (a *Arena) scrub(offset, size, padding int) {
	for i := offset; i < offset+size; i++ {
		a.data[i] = 0
	}
	for i := a.dataRing.tail; i < a.dataRing.tail+padding; i++ {
		a.data[i] = 0
	}
}

func (a *Arena) outstandingBytes() int {
	var total int
	sizeTail := a.sizeRing.tail
	for i := 0; i < a.sizeRing.utilization(); i++ {
		total += int(a.blockSizes[sizeTail])
		sizeTail = fifoarena.NextRingIndex(sizeTail, 1, a.sizeRing.ringLen)
	}
	return total
}

// Validate replays the size ring against the data cursors and reports the first
// violated invariant. When the implementation is functioning correctly, it should not
// be possible for this method to return an error, but this may assist in diagnosing
// issues with the implementation.
func (a *Arena) Validate() error {
	if a.data == nil {
		return errors.New("the arena has been destroyed")
	}
	if len(a.data) < a.dataRing.ringLen || len(a.blockSizes) < a.sizeRing.ringLen {
		return errors.Errorf("the backing regions hold %d and %d bytes, but the rings need %d and %d", len(a.data), len(a.blockSizes), a.dataRing.ringLen, a.sizeRing.ringLen)
	}
	if a.dataRing.head < 0 || a.dataRing.head >= a.dataRing.ringLen || a.dataRing.tail < 0 || a.dataRing.tail >= a.dataRing.ringLen {
		return errors.Errorf("the data cursors (head %d, tail %d) fall outside the ring of length %d", a.dataRing.head, a.dataRing.tail, a.dataRing.ringLen)
	}
	if a.sizeRing.head < 0 || a.sizeRing.head >= a.sizeRing.ringLen || a.sizeRing.tail < 0 || a.sizeRing.tail >= a.sizeRing.ringLen {
		return errors.Errorf("the size cursors (head %d, tail %d) fall outside the ring of length %d", a.sizeRing.head, a.sizeRing.tail, a.sizeRing.ringLen)
	}
	if a.dataRing.isEmpty() != a.sizeRing.isEmpty() {
		return errors.New("the data ring and the size ring disagree about whether the arena is empty")
	}

	blockCount := a.sizeRing.utilization()
	dataTail := a.dataRing.tail
	sizeTail := a.sizeRing.tail
	var liveBytes int

	for i := 0; i < blockCount; i++ {
		size := int(a.blockSizes[sizeTail])
		if size < a.minBlockSize || size > a.maxBlockSize {
			return errors.Errorf("the recorded block length %d at size-ring index %d is outside the supported range [%d, %d]", size, sizeTail, a.minBlockSize, a.maxBlockSize)
		}
		if size > a.dataRing.ringLen-dataTail {
			// This block was placed at index zero; the trailing run is padding.
			liveBytes += a.dataRing.ringLen - dataTail
			dataTail = 0
		}
		liveBytes += size
		dataTail = fifoarena.NextRingIndex(dataTail, size, a.dataRing.ringLen)
		sizeTail = fifoarena.NextRingIndex(sizeTail, 1, a.sizeRing.ringLen)
	}

	if dataTail != a.dataRing.head {
		return errors.Errorf("replaying %d recorded blocks from the data tail ends at index %d, but the data head is at %d", blockCount, dataTail, a.dataRing.head)
	}
	if liveBytes != a.dataRing.utilization() {
		return errors.Errorf("outstanding blocks and padding account for %d bytes, but the data ring reports %d bytes in use", liveBytes, a.dataRing.utilization())
	}

	return nil
}
