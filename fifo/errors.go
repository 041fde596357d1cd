package fifo

import "github.com/pkg/errors"

var (
	// ErrUnsupportedSize is returned from Alloc when the requested block length falls
	// outside the [MinBlockSize, MaxBlockSize] range the arena was created with
	ErrUnsupportedSize error = errors.New("unsupported block size")
	// ErrOutOfMemory is returned from Alloc when no contiguous free run in the data
	// ring can hold the requested block
	ErrOutOfMemory error = errors.New("out of arena memory")
	// ErrNotFound is returned from Peek and Free when the arena holds no outstanding
	// blocks
	ErrNotFound error = errors.New("no outstanding blocks")
	// ErrAcquireFailed is returned from New when the backing provider cannot supply
	// one of the arena's regions
	ErrAcquireFailed error = errors.New("failed to acquire backing region")
)
