package fifo_test

import (
	"testing"

	"github.com/andresovela/fifoarena/fifo"
	"github.com/stretchr/testify/require"
)

// recordingProvider hands out heap regions while keeping track of every Acquire and
// Release, and can be told to start refusing at a given Acquire call.
type recordingProvider struct {
	acquired [][]byte
	released [][]byte
	failFrom int // 1-based Acquire call to start refusing at; 0 never refuses
	calls    int
}

func (p *recordingProvider) Acquire(size int) []byte {
	p.calls++
	if p.failFrom != 0 && p.calls >= p.failFrom {
		return nil
	}

	region := make([]byte, size)
	p.acquired = append(p.acquired, region)
	return region
}

func (p *recordingProvider) Release(region []byte) {
	p.released = append(p.released, region)
}

func TestArenaAcquiresBothRegions(t *testing.T) {
	provider := &recordingProvider{}
	arena, err := fifo.New(nil, fifo.Config{BufferSize: 100, MinBlockSize: 5, MaxBlockSize: 10, Provider: provider})
	require.NoError(t, err)

	require.Len(t, provider.acquired, 2)
	require.Len(t, provider.acquired[0], 101)
	require.Len(t, provider.acquired[1], 21)

	require.NoError(t, arena.Destroy())
	require.Len(t, provider.released, 2)
}

func TestArenaInitFailsWhenDataRegionRefused(t *testing.T) {
	provider := &recordingProvider{failFrom: 1}
	_, err := fifo.New(nil, fifo.Config{BufferSize: 100, MinBlockSize: 5, MaxBlockSize: 10, Provider: provider})

	require.ErrorIs(t, err, fifo.ErrAcquireFailed)
	require.Empty(t, provider.acquired)
	require.Empty(t, provider.released)
}

func TestArenaInitUnwindsWhenSizeRegionRefused(t *testing.T) {
	provider := &recordingProvider{failFrom: 2}
	_, err := fifo.New(nil, fifo.Config{BufferSize: 100, MinBlockSize: 5, MaxBlockSize: 10, Provider: provider})

	require.ErrorIs(t, err, fifo.ErrAcquireFailed)
	require.Len(t, provider.acquired, 1)
	require.Len(t, provider.released, 1)
	require.True(t, &provider.acquired[0][0] == &provider.released[0][0], "the region released during unwinding must be the one that was acquired")
}
