package fifo_test

import (
	"testing"

	"github.com/andresovela/fifoarena/fifo"
	"github.com/stretchr/testify/require"
)

func BenchmarkArenaAllocFree(b *testing.B) {
	arena, err := fifo.New(nil, fifo.Config{BufferSize: 4096, MinBlockSize: 16, MaxBlockSize: 64})
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		block, err := arena.Alloc(48)
		if err != nil {
			b.Fatal(err)
		}
		block[0] = byte(i)

		err = arena.Free()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkArenaProducerBacklog(b *testing.B) {
	arena, err := fifo.New(nil, fifo.Config{BufferSize: 4096, MinBlockSize: 16, MaxBlockSize: 64})
	require.NoError(b, err)

	// Keep the ring about half full so allocations regularly cross the wrap boundary.
	for i := 0; i < 32; i++ {
		_, err = arena.Alloc(64)
		require.NoError(b, err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := arena.Alloc(64)
		if err != nil {
			b.Fatal(err)
		}
		if err := arena.Free(); err != nil {
			b.Fatal(err)
		}
	}
}
