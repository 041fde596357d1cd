package fifo

// BackingProvider supplies the byte regions that back an Arena. Acquire returns a
// region of at least the requested length, or nil when the host cannot supply one.
// Every region handed out by Acquire is passed back to Release exactly once: during
// Arena.Destroy, or while unwinding a New call that failed partway through.
type BackingProvider interface {
	Acquire(size int) []byte
	Release(region []byte)
}

// HeapProvider is the BackingProvider used when Config.Provider is left nil. It takes
// regions from the Go heap and leaves reclamation to the garbage collector.
type HeapProvider struct{}

func (HeapProvider) Acquire(size int) []byte {
	return make([]byte, size)
}

func (HeapProvider) Release(region []byte) {
}
