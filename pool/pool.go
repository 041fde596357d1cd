// Package pool manages a set of named fifo arenas behind a single registry, so hosts
// with several bounded workspaces (one per message class, per link, per priority band)
// can create, look up, and tear them down in one place and read their combined
// statistics.
package pool

import (
	"io"

	"github.com/andresovela/fifoarena"
	"github.com/andresovela/fifoarena/fifo"
	"github.com/andresovela/fifoarena/internal/utils"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific pool behaviors to activate or deactivate
type CreateFlags int32

const (
	// PoolCreateExternallySynchronized ensures that this pool will not be synchronized
	// internally. The consumer must guarantee it is used from only one goroutine at a
	// time or is synchronized by some other mechanism, but performance may improve
	// because the registry mutex is not used.
	PoolCreateExternallySynchronized CreateFlags = 1 << iota
)

// CreateOptions contains optional settings when creating a pool
type CreateOptions struct {
	// Flags indicates specific pool behaviors to activate or deactivate
	Flags CreateFlags
}

// Pool is a registry of named arenas sharing one logger. The registry itself is
// goroutine-safe unless created with PoolCreateExternallySynchronized; the member
// arenas are not, and keep their usual external-synchronization requirement.
type Pool struct {
	logger *slog.Logger
	mutex  utils.OptionalRWMutex
	arenas *swiss.Map[string, *fifo.Arena]
}

// New creates an empty Pool. logger may be nil, in which case diagnostics are
// discarded; it is also handed to every arena the pool creates.
func New(logger *slog.Logger, options CreateOptions) *Pool {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	useMutex := options.Flags&PoolCreateExternallySynchronized == 0

	return &Pool{
		logger: logger,
		mutex:  utils.OptionalRWMutex{UseMutex: useMutex},
		arenas: swiss.NewMap[string, *fifo.Arena](8),
	}
}

// CreateArena creates a new arena with the provided config and registers it under
// name. Names are unique within a pool; creating over an existing name is an error and
// leaves the registered arena untouched.
func (p *Pool) CreateArena(name string, config fifo.Config) (*fifo.Arena, error) {
	p.logger.Debug("Pool::CreateArena", slog.String("name", name))

	p.mutex.Lock()
	defer p.mutex.Unlock()

	_, exists := p.arenas.Get(name)
	if exists {
		return nil, errors.Errorf("an arena named %q already exists in this pool", name)
	}

	arena, err := fifo.New(p.logger, config)
	if err != nil {
		return nil, err
	}

	p.arenas.Put(name, arena)
	return arena, nil
}

// Arena retrieves the arena registered under name, if any.
func (p *Pool) Arena(name string) (*fifo.Arena, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.arenas.Get(name)
}

// ArenaCount returns the number of arenas currently registered.
func (p *Pool) ArenaCount() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.arenas.Count()
}

// DestroyArena removes the arena registered under name and destroys it. Blocks still
// outstanding in that arena are dropped, with a warning from the arena itself.
func (p *Pool) DestroyArena(name string) error {
	p.logger.Debug("Pool::DestroyArena", slog.String("name", name))

	p.mutex.Lock()
	defer p.mutex.Unlock()

	arena, exists := p.arenas.Get(name)
	if !exists {
		return errors.Errorf("no arena named %q exists in this pool", name)
	}

	p.arenas.Delete(name)
	return arena.Destroy()
}

// Destroy destroys every arena remaining in the pool and empties the registry. Arenas
// that still hold outstanding blocks are reported at Warn level before being destroyed.
// The first destruction error, if any, is returned after the sweep completes.
func (p *Pool) Destroy() error {
	p.logger.Debug("Pool::Destroy")

	p.mutex.Lock()
	defer p.mutex.Unlock()

	var firstErr error
	p.arenas.Iter(func(name string, arena *fifo.Arena) bool {
		if !arena.IsEmpty() {
			p.logger.Warn("[UNRELEASED ARENA] destroying an arena with outstanding blocks",
				slog.String("name", name),
				slog.Int("allocationCount", arena.AllocationCount()))
		}

		err := arena.Destroy()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return false
	})

	p.arenas = swiss.NewMap[string, *fifo.Arena](8)
	return firstErr
}

// AddDetailedStatistics sums the statistics of every registered arena into the
// statistics currently present in the provided fifoarena.DetailedStatistics object.
func (p *Pool) AddDetailedStatistics(stats *fifoarena.DetailedStatistics) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	p.arenas.Iter(func(name string, arena *fifo.Arena) bool {
		arena.AddDetailedStatistics(stats)
		return false
	})
}

// BuildStatsString returns a JSON description of every arena in the pool along with
// pool-wide totals, for diagnostic purposes.
func (p *Pool) BuildStatsString() string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	var stats fifoarena.Statistics
	p.arenas.Iter(func(name string, arena *fifo.Arena) bool {
		arena.AddStatistics(&stats)
		return false
	})

	writer := jwriter.NewWriter()
	obj := writer.Object()

	total := obj.Name("Total").Object()
	total.Name("ArenaCount").Int(stats.ArenaCount)
	total.Name("ArenaBytes").Int(stats.ArenaBytes)
	total.Name("Allocations").Int(stats.AllocationCount)
	total.Name("AllocationBytes").Int(stats.AllocationBytes)
	total.End()

	arenas := obj.Name("Arenas").Array()
	p.arenas.Iter(func(name string, arena *fifo.Arena) bool {
		entry := arenas.Object()
		entry.Name("Name").String(name)
		arena.ArenaJsonData(entry)
		entry.End()
		return false
	})
	arenas.End()

	obj.End()
	return string(writer.Bytes())
}
