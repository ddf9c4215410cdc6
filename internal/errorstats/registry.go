// Package errorstats accumulates per-error-code occurrence counts and
// renders them in the INFO errorstats format.
package errorstats

import (
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultMaxEntries matches the number of distinct error codes Redis
// tracks before it stops adding new ones.
const DefaultMaxEntries = 128

// Options configure a Registry.
type Options struct {
	// MaxEntries caps the number of distinct keys. Zero means DefaultMaxEntries.
	MaxEntries int
	Logger     *zap.Logger
}

// Registry is a concurrent counter table keyed by error code.
//
// Record on a key that already exists is a single atomic add, so
// increments for different codes never contend. Creating a key and Reset
// serialize on mu, which keeps size equal to the number of stored keys.
type Registry struct {
	entries sync.Map // string -> *atomic.Uint64
	max     int64

	mu   sync.Mutex
	size int64 // guarded by mu

	total   atomic.Uint64
	dropped atomic.Uint64

	overflowLogged atomic.Bool
	logger         *zap.Logger
}

// New creates an empty Registry.
func New(opts Options) *Registry {
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{max: int64(maxEntries), logger: logger}
}

// Record counts one occurrence of key. It never fails: when the table is
// full the occurrence is dropped from the per-key view but still counted
// in the total.
func (r *Registry) Record(key string) {
	r.total.Add(1)

	if v, ok := r.entries.Load(key); ok {
		v.(*atomic.Uint64).Add(1)
		return
	}
	if key == "" {
		r.overflow(key)
		return
	}

	r.mu.Lock()
	v, ok := r.entries.Load(key)
	if !ok {
		if r.size >= r.max {
			r.mu.Unlock()
			r.overflow(key)
			return
		}
		v = new(atomic.Uint64)
		r.entries.Store(key, v)
		r.size++
	}
	r.mu.Unlock()
	v.(*atomic.Uint64).Add(1)
}

func (r *Registry) overflow(key string) {
	r.dropped.Add(1)
	if r.overflowLogged.CompareAndSwap(false, true) {
		r.logger.Warn("errorstats table is full, new error codes are not tracked",
			zap.Int64("max_entries", r.max),
			zap.String("first_dropped", key),
		)
	}
}

// Snapshot returns a point-in-time copy of all counters, sorted by key.
// Counters are read individually, so the view is consistent per entry but
// not across entries.
func (r *Registry) Snapshot() Snapshot {
	var entries []Entry
	r.entries.Range(func(k, v any) bool {
		if n := v.(*atomic.Uint64).Load(); n > 0 {
			entries = append(entries, Entry{Key: k.(string), Count: n})
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return Snapshot{
		Entries:           entries,
		TotalErrorReplies: r.total.Load(),
		Dropped:           r.dropped.Load(),
	}
}

// Count returns the current count for key, zero if it was never recorded.
func (r *Registry) Count(key string) uint64 {
	if v, ok := r.entries.Load(key); ok {
		return v.(*atomic.Uint64).Load()
	}
	return 0
}

// TotalErrorReplies returns the number of Record calls since the last reset.
func (r *Registry) TotalErrorReplies() uint64 { return r.total.Load() }

// Reset clears every entry and counter. Records racing with Reset may be
// lost.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.entries.Clear()
	r.size = 0
	r.mu.Unlock()
	r.total.Store(0)
	r.dropped.Store(0)
	r.overflowLogged.Store(false)
}
