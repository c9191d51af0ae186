// Package filter aggregates substring filters declared by independent
// components against shared datasources and applies them to collected
// line-oriented content.
//
// The registry presents one merged pattern set per datasource. Any
// component may depend on data another component filtered, so there is
// deliberately no per-component view: all contributed patterns apply to
// all consumers of a datasource.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/siftkit/sift/pkg/types"
)

// ErrRegistryFrozen is returned by Contribute once the registry has
// entered the run phase. It indicates a lifecycle-ordering bug in the
// calling component: all contributions belong in the declare phase.
var ErrRegistryFrozen = errors.New("filter registry is frozen")

// Registry maps datasources to their merged pattern sets. It is the
// single source of truth for what a datasource is filtered by.
//
// A Registry has two phases. During the declare phase components call
// Contribute; contributions are idempotent and commutative, so the final
// set per datasource is independent of registration order. Freeze
// transitions to the run phase, after which the registry is read-only
// and lookups from any number of goroutines need no coordination.
type Registry struct {
	sets   *xsync.MapOf[types.DatasourceID, *patternEntry]
	frozen atomic.Bool
	logger zerolog.Logger
}

// patternEntry guards one datasource's growing pattern set during the
// declare phase.
type patternEntry struct {
	mu      sync.Mutex
	members map[types.Pattern]struct{}
}

// NewRegistry creates an empty, unfrozen registry that logs nowhere.
func NewRegistry() *Registry {
	return NewRegistryWithLogger(zerolog.Nop())
}

// NewRegistryWithLogger creates an empty, unfrozen registry that logs
// contributions and the freeze transition to logger at debug level.
func NewRegistryWithLogger(logger zerolog.Logger) *Registry {
	return &Registry{
		sets:   xsync.NewMapOf[types.DatasourceID, *patternEntry](),
		logger: logger,
	}
}

// Contribute adds patterns to the datasource's pattern set. Re-adding an
// existing pattern is a no-op, and the resulting set does not depend on
// which component contributed first.
//
// Validation is all-or-nothing: if any pattern is empty or not valid
// UTF-8, nothing is added and the *types.InvalidPatternError is
// returned. After Freeze, Contribute fails with ErrRegistryFrozen.
func (r *Registry) Contribute(ds types.DatasourceID, patterns ...string) error {
	if r.frozen.Load() {
		return fmt.Errorf("contribute to %q: %w", ds, ErrRegistryFrozen)
	}

	validated, err := types.NewPatterns(patterns...)
	if err != nil {
		return fmt.Errorf("contribute to %q: %w", ds, err)
	}
	if len(validated) == 0 {
		return nil
	}

	entry, _ := r.sets.LoadOrCompute(ds, func() *patternEntry {
		return &patternEntry{members: make(map[types.Pattern]struct{})}
	})

	entry.mu.Lock()
	added := 0
	for _, p := range validated {
		if _, ok := entry.members[p]; !ok {
			entry.members[p] = struct{}{}
			added++
		}
	}
	total := len(entry.members)
	entry.mu.Unlock()

	r.logger.Debug().
		Str("datasource", ds.String()).
		Int("contributed", len(validated)).
		Int("added", added).
		Int("total", total).
		Msg("Filter patterns contributed")
	return nil
}

// Get returns a snapshot of the datasource's pattern set, or an empty
// set if nothing was ever contributed. The snapshot is defensive:
// callers cannot mutate the registry through it.
func (r *Registry) Get(ds types.DatasourceID) types.PatternSet {
	entry, ok := r.sets.Load(ds)
	if !ok {
		return types.PatternSet{}
	}

	entry.mu.Lock()
	patterns := make([]types.Pattern, 0, len(entry.members))
	for p := range entry.members {
		patterns = append(patterns, p)
	}
	entry.mu.Unlock()

	return types.NewPatternSet(patterns...)
}

// FiltersFor returns the sorted pattern strings currently registered for
// a datasource. This is the inspection entry point: it reports what was
// contributed regardless of whether filtering is globally enabled, so
// diagnostics can tell "no filters declared" apart from "filtering
// disabled".
func (r *Registry) FiltersFor(ds types.DatasourceID) []string {
	return r.Get(ds).Strings()
}

// Freeze transitions the registry from the declare phase to the run
// phase. Subsequent Contribute calls fail. Idempotent; the execution
// engine is expected to call it exactly once before any component's
// logic runs.
func (r *Registry) Freeze() {
	if r.frozen.CompareAndSwap(false, true) {
		r.logger.Debug().
			Int("datasources", r.sets.Size()).
			Msg("Filter registry frozen")
	}
}

// Frozen reports whether the registry has entered the run phase.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Datasources returns the sorted IDs of every datasource that has at
// least one registered pattern.
func (r *Registry) Datasources() []types.DatasourceID {
	ids := make([]types.DatasourceID, 0, r.sets.Size())
	r.sets.Range(func(ds types.DatasourceID, _ *patternEntry) bool {
		ids = append(ids, ds)
		return true
	})
	slices.Sort(ids)
	return ids
}
