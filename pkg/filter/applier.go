package filter

import (
	"strings"
	"sync/atomic"

	"github.com/cloudflare/ahocorasick"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/siftkit/sift/pkg/types"
)

// ApplyPatterns returns the ordered subsequence of lines that contain at
// least one pattern in set as a substring. A line matching several
// patterns appears once; relative order is preserved.
//
// If enabled is false, or set is empty, lines is returned unchanged.
// ApplyPatterns has no side effects and touches no shared state, so it
// is safe to call from any number of goroutines.
func ApplyPatterns(lines []string, set types.PatternSet, enabled bool) []string {
	if !enabled || set.Empty() {
		return lines
	}

	patterns := set.Strings()
	retained := make([]string, 0, len(lines))
	for _, line := range lines {
		if containsAny(line, patterns) {
			retained = append(retained, line)
		}
	}
	return retained
}

func containsAny(line string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}

// Applier filters collected content against a Registry. The enabled flag
// is the global filter toggle, resolved once from configuration and
// fixed at construction; when false every datasource passes through
// unfiltered no matter what was contributed.
//
// Once the registry is frozen the applier compiles one Aho-Corasick
// matcher per datasource and reuses it, so a busy datasource pays the
// automaton build once rather than per collection.
type Applier struct {
	registry *Registry
	enabled  bool
	logger   zerolog.Logger
	matchers *xsync.MapOf[types.DatasourceID, *lineMatcher]

	linesSeen     atomic.Uint64
	linesRetained atomic.Uint64
}

// lineMatcher is a compiled pattern set. A nil matcher means the
// datasource has no patterns and passes everything through.
type lineMatcher struct {
	matcher *ahocorasick.Matcher
}

// NewApplier creates an applier over registry with the given toggle
// state and no logging.
func NewApplier(registry *Registry, enabled bool) *Applier {
	return NewApplierWithLogger(registry, enabled, zerolog.Nop())
}

// NewApplierWithLogger creates an applier that logs per-apply line
// counts to logger at debug level.
func NewApplierWithLogger(registry *Registry, enabled bool, logger zerolog.Logger) *Applier {
	return &Applier{
		registry: registry,
		enabled:  enabled,
		logger:   logger,
		matchers: xsync.NewMapOf[types.DatasourceID, *lineMatcher](),
	}
}

// Enabled reports the toggle state the applier was built with.
func (a *Applier) Enabled() bool {
	return a.enabled
}

// Apply resolves the datasource's pattern set from the registry and
// returns the lines a consumer of that datasource should observe. See
// ApplyPatterns for the retention rule.
func (a *Applier) Apply(lines []string, ds types.DatasourceID) []string {
	a.linesSeen.Add(uint64(len(lines)))

	if !a.enabled {
		a.linesRetained.Add(uint64(len(lines)))
		return lines
	}

	lm := a.matcherFor(ds)
	if lm.matcher == nil {
		a.linesRetained.Add(uint64(len(lines)))
		return lines
	}

	retained := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(lm.matcher.MatchThreadSafe([]byte(line))) > 0 {
			retained = append(retained, line)
		}
	}
	a.linesRetained.Add(uint64(len(retained)))

	a.logger.Debug().
		Str("datasource", ds.String()).
		Int("lines_in", len(lines)).
		Int("lines_out", len(retained)).
		Msg("Filters applied")
	return retained
}

// matcherFor returns the compiled matcher for a datasource. Matchers are
// cached only after the registry freezes; before that the pattern set
// may still grow, so each call compiles from a fresh snapshot.
func (a *Applier) matcherFor(ds types.DatasourceID) *lineMatcher {
	if !a.registry.Frozen() {
		return a.compile(ds)
	}
	lm, _ := a.matchers.LoadOrCompute(ds, func() *lineMatcher {
		return a.compile(ds)
	})
	return lm
}

func (a *Applier) compile(ds types.DatasourceID) *lineMatcher {
	set := a.registry.Get(ds)
	if set.Empty() {
		return &lineMatcher{}
	}
	return &lineMatcher{matcher: ahocorasick.NewStringMatcher(set.Strings())}
}

// Stats reports cumulative line throughput across all datasources.
type Stats struct {
	LinesSeen     uint64
	LinesRetained uint64
}

// Stats returns the applier's cumulative counters.
func (a *Applier) Stats() Stats {
	return Stats{
		LinesSeen:     a.linesSeen.Load(),
		LinesRetained: a.linesRetained.Load(),
	}
}
