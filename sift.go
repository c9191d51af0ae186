// Package sift is a filter aggregation and application library for
// data-collection pipelines.
//
// Independently authored components (parsers, analysis rules) declare
// substring filters against shared raw datasources so that only the
// lines they need are ever collected. Sift merges those declarations
// into one consistent view per datasource and applies them to collected
// content.
//
// # Basic Usage
//
// During component loading (the declare phase), every component
// contributes the patterns it needs. The execution engine then freezes
// the pipeline and starts collecting:
//
//	pipeline := sift.New(sift.WithConfig(config.FromEnv(logger)))
//
//	// declare phase: components register what they need
//	pipeline.Contribute("messages", "fail_start")
//	pipeline.Contribute("messages", "locked", "exceeded")
//
//	// run phase: collection hands raw lines through the pipeline
//	pipeline.Freeze()
//	visible := pipeline.Apply(rawLines, "messages")
//
// Patterns are case-sensitive substrings combined with OR: a line is
// retained if it contains any registered pattern. Because any component
// may depend on lines another component's filters would drop, all
// patterns for a datasource apply to all of its consumers.
//
// # Caveat for component authors
//
// A component that assumes unfiltered content may observe silently
// incomplete data when another component has filtered the shared
// datasource. Use FiltersFor to verify assumptions before relying on
// filtered data.
package sift

import (
	"github.com/rs/zerolog"

	"github.com/siftkit/sift/pkg/config"
	"github.com/siftkit/sift/pkg/filter"
	"github.com/siftkit/sift/pkg/manifest"
	"github.com/siftkit/sift/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/siftkit/sift" without subpackages.
type (
	// Config holds the process configuration for the pipeline.
	Config = config.Config

	// DatasourceID identifies one logical raw data source.
	DatasourceID = types.DatasourceID

	// Pattern is a validated substring filter pattern.
	Pattern = types.Pattern

	// PatternSet is the merged pattern collection for one datasource.
	PatternSet = types.PatternSet

	// InvalidPatternError reports a rejected pattern.
	InvalidPatternError = types.InvalidPatternError
)

// ErrRegistryFrozen is returned by Contribute after Freeze.
var ErrRegistryFrozen = filter.ErrRegistryFrozen

// Pipeline owns the filter registry, the toggle state, and the applier
// for one process-level execution context. Create one per process (or
// per test) and pass it by reference; there is no ambient global.
type Pipeline struct {
	registry *filter.Registry
	applier  *filter.Applier
	cfg      config.Config
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	cfg    config.Config
	logger zerolog.Logger
}

// WithConfig supplies an explicit configuration, typically
// config.FromEnv resolved once at startup.
func WithConfig(cfg config.Config) Option {
	return func(c *pipelineConfig) {
		c.cfg = cfg
	}
}

// WithFiltersDisabled turns the global filter toggle off: every
// datasource passes through unfiltered regardless of contributions.
func WithFiltersDisabled() Option {
	return func(c *pipelineConfig) {
		c.cfg.FiltersEnabled = false
	}
}

// WithLogger routes the pipeline's debug logging to logger.
// Default is zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = logger
	}
}

// New creates a Pipeline. By default filtering is enabled and nothing
// is logged.
func New(opts ...Option) *Pipeline {
	pc := &pipelineConfig{
		cfg:    config.Default(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(pc)
	}

	registry := filter.NewRegistryWithLogger(pc.logger)
	return &Pipeline{
		registry: registry,
		applier:  filter.NewApplierWithLogger(registry, pc.cfg.FiltersEnabled, pc.logger),
		cfg:      pc.cfg,
	}
}

// Contribute registers patterns for a datasource. Declare phase only;
// after Freeze it fails with ErrRegistryFrozen.
func (p *Pipeline) Contribute(datasource string, patterns ...string) error {
	ds, err := types.ParseDatasourceID(datasource)
	if err != nil {
		return err
	}
	return p.registry.Contribute(ds, patterns...)
}

// LoadManifest reads a YAML filter manifest and contributes its entries.
func (p *Pipeline) LoadManifest(path string) error {
	m, err := manifest.LoadFile(path)
	if err != nil {
		return err
	}
	return m.ContributeTo(p.registry)
}

// Freeze ends the declare phase. The execution engine calls this exactly
// once before any component's logic runs. Idempotent.
func (p *Pipeline) Freeze() {
	p.registry.Freeze()
}

// Apply returns the lines a consumer of datasource should observe:
// the raw input when filtering is disabled or nothing was contributed,
// otherwise the ordered subsequence of lines containing at least one
// registered pattern.
func (p *Pipeline) Apply(lines []string, datasource string) []string {
	return p.applier.Apply(lines, types.DatasourceID(datasource))
}

// FiltersFor returns the sorted patterns registered for a datasource,
// independent of the toggle state.
func (p *Pipeline) FiltersFor(datasource string) []string {
	return p.registry.FiltersFor(types.DatasourceID(datasource))
}

// Datasources returns the sorted IDs of all datasources with registered
// patterns.
func (p *Pipeline) Datasources() []types.DatasourceID {
	return p.registry.Datasources()
}

// FiltersEnabled reports the resolved toggle state.
func (p *Pipeline) FiltersEnabled() bool {
	return p.cfg.FiltersEnabled
}

// Registry exposes the underlying registry for collaborators that need
// direct access, such as manifest loading helpers.
func (p *Pipeline) Registry() *filter.Registry {
	return p.registry
}

// Stats reports cumulative line throughput for the pipeline's applier.
func (p *Pipeline) Stats() filter.Stats {
	return p.applier.Stats()
}
