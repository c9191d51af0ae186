// Package config resolves process-level settings for the filter
// subsystem. Settings are read once at startup and injected; nothing in
// the library consults the environment after that.
package config

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// EnvFiltersEnabled is the environment variable controlling the global
// filter toggle. Absence means filtering is enabled.
const EnvFiltersEnabled = "SIFT_FILTERS_ENABLED"

// Config holds the filter subsystem's process configuration. It is
// resolved once and treated as immutable for the process lifetime:
// letting the toggle flip mid-run would make downstream results
// inconsistent within a single execution.
type Config struct {
	// FiltersEnabled is the global filter toggle. When false, every
	// datasource passes through unfiltered regardless of what was
	// contributed.
	FiltersEnabled bool
}

// Default returns the configuration used when nothing is set: filtering
// enabled.
func Default() Config {
	return Config{FiltersEnabled: true}
}

// FromEnv resolves configuration from the process environment. An
// unrecognized toggle value falls back to the default and is logged at
// warn level.
func FromEnv(logger zerolog.Logger) Config {
	cfg := Default()

	raw, ok := os.LookupEnv(EnvFiltersEnabled)
	if !ok {
		return cfg
	}

	enabled, ok := ParseBool(raw)
	if !ok {
		logger.Warn().
			Str("var", EnvFiltersEnabled).
			Str("value", raw).
			Msg("Unrecognized toggle value, filtering stays enabled")
		return cfg
	}

	cfg.FiltersEnabled = enabled
	return cfg
}

// ParseBool interprets the textual boolean spellings accepted in
// configuration: 1/0, t/f, true/false, y/n, yes/no, on/off, any case.
// The second return value reports whether s was recognized.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, true
	case "0", "f", "false", "n", "no", "off":
		return false, true
	default:
		return false, false
	}
}
