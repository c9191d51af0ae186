package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftkit/sift/pkg/types"
)

// vulnConf is a 12-line key/value file with 4 section headers and one
// line mentioning "vulnerability".
var vulnConf = []string{
	"[main]",
	"gpgcheck=1",
	"installonly_limit=3",
	"best=True",
	"skip_if_unavailable=False",
	"[updates]",
	"enabled=1",
	"[security]",
	"vulnerability=report",
	"notify=admin",
	"[emergency]",
	"alert=1",
}

func TestApplyPatterns_ToggleDisabledPassthrough(t *testing.T) {
	set := types.NewPatternSet("[")
	out := ApplyPatterns(vulnConf, set, false)
	assert.Equal(t, vulnConf, out)
}

func TestApplyPatterns_EmptySetPassthrough(t *testing.T) {
	out := ApplyPatterns(vulnConf, types.PatternSet{}, true)
	assert.Equal(t, vulnConf, out)
}

func TestApplyPatterns_Retention(t *testing.T) {
	tests := []struct {
		name     string
		patterns []types.Pattern
		expected []string
	}{
		{
			name:     "section headers only",
			patterns: []types.Pattern{"["},
			expected: []string{"[main]", "[updates]", "[security]", "[emergency]"},
		},
		{
			name:     "headers plus vulnerability line",
			patterns: []types.Pattern{"[", "vulnerability"},
			expected: []string{
				"[main]",
				"[updates]",
				"[security]",
				"vulnerability=report",
				"[emergency]",
			},
		},
		{
			name:     "no line matches",
			patterns: []types.Pattern{"kernel panic"},
			expected: []string{},
		},
		{
			name:     "line matching several patterns appears once",
			patterns: []types.Pattern{"[sec", "security"},
			expected: []string{"[security]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyPatterns(vulnConf, types.NewPatternSet(tt.patterns...), true)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestApplyPatterns_CaseSensitive(t *testing.T) {
	lines := []string{"Best=True", "best=True"}
	out := ApplyPatterns(lines, types.NewPatternSet("best"), true)
	assert.Equal(t, []string{"best=True"}, out)
}

func TestApplier_Apply(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Contribute("vuln_conf", "["))
	reg.Freeze()

	applier := NewApplier(reg, true)

	out := applier.Apply(vulnConf, "vuln_conf")
	assert.Equal(t, []string{"[main]", "[updates]", "[security]", "[emergency]"}, out)

	// Unfiltered datasources pass through untouched.
	assert.Equal(t, vulnConf, applier.Apply(vulnConf, "messages"))

	stats := applier.Stats()
	assert.Equal(t, uint64(24), stats.LinesSeen)
	assert.Equal(t, uint64(16), stats.LinesRetained)
}

func TestApplier_ToggleDisabled(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Contribute("vuln_conf", "["))
	reg.Freeze()

	applier := NewApplier(reg, false)
	assert.False(t, applier.Enabled())
	assert.Equal(t, vulnConf, applier.Apply(vulnConf, "vuln_conf"))
}

func TestApplier_BeforeFreezeSeesNewContributions(t *testing.T) {
	reg := NewRegistry()
	applier := NewApplier(reg, true)

	require.NoError(t, reg.Contribute("vuln_conf", "["))
	first := applier.Apply(vulnConf, "vuln_conf")
	assert.Len(t, first, 4)

	// Declare phase is still open, so a later contribution must be
	// visible to the next Apply.
	require.NoError(t, reg.Contribute("vuln_conf", "vulnerability"))
	second := applier.Apply(vulnConf, "vuln_conf")
	assert.Len(t, second, 5)
}

func TestApplier_CachedMatcherAfterFreeze(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Contribute("vuln_conf", "vulnerability"))
	reg.Freeze()

	applier := NewApplier(reg, true)
	want := []string{"vulnerability=report"}
	for i := 0; i < 3; i++ {
		assert.Equal(t, want, applier.Apply(vulnConf, "vuln_conf"))
	}
}

func TestApplier_ConcurrentApply(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Contribute("vuln_conf", "["))
	reg.Freeze()

	applier := NewApplier(reg, true)

	done := make(chan []string, 16)
	for i := 0; i < 16; i++ {
		go func() {
			done <- applier.Apply(vulnConf, "vuln_conf")
		}()
	}
	for i := 0; i < 16; i++ {
		assert.Len(t, <-done, 4)
	}
}
