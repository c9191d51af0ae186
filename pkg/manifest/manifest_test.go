package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftkit/sift/pkg/filter"
	"github.com/siftkit/sift/pkg/types"
)

const sampleManifest = `
filters:
  - datasource: messages
    patterns:
      - fail_start
  - datasource: vuln_conf
    patterns:
      - "["
      - vulnerability
`

func TestLoad(t *testing.T) {
	m, err := Load([]byte(sampleManifest))
	require.NoError(t, err)
	require.Len(t, m.Filters, 2)

	assert.Equal(t, "messages", m.Filters[0].Datasource)
	assert.Equal(t, []string{"fail_start"}, m.Filters[0].Patterns)
	assert.Equal(t, []string{"[", "vulnerability"}, m.Filters[1].Patterns)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load([]byte("filters: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, m.Filters, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	fsys := fstest.MapFS{
		"manifests/r1.yml": &fstest.MapFile{Data: []byte(
			"filters:\n  - datasource: messages\n    patterns: [fail_start]\n")},
		"manifests/r2.yaml": &fstest.MapFile{Data: []byte(
			"filters:\n  - datasource: messages\n    patterns: [locked, exceeded]\n")},
		"manifests/readme.md": &fstest.MapFile{Data: []byte("not yaml")},
	}

	manifests, err := LoadDir(fsys, "manifests")
	require.NoError(t, err)
	assert.Len(t, manifests, 2)
}

func TestContributeTo_UnionAcrossManifests(t *testing.T) {
	r1, err := Load([]byte("filters:\n  - datasource: messages\n    patterns: [fail_start]\n"))
	require.NoError(t, err)
	r2, err := Load([]byte("filters:\n  - datasource: messages\n    patterns: [locked, exceeded]\n"))
	require.NoError(t, err)

	reg := filter.NewRegistry()
	require.NoError(t, r1.ContributeTo(reg))
	require.NoError(t, r2.ContributeTo(reg))

	assert.Equal(t, []string{"exceeded", "fail_start", "locked"},
		reg.FiltersFor("messages"))
}

func TestContributeTo_InvalidPattern(t *testing.T) {
	m, err := Load([]byte("filters:\n  - datasource: messages\n    patterns: [\"\"]\n"))
	require.NoError(t, err)

	reg := filter.NewRegistry()
	err = m.ContributeTo(reg)
	require.Error(t, err)
	var invalidErr *types.InvalidPatternError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestContributeTo_EmptyDatasource(t *testing.T) {
	m, err := Load([]byte("filters:\n  - datasource: \"\"\n    patterns: [x]\n"))
	require.NoError(t, err)

	reg := filter.NewRegistry()
	assert.Error(t, m.ContributeTo(reg))
}
