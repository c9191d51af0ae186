// Package manifest loads declarative filter manifests: YAML files that
// map datasources to the substring patterns a component needs from
// them. Manifests are a declare-phase convenience; everything they do
// can also be done by calling the registry directly.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/siftkit/sift/pkg/filter"
	"github.com/siftkit/sift/pkg/types"
)

// Manifest is one component's declared filters.
//
// File format:
//
//	filters:
//	  - datasource: messages
//	    patterns:
//	      - fail_start
//	      - locked
type Manifest struct {
	Filters []Entry `yaml:"filters"`
}

// Entry declares the patterns one datasource needs.
type Entry struct {
	Datasource string   `yaml:"datasource"`
	Patterns   []string `yaml:"patterns"`
}

// Load parses a manifest from YAML bytes.
func Load(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}
	return &m, nil
}

// LoadFile parses a manifest from a YAML file path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	m, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// LoadDir walks root inside fsys and parses every .yml and .yaml file
// as a manifest.
func LoadDir(fsys fs.FS, root string) ([]*Manifest, error) {
	var manifests []*Manifest

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		m, err := Load(data)
		if err != nil {
			return fmt.Errorf("manifest %s: %w", path, err)
		}
		manifests = append(manifests, m)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return manifests, nil
}

// ContributeTo registers every entry of the manifest with reg. Entries
// for the same datasource union with whatever other components already
// contributed. Fails on the first invalid datasource or pattern; the
// registry's all-or-nothing rule applies per entry.
func (m *Manifest) ContributeTo(reg *filter.Registry) error {
	for _, entry := range m.Filters {
		ds, err := types.ParseDatasourceID(entry.Datasource)
		if err != nil {
			return fmt.Errorf("manifest entry: %w", err)
		}
		if err := reg.Contribute(ds, entry.Patterns...); err != nil {
			return err
		}
	}
	return nil
}
