// Package ingest feeds FISPACT inventory files into a collector. Inputs come
// from glob patterns, a TOML case manifest, or a watched spool directory, and
// are parsed by a bounded pool of workers.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	toml "github.com/pelletier/go-toml/v2"
)

// ErrNoInputs is returned when patterns or a manifest yield no jobs.
var ErrNoInputs = errors.New("ingest: no inputs")

// Job is one inventory file and the case it is collected under.
type Job struct {
	Path       string `toml:"path"`
	MaterialID uint32 `toml:"material_id"`
	CaseID     uint32 `toml:"case_id"`
}

// Manifest is the TOML case list:
//
//	[[case]]
//	path = "runs/ag-1.json"
//	material_id = 1
//	case_id = 1
type Manifest struct {
	Cases []Job `toml:"case"`
}

// LoadManifest reads a case manifest. Relative paths are resolved against
// the manifest directory.
func LoadManifest(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ingest: parsing %s: %w", path, err)
	}
	if len(m.Cases) == 0 {
		return nil, fmt.Errorf("%w: %s lists no cases", ErrNoInputs, path)
	}
	dir := filepath.Dir(path)
	for i := range m.Cases {
		c := &m.Cases[i]
		if c.Path == "" {
			return nil, fmt.Errorf("ingest: %s: case %d has no path", path, i+1)
		}
		if !filepath.IsAbs(c.Path) {
			c.Path = filepath.Join(dir, c.Path)
		}
	}
	return m.Cases, nil
}

// ExpandInputs expands doublestar patterns into jobs for one material.
// Matches are sorted and deduplicated; case ids run 1..N in path order.
func ExpandInputs(patterns []string, materialID uint32) ([]Job, error) {
	var paths []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("ingest: pattern %q: %w", p, err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: nothing matches %q", ErrNoInputs, patterns)
	}
	jobs := make([]Job, len(paths))
	for i, p := range paths {
		jobs[i] = Job{Path: p, MaterialID: materialID, CaseID: uint32(i + 1)}
	}
	return jobs, nil
}
