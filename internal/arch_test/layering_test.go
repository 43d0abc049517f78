package arch_test

import (
	"path/filepath"
	"testing"
)

// layers assigns each internal package a level. A package may import
// packages of its own level or below.
var layers = map[string]int{
	"ansi":      0,
	"config":    0,
	"elements":  0,
	"logging":   0,
	"metrics":   0,
	"telemetry": 0,

	"columnar":  1,
	"fluxes":    1,
	"inventory": 1,

	"collector": 2,

	"ingest": 3,
	"store":  3,

	"ui": 4,
}

// TestDependencyLayering fails on any import of a higher layer.
func TestDependencyLayering(t *testing.T) {
	t.Parallel()
	dir := internalDirPath(t)
	for _, pkg := range internalPackages(t) {
		level, ok := layers[pkg]
		if !ok {
			continue
		}
		for _, imp := range importsOf(t, filepath.Join(dir, pkg)) {
			if impLevel, ok := layers[imp]; ok && impLevel > level {
				t.Errorf("layer violation: %s (layer %d) imports %s (layer %d)", pkg, level, imp, impLevel)
			}
		}
	}
}

// TestNoUnknownPackages requires every internal package to have a layer.
func TestNoUnknownPackages(t *testing.T) {
	t.Parallel()
	for _, pkg := range internalPackages(t) {
		if _, ok := layers[pkg]; !ok {
			t.Errorf("package %s has no layer assignment; add it to the layers map", pkg)
		}
	}
}

// TestLayersAreCurrent catches stale entries left after a package is removed.
func TestLayersAreCurrent(t *testing.T) {
	t.Parallel()
	present := make(map[string]bool)
	for _, pkg := range internalPackages(t) {
		present[pkg] = true
	}
	for pkg := range layers {
		if !present[pkg] {
			t.Errorf("layers lists %s, which is not an internal package", pkg)
		}
	}
}
