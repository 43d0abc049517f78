package arch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxFilesPerPackage = 20
	maxLinesPerFile    = 400
)

// isGenerated reports whether path carries the standard generated-code
// header in its first lines.
func isGenerated(t *testing.T, path string) bool {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	head, _, _ := strings.Cut(string(data), "package ")
	return strings.Contains(head, "Code generated") && strings.Contains(head, "DO NOT EDIT")
}

func TestPackageFileCount(t *testing.T) {
	t.Parallel()
	dir := internalDirPath(t)
	for _, pkg := range internalPackages(t) {
		if n := len(goFilesIn(t, filepath.Join(dir, pkg))); n > maxFilesPerPackage {
			t.Errorf("package %s has %d .go files (limit %d); split it", pkg, n, maxFilesPerPackage)
		}
	}
}

// TestFileLineCount covers test files as well.
func TestFileLineCount(t *testing.T) {
	t.Parallel()
	root := repoRoot(t)
	dir := internalDirPath(t)
	for _, pkg := range internalPackages(t) {
		for _, path := range allGoFilesIn(t, filepath.Join(dir, pkg)) {
			if isGenerated(t, path) {
				continue
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				t.Fatalf("relative path of %s: %v", path, err)
			}
			if n := lineCount(t, path); n > maxLinesPerFile {
				t.Errorf("%s has %d lines (limit %d); decompose it", rel, n, maxLinesPerFile)
			}
		}
	}
}
