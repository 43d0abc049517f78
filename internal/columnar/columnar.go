// Package columnar stores tables of Go structs as parquet files: one file per
// table, optionally split into hive-style partition directories, and read back
// by glob patterns.
package columnar

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/parquet-go/parquet-go"
)

// Ext is the file extension of a table file.
const Ext = ".parquet"

// ErrFileExists is returned when a table file exists and override is not set.
var ErrFileExists = errors.New("file exists and override is not specified")

// TablePath returns the path of table name in dir.
func TablePath(dir, name string) string {
	return filepath.Join(dir, name+Ext)
}

// CheckWritable reports ErrFileExists if path exists and override is false.
func CheckWritable(path string, override bool) error {
	if override {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("columnar: %s: %w", path, ErrFileExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("columnar: stat %s: %w", path, err)
	}
	return nil
}

// WriteTable writes rows to dir/name.parquet, creating dir as needed.
func WriteTable[T any](dir, name string, rows []T, override bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("columnar: create %s: %w", dir, err)
	}
	return writeFile(TablePath(dir, name), rows, override)
}

func writeFile[T any](path string, rows []T, override bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !override {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("columnar: %s: %w", path, ErrFileExists)
		}
		return fmt.Errorf("columnar: create %s: %w", path, err)
	}
	if err := parquet.Write(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("columnar: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("columnar: close %s: %w", path, err)
	}
	return nil
}

// Partition identifies one material/case slice of a table.
type Partition struct {
	MaterialID uint32
	CaseID     uint32
}

// Dir returns the hive-style directory of p under root.
func (p Partition) Dir(root string) string {
	return filepath.Join(root,
		fmt.Sprintf("material_id=%d", p.MaterialID),
		fmt.Sprintf("case_id=%d", p.CaseID))
}

// WritePartitioned groups rows by key and writes each group to
// root/material_id=<m>/case_id=<c>/name.parquet. Partitions are written in
// ascending key order; rows keep their order within a partition.
func WritePartitioned[T any](root, name string, rows []T, key func(*T) Partition, override bool) error {
	groups := make(map[Partition][]T)
	for i := range rows {
		k := key(&rows[i])
		groups[k] = append(groups[k], rows[i])
	}
	keys := make([]Partition, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, comparePartitions)
	for _, k := range keys {
		if err := WriteTable(k.Dir(root), name, groups[k], override); err != nil {
			return err
		}
	}
	return nil
}

func comparePartitions(a, b Partition) int {
	if c := cmp.Compare(a.MaterialID, b.MaterialID); c != 0 {
		return c
	}
	return cmp.Compare(a.CaseID, b.CaseID)
}

// ReadTable reads all the rows of one parquet file.
func ReadTable[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("columnar: read %s: %w", path, err)
	}
	return rows, nil
}

// ReadGlob reads and concatenates all files matching a doublestar pattern,
// in lexical path order. No match yields no rows and no error.
func ReadGlob[T any](pattern string) ([]T, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("columnar: glob %s: %w", pattern, err)
	}
	slices.Sort(paths)
	var out []T
	for _, p := range paths {
		rows, err := ReadTable[T](p)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
