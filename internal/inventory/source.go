package inventory

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source supplies the complete content of an input document.
type Source interface {
	ReadAll() ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() ([]byte, error)

// ReadAll calls f.
func (f SourceFunc) ReadAll() ([]byte, error) {
	return f()
}

// FromBytes returns a Source over data.
func FromBytes(data []byte) Source {
	return SourceFunc(func() ([]byte, error) { return data, nil })
}

// FromString returns a Source over text.
func FromString(text string) Source {
	return FromBytes([]byte(text))
}

// FromReader returns a Source draining r.
func FromReader(r io.Reader) Source {
	return SourceFunc(func() ([]byte, error) { return io.ReadAll(r) })
}

// FromPath returns a Source reading the file at path. Files with the .bz2
// extension are decompressed.
func FromPath(path string) Source {
	return SourceFunc(func() ([]byte, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		var r io.Reader = f
		if strings.HasSuffix(path, ".bz2") {
			r = bzip2.NewReader(f)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil
	})
}
