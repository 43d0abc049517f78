package fluxes

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Format selects a flux text layout.
type Format string

// Supported text layouts.
const (
	FormatArbitrary Format = "arbitrary"
	Format709       Format = "709"
)

// ParseFormat converts a layout name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatArbitrary, Format709:
		return Format(s), nil
	}
	return "", fmt.Errorf("fluxes: unknown format %q", s)
}

// Read parses r in the given layout.
func Read(r io.Reader, format Format) (*Fluxes, error) {
	switch format {
	case FormatArbitrary:
		return ReadArbitrary(r)
	case Format709:
		return Read709(r)
	}
	return nil, fmt.Errorf("fluxes: unknown format %q", format)
}

// ReadFile parses the file at path in the given layout.
func ReadFile(path string, format Format) (*Fluxes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fluxes: %w", err)
	}
	defer f.Close()
	fl, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fl, nil
}

// ReadArbitrary parses an arb_flux file: N+1 energy edges followed by N
// values, both from high to low energy.
func ReadArbitrary(r io.Reader) (*Fluxes, error) {
	data, norm, comment, err := parse(r)
	if err != nil {
		return nil, err
	}
	if len(data)%2 == 0 {
		return nil, fmt.Errorf("fluxes: %d numbers: %w", len(data), ErrArbitraryDataSize)
	}
	binsEnd := len(data)/2 + 1
	return New(reversed(data[:binsEnd]), reversed(data[binsEnd:]), comment, norm)
}

// Read709 parses a fluxes file with exactly 709 values from high to low
// energy over the standard group structure.
func Read709(r io.Reader) (*Fluxes, error) {
	data, norm, comment, err := parse(r)
	if err != nil {
		return nil, err
	}
	if len(data) != Groups709 {
		return nil, fmt.Errorf("fluxes: %d numbers: %w", len(data), ErrStandardDataSize)
	}
	return New(Bins709(), reversed(data), comment, norm)
}

// parse splits the text into numbers, the norm from the second to last line
// and the comment from the last one.
func parse(r io.Reader) (data []float64, norm float64, comment string, err error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, 0, "", fmt.Errorf("fluxes: read: %w", err)
	}
	if len(lines) < 2 {
		return nil, 0, "", fmt.Errorf("fluxes: %d lines, norm and comment lines expected", len(lines))
	}
	comment = strings.TrimSpace(lines[len(lines)-1])
	norm, err = strconv.ParseFloat(strings.TrimSpace(lines[len(lines)-2]), 64)
	if err != nil {
		return nil, 0, "", fmt.Errorf("fluxes: norm: %w", err)
	}
	for i, line := range lines[:len(lines)-2] {
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, 0, "", fmt.Errorf("fluxes: line %d: %w", i+1, err)
			}
			data = append(data, v)
		}
	}
	return data, norm, comment, nil
}

// PrintArbitrary writes f in arb_flux layout with at most maxColumns numbers
// per line. Energies are written with 7 significant digits, values with 6.
func PrintArbitrary(w io.Writer, f *Fluxes, maxColumns int) error {
	bw := bufio.NewWriter(w)
	column := printColumns(bw, reversed(f.EnergyBins), maxColumns, 6)
	if column != 0 {
		bw.WriteByte('\n')
	}
	printValues(bw, f, maxColumns)
	return bw.Flush()
}

// Print709 writes the values of standard 709-group fluxes.
func Print709(w io.Writer, f *Fluxes, maxColumns int) error {
	if !f.Is709() {
		return ErrNotA709
	}
	bw := bufio.NewWriter(w)
	printValues(bw, f, maxColumns)
	return bw.Flush()
}

// Write writes f in the given layout.
func Write(w io.Writer, f *Fluxes, format Format, maxColumns int) error {
	switch format {
	case FormatArbitrary:
		return PrintArbitrary(w, f, maxColumns)
	case Format709:
		return Print709(w, f, maxColumns)
	}
	return fmt.Errorf("fluxes: unknown format %q", format)
}

func printValues(w *bufio.Writer, f *Fluxes, maxColumns int) {
	column := printColumns(w, reversed(f.Values), maxColumns, 5)
	if column != 0 {
		w.WriteByte('\n')
	}
	w.WriteString(strconv.FormatFloat(f.Norm, 'g', -1, 64))
	w.WriteByte('\n')
	w.WriteString(f.Comment)
}

// printColumns writes seq in exponent notation and returns the column
// reached on the last row, zero when the row was terminated.
func printColumns(w *bufio.Writer, seq []float64, maxColumns, prec int) int {
	if maxColumns < 1 {
		maxColumns = 1
	}
	column := 0
	for _, v := range seq {
		w.WriteString(strconv.FormatFloat(v, 'e', prec, 64))
		column++
		if column == maxColumns {
			w.WriteByte('\n')
			column = 0
		} else {
			w.WriteByte(' ')
		}
	}
	return column
}
