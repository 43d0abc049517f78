// Package fluxes reads and writes FISPACT neutron flux spectra in the
// arbitrary (arb_flux) and standard 709-group (fluxes) text formats.
//
// Both formats list numbers from high to low energy, followed by a
// normalization line and a free-text comment line. A Fluxes value always
// keeps energies ascending.
package fluxes

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Sentinel errors for malformed flux data.
var (
	// ErrSizeMismatch indicates values and energy bins of incompatible sizes.
	ErrSizeMismatch = errors.New("incompatible sizes of bins and fluxes")
	// ErrArbitraryDataSize indicates an even count of numbers in an arb_flux file.
	ErrArbitraryDataSize = errors.New("the number of float values from arb_flux file should be odd")
	// ErrStandardDataSize indicates a 709-group file without exactly 709 values.
	ErrStandardDataSize = errors.New("invalid data for standard FISPACT 709-group fluxes")
	// ErrNotA709 is returned when printing non-standard fluxes in 709 format.
	ErrNotA709 = errors.New("expected 709-group fluxes")
)

// Fluxes is a group-wise neutron flux spectrum.
type Fluxes struct {
	EnergyBins []float64 // eV, ascending, len(Values)+1 edges
	Values     []float64
	Comment    string
	Norm       float64
}

// New validates that there is one more energy edge than values.
func New(energyBins, values []float64, comment string, norm float64) (*Fluxes, error) {
	if len(values)+1 != len(energyBins) {
		return nil, fmt.Errorf("fluxes: %d values and %d bins: %w", len(values), len(energyBins), ErrSizeMismatch)
	}
	return &Fluxes{EnergyBins: energyBins, Values: values, Comment: comment, Norm: norm}, nil
}

// Total returns the sum of the group values.
func (f *Fluxes) Total() float64 {
	var s float64
	for _, v := range f.Values {
		s += v
	}
	return s
}

// Is709 reports whether f uses the standard 709-group structure and so can
// be written without energy bins.
func (f *Fluxes) Is709() bool {
	return len(f.Values) == Groups709 && slices.Equal(f.EnergyBins, Bins709())
}

// Equal reports whether a and b have identical data, comment and norm.
func Equal(a, b *Fluxes) bool {
	return EqualData(a, b) && a.Comment == b.Comment && a.Norm == b.Norm
}

// EqualData compares bins and values exactly, ignoring comment and norm.
func EqualData(a, b *Fluxes) bool {
	return slices.Equal(a.EnergyBins, b.EnergyBins) && slices.Equal(a.Values, b.Values)
}

// Close compares bins and values with the tolerance |x-y| <= atol + rtol*|y|,
// ignoring comment and norm.
func Close(a, b *Fluxes, rtol, atol float64) bool {
	return allClose(a.EnergyBins, b.EnergyBins, rtol, atol) && allClose(a.Values, b.Values, rtol, atol)
}

// DefaultRTol and DefaultATol are the usual tolerances for Close.
const (
	DefaultRTol = 1e-5
	DefaultATol = 1e-8
)

func allClose(x, y []float64, rtol, atol float64) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if math.Abs(x[i]-y[i]) > atol+rtol*math.Abs(y[i]) {
			return false
		}
	}
	return true
}

func reversed(s []float64) []float64 {
	r := slices.Clone(s)
	slices.Reverse(r)
	return r
}
