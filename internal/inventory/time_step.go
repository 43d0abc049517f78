package inventory

import "fmt"

// Dose rate source geometries reported by FISPACT.
const (
	PointSource = "Point source"
	PlaneSource = "Plane source"
)

// defaultDoseRateMass is the mass (kg) of a point source. FISPACT reports 0
// at the first step and sometimes less at later steps, though the manual
// specifies 1 gram.
const defaultDoseRateMass = 1.0e-3

// DoseRate is the dose rate block of a time step.
type DoseRate struct {
	Type     string
	Distance float64 // m, point source only
	Mass     float64 // kg
	Dose     float64 // Sv/h
}

// NewDoseRate builds a DoseRate, replacing a zero mass with 1 g.
func NewDoseRate(typ string, distance, mass, dose float64) DoseRate {
	if mass == 0 {
		mass = defaultDoseRateMass
	}
	return DoseRate{Type: typ, Distance: distance, Mass: mass, Dose: dose}
}

// GammaSpectrum is the gamma emission histogram of a time step.
// Boundaries are bin edges in MeV, Intensities are bin rates in MeV/s.
type GammaSpectrum struct {
	Boundaries  []float64
	Intensities []float64
}

// NewGammaSpectrum validates that there is one more boundary than intensities.
func NewGammaSpectrum(boundaries, intensities []float64) (*GammaSpectrum, error) {
	if len(intensities)+1 != len(boundaries) {
		return nil, fmt.Errorf("gamma spectrum: %d boundaries for %d values: %w",
			len(boundaries), len(intensities), ErrGammaSpectrumSize)
	}
	return &GammaSpectrum{Boundaries: boundaries, Intensities: intensities}, nil
}

// Len returns the number of energy groups.
func (g *GammaSpectrum) Len() int {
	return len(g.Intensities)
}

// TimeStep is one irradiation or cooling step of an inventory.
//
// Number, Duration and ElapsedTime are assigned when the inventory is
// reconstructed; the other fields come from FISPACT output.
type TimeStep struct {
	Number          int
	IrradiationTime float64
	CoolingTime     float64
	Duration        float64
	ElapsedTime     float64
	Flux            float64
	TotalAtoms      float64
	TotalActivity   float64
	AlphaActivity   float64
	BetaActivity    float64
	GammaActivity   float64
	TotalMass       float64 // kg
	TotalHeat       float64
	AlphaHeat       float64
	BetaHeat        float64
	GammaHeat       float64
	IngestionDose   float64
	InhalationDose  float64
	DoseRate        DoseRate
	Nuclides        []Nuclide
	GammaSpectrum   *GammaSpectrum
}

// IsCooling reports whether the step has no irradiation flux.
func (ts *TimeStep) IsCooling() bool {
	return ts.Flux == 0
}

// NuclidesMass is a synonym for TotalMass, kg.
func (ts *TimeStep) NuclidesMass() float64 {
	return ts.TotalMass
}

// DeriveTotals returns ts with the totals FISPACT v4 omits computed from
// the nuclides. A total is replaced only when it is exactly zero.
func DeriveTotals(ts TimeStep) TimeStep {
	if ts.TotalMass == 0 {
		ts.TotalMass = 1e-3 * sumNuclides(ts.Nuclides, func(n *Nuclide) float64 { return n.Grams })
	}
	if ts.TotalAtoms == 0 {
		ts.TotalAtoms = sumNuclides(ts.Nuclides, func(n *Nuclide) float64 { return n.Atoms })
	}
	if ts.TotalActivity == 0 {
		ts.TotalActivity = sumNuclides(ts.Nuclides, func(n *Nuclide) float64 { return n.Activity })
	}
	if ts.AlphaActivity == 0 {
		ts.AlphaActivity = sumNuclides(ts.Nuclides, func(n *Nuclide) float64 { return n.AlphaActivity })
	}
	if ts.BetaActivity == 0 {
		ts.BetaActivity = sumNuclides(ts.Nuclides, func(n *Nuclide) float64 { return n.BetaActivity })
	}
	if ts.GammaActivity == 0 {
		ts.GammaActivity = sumNuclides(ts.Nuclides, func(n *Nuclide) float64 { return n.GammaActivity })
	}
	return ts
}

func sumNuclides(nuclides []Nuclide, value func(*Nuclide) float64) float64 {
	var s float64
	for i := range nuclides {
		s += value(&nuclides[i])
	}
	return s
}
