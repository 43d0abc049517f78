package inventory

import (
	"fmt"

	"github.com/dvp2015/xpypact/internal/elements"
)

// ZAIPolicy selects how an explicit ZAI that disagrees with the one computed
// from element, mass number and state is handled.
type ZAIPolicy int

const (
	// ZAIStrict rejects a nuclide whose explicit ZAI differs from the computed one.
	ZAIStrict ZAIPolicy = iota
	// ZAITrustInput keeps the explicit ZAI as written by FISPACT.
	ZAITrustInput
)

// ComputeZAI returns Z*10000 + A*10 + isomer flag.
func ComputeZAI(z, a int, state string) uint32 {
	zai := uint32(z)*10000 + uint32(a)*10
	if state != "" {
		zai++
	}
	return zai
}

// Nuclide holds the identity and per time step quantities of one nuclide.
// ZAI is introduced in FISPACT-II v5; for older output it is derived.
type Nuclide struct {
	Element       string
	Isotope       int
	State         string
	ZAI           uint32
	HalfLife      float64
	Atoms         float64
	Grams         float64
	Activity      float64
	AlphaActivity float64
	BetaActivity  float64
	GammaActivity float64
	Heat          float64
	AlphaHeat     float64
	BetaHeat      float64
	GammaHeat     float64
	Dose          float64
	Ingestion     float64
	Inhalation    float64
}

// A is a synonym for the mass number.
func (n Nuclide) A() int {
	return n.Isotope
}

// Z returns the atomic number, taken from the ZAI when it is set.
func (n Nuclide) Z() (int, error) {
	if n.ZAI != 0 {
		return int(n.ZAI / 10000), nil
	}
	return elements.Z(n.Element)
}

// Derive returns a copy of n with ZAI and atoms filled in. ZAI is computed
// when absent; atoms are computed from grams when atoms is zero and grams is
// positive. An explicit ZAI inconsistent with element, isotope and state is
// an error under ZAIStrict. The mass number must be positive.
func (n Nuclide) Derive(policy ZAIPolicy) (Nuclide, error) {
	if n.Isotope < 1 {
		return Nuclide{}, fmt.Errorf("nuclide %s-%d%s: %w", n.Element, n.Isotope, n.State, ErrInvalidIsotope)
	}
	var z int
	switch {
	case n.ZAI != 0 && policy == ZAITrustInput:
		z = int(n.ZAI / 10000)
	default:
		var err error
		z, err = elements.Z(n.Element)
		if err != nil {
			return Nuclide{}, fmt.Errorf("nuclide %s-%d%s: %w", n.Element, n.Isotope, n.State, err)
		}
		computed := ComputeZAI(z, n.Isotope, n.State)
		if n.ZAI == 0 {
			n.ZAI = computed
		} else if n.ZAI != computed {
			return Nuclide{}, fmt.Errorf("nuclide %s-%d%s: zai %d, computed %d: %w",
				n.Element, n.Isotope, n.State, n.ZAI, computed, ErrZAIMismatch)
		}
	}
	if n.Atoms == 0 && n.Grams > 0 {
		n.Atoms = elements.Avogadro * n.Grams / elements.NuclideMass(z, n.Isotope)
	}
	return n, nil
}

// Info returns the identity projection of the nuclide.
func (n Nuclide) Info() NuclideInfo {
	return NuclideInfo{
		Element:  n.Element,
		Isotope:  n.Isotope,
		State:    n.State,
		ZAI:      n.ZAI,
		HalfLife: n.HalfLife,
	}
}

// NuclideInfo identifies a nuclide in a nuclide dictionary. Two values with
// the same ZAI denote the same dictionary entry.
type NuclideInfo struct {
	Element  string
	Isotope  int
	State    string
	ZAI      uint32
	HalfLife float64
}

// Same reports whether a and b denote the same nuclide.
func (a NuclideInfo) Same(b NuclideInfo) bool {
	return a.ZAI == b.ZAI
}

// Less orders nuclides by ZAI.
func (a NuclideInfo) Less(b NuclideInfo) bool {
	return a.ZAI < b.ZAI
}

// IsIsomer reports whether the nuclide is in a metastable state.
func (a NuclideInfo) IsIsomer() bool {
	return a.State != ""
}
