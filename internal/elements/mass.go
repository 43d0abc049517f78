package elements

import "math"

// Constants of the semi-empirical mass formula, MeV.
const (
	volumeTerm    = 15.75
	surfaceTerm   = 17.8
	coulombTerm   = 0.711
	asymmetryTerm = 23.7
	pairingTerm   = 11.18

	hydrogenMass = 1.00782503223 // u
	neutronMass  = 1.00866491595 // u
	mevPerU      = 931.49410242
)

// isotopeMasses holds measured relative atomic masses (u) keyed by
// Z*1000 + A. Nuclides outside the table fall back to the mass formula.
var isotopeMasses = map[int]float64{
	1001:  1.00782503223,
	1002:  2.01410177812,
	1003:  3.0160492779,
	2003:  3.0160293201,
	2004:  4.00260325413,
	3006:  6.0151228874,
	3007:  7.0160034366,
	4009:  9.012183065,
	5010:  10.01293695,
	5011:  11.00930536,
	6012:  12.0,
	6013:  13.00335483507,
	6014:  14.0032419884,
	7014:  14.00307400443,
	7015:  15.00010889888,
	8016:  15.99491461957,
	8017:  16.99913175650,
	8018:  17.99915961286,
	11023: 22.9897692820,
	12024: 23.985041697,
	13027: 26.98153853,
	14028: 27.97692653465,
	24052: 51.94050623,
	25055: 54.93804391,
	26054: 53.93960899,
	26056: 55.93493633,
	26057: 56.93539284,
	26058: 57.93327443,
	27059: 58.93319429,
	27060: 59.93381630,
	28058: 57.93534241,
	28060: 59.93078588,
	29063: 62.92959772,
	29065: 64.92778970,
	40090: 89.9046977,
	41093: 92.9063730,
	42098: 97.90540482,
	47107: 106.9050916,
	47108: 107.9059502,
	47109: 108.9047553,
	47110: 109.9061110,
	74184: 183.95093092,
	82208: 207.9766525,
	83209: 208.9803991,
	92235: 235.0439301,
	92238: 238.0507884,
}

// NuclideMass returns the relative atomic mass (g/mol) of the nuclide with
// atomic number z and mass number a. Measured values are used when known;
// otherwise the binding energy is estimated with the liquid drop model.
func NuclideMass(z, a int) float64 {
	if m, ok := isotopeMasses[z*1000+a]; ok {
		return m
	}
	if a <= 0 {
		return 0
	}
	m := float64(z)*hydrogenMass + float64(a-z)*neutronMass - bindingEnergy(z, a)/mevPerU
	if m <= 0 {
		return float64(a)
	}
	return m
}

// bindingEnergy estimates the nuclear binding energy (MeV) with the
// Bethe-Weizsäcker formula.
func bindingEnergy(z, a int) float64 {
	if a < 2 {
		return 0
	}
	fa := float64(a)
	fz := float64(z)
	b := volumeTerm*fa -
		surfaceTerm*math.Cbrt(fa*fa) -
		coulombTerm*fz*(fz-1)/math.Cbrt(fa) -
		asymmetryTerm*(fa-2*fz)*(fa-2*fz)/fa
	n := a - z
	switch {
	case z%2 == 0 && n%2 == 0:
		b += pairingTerm / math.Sqrt(fa)
	case z%2 == 1 && n%2 == 1:
		b -= pairingTerm / math.Sqrt(fa)
	}
	return b
}
