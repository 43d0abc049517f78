package fluxes

import "math"

// Groups709 is the number of groups in the FISPACT standard flux structure.
const Groups709 = 709

// lastTwoDecades holds the tabulated 709-group edges above 1e7 eV, ascending.
var lastTwoDecades = [...]float64{
	1.02e7, 1.04e7, 1.06e7, 1.08e7, 1.10e7, 1.12e7, 1.14e7, 1.16e7, 1.18e7, 1.20e7,
	1.22e7, 1.24e7, 1.26e7, 1.28e7, 1.30e7, 1.32e7, 1.34e7, 1.36e7, 1.38e7, 1.40e7,
	1.42e7, 1.44e7, 1.46e7, 1.48e7, 1.50e7, 1.52e7, 1.54e7, 1.56e7, 1.58e7, 1.60e7,
	1.62e7, 1.64e7, 1.66e7, 1.68e7, 1.70e7, 1.72e7, 1.74e7, 1.76e7, 1.78e7, 1.80e7,
	1.82e7, 1.84e7, 1.86e7, 1.88e7, 1.90e7, 1.92e7, 1.94e7, 1.96e7, 1.98e7, 2.00e7,
	2.1e7, 2.2e7, 2.3e7, 2.4e7, 2.5e7, 2.6e7, 2.7e7, 2.8e7, 2.9e7, 3.0e7,
	3.2e7, 3.4e7, 3.6e7, 3.8e7, 4.0e7,
	4.2e7, 4.4e7, 4.6e7, 4.8e7, 5.0e7,
	5.2e7, 5.4e7, 5.6e7, 5.8e7, 6.0e7,
	6.5e7, 7.0e7, 7.5e7, 8.0e7, 9.0e7, 1.0e8,
	1.1e8, 1.2e8, 1.3e8, 1.4e8, 1.5e8, 1.6e8, 1.8e8, 2.0e8,
	2.4e8, 2.8e8, 3.2e8, 3.6e8, 4.0e8, 4.4e8, 4.8e8, 5.2e8, 5.6e8, 6.0e8,
	6.4e8, 6.8e8, 7.2e8, 7.6e8, 8.0e8, 8.4e8, 8.8e8, 9.2e8, 9.6e8, 1.0e9,
}

// Bins709 returns the 710 energy edges (eV, ascending) of the 709-group
// structure. Decades from 1e-5 to 1e7 are split into 50 log-equidistant bins;
// the edges above 1e7 are tabulated.
func Bins709() []float64 {
	const perDecade = 50
	bins := make([]float64, 0, Groups709+1)
	bins = append(bins, 1e-5)
	for decade := -5; decade < 7; decade++ {
		scale := math.Pow10(decade)
		for i := 1; i <= perDecade; i++ {
			bins = append(bins, math.Pow(10, float64(i)/perDecade)*scale)
		}
	}
	return append(bins, lastTwoDecades[:]...)
}
