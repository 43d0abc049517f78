// Package elements is the chemical reference table used by the inventory
// model: element symbols, atomic numbers, standard atomic weights, and
// relative atomic masses of individual nuclides.
package elements

import (
	"errors"
	"fmt"
	"strings"
)

// Avogadro is the Avogadro constant, 1/mol (exact, SI 2019).
const Avogadro = 6.02214076e23

// ErrUnknownElement is returned when a chemical symbol or atomic number is
// not present in the periodic table.
var ErrUnknownElement = errors.New("unknown element")

// symbols lists canonical chemical symbols indexed by Z. Index 0 is unused.
var symbols = [...]string{
	"",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// weights lists standard atomic weights (g/mol) indexed by Z. Elements
// without stable isotopes carry the mass number of the longest-lived one.
var weights = [...]float64{
	0,
	1.008, 4.002602, 6.94, 9.0121831, 10.81, 12.011, 14.007, 15.999, 18.998403163, 20.1797,
	22.98976928, 24.305, 26.9815385, 28.085, 30.973761998, 32.06, 35.45, 39.948, 39.0983, 40.078,
	44.955908, 47.867, 50.9415, 51.9961, 54.938044, 55.845, 58.933194, 58.6934, 63.546, 65.38,
	69.723, 72.630, 74.921595, 78.971, 79.904, 83.798, 85.4678, 87.62, 88.90584, 91.224,
	92.90637, 95.95, 98, 101.07, 102.90550, 106.42, 107.8682, 112.414, 114.818, 118.710,
	121.760, 127.60, 126.90447, 131.293, 132.90545196, 137.327, 138.90547, 140.116, 140.90766, 144.242,
	145, 150.36, 151.964, 157.25, 158.92535, 162.500, 164.93033, 167.259, 168.93422, 173.045,
	174.9668, 178.49, 180.94788, 183.84, 186.207, 190.23, 192.217, 195.084, 196.966569, 200.592,
	204.38, 207.2, 208.98040, 209, 210, 222, 223, 226, 227, 232.0377,
	231.03588, 238.02891, 237, 244, 243, 247, 247, 251, 252, 257,
	258, 259, 262, 267, 270, 269, 270, 270, 278, 281,
	281, 285, 286, 289, 289, 293, 293, 294,
}

// MaxZ is the largest atomic number known to the table.
const MaxZ = len(symbols) - 1

// Z returns the atomic number of the element with the given chemical symbol.
// Symbols are matched case-insensitively: FISPACT-II writes "Ag" while older
// versions write "AG".
func Z(symbol string) (int, error) {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return 0, fmt.Errorf("elements: empty symbol: %w", ErrUnknownElement)
	}
	canonical := strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	for z := 1; z <= MaxZ; z++ {
		if symbols[z] == canonical {
			return z, nil
		}
	}
	return 0, fmt.Errorf("elements: symbol %q: %w", symbol, ErrUnknownElement)
}

// Symbol returns the canonical chemical symbol for atomic number z.
func Symbol(z int) (string, error) {
	if z < 1 || z > MaxZ {
		return "", fmt.Errorf("elements: atomic number %d: %w", z, ErrUnknownElement)
	}
	return symbols[z], nil
}

// AtomicWeight returns the standard atomic weight of element z in g/mol.
func AtomicWeight(z int) (float64, error) {
	if z < 1 || z > MaxZ {
		return 0, fmt.Errorf("elements: atomic number %d: %w", z, ErrUnknownElement)
	}
	return weights[z], nil
}
