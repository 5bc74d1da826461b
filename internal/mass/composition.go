// Package mass provides elemental composition arithmetic, peptide sequences
// and mass tolerance handling for fragment matching.
package mass

// Monoisotopic atomic masses
const (
	MassH = 1.0078250321
	MassC = 12.0000000000
	MassN = 14.0030740052
	MassO = 15.9949146221
	MassS = 31.9720706900

	// MassProton is used for m/z calculations of charged ions
	MassProton = 1.00727646688

	// MassIsotopeSpacing is the C13-C12 mass difference, the spacing
	// between peaks of an isotope envelope (for charge 1)
	MassIsotopeSpacing = 1.0033548378
)

// Composition is an elemental composition. Extra carries mass that has no
// known formula, such as modification delta masses from an mzIdentML file.
type Composition struct {
	C, H, N, O, S int
	Extra         float64
}

// Water is the H2O terminus composition of an intact peptide.
var Water = Composition{H: 2, O: 1}

// Add returns the sum of two compositions.
func (c Composition) Add(o Composition) Composition {
	return Composition{
		C:     c.C + o.C,
		H:     c.H + o.H,
		N:     c.N + o.N,
		O:     c.O + o.O,
		S:     c.S + o.S,
		Extra: c.Extra + o.Extra,
	}
}

// Mass returns the monoisotopic mass of the composition.
func (c Composition) Mass() float64 {
	return float64(c.C)*MassC +
		float64(c.H)*MassH +
		float64(c.N)*MassN +
		float64(c.O)*MassO +
		float64(c.S)*MassS +
		c.Extra
}

// Mz returns the m/z of the composition carrying the given number of protons.
func (c Composition) Mz(charge int) float64 {
	z := float64(charge)
	return (c.Mass() + z*MassProton) / z
}

// residueComps maps amino acid one-letter codes to residue compositions
// (the amino acid minus water). Pyrrolysine and selenocysteine are absent;
// selenium is not part of the composition model.
var residueComps = map[byte]Composition{
	'A': {C: 3, H: 5, N: 1, O: 1},
	'R': {C: 6, H: 12, N: 4, O: 1},
	'N': {C: 4, H: 6, N: 2, O: 2},
	'D': {C: 4, H: 5, N: 1, O: 3},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'E': {C: 5, H: 7, N: 1, O: 3},
	'Q': {C: 5, H: 8, N: 2, O: 2},
	'G': {C: 2, H: 3, N: 1, O: 1},
	'H': {C: 6, H: 7, N: 3, O: 1},
	'I': {C: 6, H: 11, N: 1, O: 1},
	'L': {C: 6, H: 11, N: 1, O: 1},
	'K': {C: 6, H: 12, N: 2, O: 1},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1},
	'P': {C: 5, H: 7, N: 1, O: 1},
	'S': {C: 3, H: 5, N: 1, O: 2},
	'T': {C: 4, H: 7, N: 1, O: 2},
	'W': {C: 11, H: 10, N: 2, O: 1},
	'Y': {C: 9, H: 9, N: 1, O: 2},
	'V': {C: 5, H: 9, N: 1, O: 1},
}
