package mass

import "fmt"

// Modification is a mass delta attached to one residue of a peptide.
// Location follows the mzIdentML convention: 1-based residue position,
// 0 for the N-terminus and len(sequence)+1 for the C-terminus.
type Modification struct {
	MassDelta float64
	Location  int
}

// Residue is one position of a parsed peptide sequence. Comp includes the
// modification delta (as Extra mass) when the residue is modified.
type Residue struct {
	Code byte
	Comp Composition
}

// Sequence is a parsed peptide, N- to C-terminal. Immutable once parsed.
type Sequence []Residue

// ParseSequence converts a one-letter peptide string and its modifications
// into a Sequence. Terminal modifications are folded into the first and last
// residue, which is where their mass ends up in any terminal fragment.
func ParseSequence(pepSeq string, mods []Modification) (Sequence, error) {
	if len(pepSeq) == 0 {
		return nil, fmt.Errorf("empty peptide sequence")
	}
	seq := make(Sequence, len(pepSeq))
	for i := 0; i < len(pepSeq); i++ {
		comp, ok := residueComps[pepSeq[i]]
		if !ok {
			return nil, fmt.Errorf("invalid amino acid %q in %s", pepSeq[i], pepSeq)
		}
		seq[i] = Residue{Code: pepSeq[i], Comp: comp}
	}
	for _, mod := range mods {
		i := mod.Location - 1
		if i < 0 { // N-terminal
			i = 0
		}
		if i >= len(seq) { // C-terminal
			i = len(seq) - 1
		}
		seq[i].Comp.Extra += mod.MassDelta
	}
	return seq, nil
}

// Composition returns the summed residue composition of seq[i:j).
// It does not include the water terminus of an intact peptide.
func (s Sequence) Composition(i, j int) Composition {
	var c Composition
	for ; i < j; i++ {
		c = c.Add(s[i].Comp)
	}
	return c
}

// Mass returns the neutral monoisotopic mass of the intact peptide.
func (s Sequence) Mass() float64 {
	return s.Composition(0, len(s)).Add(Water).Mass()
}

// String returns the one-letter sequence without modification info.
func (s Sequence) String() string {
	b := make([]byte, len(s))
	for i, r := range s {
		b[i] = r.Code
	}
	return string(b)
}
