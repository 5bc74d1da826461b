// Package ions enumerates theoretical fragment-ion candidates for peptide
// backbone cleavages: ion series a/b/c (N-terminal) and x/y/z (C-terminal),
// optionally with neutral-loss variants, over a range of charge states.
package ions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jkoedam/seqcover/internal/mass"
)

// Type is a fragment ion series. Offset is added to the summed residue
// composition of the terminal fragment to obtain the neutral ion composition.
type Type struct {
	Name   string
	Prefix bool // true for N-terminal series (a, b, c)
	Offset mass.Composition
}

// The classic six backbone fragment series. Offsets are relative to the
// plain residue composition sum (no water terminus).
var seriesTable = map[string]Type{
	"a": {Name: "a", Prefix: true, Offset: mass.Composition{C: -1, O: -1}},
	"b": {Name: "b", Prefix: true, Offset: mass.Composition{}},
	"c": {Name: "c", Prefix: true, Offset: mass.Composition{N: 1, H: 3}},
	"x": {Name: "x", Prefix: false, Offset: mass.Composition{C: 1, O: 2}},
	"y": {Name: "y", Prefix: false, Offset: mass.Composition{H: 2, O: 1}},
	"z": {Name: "z", Prefix: false, Offset: mass.Composition{H: -1, O: 1, N: -1}},
}

// Loss is a neutral loss applied to a concrete ion.
type Loss struct {
	Name  string
	Delta mass.Composition
}

// Neutral losses commonly observed on backbone fragments.
var (
	LossNone    = Loss{Name: ""}
	LossWater   = Loss{Name: "-H2O", Delta: mass.Composition{H: -2, O: -1}}
	LossAmmonia = Loss{Name: "-NH3", Delta: mass.Composition{N: -1, H: -3}}
)

// Ion is a concrete theoretical fragment ion.
type Ion struct {
	Name   string // e.g. "b2", "y3-H2O"
	Mz     float64
	Charge int
}

// Candidate is one (series, charge) combination to test at a cleavage site.
// Ions expands it into concrete ions, one per configured neutral loss.
type Candidate interface {
	Charge() int
	Prefix() bool
	Ions(frag mass.Composition, index int) []Ion
}

type seriesCandidate struct {
	typ    Type
	charge int
	losses []Loss
}

func (c seriesCandidate) Charge() int  { return c.charge }
func (c seriesCandidate) Prefix() bool { return c.typ.Prefix }

func (c seriesCandidate) Ions(frag mass.Composition, index int) []Ion {
	out := make([]Ion, 0, len(c.losses))
	base := frag.Add(c.typ.Offset)
	for _, loss := range c.losses {
		comp := base.Add(loss.Delta)
		out = append(out, Ion{
			Name:   fmt.Sprintf("%s%d%s", c.typ.Name, index, loss.Name),
			Mz:     comp.Mz(c.charge),
			Charge: c.charge,
		})
	}
	return out
}

// Scheme is a fixed set of candidates, built once per run.
type Scheme struct {
	candidates []Candidate
}

// NewScheme builds a candidate set from series names (e.g. "b,y"), fragment
// charges 1..maxCharge and an optional list of neutral losses. The no-loss
// variant is always generated first, so unfragmented ions are tested before
// their loss variants.
func NewScheme(series []string, maxCharge int, losses []Loss) (*Scheme, error) {
	if maxCharge < 1 {
		return nil, fmt.Errorf("max fragment charge must be >= 1, got %d", maxCharge)
	}
	names := make([]string, 0, len(series))
	for _, s := range series {
		name := strings.TrimSpace(strings.ToLower(s))
		if name == "" {
			continue
		}
		if _, ok := seriesTable[name]; !ok {
			return nil, fmt.Errorf("unknown ion series %q", s)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no ion series selected")
	}
	sort.Strings(names)

	all := append([]Loss{LossNone}, losses...)
	sch := &Scheme{}
	for _, name := range names {
		typ := seriesTable[name]
		for charge := 1; charge <= maxCharge; charge++ {
			sch.candidates = append(sch.candidates, seriesCandidate{
				typ:    typ,
				charge: charge,
				losses: all,
			})
		}
	}
	return sch, nil
}

// Candidates returns all ion candidates of the scheme, in a fixed order.
func (s *Scheme) Candidates() []Candidate {
	return s.candidates
}
