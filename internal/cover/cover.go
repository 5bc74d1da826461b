// Package cover computes sequence coverage for peptide-spectrum matches:
// the percentage of backbone cleavage sites of an identified peptide whose
// predicted fragment ions are observed in the corresponding MS2 spectrum.
package cover

import (
	"github.com/jkoedam/seqcover/internal/ions"
	"github.com/jkoedam/seqcover/internal/mass"
	"github.com/jkoedam/seqcover/internal/mzml"
)

// scoreThreshold is the minimum correlation score for counting a fragment
// ion as observed.
const scoreThreshold = 0.7

// PeakScorer computes a match score in [0, 1] between a theoretical ion and
// the observed peaks of one spectrum. Peaks are sorted ascending by m/z.
type PeakScorer interface {
	Score(peaks []mzml.Peak, ion ions.Ion) float64
}

// CandidateProvider yields the ion type/charge combinations to test.
type CandidateProvider interface {
	Candidates() []ions.Candidate
}

// Coverage returns the sequence coverage percentage in [0, 100] for one
// (spectrum, sequence, charge) triple. A cleavage site counts as found as
// soon as one candidate ion correlates with the peaks above the acceptance
// threshold; remaining candidates for that site are skipped.
//
// Sequences with fewer than two residues have no internal cleavage site and
// get a coverage of 0.
func Coverage(peaks []mzml.Peak, seq mass.Sequence, charge int, cands []ions.Candidate, scorer PeakScorer) float64 {
	n := len(seq)
	if n < 2 {
		return 0
	}

	// Suffix composition sums, so each site is O(1) to assemble
	suffix := make([]mass.Composition, n+1)
	for i := n - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1].Add(seq[i].Comp)
	}

	found := 0
	var nTerm mass.Composition
	for clv := 1; clv < n; clv++ {
		nTerm = nTerm.Add(seq[clv-1].Comp)
		cTerm := suffix[clv]

		if siteFound(peaks, nTerm, cTerm, clv, n, charge, cands, scorer) {
			found++
		}
	}
	return 100 * float64(found) / float64(n-1)
}

// siteFound tests all candidate ions for one cleavage site, first match wins.
// An ion cannot carry more charge than its precursor, so candidates at or
// above the identified charge state are skipped.
func siteFound(peaks []mzml.Peak, nTerm, cTerm mass.Composition, clv, n, charge int,
	cands []ions.Candidate, scorer PeakScorer) bool {
	for _, cand := range cands {
		if cand.Charge() >= charge {
			continue
		}
		frag, index := cTerm, n-clv
		if cand.Prefix() {
			frag, index = nTerm, clv
		}
		for _, ion := range cand.Ions(frag, index) {
			if scorer.Score(peaks, ion) > scoreThreshold {
				return true
			}
		}
	}
	return false
}
