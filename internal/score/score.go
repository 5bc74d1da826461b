// Package score correlates theoretical fragment ions with observed peaks.
// The score is the cosine similarity between a predicted isotope envelope
// and the most intense observed peak in each isotope window, in [0, 1].
package score

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/jkoedam/seqcover/internal/ions"
	"github.com/jkoedam/seqcover/internal/mass"
	"github.com/jkoedam/seqcover/internal/mzml"
)

// envelopeSize is the number of isotope peaks modeled per ion. Three is
// enough to separate a real fragment from a lone noise peak while keeping
// single-peak matches of small fragments above the acceptance threshold.
const envelopeSize = 3

// averagineLambda approximates the expected number of heavy-isotope atoms
// per Dalton of peptide mass (dominated by 1.1% C13 at ~4.4% carbon mass
// fraction of averagine).
const averagineLambda = 5.5e-4

// Correlator scores ions against a peak list at a fixed tolerance.
// Peaks must be sorted ascending by m/z.
type Correlator struct {
	Tol mass.Tolerance
}

// Score returns the envelope correlation of ion against the observed peaks.
// It is 0 when the monoisotopic peak is absent within tolerance.
func (c Correlator) Score(peaks []mzml.Peak, ion ions.Ion) float64 {
	if len(peaks) == 0 {
		return 0
	}
	monoMass := (ion.Mz - mass.MassProton) * float64(ion.Charge)
	theo := envelope(monoMass)

	obs := make([]float64, envelopeSize)
	for k := 0; k < envelopeSize; k++ {
		mz := ion.Mz + float64(k)*mass.MassIsotopeSpacing/float64(ion.Charge)
		lo, hi := c.Tol.Window(mz)
		obs[k] = maxIntensityInWindow(peaks, lo, hi)
	}
	if obs[0] == 0 {
		return 0
	}
	return cosine(theo, obs)
}

// envelope returns the relative isotope intensities for a fragment of the
// given neutral mass, using a Poisson approximation of the averagine model.
func envelope(neutralMass float64) []float64 {
	lambda := neutralMass * averagineLambda
	env := make([]float64, envelopeSize)
	p := math.Exp(-lambda)
	for k := 0; k < envelopeSize; k++ {
		env[k] = p
		p *= lambda / float64(k+1)
	}
	return env
}

func cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// maxIntensityInWindow returns the highest intensity among peaks with m/z in
// [lo, hi]. Peaks must be ordered by m/z prior to calling this function.
func maxIntensityInWindow(peaks []mzml.Peak, lo, hi float64) float64 {
	i1 := sort.Search(len(peaks), func(i int) bool { return peaks[i].Mz >= lo })
	i2 := sort.Search(len(peaks), func(i int) bool { return peaks[i].Mz > hi })

	best := 0.0
	for i := i1; i < i2; i++ {
		if peaks[i].Intens > best {
			best = peaks[i].Intens
		}
	}
	return best
}
