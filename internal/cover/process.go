package cover

import (
	"context"
	"log"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jkoedam/seqcover/internal/ions"
	"github.com/jkoedam/seqcover/internal/mass"
	"github.com/jkoedam/seqcover/internal/mzidentml"
	"github.com/jkoedam/seqcover/internal/mzml"
)

// SpectrumSource is a streaming raw spectral source. The stream supports a
// single forward pass; Err reports the first error encountered while
// streaming and must be checked after the channel is drained.
type SpectrumSource interface {
	Name() string
	NumSpectra() int
	Spectra(ctx context.Context) <-chan mzml.Spectrum
	Err() error
}

// IdentificationSource provides the identifications of one search run.
type IdentificationSource interface {
	Read(ctx context.Context) (mzidentml.Result, error)
}

// ProgressFunc receives coarse progress updates. Calls are serialized even
// though the work is parallel; percentages are strictly increasing.
type ProgressFunc func(percent float64, message string)

// Config carries the run-wide, immutable collaborators of a matching run.
type Config struct {
	Provider CandidateProvider
	Scorer   PeakScorer
	Workers  int          // worker goroutines; <1 means GOMAXPROCS
	Progress ProgressFunc // optional
}

// ProcessedMatch is one scored peptide-spectrum match.
type ProcessedMatch struct {
	ScanNumber       int
	Sequence         string
	Charge           int
	FragMethod       string
	PrecursorMz      float64
	DeNovoScore      int
	SpecEValue       float64
	EValue           float64
	QValue           float64
	PepQValue        float64
	IsotopeError     int
	SequenceCoverage float64 // whole percentage in [0, 100]
}

// ResultSet is the ordered output of a matching run, ascending by
// SpecEValue (lower is more confident), ties broken by scan number and
// charge so that output is reproducible across runs.
type ResultSet []ProcessedMatch

// FilterQValue returns the matches with QValue at or below max.
// Order is preserved.
func (rs ResultSet) FilterQValue(max float64) ResultSet {
	out := make(ResultSet, 0, len(rs))
	for _, m := range rs {
		if m.QValue <= max {
			out = append(out, m)
		}
	}
	return out
}

// Process pairs identifications to spectra by scan number and computes
// sequence coverage for every match, in parallel across spectra.
//
// A cancelled context yields an empty ResultSet and a nil error: partial
// results are worse than none, and the caller can tell cancellation from a
// genuinely empty run by checking ctx.Err(). Reader errors are propagated
// unmodified; a ConsistencyError is returned before any spectrum is read
// when the two sources name different runs.
func Process(ctx context.Context, raw SpectrumSource, idents IdentificationSource, cfg Config) (ResultSet, error) {
	cfg.emit(10, "Loading identifications...")

	identData, err := idents.Read(ctx)
	if ctx.Err() != nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := checkConsistency(raw.Name(), identData.SpectraFile); err != nil {
		return nil, err
	}

	index := make(map[int][]mzidentml.Identification, len(identData.Idents))
	for _, id := range identData.Idents {
		if id.ScanNumber < 0 {
			log.Printf("identification for %s has no scan number, skipping", id.PepSeq)
			continue
		}
		index[id.ScanNumber] = append(index[id.ScanNumber], id)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	cands := cfg.Provider.Candidates()

	prog := &progressCounter{total: raw.NumSpectra(), last: 10, emit: cfg.emit}
	jobs := make(chan mzml.Spectrum, workers*2)
	results := make(chan []ProcessedMatch, workers*2)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case spec, ok := <-jobs:
					if !ok {
						return
					}
					matches := matchSpectrum(spec, index[spec.ScanNumber], cands, cfg.Scorer)
					prog.tick()
					if len(matches) == 0 {
						continue
					}
					select {
					case results <- matches:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	var all ResultSet
	var cwg sync.WaitGroup
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for ms := range results {
			all = append(all, ms...)
		}
	}()

feed:
	for spec := range raw.Spectra(ctx) {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- spec:
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if ctx.Err() != nil {
		return nil, nil
	}
	if err := raw.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].SpecEValue != all[j].SpecEValue {
			return all[i].SpecEValue < all[j].SpecEValue
		}
		if all[i].ScanNumber != all[j].ScanNumber {
			return all[i].ScanNumber < all[j].ScanNumber
		}
		return all[i].Charge < all[j].Charge
	})
	cfg.emit(100, "Done")
	return all, nil
}

// matchSpectrum scores every identification of one spectrum. Non-product
// spectra and scans without identifications contribute nothing. A single
// malformed identification is skipped with a warning rather than aborting
// the tens of thousands of other matches in the run.
func matchSpectrum(spec mzml.Spectrum, idents []mzidentml.Identification,
	cands []ions.Candidate, scorer PeakScorer) []ProcessedMatch {
	if !spec.IsProduct() || len(idents) == 0 {
		return nil
	}
	peaks := sortedPeaks(spec.Peaks)

	out := make([]ProcessedMatch, 0, len(idents))
	for _, id := range idents {
		seq, err := mass.ParseSequence(id.PepSeq, convertMods(id.Mods))
		if err != nil {
			log.Printf("scan %d: skipping identification: %v", spec.ScanNumber, err)
			continue
		}
		cov := Coverage(peaks, seq, id.Charge, cands, scorer)
		out = append(out, ProcessedMatch{
			ScanNumber:       spec.ScanNumber,
			Sequence:         id.PepSeq,
			Charge:           id.Charge,
			FragMethod:       spec.Activation,
			PrecursorMz:      id.PrecursorMz,
			DeNovoScore:      id.DeNovoScore,
			SpecEValue:       id.SpecEValue,
			EValue:           id.EValue,
			QValue:           id.QValue,
			PepQValue:        id.PepQValue,
			IsotopeError:     id.IsotopeErr,
			SequenceCoverage: math.Round(cov),
		})
	}
	return out
}

func convertMods(mods []mzidentml.Modification) []mass.Modification {
	if len(mods) == 0 {
		return nil
	}
	out := make([]mass.Modification, len(mods))
	for i, m := range mods {
		out[i] = mass.Modification{MassDelta: m.MassDelta, Location: m.Location}
	}
	return out
}

// sortedPeaks returns peaks ordered by m/z, copying only when needed.
// mzML peak arrays are normally already sorted.
func sortedPeaks(peaks []mzml.Peak) []mzml.Peak {
	sorted := true
	for i := 1; i < len(peaks); i++ {
		if peaks[i].Mz < peaks[i-1].Mz {
			sorted = false
			break
		}
	}
	if sorted {
		return peaks
	}
	cp := make([]mzml.Peak, len(peaks))
	copy(cp, peaks)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Mz < cp[j].Mz })
	return cp
}

// checkConsistency verifies that both sources name the same acquisition
// run. Extensions are ignored, as is a trailing "_dta" decoration that some
// identification pipelines append to the spectra file name.
func checkConsistency(rawName, identSpectraFile string) error {
	if identSpectraFile == "" {
		// Identification file does not record its source; nothing to check
		return nil
	}
	r := runBaseName(rawName)
	i := runBaseName(identSpectraFile)
	if r != i {
		return &ConsistencyError{RawName: rawName, IdentName: identSpectraFile}
	}
	return nil
}

// runBaseName strips directories (both separator styles, since mzid files
// written on Windows carry backslash paths), the extension, and a trailing
// "_dta" decoration.
func runBaseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		p = p[i+1:]
	}
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		p = p[:i]
	}
	return strings.TrimSuffix(p, "_dta")
}

func (c Config) emit(percent float64, message string) {
	if c.Progress != nil {
		c.Progress(percent, message)
	}
}

// progressCounter throttles progress emission to whole-percent steps.
// tick is called once per spectrum from multiple workers; emission happens
// under the mutex so the sink sees strictly increasing percentages even when
// ticks race. Matching progress is capped at 99 so the terminal emission at
// 100 stays unique.
type progressCounter struct {
	total int
	done  atomic.Int64
	mu    sync.Mutex
	last  int64
	emit  func(percent float64, message string)
}

func (p *progressCounter) tick() {
	if p.total <= 0 {
		return
	}
	done := p.done.Add(1)
	cur := done * 100 / int64(p.total)
	if cur > 99 {
		cur = 99
	}
	p.mu.Lock()
	if cur > p.last {
		p.last = cur
		p.emit(float64(cur), "Matching spectra...")
	}
	p.mu.Unlock()
}
