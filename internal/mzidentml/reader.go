// Package mzidentml reads peptide identifications from mzIdentML files,
// oriented towards MS-GF+ output. The file is consumed token by token so
// that a context cancel is honored while parsing very large files.
package mzidentml

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strconv"

	"golang.org/x/net/html/charset"
)

// MS-GF+ score CV terms, and the scan number term on the result element
const (
	cvDeNovoScore = `MS:1002050`
	cvSpecEValue  = `MS:1002052`
	cvEValue      = `MS:1002053`
	cvQValue      = `MS:1002054`
	cvPepQValue   = `MS:1002055`
	cvScanNumber  = `MS:1001115` // scan number(s)
)

var scanNumRe = regexp.MustCompile(`scan=(\d+)`)

// File is an identification source backed by an mzIdentML file on disk.
type File struct {
	Path string
}

// Read parses the whole file into memory.
func (f File) Read(ctx context.Context) (Result, error) {
	r, err := os.Open(f.Path)
	if err != nil {
		return Result{}, err
	}
	defer r.Close()
	res, err := Read(ctx, r)
	if err != nil {
		return res, fmt.Errorf("mzIdentML %s: %w", f.Path, err)
	}
	return res, nil
}

// Read parses mzIdentML content from an io.Reader. The context is checked
// between elements, so a cancelled parse returns promptly with ctx.Err().
func Read(ctx context.Context, reader io.Reader) (Result, error) {
	var res Result
	peptides := make(map[string]*xmlPeptide)

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		t, err := d.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return res, err
		}
		se, ok := t.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "Peptide":
			var pep xmlPeptide
			if err := d.DecodeElement(&pep, &se); err != nil {
				return res, err
			}
			peptides[pep.ID] = &pep
		case "SpectraData":
			var sd xmlSpectraData
			if err := d.DecodeElement(&sd, &se); err != nil {
				return res, err
			}
			res.SpectraFile = sd.Location
		case "SpectrumIdentificationResult":
			var sir xmlSpecIdentResult
			if err := d.DecodeElement(&sir, &se); err != nil {
				return res, err
			}
			idents, err := sir.identifications(peptides)
			if err != nil {
				return res, err
			}
			res.Idents = append(res.Idents, idents...)
		}
	}
	return res, nil
}

// identifications converts one result element into Identification records,
// one per SpectrumIdentificationItem. A scan may carry several items (e.g.
// co-eluting peptides); each is reported independently.
func (sir *xmlSpecIdentResult) identifications(peptides map[string]*xmlPeptide) ([]Identification, error) {
	scan := sir.scanNumber()
	out := make([]Identification, 0, len(sir.Items))
	for _, item := range sir.Items {
		pep, ok := peptides[item.PeptideRef]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPeptideRef, item.PeptideRef)
		}
		ident := Identification{
			ScanNumber:  scan,
			PepSeq:      pep.PeptideSequence,
			Charge:      item.ChargeState,
			CalcMz:      item.CalculatedMz,
			PrecursorMz: item.ExperimentalMz,
		}
		if ident.PrecursorMz == 0 {
			ident.PrecursorMz = item.CalculatedMz
		}
		for _, mod := range pep.Modification {
			ident.Mods = append(ident.Mods, Modification{
				MassDelta: mod.MonoisotopicMassDelta,
				Location:  mod.Location,
			})
		}
		for _, cv := range item.CvPar {
			switch cv.Accession {
			case cvDeNovoScore:
				ident.DeNovoScore = parseIntScore(cv.Name, cv.Value, scan)
			case cvSpecEValue:
				ident.SpecEValue = parseFloatScore(cv.Name, cv.Value, scan)
			case cvEValue:
				ident.EValue = parseFloatScore(cv.Name, cv.Value, scan)
			case cvQValue:
				ident.QValue = parseFloatScore(cv.Name, cv.Value, scan)
			case cvPepQValue:
				ident.PepQValue = parseFloatScore(cv.Name, cv.Value, scan)
			}
		}
		for _, up := range item.UserPar {
			if up.Name == "IsotopeError" {
				ident.IsotopeErr = parseIntScore(up.Name, up.Value, scan)
			}
		}
		out = append(out, ident)
	}
	return out, nil
}

// A malformed score value is reported and left at its zero value. A zero
// SpecEValue sorts as most confident, so the warning matters; still, one bad
// value should not abort the run.
func parseFloatScore(name, value string, scan int) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("scan %d: invalid %s value %q", scan, name, value)
	}
	return f
}

func parseIntScore(name, value string, scan int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("scan %d: invalid %s value %q", scan, name, value)
	}
	return n
}

// scanNumber prefers the "scan number(s)" CV term of the result element and
// falls back to the scan field of the spectrumID. Returns -1 if neither is
// present; such identifications can never be paired with a spectrum.
func (sir *xmlSpecIdentResult) scanNumber() int {
	for _, cv := range sir.CvPar {
		if cv.Accession == cvScanNumber {
			if n, err := strconv.Atoi(cv.Value); err == nil {
				return n
			}
		}
	}
	if m := scanNumRe.FindStringSubmatch(sir.SpectrumID); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return -1
}
