// Package mzml reads peak data from mzML files. Spectra are decoded one at a
// time from a forward-only XML token stream, so files that are far too large
// to hold in memory can still be processed in a single pass.
package mzml

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"golang.org/x/net/html/charset"
)

// CV accessions for spectrum-level and activation terms
const (
	cvMSLevel     = `MS:1000511`
	cvSelectedIon = `MS:1000744`
	cvCID         = `MS:1000133`
	cvHCD         = `MS:1000422` // beam-type collision-induced dissociation
	cvETD         = `MS:1000598`
	cvECD         = `MS:1000250`
	cvIRMPD       = `MS:1000262`
)

// CV accessions for binary peak arrays
const (
	cvZlib       = `MS:1000574`
	cvMzArray    = `MS:1000514`
	cvIntenArray = `MS:1000515`
	cv64Bit      = `MS:1000523`
)

var numpressAccessions = map[string]bool{
	`MS:1002312`: true, `MS:1002313`: true, `MS:1002314`: true,
	`MS:1002746`: true, `MS:1002747`: true, `MS:1002748`: true,
}

var scanNumRe = regexp.MustCompile(`scan=(\d+)`)

// File is an open mzML spectral source. It supports a single forward pass
// over the spectra; Close releases the underlying file.
type File struct {
	path     string
	f        *os.File
	d        *xml.Decoder
	numSpecs int
	err      error
}

// Open opens an mzML file and consumes the header up to the spectrumList
// element, recording the declared spectrum count.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	d := xml.NewDecoder(f)
	d.CharsetReader = charset.NewReaderLabel

	// Skip over indexedmzML, mzML, run etc. until the spectrum list starts
	for {
		t, err := d.Token()
		if err != nil {
			f.Close()
			if err == io.EOF {
				return nil, ErrNoSpectrumList
			}
			return nil, fmt.Errorf("mzML %s: %w", path, err)
		}
		se, ok := t.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "spectrumList" {
			continue
		}
		mz := &File{path: path, f: f, d: d}
		for _, attr := range se.Attr {
			if attr.Name.Local == "count" {
				mz.numSpecs, _ = strconv.Atoi(attr.Value)
			}
		}
		return mz, nil
	}
}

// Name returns the base name of the underlying file.
func (f *File) Name() string {
	return filepath.Base(f.path)
}

// NumSpectra returns the spectrum count declared by the file.
func (f *File) NumSpectra() int {
	return f.numSpecs
}

// Err returns the first error encountered while streaming spectra.
func (f *File) Err() error {
	return f.err
}

// Close releases the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Spectra streams the spectra of the file in document order. The channel is
// closed when the spectrum list is exhausted, the context is cancelled, or a
// parse error occurs; check Err after draining. Only one pass is supported.
func (f *File) Spectra(ctx context.Context) <-chan Spectrum {
	out := make(chan Spectrum)
	go func() {
		defer close(out)
		for {
			if ctx.Err() != nil {
				return
			}
			t, err := f.d.Token()
			if err != nil {
				if err != io.EOF {
					f.err = fmt.Errorf("mzML %s: %w", f.path, err)
				}
				return
			}
			switch t := t.(type) {
			case xml.StartElement:
				if t.Name.Local != "spectrum" {
					continue
				}
				var xs xmlSpectrum
				if err := f.d.DecodeElement(&xs, &t); err != nil {
					f.err = fmt.Errorf("mzML %s: spectrum %d: %w", f.path, xs.Index, err)
					return
				}
				spec, err := xs.toSpectrum()
				if err != nil {
					f.err = fmt.Errorf("mzML %s: spectrum %d: %w", f.path, xs.Index, err)
					return
				}
				select {
				case out <- spec:
				case <-ctx.Done():
					return
				}
			case xml.EndElement:
				if t.Name.Local == "spectrumList" {
					return
				}
			}
		}
	}()
	return out
}

func (x *xmlSpectrum) toSpectrum() (Spectrum, error) {
	spec := Spectrum{
		ScanNumber: x.scanNumber(),
		MSLevel:    1, // if nothing else, guess it's MS1
	}
	for _, cv := range x.CvPar {
		if cv.Accession == cvMSLevel {
			level, err := strconv.Atoi(cv.Value)
			if err != nil {
				return spec, fmt.Errorf("invalid ms level %q", cv.Value)
			}
			spec.MSLevel = level
		}
	}
	for _, pl := range x.PrecursorList {
		for _, prec := range pl.Precursor {
			for _, cv := range prec.Activation.CvPar {
				if m := activationName(cv.Accession); m != "" {
					spec.Activation = m
				}
			}
			for _, si := range prec.SelectedIonList.SelectedIon {
				for _, cv := range si.CvPar {
					if cv.Accession == cvSelectedIon {
						spec.PrecursorMz, _ = strconv.ParseFloat(cv.Value, 64)
					}
				}
			}
		}
	}
	if x.DefaultArrayLength < 0 {
		return spec, fmt.Errorf("invalid defaultArrayLength %d", x.DefaultArrayLength)
	}
	peaks := make([]Peak, x.DefaultArrayLength)
	n := len(peaks)
	for i := range x.BinaryDataArrayList.BinaryDataArray {
		cnt, err := fillPeaks(peaks, &x.BinaryDataArrayList.BinaryDataArray[i])
		if err != nil {
			return spec, err
		}
		if cnt >= 0 && cnt < n {
			n = cnt
		}
	}
	// A declared length longer than the decoded arrays would leave phantom
	// zero-m/z peaks at the tail
	spec.Peaks = peaks[:n]
	return spec, nil
}

// scanNumber extracts the native scan number from the spectrum id attribute
// (e.g. "controllerType=0 controllerNumber=1 scan=2025"). When the id has no
// scan field, the 1-based spectrum index is used instead.
func (x *xmlSpectrum) scanNumber() int {
	if m := scanNumRe.FindStringSubmatch(x.ID); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n
		}
	}
	return x.Index + 1
}

func activationName(accession string) string {
	switch accession {
	case cvCID:
		return "CID"
	case cvHCD:
		return "HCD"
	case cvETD:
		return "ETD"
	case cvECD:
		return "ECD"
	case cvIRMPD:
		return "IRMPD"
	}
	return ""
}

// fillPeaks decodes one binary data array into the m/z or intensity side of
// the peak slice, depending on the array type CV terms. It returns the number
// of values decoded, or -1 for array types that are ignored.
func fillPeaks(p []Peak, b *binaryDataArray) (int, error) {
	var zlibCompression, bits64, mzArray, intenArray bool
	for _, cv := range b.CvPar {
		switch {
		case cv.Accession == cvZlib:
			zlibCompression = true
		case cv.Accession == cv64Bit:
			bits64 = true
		case cv.Accession == cvMzArray:
			mzArray = true
		case cv.Accession == cvIntenArray:
			intenArray = true
		case numpressAccessions[cv.Accession]:
			return -1, ErrUnsupportedCompression
		}
	}
	// We are only interested in m/z and intensity arrays
	if !mzArray && !intenArray {
		return -1, nil
	}
	data, err := base64.StdEncoding.DecodeString(b.Binary)
	if err != nil {
		return -1, err
	}
	if zlibCompression {
		z, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return -1, err
		}
		defer z.Close()
		if data, err = io.ReadAll(z); err != nil {
			return -1, err
		}
	}
	width := 4
	if bits64 {
		width = 8
	}
	cnt := len(data) / width
	if cnt > len(p) {
		cnt = len(p)
	}
	for i := 0; i < cnt; i++ {
		var v float64
		if bits64 {
			v = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		} else {
			v = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
		if mzArray {
			p[i].Mz = v
		} else {
			p[i].Intens = v
		}
	}
	return cnt, nil
}
