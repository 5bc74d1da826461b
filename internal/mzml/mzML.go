package mzml

import "errors"

// Peak contains the actual ms peak info
type Peak struct {
	Mz     float64
	Intens float64
}

// Spectrum is one decoded spectrum of an mzML file. Read-only to callers.
type Spectrum struct {
	ScanNumber  int
	MSLevel     int
	Activation  string  // fragmentation method (CID, HCD, ETD, ...), MS2 only
	PrecursorMz float64 // selected-ion m/z, MS2 only
	Peaks       []Peak
}

// IsProduct reports whether the spectrum is a product (MS2) spectrum.
func (s Spectrum) IsProduct() bool {
	return s.MSLevel == 2
}

// XML mapping for the parts of a <spectrum> element that we decode.
// The surrounding document is consumed token by token, see reader.go.
type xmlSpectrum struct {
	Index               int                 `xml:"index,attr"`
	ID                  string              `xml:"id,attr"`
	DefaultArrayLength  int64               `xml:"defaultArrayLength,attr"`
	CvPar               []cvParam           `xml:"cvParam"`
	PrecursorList       []xmlPrecursorList  `xml:"precursorList"`
	BinaryDataArrayList binaryDataArrayList `xml:"binaryDataArrayList"`
}

type xmlPrecursorList struct {
	Precursor []xmlPrecursor `xml:"precursor"`
}

type xmlPrecursor struct {
	SelectedIonList xmlSelectedIonList `xml:"selectedIonList"`
	Activation      xmlActivation      `xml:"activation"`
}

type xmlSelectedIonList struct {
	SelectedIon []xmlSelectedIon `xml:"selectedIon"`
}

type xmlSelectedIon struct {
	CvPar []cvParam `xml:"cvParam"`
}

type xmlActivation struct {
	CvPar []cvParam `xml:"cvParam"`
}

type binaryDataArrayList struct {
	BinaryDataArray []binaryDataArray `xml:"binaryDataArray"`
}

type binaryDataArray struct {
	CvPar  []cvParam `xml:"cvParam"`
	Binary string    `xml:"binary"`
}

type cvParam struct {
	Accession string `xml:"accession,attr"`
	Name      string `xml:"name,attr"`
	Value     string `xml:"value,attr"`
}

var (
	// ErrNoSpectrumList means the file contains no spectrumList element
	ErrNoSpectrumList = errors.New("mzML: no spectrumList found")
	// ErrUnsupportedCompression means the peak arrays use a compression
	// scheme (MS-Numpress) that we cannot decode
	ErrUnsupportedCompression = errors.New("mzML: unsupported peak compression")
)
