package mzidentml

import "errors"

// Identification is one peptide-spectrum match from an mzIdentML file.
// The score fields follow the MS-GF+ vocabulary; files from other search
// engines parse, but their scores are left at the zero value.
type Identification struct {
	ScanNumber  int
	PepSeq      string
	Mods        []Modification
	Charge      int
	CalcMz      float64 // calculatedMassToCharge
	PrecursorMz float64 // experimentalMassToCharge
	DeNovoScore int
	SpecEValue  float64
	EValue      float64
	QValue      float64
	PepQValue   float64
	IsotopeErr  int
}

// Modification is a mass delta on one residue of an identified peptide.
// Location is 1-based; 0 means N-terminal, len(sequence)+1 C-terminal.
type Modification struct {
	MassDelta float64
	Location  int
}

// Result is the content of one identification file.
type Result struct {
	// SpectraFile is the location of the spectra file the search was run
	// on, as recorded in the Inputs section. Used to verify that raw and
	// identification file belong to the same acquisition run.
	SpectraFile string
	Idents      []Identification
}

// XML mapping, limited to the elements we need

type xmlPeptide struct {
	ID              string            `xml:"id,attr"`
	PeptideSequence string            `xml:"PeptideSequence"`
	Modification    []xmlModification `xml:"Modification"`
}

type xmlModification struct {
	// monoisotopicMassDelta is optional according to the schema, but there
	// appears to be no other way to determine the mass shift
	MonoisotopicMassDelta float64 `xml:"monoisotopicMassDelta,attr"`
	Location              int     `xml:"location,attr"`
}

type xmlSpectraData struct {
	Location string `xml:"location,attr"`
}

type xmlSpecIdentResult struct {
	SpectrumID string             `xml:"spectrumID,attr"`
	Items      []xmlSpecIdentItem `xml:"SpectrumIdentificationItem"`
	CvPar      []xmlParam         `xml:"cvParam"`
}

type xmlSpecIdentItem struct {
	ChargeState    int        `xml:"chargeState,attr"`
	ExperimentalMz float64    `xml:"experimentalMassToCharge,attr"`
	CalculatedMz   float64    `xml:"calculatedMassToCharge,attr"`
	PeptideRef     string     `xml:"peptide_ref,attr"`
	CvPar          []xmlParam `xml:"cvParam"`
	UserPar        []xmlParam `xml:"userParam"`
}

type xmlParam struct {
	Accession string `xml:"accession,attr"`
	Name      string `xml:"name,attr"`
	Value     string `xml:"value,attr"`
}

var (
	// ErrUnknownPeptideRef means an identification references a peptide id
	// that is missing from the SequenceCollection
	ErrUnknownPeptideRef = errors.New("mzIdentML: unknown peptide reference")
)
