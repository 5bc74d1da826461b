package cover

import "fmt"

// ConsistencyError reports that the raw spectra file and the identification
// file do not name the same acquisition run. Pairing mismatched files would
// produce meaningless coverage numbers with no visible symptom, so this is
// checked before any spectrum is processed.
type ConsistencyError struct {
	RawName   string // base name derived from the spectral source
	IdentName string // base name recorded inside the identification file
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("spectra file %q and identification data for %q name different runs",
		e.RawName, e.IdentName)
}
