// Package report writes processed matches to the supported output formats.
package report

import (
	"fmt"
	"io"

	"github.com/jkoedam/seqcover/internal/cover"
)

var tsvHeader = []string{
	"ScanNum",
	"FragMethod",
	"Precursor",
	"IsotopeError",
	"Charge",
	"Peptide",
	"DeNovoScore",
	"SpecEValue",
	"EValue",
	"QValue",
	"PepQValue",
	"SequenceCoverage(%)",
}

// WriteTSV writes matches as a tab-separated table with a header row,
// in the order they appear in the result set.
func WriteTSV(w io.Writer, matches cover.ResultSet) error {
	for i, col := range tsvHeader {
		sep := "\t"
		if i == len(tsvHeader)-1 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(w, "%s%s", col, sep); err != nil {
			return err
		}
	}
	for _, m := range matches {
		_, err := fmt.Fprintf(w, "%d\t%s\t%.4f\t%d\t%d\t%s\t%d\t%g\t%g\t%g\t%g\t%.0f\n",
			m.ScanNumber, m.FragMethod, m.PrecursorMz, m.IsotopeError,
			m.Charge, m.Sequence, m.DeNovoScore,
			m.SpecEValue, m.EValue, m.QValue, m.PepQValue,
			m.SequenceCoverage)
		if err != nil {
			return err
		}
	}
	return nil
}
