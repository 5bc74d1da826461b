package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jkoedam/seqcover/internal/cover"
)

var testMatches = cover.ResultSet{
	{
		ScanNumber:       100,
		Sequence:         "PEPTIDE",
		Charge:           2,
		FragMethod:       "HCD",
		PrecursorMz:      400.7034,
		DeNovoScore:      85,
		SpecEValue:       1.2e-12,
		EValue:           3.4e-11,
		QValue:           0.001,
		PepQValue:        0.002,
		IsotopeError:     0,
		SequenceCoverage: 33,
	},
	{
		ScanNumber:       245,
		Sequence:         "ACDEFGK",
		Charge:           3,
		FragMethod:       "ETD",
		PrecursorMz:      251.4421,
		DeNovoScore:      40,
		SpecEValue:       5.6e-9,
		EValue:           8.7e-8,
		QValue:           0.01,
		PepQValue:        0.015,
		IsotopeError:     1,
		SequenceCoverage: 67,
	},
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, testMatches); err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (header + 2 matches)", len(lines))
	}

	header := strings.Split(lines[0], "\t")
	if len(header) != len(tsvHeader) {
		t.Fatalf("header has %d columns, want %d", len(header), len(tsvHeader))
	}
	if header[0] != "ScanNum" || header[len(header)-1] != "SequenceCoverage(%)" {
		t.Errorf("unexpected header: %v", header)
	}

	row := strings.Split(lines[1], "\t")
	if len(row) != len(tsvHeader) {
		t.Fatalf("row has %d columns, want %d", len(row), len(tsvHeader))
	}
	if row[0] != "100" || row[5] != "PEPTIDE" || row[len(row)-1] != "33" {
		t.Errorf("unexpected first row: %v", row)
	}
}

func TestWriteTSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, nil); err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("empty result set wrote %d lines, want header only", got)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.db")

	w, err := NewSQLiteWriter(path)
	if err != nil {
		t.Fatalf("NewSQLiteWriter: %v", err)
	}
	if err := w.WriteMatches(testMatches); err != nil {
		t.Fatalf("WriteMatches: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen and verify through a fresh connection
	r, err := NewSQLiteWriter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r.Close()

	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM MatchTable`).Scan(&n); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if n != len(testMatches) {
		t.Fatalf("stored %d matches, want %d", n, len(testMatches))
	}

	var (
		pep      string
		charge   int
		coverage float64
	)
	err = r.db.QueryRow(`
		SELECT Peptide, Charge, SequenceCoverage FROM MatchTable ORDER BY MatchId LIMIT 1
	`).Scan(&pep, &charge, &coverage)
	if err != nil {
		t.Fatalf("row query: %v", err)
	}
	if pep != "PEPTIDE" || charge != 2 || coverage != 33 {
		t.Errorf("first row = (%s, %d, %f), want (PEPTIDE, 2, 33)", pep, charge, coverage)
	}

	var runs int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM RunTable`).Scan(&runs); err != nil {
		t.Fatalf("run count query: %v", err)
	}
	if runs != 1 {
		t.Errorf("got %d run records, want 1", runs)
	}
}
