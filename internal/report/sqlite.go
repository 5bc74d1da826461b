package report

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jkoedam/seqcover/internal/cover"
)

const runDateFormat = "2006-01-02"

// SQLiteWriter persists processed matches to a SQLite database so results
// can be joined against other search outputs downstream.
type SQLiteWriter struct {
	db        *sql.DB
	matchStmt *sql.Stmt
}

// NewSQLiteWriter opens (or creates) the database at outputPath and prepares
// the match table.
func NewSQLiteWriter(outputPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &SQLiteWriter{db: db}
	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLiteWriter) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS MatchTable (
		MatchId INTEGER PRIMARY KEY AUTOINCREMENT,
		ScanNumber INTEGER,
		FragMethod TEXT,
		PrecursorMz DOUBLE,
		IsotopeError INTEGER,
		Charge INTEGER,
		Peptide TEXT,
		DeNovoScore INTEGER,
		SpecEValue DOUBLE,
		EValue DOUBLE,
		QValue DOUBLE,
		PepQValue DOUBLE,
		SequenceCoverage DOUBLE
	);

	CREATE TABLE IF NOT EXISTS RunTable (
		CreationDate TEXT,
		NumMatches INTEGER
	);
	`
	if _, err := w.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func (w *SQLiteWriter) prepareStatements() error {
	var err error
	w.matchStmt, err = w.db.Prepare(`
		INSERT INTO MatchTable (
			ScanNumber, FragMethod, PrecursorMz, IsotopeError, Charge,
			Peptide, DeNovoScore, SpecEValue, EValue, QValue, PepQValue,
			SequenceCoverage
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare match statement: %w", err)
	}
	return nil
}

// WriteMatches inserts all matches inside a single transaction, preserving
// their order through the autoincrement key.
func (w *SQLiteWriter) WriteMatches(matches cover.ResultSet) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt := tx.Stmt(w.matchStmt)
	for _, m := range matches {
		_, err := stmt.Exec(
			m.ScanNumber,
			m.FragMethod,
			m.PrecursorMz,
			m.IsotopeError,
			m.Charge,
			m.Sequence,
			m.DeNovoScore,
			m.SpecEValue,
			m.EValue,
			m.QValue,
			m.PepQValue,
			m.SequenceCoverage,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert match for scan %d: %w", m.ScanNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit matches: %w", err)
	}

	_, err = w.db.Exec(`
		INSERT INTO RunTable (CreationDate, NumMatches) VALUES (?, ?)
	`, time.Now().Format(runDateFormat), len(matches))
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}
	return nil
}

// Close releases the prepared statement and the database connection.
func (w *SQLiteWriter) Close() error {
	if w.matchStmt != nil {
		w.matchStmt.Close()
	}
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
