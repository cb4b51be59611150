package sqlite

import (
	"database/sql"
	"fmt"
	"os"
)

// Summary describes a library written by Writer.
type Summary struct {
	LibraryID    string
	Description  string
	Model        string
	MaxCharge    int
	CreationDate string
	Peptides     int
	Sloppy       int
	Fragments    int
	MinMZ        float64
	MaxMZ        float64
	// SourceFormats counts peptides per input format.
	SourceFormats map[string]int
}

// ReadSummary opens a finalized library and summarises its contents.
func ReadSummary(path string) (*Summary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	defer db.Close()

	s := &Summary{SourceFormats: map[string]int{}}
	err = db.QueryRow(`SELECT LibraryId, Description, Model, MaxCharge, CreationDate FROM HeaderTable LIMIT 1`).
		Scan(&s.LibraryID, &s.Description, &s.Model, &s.MaxCharge, &s.CreationDate)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("library %s has no header (not finalized?)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if err := db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(Sloppy), 0) FROM PeptideTable`).Scan(&s.Peptides, &s.Sloppy); err != nil {
		return nil, fmt.Errorf("failed to count peptides: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*), COALESCE(MIN(MZ), 0), COALESCE(MAX(MZ), 0) FROM FragmentTable`).
		Scan(&s.Fragments, &s.MinMZ, &s.MaxMZ); err != nil {
		return nil, fmt.Errorf("failed to count fragments: %w", err)
	}

	rows, err := db.Query(`SELECT SourceFormat, COUNT(*) FROM PeptideTable GROUP BY SourceFormat`)
	if err != nil {
		return nil, fmt.Errorf("failed to count formats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var format string
		var n int
		if err := rows.Scan(&format, &n); err != nil {
			return nil, err
		}
		s.SourceFormats[format] = n
	}
	return s, rows.Err()
}
