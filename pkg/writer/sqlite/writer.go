// Package sqlite writes theoretical fragment libraries to SQLite databases
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/pepform/pkg/core"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Date format for MaintenanceTable (space-separated)
	maintenanceDateFormat = "2006 01 02"
	// Schema version written to HeaderTable
	schemaVersion = 1
)

// Header describes the library as a whole.
type Header struct {
	Description string
	Model       string // Fragmentation model name
	MaxCharge   int
}

// Writer handles writing peptides and their fragments to SQLite database files
type Writer struct {
	db           *sql.DB
	outputPath   string
	header       Header
	libraryID    uuid.UUID
	peptideStmt  *sql.Stmt
	fragmentStmt *sql.Stmt
	peptideID    int
	fragments    int
	closed       bool
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string, header Header) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		header:     header,
		libraryID:  uuid.New(),
		peptideID:  1,
	}

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

// LibraryID returns the identifier written to HeaderTable.
func (w *Writer) LibraryID() uuid.UUID {
	return w.libraryID
}

// Counts returns the number of peptides and fragments written so far.
func (w *Writer) Counts() (peptides, fragments int) {
	return w.peptideID - 1, w.fragments
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS PeptideTable (
		PeptideId INTEGER PRIMARY KEY,
		Name TEXT,
		Peptide TEXT NOT NULL,
		Charge INTEGER NOT NULL,
		PrecursorMZ DOUBLE,
		TheoreticalMZ DOUBLE,
		RetentionTime DOUBLE,
		CollisionEnergy DOUBLE,
		Sloppy BOOL,
		SourceFile TEXT,
		SourceFormat TEXT,
		blobMass BLOB
	);

	CREATE TABLE IF NOT EXISTS FragmentTable (
		FragmentId INTEGER PRIMARY KEY AUTOINCREMENT,
		PeptideId INTEGER REFERENCES PeptideTable(PeptideId),
		Ion TEXT NOT NULL,
		Annotation TEXT NOT NULL,
		SeriesNumber INTEGER,
		Charge INTEGER NOT NULL,
		MZ DOUBLE NOT NULL,
		Formula TEXT,
		Label TEXT
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		LibraryId TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		LastModifiedDate TEXT,
		Description TEXT,
		Model TEXT,
		MaxCharge INTEGER
	);

	CREATE TABLE IF NOT EXISTS MaintenanceTable (
		CreationDate TEXT,
		NoofPeptidesModified INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.peptideStmt, err = w.db.Prepare(`
		INSERT INTO PeptideTable (
			PeptideId, Name, Peptide, Charge, PrecursorMZ, TheoreticalMZ,
			RetentionTime, CollisionEnergy, Sloppy, SourceFile, SourceFormat, blobMass
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare peptide statement: %w", err)
	}

	w.fragmentStmt, err = w.db.Prepare(`
		INSERT INTO FragmentTable (
			PeptideId, Ion, Annotation, SeriesNumber, Charge, MZ, Formula, Label
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fragment statement: %w", err)
	}

	return nil
}

// WritePeptide writes an entry and its fragments. Fragments without a
// defined mass are skipped.
func (w *Writer) WritePeptide(entry *core.LibraryEntry, fragments []core.Fragment) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}

	var theoretical any
	if mz, ok := entry.TheoreticalMZ(); ok {
		theoretical = mz
	}

	// Handle optional retention time
	var rt any
	if entry.RetentionTime != nil {
		rt = *entry.RetentionTime
	}

	// Handle optional collision energy
	var ce any
	if entry.CollisionEnergy != nil {
		ce = *entry.CollisionEnergy
	}

	mzs := make([]float64, 0, len(fragments))
	for _, f := range fragments {
		if mz, ok := f.MZ(); ok {
			mzs = append(mzs, mz)
		}
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Stmt(w.peptideStmt).Exec(
		w.peptideID,
		entry.Name,
		entry.Peptide.String(),
		entry.Charge,
		entry.PrecursorMZ,
		theoretical,
		rt,
		ce,
		entry.Sloppy,
		entry.SourceFile,
		entry.SourceFormat,
		encodeFloat64(mzs),
	)
	if err != nil {
		return fmt.Errorf("failed to insert peptide: %w", err)
	}

	fragmentStmt := tx.Stmt(w.fragmentStmt)
	written := 0
	for _, f := range fragments {
		mz, ok := f.MZ()
		if !ok {
			continue
		}
		var series any
		if f.Position != nil {
			series = f.Position.SeriesNumber
		}
		_, err := fragmentStmt.Exec(
			w.peptideID,
			f.Ion.String(),
			f.Name(),
			series,
			f.Charge,
			mz,
			f.Formula.String(),
			f.Label,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fragment %s: %w", f.Name(), err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit peptide: %w", err)
	}

	w.peptideID++
	w.fragments += written
	return nil
}

// encodeFloat64 encodes values as a little-endian float64 blob
func encodeFloat64(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodeFloat64 decodes a blob written by the writer.
func DecodeFloat64(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(buf))
	}
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return out, nil
}

// Finalize writes the header and maintenance tables and closes the database
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}
	w.closed = true

	now := time.Now()

	// Write HeaderTable
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (LibraryId, version, CreationDate, LastModifiedDate, Description, Model, MaxCharge)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.libraryID.String(), schemaVersion, now.Format(headerDateFormat), now.Format(headerDateFormat),
		w.header.Description, w.header.Model, w.header.MaxCharge)
	if err != nil {
		w.db.Close()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Write MaintenanceTable
	_, err = w.db.Exec(`
		INSERT INTO MaintenanceTable (CreationDate, NoofPeptidesModified, Description)
		VALUES (?, ?, ?)
	`, now.Format(maintenanceDateFormat), w.peptideID-1, w.header.Description)
	if err != nil {
		w.db.Close()
		return fmt.Errorf("failed to insert maintenance: %w", err)
	}

	// Close prepared statements
	if w.peptideStmt != nil {
		w.peptideStmt.Close()
	}
	if w.fragmentStmt != nil {
		w.fragmentStmt.Close()
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
