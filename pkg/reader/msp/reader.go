// Package msp provides streaming readers for MSP (Prosit) format spectral libraries
package msp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/core"
	"github.com/ChrisMcGann/pepform/pkg/proforma"
)

// Reader provides streaming access to MSP format files. Peak lists are
// skipped; only the peptide and its metadata are kept.
type Reader struct {
	scanner *bufio.Scanner
	modDB   *core.ModDatabase
	parser  *proforma.Parser
	lineNum int
	current *core.LibraryEntry
	err     error
}

// NewReader creates a new MSP reader
func NewReader(r io.Reader, modDB *core.ModDatabase) *Reader {
	if modDB == nil {
		modDB = core.SharedModDatabase()
	}

	return &Reader{
		scanner: bufio.NewScanner(r),
		modDB:   modDB,
		parser:  proforma.New(modDB),
	}
}

// Next advances to the next entry. Returns false when no more entries or error.
func (r *Reader) Next() bool {
	r.current = nil

	entry, err := r.readEntry()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.current = entry
	return true
}

// Entry returns the current entry
func (r *Reader) Entry() *core.LibraryEntry {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// LineNumber returns the number of lines read so far.
func (r *Reader) LineNumber() int {
	return r.lineNum
}

// readEntry reads a single entry from the MSP file
func (r *Reader) readEntry() (*core.LibraryEntry, error) {
	entry := &core.LibraryEntry{SourceFormat: "msp"}

	var numPeaks, peaksRead, modsLine int
	var mods string
	inPeaks := false

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		// Skip empty lines between entries
		if line == "" {
			continue
		}

		if inPeaks {
			peaksRead++
			if peaksRead >= numPeaks {
				return r.finish(entry, mods, modsLine)
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "Name: "):
			if entry.Name != "" {
				return nil, fmt.Errorf("line %d: entry '%s' has no peak count", r.lineNum, entry.Name)
			}
			if err := r.parseName(entry, strings.TrimPrefix(line, "Name: ")); err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
		case strings.HasPrefix(line, "MW: "):
			// Skip MW, it is recomputed from the peptide
		case strings.HasPrefix(line, "Comment: "):
			modsLine = r.lineNum
			mods = r.parseComment(entry, strings.TrimPrefix(line, "Comment: "))
		case strings.HasPrefix(line, "Num peaks: "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "Num peaks: "))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid num peaks: %w", r.lineNum, err)
			}
			if n <= 0 {
				return r.finish(entry, mods, modsLine)
			}
			numPeaks = n
			inPeaks = true
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// A truncated last entry is still returned
	if entry.Name == "" {
		return nil, io.EOF
	}
	return r.finish(entry, mods, modsLine)
}

// finish applies the Comment modifications once the whole header is read.
func (r *Reader) finish(entry *core.LibraryEntry, mods string, modsLine int) (*core.LibraryEntry, error) {
	if entry.Name == "" {
		return nil, fmt.Errorf("line %d: entry has no name", r.lineNum)
	}
	if mods == "" || entry.Sloppy || hasInlineModifications(entry.Name) {
		return entry, nil
	}
	if err := entry.ApplyMods(r.modDB, mods); err != nil {
		return nil, fmt.Errorf("line %d: %w", modsLine, err)
	}
	return entry, nil
}

// parseName extracts the peptide and charge from the Name field (format:
// "SEQUENCE/CHARGE"). The sequence is read as strict notation first and as
// sloppy notation when that fails.
func (r *Reader) parseName(entry *core.LibraryEntry, name string) error {
	idx := strings.LastIndex(name, "/")
	if idx <= 0 {
		return fmt.Errorf("invalid name format '%s', expected 'SEQUENCE/CHARGE'", name)
	}

	charge, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return fmt.Errorf("invalid charge in name '%s': %w", name, err)
	}
	entry.Name = name
	entry.Charge = charge

	sequence := name[:idx]
	// a lower case "n[" prefix would read as a modified asparagine
	if !strings.HasPrefix(sequence, "n[") {
		if peptide, err := r.parser.Parse(sequence); err == nil {
			entry.Peptide = peptide
			return nil
		}
	}
	peptide, err := r.parser.ParseSloppy(sequence)
	if err != nil {
		return fmt.Errorf("invalid peptide in name '%s': %w", name, err)
	}
	entry.Peptide = core.NewComplexPeptide(peptide)
	entry.Sloppy = true
	return nil
}

// parseComment extracts metadata from the Comment field and returns the
// raw Mods value.
func (r *Reader) parseComment(entry *core.LibraryEntry, comment string) string {
	// Comment format: key=value key=value...
	// Example: Parent=414.71 Collision_energy=35 Mods=1/4,M,Oxidation iRT=61.01
	var mods string
	for _, field := range strings.Fields(comment) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}

		switch key {
		case "Parent":
			if mz, err := strconv.ParseFloat(value, 64); err == nil {
				entry.PrecursorMZ = mz
			}
		case "Collision_energy", "CollisionEnergy":
			if ce, err := strconv.ParseFloat(value, 64); err == nil {
				entry.CollisionEnergy = &ce
			}
		case "iRT", "RetentionTime":
			if rt, err := strconv.ParseFloat(value, 64); err == nil {
				entry.RetentionTime = &rt
			}
		case "Mods":
			mods = value
		}
	}
	return mods
}

func hasInlineModifications(name string) bool {
	return strings.ContainsAny(name, "[(")
}
