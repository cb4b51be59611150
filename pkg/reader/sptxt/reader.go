// Package sptxt provides streaming readers for SPTXT (SpectraST) format spectral libraries
package sptxt

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/core"
	"github.com/ChrisMcGann/pepform/pkg/proforma"
)

// Reader provides streaming access to SPTXT format files. Peak lists are
// skipped; only the peptide and its metadata are kept.
type Reader struct {
	scanner *bufio.Scanner
	modDB   *core.ModDatabase
	parser  *proforma.Parser
	lineNum int
	current *core.LibraryEntry
	err     error
}

// NewReader creates a new SPTXT reader
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

// inlineMod is a bracketed mass from the Name field, already converted to
// a mass shift. Position -1 is the N terminus.
type inlineMod struct {
	position int
	delta    float64
}

// pending holds what an entry needs before its peptide can be built.
type pending struct {
	sequence string
	inline   []inlineMod
	mods     string
	nameLine int
	modsLine int
}

// readEntry reads a single entry from the SPTXT file
func (r *Reader) readEntry() (*core.LibraryEntry, error) {
	entry := &core.LibraryEntry{SourceFormat: "sptxt"}
	var p pending

	var numPeaks, peaksRead int
	inPeaks := false

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "###") {
			continue
		}

		if inPeaks {
			peaksRead++
			if peaksRead >= numPeaks {
				return r.finish(entry, p)
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "Name: "):
			if entry.Name != "" {
				return nil, fmt.Errorf("line %d: entry '%s' has no peak count", r.lineNum, entry.Name)
			}
			p.nameLine = r.lineNum
			if err := r.parseName(entry, &p, strings.TrimPrefix(line, "Name: ")); err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
		case strings.HasPrefix(line, "MW: "):
			// Skip MW, it is recomputed from the peptide
		case strings.HasPrefix(line, "PrecursorMZ: "):
			if mz, err := strconv.ParseFloat(strings.TrimPrefix(line, "PrecursorMZ: "), 64); err == nil {
				entry.PrecursorMZ = mz
			}
		case strings.HasPrefix(line, "Comment: "):
			p.modsLine = r.lineNum
			p.mods = r.parseComment(entry, strings.TrimPrefix(line, "Comment: "))
		case strings.HasPrefix(line, "NumPeaks: "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "NumPeaks: "))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid num peaks: %w", r.lineNum, err)
			}
			if n <= 0 {
				return r.finish(entry, p)
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
	return r.finish(entry, p)
}

// finish builds the peptide. Named modifications from the Comment field
// take precedence over the masses written in the name.
func (r *Reader) finish(entry *core.LibraryEntry, p pending) (*core.LibraryEntry, error) {
	if entry.Name == "" {
		return nil, fmt.Errorf("line %d: entry has no name", r.lineNum)
	}
	peptide, err := r.parser.ParseLinear(p.sequence)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid peptide in name '%s': %w", p.nameLine, entry.Name, err)
	}
	entry.Peptide = core.NewComplexPeptide(peptide)

	if p.mods != "" && p.mods != "0" {
		if err := entry.ApplyMods(r.modDB, p.mods); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.modsLine, err)
		}
		return entry, nil
	}
	for _, m := range p.inline {
		if err := entry.ApplyModification(m.position, core.MassModification(m.delta)); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.nameLine, err)
		}
	}
	entry.Sloppy = len(p.inline) > 0
	return entry, nil
}

// parseName extracts sequence, charge, and modifications from Name field
// Format: "n[43]AAAAQDEITGDGTTTVVC[160]LVGELLR/3"
func (r *Reader) parseName(entry *core.LibraryEntry, p *pending, name string) error {
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

	sequence, inline, err := parseInlineModifications(name[:idx])
	if err != nil {
		return fmt.Errorf("failed to parse modifications from sequence: %w", err)
	}
	p.sequence = sequence
	p.inline = inline
	return nil
}

// Pattern to match modifications: letter followed by [mass]
var inlinePattern = regexp.MustCompile(`([a-zA-Z])\[(\d+(?:\.\d+)?)\]`)

var cTermGroup = core.Water.Sub(core.Hydrogen)

// parseInlineModifications splits a name like n[43]PEPC[160]TIDE into the
// bare sequence and mass shifts. SpectraST writes the total mass of the
// modified residue or terminal group, so the unmodified mass is subtracted.
func parseInlineModifications(raw string) (string, []inlineMod, error) {
	var sequence strings.Builder
	var mods []inlineMod

	lastIdx := 0
	for _, match := range inlinePattern.FindAllStringSubmatchIndex(raw, -1) {
		sequence.WriteString(raw[lastIdx:match[0]])

		letter := raw[match[2]:match[3]]
		mass, err := strconv.ParseFloat(raw[match[4]:match[5]], 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid modification mass '%s': %w", raw[match[4]:match[5]], err)
		}

		switch letter {
		case "n":
			base, _ := core.Hydrogen.MonoisotopicMass()
			mods = append(mods, inlineMod{position: -1, delta: mass - base})
		case "c":
			base, _ := cTermGroup.MonoisotopicMass()
			mods = append(mods, inlineMod{position: -2, delta: mass - base})
		default:
			aa, ok := core.ParseAminoAcid(letter[0])
			if !ok {
				return "", nil, fmt.Errorf("invalid amino acid '%s'", letter)
			}
			formulas := aa.Formulas()
			if len(formulas) == 0 {
				return "", nil, fmt.Errorf("amino acid '%s' has no defined mass", letter)
			}
			base, ok := formulas[0].MonoisotopicMass()
			if !ok {
				return "", nil, fmt.Errorf("amino acid '%s' has no defined mass", letter)
			}
			sequence.WriteString(letter)
			mods = append(mods, inlineMod{position: sequence.Len() - 1, delta: mass - base})
		}

		lastIdx = match[1]
	}
	sequence.WriteString(raw[lastIdx:])

	// the C terminus is only known once the full sequence is read
	for i := range mods {
		if mods[i].position == -2 {
			mods[i].position = sequence.Len()
		}
	}
	return sequence.String(), mods, nil
}

// parseComment extracts metadata from the Comment field and returns the
// raw Mods value.
func (r *Reader) parseComment(entry *core.LibraryEntry, comment string) string {
	var mods string
	for _, field := range strings.Fields(comment) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}

		switch key {
		case "Parent":
			if entry.PrecursorMZ != 0 {
				continue
			}
			if mz, err := strconv.ParseFloat(value, 64); err == nil {
				entry.PrecursorMZ = mz
			}
		case "CollisionEnergy":
			if ce, err := strconv.ParseFloat(value, 64); err == nil {
				entry.CollisionEnergy = &ce
			}
		case "RetentionTime":
			// May be comma-separated list, take first value
			rtStr, _, _ := strings.Cut(value, ",")
			if rt, err := strconv.ParseFloat(rtStr, 64); err == nil {
				entry.RetentionTime = &rt
			}
		case "Mods":
			mods = value
		}
	}
	return mods
}
