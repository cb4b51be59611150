package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LibraryEntry is one peptide read from a spectral library, with the
// metadata needed to generate and store its theoretical fragments.
type LibraryEntry struct {
	// Required fields
	Name    string // Name field as written in the library
	Peptide ComplexPeptide
	Charge  int // Precursor charge state

	// Optional metadata
	PrecursorMZ     float64  // Precursor m/z reported by the library
	RetentionTime   *float64 // RT or iRT
	CollisionEnergy *float64 // Normalized collision energy
	Sloppy          bool     // The name needed sloppy parsing

	// Internal tracking
	SourceFile   string
	SourceFormat string // msp, sptxt
}

// ValidationError represents an error found during entry validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that an entry meets all requirements for processing.
func (e *LibraryEntry) Validate() error {
	var errs []string

	peptides := e.Peptide.Peptides()
	if len(peptides) == 0 {
		errs = append(errs, "peptide is required")
	}
	for i, p := range peptides {
		if p.Len() == 0 {
			errs = append(errs, fmt.Sprintf("peptide %d has no residues", i))
		}
	}
	if e.Charge <= 0 {
		errs = append(errs, "charge must be positive")
	}
	if math.IsNaN(e.PrecursorMZ) || math.IsInf(e.PrecursorMZ, 0) || e.PrecursorMZ < 0 {
		errs = append(errs, "precursor m/z is invalid")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "LibraryEntry",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// TheoreticalMZ returns the m/z of the first formula of the first
// peptidoform at the entry charge.
func (e *LibraryEntry) TheoreticalMZ() (float64, bool) {
	if len(e.Peptide.Peptidoforms) == 0 {
		return 0, false
	}
	formulas, err := e.Peptide.Peptidoforms[0].Formulas()
	if err != nil || len(formulas) == 0 {
		return 0, false
	}
	mass, ok := formulas[0].MonoisotopicMass()
	if !ok {
		return 0, false
	}
	return CalculateMZ(mass, e.Charge), true
}

// PrecursorError returns the difference between the reported and the
// theoretical precursor m/z in ppm.
func (e *LibraryEntry) PrecursorError() (float64, bool) {
	if e.PrecursorMZ == 0 {
		return 0, false
	}
	mz, ok := e.TheoreticalMZ()
	if !ok {
		return 0, false
	}
	return (e.PrecursorMZ - mz) / mz * 1e6, true
}

// Key returns the entry name in format "Notation/Charge"
func (e *LibraryEntry) Key() string {
	return fmt.Sprintf("%s/%d", e.Peptide, e.Charge)
}

// ApplyModification adds m to the single peptide of the entry at position:
// -1 for the N terminus, the peptide length for the C terminus and a
// residue index otherwise.
func (e *LibraryEntry) ApplyModification(position int, m Modification) error {
	if len(e.Peptide.Peptidoforms) != 1 || len(e.Peptide.Peptidoforms[0].Chains) != 1 {
		return fmt.Errorf("cannot place a modification on a multi peptide entry")
	}
	p := &e.Peptide.Peptidoforms[0].Chains[0]
	switch {
	case position == -1:
		p.NTerm = &m
	case position == p.Len():
		p.CTerm = &m
	case position >= 0 && position < p.Len():
		p.Sequence[position].Modifications = append(p.Sequence[position].Modifications, m)
	default:
		return fmt.Errorf("modification position %d out of range for length %d", position, p.Len())
	}
	return nil
}

// ApplyMods applies a spectral library "Mods=" value such as
// "2/-1,A,Acetyl/4,M,Oxidation": a count followed by position, residue and
// name triplets. Position -1 is the N terminus. Names are resolved through
// db.SloppyLookup.
func (e *LibraryEntry) ApplyMods(db *ModDatabase, value string) error {
	parts := strings.Split(strings.TrimSpace(value), "/")
	count, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("invalid modification count '%s': %w", parts[0], err)
	}
	if count != len(parts)-1 {
		return fmt.Errorf("expected %d modifications, found %d", count, len(parts)-1)
	}

	for _, part := range parts[1:] {
		fields := strings.Split(part, ",")
		if len(fields) != 3 {
			return fmt.Errorf("invalid modification '%s', expected 'position,residue,name'", part)
		}
		pos, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid modification position '%s': %w", fields[0], err)
		}
		var aa *AminoAcid
		if len(fields[1]) == 1 {
			if parsed, ok := ParseAminoAcid(fields[1][0]); ok {
				aa = &parsed
			}
		}
		mod, ok := db.SloppyLookup(fields[2], aa)
		if !ok {
			return fmt.Errorf("unknown modification '%s'", fields[2])
		}
		if err := e.ApplyModification(pos, mod); err != nil {
			return err
		}
	}
	return nil
}
