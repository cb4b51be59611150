package core

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
)

// Ontology is the namespace of a predefined modification.
type Ontology uint8

const (
	Unimod Ontology = iota
	PsiMod
	XlMod
	Gnome
	Custom
)

// Ontologies lists every ontology in name lookup order.
var Ontologies = []Ontology{Unimod, PsiMod, XlMod, Gnome, Custom}

// Prefix returns the short notation prefix ("U", "M", "X", "G", "C").
func (o Ontology) Prefix() string {
	return [...]string{"U", "M", "X", "G", "C"}[o]
}

func (o Ontology) String() string {
	return [...]string{"Unimod", "PSI-MOD", "XL-MOD", "GNO", "Custom"}[o]
}

// Accession renders a numeric id the way the ontology writes it.
func (o Ontology) Accession(id int) string {
	switch o {
	case Unimod:
		return fmt.Sprintf("UNIMOD:%d", id)
	case PsiMod:
		return fmt.Sprintf("MOD:%05d", id)
	case XlMod:
		return fmt.Sprintf("XLMOD:%05d", id)
	case Custom:
		return fmt.Sprintf("C:%d", id)
	}
	return ""
}

// OntologyEntry is one predefined modification.
type OntologyEntry struct {
	Ontology      Ontology
	ID            int
	Name          string
	Synonyms      []string
	Formula       chem.Formula
	Specificities []Specificity
	Glycan        *GlycanStructure
}

// Allows reports whether the entry may sit on residue aa at pos. Entries
// without specificities are allowed everywhere.
func (e *OntologyEntry) Allows(aa AminoAcid, pos PeptidePosition) bool {
	if len(e.Specificities) == 0 {
		return true
	}
	for _, s := range e.Specificities {
		if s.Allows(aa, pos) {
			return true
		}
	}
	return false
}

// AllowsTerminal reports whether the entry may be the N or C terminal
// modification next to residue aa.
func (e *OntologyEntry) AllowsTerminal(aa AminoAcid, nTerm bool) bool {
	if len(e.Specificities) == 0 {
		return true
	}
	for _, s := range e.Specificities {
		if s.AllowsTerminal(aa, nTerm) {
			return true
		}
	}
	return false
}

// ModificationKind tells which field of a Modification is meaningful.
type ModificationKind uint8

const (
	KindMass ModificationKind = iota
	KindFormula
	KindGlycan
	KindPredefined
	KindInfo
	KindCrossLink
)

// Modification is a chemical change attached to a residue or terminus.
type Modification struct {
	Kind    ModificationKind
	Mass    float64
	Formula chem.Formula
	Glycan  GlycanComposition
	Entry   *OntologyEntry
	Info    string
	Link    *CrossLink
	// Tags holds the further pipe separated tags written with this
	// modification. They are kept for display only.
	Tags []Modification
}

// CrossLink is one end of a cross-link or branch. The linker contributes
// its formula only on the owning end.
type CrossLink struct {
	Label  string
	Linker *Modification
	Owner  bool
}

// IsBranch reports whether the link is a branch.
func (c *CrossLink) IsBranch() bool {
	return strings.EqualFold(c.Label, "BRANCH")
}

// MassModification creates a modification known only by its mass.
func MassModification(mass float64) Modification {
	return Modification{Kind: KindMass, Mass: mass}
}

// FormulaModification creates a modification with an explicit formula.
func FormulaModification(f chem.Formula) Modification {
	return Modification{Kind: KindFormula, Formula: f}
}

// Predefined creates a modification from a database entry.
func Predefined(e *OntologyEntry) Modification {
	return Modification{Kind: KindPredefined, Entry: e}
}

// ChemicalFormula returns the formula the modification adds.
func (m Modification) ChemicalFormula() chem.Formula {
	switch m.Kind {
	case KindMass:
		return chem.MassOnly(m.Mass)
	case KindFormula:
		return m.Formula
	case KindGlycan:
		return m.Glycan.Formula()
	case KindPredefined:
		return m.Entry.Formula
	case KindCrossLink:
		if m.Link.Owner && m.Link.Linker != nil {
			return m.Link.Linker.ChemicalFormula()
		}
	}
	return chem.Formula{}
}

// IsPossible reports whether the placement rules allow the modification on
// residue aa at pos.
func (m Modification) IsPossible(aa AminoAcid, pos PeptidePosition) bool {
	if m.Kind == KindPredefined {
		return m.Entry.Allows(aa, pos)
	}
	return true
}

// IsPossibleTerminal reports whether the modification may be the N or C
// terminal modification next to residue aa.
func (m Modification) IsPossibleTerminal(aa AminoAcid, nTerm bool) bool {
	if m.Kind == KindPredefined {
		return m.Entry.AllowsTerminal(aa, nTerm)
	}
	return true
}

// specificity returns the first specificity matching the position.
func (m Modification) specificity(aa AminoAcid, pos PeptidePosition) (Specificity, bool) {
	if m.Kind != KindPredefined {
		return Specificity{}, false
	}
	for _, s := range m.Entry.Specificities {
		if s.Allows(aa, pos) {
			return s, true
		}
	}
	return Specificity{}, false
}

// NeutralLosses returns the modification specific losses at the position.
func (m Modification) NeutralLosses(aa AminoAcid, pos PeptidePosition) []NeutralLoss {
	s, _ := m.specificity(aa, pos)
	return s.NeutralLosses
}

// Diagnostics returns the diagnostic ion formulas of the modification at
// the position. Glycans report their monosaccharide oxonium ions.
func (m Modification) Diagnostics(aa AminoAcid, pos PeptidePosition) []chem.Formula {
	switch m.Kind {
	case KindGlycan:
		out := make([]chem.Formula, 0, len(m.Glycan))
		for _, c := range m.Glycan {
			out = append(out, c.Sugar.Formula())
		}
		return out
	case KindPredefined:
		s, _ := m.specificity(aa, pos)
		return s.Diagnostics
	}
	return nil
}

// GlycanStructure returns the attached glycan tree, if any.
func (m Modification) GlycanStructure() *GlycanStructure {
	if m.Kind == KindPredefined {
		return m.Entry.Glycan
	}
	return nil
}

// String renders the canonical notation of the modification without any
// ambiguity group label.
func (m Modification) String() string {
	var sb strings.Builder
	switch m.Kind {
	case KindMass:
		sb.WriteString(chem.FormatSigned(m.Mass))
	case KindFormula:
		sb.WriteString("Formula:")
		sb.WriteString(m.Formula.String())
	case KindGlycan:
		sb.WriteString("Glycan:")
		sb.WriteString(m.Glycan.String())
	case KindPredefined:
		sb.WriteString(m.Entry.Ontology.Prefix())
		sb.WriteByte(':')
		sb.WriteString(m.Entry.Name)
	case KindInfo:
		sb.WriteString("INFO:")
		sb.WriteString(m.Info)
	case KindCrossLink:
		if m.Link.Owner && m.Link.Linker != nil {
			sb.WriteString(m.Link.Linker.String())
		}
	}
	for _, t := range m.Tags {
		sb.WriteByte('|')
		sb.WriteString(t.String())
	}
	if m.Kind == KindCrossLink {
		sb.WriteByte('#')
		sb.WriteString(m.Link.Label)
	}
	return sb.String()
}
