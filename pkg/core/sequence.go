package core

import (
	"github.com/ChrisMcGann/pepform/pkg/chem"
)

// AmbiguousModification is one candidate location of a modification whose
// position is not known exactly.
type AmbiguousModification struct {
	// ID indexes LinearPeptide.AmbiguousModifications.
	ID           int
	Modification Modification
	// LocalisationScore is the probability of this location, if known.
	LocalisationScore *float64
	// Group is the label the group was written with, empty for groups
	// created from unknown position or ranged notation.
	Group string
	// Preferred marks the location the modification was defined at.
	Preferred bool
}

// SequenceElement is one residue with its modifications.
type SequenceElement struct {
	AminoAcid             AminoAcid
	Modifications         []Modification
	PossibleModifications []AmbiguousModification
	// Ambiguous is the id of the (?..) stretch this residue belongs to, or
	// zero when its identity is certain.
	Ambiguous int
}

// NewElement creates an unmodified residue.
func NewElement(aa AminoAcid) SequenceElement {
	return SequenceElement{AminoAcid: aa}
}

func modificationsFormula(mods []Modification) chem.Formula {
	f := chem.Formula{}
	for _, m := range mods {
		f = f.Add(m.ChemicalFormula())
	}
	return f
}

// ModificationsFormula returns the summed formula of the definite
// modifications.
func (e SequenceElement) ModificationsFormula() chem.Formula {
	return modificationsFormula(e.Modifications)
}

// formulas returns the possible formulas of the residue. Each ambiguous
// modification not yet marked in placed is counted here and marked.
func (e SequenceElement) formulas(placed []bool) chem.Formulas {
	f := e.ModificationsFormula()
	for _, m := range e.PossibleModifications {
		if !placed[m.ID] {
			placed[m.ID] = true
			f = f.Add(m.Modification.ChemicalFormula())
		}
	}
	return chem.AddTo(e.AminoAcid.Formulas(), f)
}

// possible returns the ambiguous modification with the given id.
func (e SequenceElement) possible(id int) (AmbiguousModification, bool) {
	for _, m := range e.PossibleModifications {
		if m.ID == id {
			return m, true
		}
	}
	return AmbiguousModification{}, false
}

func (e SequenceElement) clone() SequenceElement {
	e.Modifications = append([]Modification(nil), e.Modifications...)
	e.PossibleModifications = append([]AmbiguousModification(nil), e.PossibleModifications...)
	return e
}
