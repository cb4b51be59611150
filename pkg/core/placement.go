package core

import (
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
)

// PeptidePosition locates a residue inside a peptide.
type PeptidePosition struct {
	SequenceIndex  int
	SeriesNumber   int
	SequenceLength int
}

// NPosition returns the position of residue index counted from the N
// terminus.
func NPosition(index, length int) PeptidePosition {
	return PeptidePosition{SequenceIndex: index, SeriesNumber: index + 1, SequenceLength: length}
}

// CPosition returns the position of residue index counted from the C
// terminus.
func CPosition(index, length int) PeptidePosition {
	return PeptidePosition{SequenceIndex: index, SeriesNumber: length - index, SequenceLength: length}
}

// IsNTerm reports whether the residue is the first one.
func (p PeptidePosition) IsNTerm() bool { return p.SequenceIndex == 0 }

// IsCTerm reports whether the residue is the last one.
func (p PeptidePosition) IsCTerm() bool { return p.SequenceIndex == p.SequenceLength-1 }

// Site is where a placement rule allows a modification.
type Site uint8

const (
	Anywhere Site = iota
	AnyNTerm
	AnyCTerm
	ProteinNTerm
	ProteinCTerm
)

// PlacementRule restricts a modification to residues and/or termini. An
// empty residue list allows every residue.
type PlacementRule struct {
	AminoAcids []AminoAcid
	Site       Site
}

func (r PlacementRule) matchesResidue(aa AminoAcid) bool {
	if len(r.AminoAcids) == 0 {
		return true
	}
	for _, a := range r.AminoAcids {
		if a == aa || a.CanonicalIdentical(aa) {
			return true
		}
	}
	return false
}

// Allows reports whether the rule permits a modification on residue aa at
// position pos.
func (r PlacementRule) Allows(aa AminoAcid, pos PeptidePosition) bool {
	if !r.matchesResidue(aa) {
		return false
	}
	switch r.Site {
	case AnyNTerm, ProteinNTerm:
		return pos.IsNTerm()
	case AnyCTerm, ProteinCTerm:
		return pos.IsCTerm()
	}
	return true
}

// AllowsTerminal reports whether the rule permits the modification as the
// N (nTerm true) or C terminal modification next to residue aa.
func (r PlacementRule) AllowsTerminal(aa AminoAcid, nTerm bool) bool {
	if !r.matchesResidue(aa) {
		return false
	}
	if nTerm {
		return r.Site == AnyNTerm || r.Site == ProteinNTerm
	}
	return r.Site == AnyCTerm || r.Site == ProteinCTerm
}

// ParseRule parses a rule written as "STY", "N-term", "N-term:Q" or
// "C-term:K".
func ParseRule(value string) (PlacementRule, bool) {
	lower := strings.ToLower(value)
	rule := PlacementRule{}
	residues := value
	switch {
	case strings.HasPrefix(lower, "protein n-term"):
		rule.Site, residues = ProteinNTerm, value[len("protein n-term"):]
	case strings.HasPrefix(lower, "protein c-term"):
		rule.Site, residues = ProteinCTerm, value[len("protein c-term"):]
	case strings.HasPrefix(lower, "n-term"):
		rule.Site, residues = AnyNTerm, value[len("n-term"):]
	case strings.HasPrefix(lower, "c-term"):
		rule.Site, residues = AnyCTerm, value[len("c-term"):]
	}
	if rule.Site != Anywhere {
		if residues == "" {
			return rule, true
		}
		if residues[0] != ':' {
			return rule, false
		}
		residues = residues[1:]
	}
	if residues == "" {
		return rule, false
	}
	for i := 0; i < len(residues); i++ {
		aa, ok := ParseAminoAcid(residues[i])
		if !ok {
			return rule, false
		}
		rule.AminoAcids = append(rule.AminoAcids, aa)
	}
	return rule, true
}

// NeutralLoss is a small molecule lost (or gained) without changing charge.
type NeutralLoss struct {
	Formula chem.Formula
	Gain    bool
}

// Loss creates a neutral loss of the given formula literal.
func Loss(formula string) NeutralLoss {
	return NeutralLoss{Formula: chem.MustParseFormula(formula)}
}

// Apply returns f after the loss or gain.
func (n NeutralLoss) Apply(f chem.Formula) chem.Formula {
	if n.Gain {
		return f.Add(n.Formula)
	}
	return f.Sub(n.Formula)
}

func (n NeutralLoss) String() string {
	if n.Gain {
		return "+" + n.Formula.String()
	}
	return "-" + n.Formula.String()
}

// Specificity groups placement rules with the neutral losses and diagnostic
// ions a modification shows when placed according to them.
type Specificity struct {
	Rules         []PlacementRule
	NeutralLosses []NeutralLoss
	Diagnostics   []chem.Formula
}

// Allows reports whether any rule permits the residue position.
func (s Specificity) Allows(aa AminoAcid, pos PeptidePosition) bool {
	for _, r := range s.Rules {
		if r.Allows(aa, pos) {
			return true
		}
	}
	return false
}

// AllowsTerminal reports whether any rule permits the terminal slot.
func (s Specificity) AllowsTerminal(aa AminoAcid, nTerm bool) bool {
	for _, r := range s.Rules {
		if r.AllowsTerminal(aa, nTerm) {
			return true
		}
	}
	return false
}
