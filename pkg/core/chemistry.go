// Package core provides the peptide model, modifications and the mass and
// fragment calculations built on it.
package core

import (
	"math"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
)

// AminoAcid identifies a residue. The order of the first 23 values matches
// the BLOSUM substitution matrices.
type AminoAcid uint8

const (
	Alanine AminoAcid = iota
	Arginine
	Asparagine
	AsparticAcid
	Cysteine
	Glutamine
	GlutamicAcid
	Glycine
	Histidine
	Isoleucine
	Leucine
	Lysine
	Methionine
	Phenylalanine
	Proline
	Serine
	Threonine
	Tryptophan
	Tyrosine
	Valine
	AmbiguousAsparagine // B: asparagine or aspartic acid
	AmbiguousGlutamine  // Z: glutamine or glutamic acid
	Unknown             // X
	AmbiguousLeucine    // J: leucine or isoleucine
	Selenocysteine      // U
	Pyrrolysine         // O
)

// TotalAminoAcids is the number of AminoAcid values.
const TotalAminoAcids = 26

// Common formulas.
var (
	Water    = chem.MustParseFormula("H2O1")
	Ammonia  = chem.MustParseFormula("N1H3")
	Hydrogen = chem.MustParseFormula("H1")
	Proton   = chem.MustParseFormula("H1e-1")
	backbone = chem.MustParseFormula("C2H2N1O1")
)

// Composition holds the atom counts of a residue (amino acid minus water).
type Composition struct {
	C, H, N, O, S, Se int
}

// Formula converts the composition into a formula.
func (c Composition) Formula() chem.Formula {
	return chem.NewFormula(
		chem.Entry{Element: chem.C, Count: c.C},
		chem.Entry{Element: chem.H, Count: c.H},
		chem.Entry{Element: chem.N, Count: c.N},
		chem.Entry{Element: chem.O, Count: c.O},
		chem.Entry{Element: chem.S, Count: c.S},
		chem.Entry{Element: chem.Se, Count: c.Se},
	)
}

// ResidueComposition maps the single letter code to the residue composition.
var ResidueComposition = map[byte]Composition{
	'A': {C: 3, H: 5, N: 1, O: 1},
	'R': {C: 6, H: 12, N: 4, O: 1},
	'N': {C: 4, H: 6, N: 2, O: 2},
	'D': {C: 4, H: 5, N: 1, O: 3},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'Q': {C: 5, H: 8, N: 2, O: 2},
	'E': {C: 5, H: 7, N: 1, O: 3},
	'G': {C: 2, H: 3, N: 1, O: 1},
	'H': {C: 6, H: 7, N: 3, O: 1},
	'I': {C: 6, H: 11, N: 1, O: 1},
	'L': {C: 6, H: 11, N: 1, O: 1},
	'K': {C: 6, H: 12, N: 2, O: 1},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1},
	'P': {C: 5, H: 7, N: 1, O: 1},
	'S': {C: 3, H: 5, N: 1, O: 2},
	'T': {C: 4, H: 7, N: 1, O: 2},
	'W': {C: 11, H: 10, N: 2, O: 1},
	'Y': {C: 9, H: 9, N: 1, O: 2},
	'V': {C: 5, H: 9, N: 1, O: 1},
	'J': {C: 6, H: 11, N: 1, O: 1},
	'U': {C: 3, H: 5, N: 1, O: 1, Se: 1},
	'O': {C: 12, H: 19, N: 3, O: 2},
}

const codes = "ARNDCQEGHILKMFPSTWYVBZXJUO"

var names = [TotalAminoAcids]string{
	"Alanine", "Arginine", "Asparagine", "AsparticAcid", "Cysteine", "Glutamine",
	"GlutamicAcid", "Glycine", "Histidine", "Isoleucine", "Leucine", "Lysine",
	"Methionine", "Phenylalanine", "Proline", "Serine", "Threonine", "Tryptophan",
	"Tyrosine", "Valine", "AmbiguousAsparagine", "AmbiguousGlutamine", "Unknown",
	"AmbiguousLeucine", "Selenocysteine", "Pyrrolysine",
}

// satelliteGroups lists, per residue, the side chain groups beyond the beta
// carbon that are lost when forming d and w ions. Residues with a branched
// beta carbon have two alternatives.
var satelliteGroups = map[AminoAcid][]chem.Formula{
	Arginine:       {chem.MustParseFormula("C3H8N3")},
	Asparagine:     {chem.MustParseFormula("C1H2N1O1")},
	AsparticAcid:   {chem.MustParseFormula("C1H1O2")},
	Cysteine:       {chem.MustParseFormula("H1S1")},
	Glutamine:      {chem.MustParseFormula("C2H4N1O1")},
	GlutamicAcid:   {chem.MustParseFormula("C2H3O2")},
	Histidine:      {chem.MustParseFormula("C3H3N2")},
	Isoleucine:     {chem.MustParseFormula("C2H5"), chem.MustParseFormula("C1H3")},
	Leucine:        {chem.MustParseFormula("C3H7")},
	Lysine:         {chem.MustParseFormula("C3H8N1")},
	Methionine:     {chem.MustParseFormula("C2H5S1")},
	Phenylalanine:  {chem.MustParseFormula("C6H5")},
	Serine:         {chem.MustParseFormula("H1O1")},
	Threonine:      {chem.MustParseFormula("H1O1"), chem.MustParseFormula("C1H3")},
	Tryptophan:     {chem.MustParseFormula("C8H6N1")},
	Tyrosine:       {chem.MustParseFormula("C6H5O1")},
	Valine:         {chem.MustParseFormula("C1H3")},
	Selenocysteine: {chem.MustParseFormula("H1Se1")},
}

var residueFormulas = func() [TotalAminoAcids]chem.Formulas {
	var out [TotalAminoAcids]chem.Formulas
	for i := 0; i < TotalAminoAcids; i++ {
		code := codes[i]
		if comp, ok := ResidueComposition[code]; ok {
			out[i] = chem.Single(comp.Formula())
		}
	}
	out[AmbiguousAsparagine] = chem.Formulas{out[Asparagine][0], out[AsparticAcid][0]}
	out[AmbiguousGlutamine] = chem.Formulas{out[Glutamine][0], out[GlutamicAcid][0]}
	out[Unknown] = chem.Single(chem.Formula{})
	return out
}()

// ParseAminoAcid converts a one letter code, in either case.
func ParseAminoAcid(b byte) (AminoAcid, bool) {
	i := strings.IndexByte(codes, upper(b))
	if i < 0 {
		return 0, false
	}
	return AminoAcid(i), true
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// Char returns the one letter code.
func (a AminoAcid) Char() byte {
	return codes[a]
}

// String returns the one letter code.
func (a AminoAcid) String() string {
	return string(codes[a])
}

// Name returns the full name.
func (a AminoAcid) Name() string {
	return names[a]
}

// Formulas returns the possible residue formulas. B and Z have two options.
func (a AminoAcid) Formulas() chem.Formulas {
	return residueFormulas[a]
}

// IsAmbiguous reports whether the code stands for more than one residue.
func (a AminoAcid) IsAmbiguous() bool {
	return a == AmbiguousAsparagine || a == AmbiguousGlutamine
}

// SideChain returns the side chain formulas (residue minus backbone).
func (a AminoAcid) SideChain() chem.Formulas {
	return chem.AddTo(a.Formulas(), backbone.Mul(-1))
}

// SatelliteGroups returns the groups lost when forming d and w ions.
func (a AminoAcid) SatelliteGroups() []chem.Formula {
	return satelliteGroups[a]
}

// CanonicalIdentical reports whether a and b may denote the same residue:
// equal codes, or an ambiguous code covering the other.
func (a AminoAcid) CanonicalIdentical(b AminoAcid) bool {
	if a == b {
		return true
	}
	covers := func(x, y AminoAcid) bool {
		switch x {
		case AmbiguousAsparagine:
			return y == Asparagine || y == AsparticAcid
		case AmbiguousGlutamine:
			return y == Glutamine || y == GlutamicAcid
		case AmbiguousLeucine:
			return y == Leucine || y == Isoleucine
		}
		return false
	}
	return covers(a, b) || covers(b, a)
}

// RoundFloat rounds a float to the specified number of decimal places.
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// CalculateMZ converts a neutral monoisotopic mass into the m/z of the
// protonated ion with the given charge.
func CalculateMZ(neutralMass float64, charge int) float64 {
	proton, _ := Proton.MonoisotopicMass()
	if charge == 0 {
		return neutralMass
	}
	return (neutralMass + float64(charge)*proton) / math.Abs(float64(charge))
}
