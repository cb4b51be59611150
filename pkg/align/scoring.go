package align

import (
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/core"
)

// Scores of the alignment steps. Block scores are computed per step and must
// fit in an int8, which bounds the block length to MaxSteps.
const (
	GapStartPenalty     int8 = -5
	GapExtendPenalty    int8 = -1
	MassMismatchPenalty int8 = -1
	Isobaric            int8 = 2
	Mismatch            int8 = -1
	Rotated             int8 = 3
	BaseSpecial         int8 = 1
)

// MaxSteps is the largest block length Align accepts.
const MaxSteps = 32

// Matrix is a symmetric substitution matrix indexed by core.AminoAcid.
type Matrix [core.TotalAminoAcids][core.TotalAminoAcids]int8

// blosum62 is in core.AminoAcid order: ARNDCQEGHILKMFPSTWYVBZX.
var blosum62 = [23][23]int8{
	{4, -1, -2, -2, 0, -1, -1, 0, -2, -1, -1, -1, -1, -2, -1, 1, 0, -3, -2, 0, -2, -1, 0},
	{-1, 5, 0, -2, -3, 1, 0, -2, 0, -3, -2, 2, -1, -3, -2, -1, -1, -3, -2, -3, -1, 0, -1},
	{-2, 0, 6, 1, -3, 0, 0, 0, 1, -3, -3, 0, -2, -3, -2, 1, 0, -4, -2, -3, 3, 0, -1},
	{-2, -2, 1, 6, -3, 0, 2, -1, -1, -3, -4, -1, -3, -3, -1, 0, -1, -4, -3, -3, 4, 1, -1},
	{0, -3, -3, -3, 9, -3, -4, -3, -3, -1, -1, -3, -1, -2, -3, -1, -1, -2, -2, -1, -3, -3, -2},
	{-1, 1, 0, 0, -3, 5, 2, -2, 0, -3, -2, 1, 0, -3, -1, 0, -1, -2, -1, -2, 0, 3, -1},
	{-1, 0, 0, 2, -4, 2, 5, -2, 0, -3, -3, 1, -2, -3, -1, 0, -1, -3, -2, -2, 1, 4, -1},
	{0, -2, 0, -1, -3, -2, -2, 6, -2, -4, -4, -2, -3, -3, -2, 0, -2, -2, -3, -3, -1, -2, -1},
	{-2, 0, 1, -1, -3, 0, 0, -2, 8, -3, -3, -1, -2, -1, -2, -1, -2, -2, 2, -3, 0, 0, -1},
	{-1, -3, -3, -3, -1, -3, -3, -4, -3, 4, 2, -3, 1, 0, -3, -2, -1, -3, -1, 3, -3, -3, -1},
	{-1, -2, -3, -4, -1, -2, -3, -4, -3, 2, 4, -2, 2, 0, -3, -2, -1, -2, -1, 1, -4, -3, -1},
	{-1, 2, 0, -1, -3, 1, 1, -2, -1, -3, -2, 5, -1, -3, -1, 0, -1, -3, -2, -2, 0, 1, -1},
	{-1, -1, -2, -3, -1, 0, -2, -3, -2, 1, 2, -1, 5, 0, -2, -1, -1, -1, -1, 1, -3, -1, -1},
	{-2, -3, -3, -3, -2, -3, -3, -3, -1, 0, 0, -3, 0, 6, -4, -2, -2, 1, 3, -1, -3, -3, -1},
	{-1, -2, -2, -1, -3, -1, -1, -2, -2, -3, -3, -1, -2, -4, 7, -1, -1, -4, -3, -2, -2, -1, -2},
	{1, -1, 1, 0, -1, 0, 0, 0, -1, -2, -2, 0, -1, -2, -1, 4, 1, -3, -2, -2, 0, 0, 0},
	{0, -1, 0, -1, -1, -1, -1, -2, -2, -1, -1, -1, -1, -2, -1, 1, 5, -2, -2, 0, -1, -1, 0},
	{-3, -3, -4, -4, -2, -2, -3, -2, -2, -3, -2, -3, -1, 1, -4, -3, -2, 11, 2, -3, -4, -3, -2},
	{-2, -2, -2, -3, -2, -1, -2, -3, 2, -1, -1, -2, -1, 3, -3, -2, -2, 2, 7, -1, -3, -2, -1},
	{0, -3, -3, -3, -1, -2, -2, -3, -3, 3, 1, -2, 1, -1, -2, -2, 0, -3, -1, 4, -3, -2, -1},
	{-2, -1, 3, 4, -3, 0, 1, -1, 0, -3, -4, 0, -3, -3, -2, 0, -1, -4, -3, -3, 4, 1, -1},
	{-1, 0, 0, 1, -3, 3, 4, -2, 0, -3, -3, 1, -1, -3, -1, 0, -1, -3, -2, -2, 1, 4, -1},
	{0, -1, -1, -1, -2, -1, -1, -1, -1, -1, -1, -1, -1, -1, -2, 0, 0, -2, -1, -1, -1, -1, -1},
}

// stand-ins for the residues the published table does not cover
var substitutes = map[core.AminoAcid]core.AminoAcid{
	core.AmbiguousLeucine: core.Leucine,
	core.Selenocysteine:   core.Cysteine,
	core.Pyrrolysine:      core.Lysine,
}

func table(a core.AminoAcid) core.AminoAcid {
	if s, ok := substitutes[a]; ok {
		return s
	}
	return a
}

// BLOSUM62 is the BLOSUM62 matrix. J, U and O score as L, C and K.
var BLOSUM62 = func() *Matrix {
	var m Matrix
	for a := 0; a < core.TotalAminoAcids; a++ {
		for b := 0; b < core.TotalAminoAcids; b++ {
			m[a][b] = blosum62[table(core.AminoAcid(a))][table(core.AminoAcid(b))]
		}
	}
	return &m
}()

// Identity scores 8 for equal residues and -1 otherwise.
var Identity = func() *Matrix {
	var m Matrix
	for a := 0; a < core.TotalAminoAcids; a++ {
		for b := 0; b < core.TotalAminoAcids; b++ {
			m[a][b] = -1
		}
		m[a][a] = 8
	}
	return &m
}()

// MatrixByName returns a built in matrix: "blosum62" or "identity".
func MatrixByName(name string) (*Matrix, bool) {
	switch strings.ToLower(name) {
	case "blosum62":
		return BLOSUM62, true
	case "identity":
		return Identity, true
	}
	return nil, false
}
