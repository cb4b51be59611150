// Package align aligns two peptides on both sequence homology and mass.
//
// Besides the usual identity, mismatch and gap steps an alignment may match
// a block of up to Steps residues of one peptide to a block of the other
// when their masses agree, which finds isobaric substitutions (N against
// GG) and swapped residues (PT against TP).
package align

import (
	"fmt"

	"github.com/ChrisMcGann/pepform/pkg/chem"
	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// Align aligns a and b. steps bounds the length of a block on either side
// and must be between 1 and MaxSteps.
func Align(a, b core.Simple, matrix *Matrix, tolerance Tolerance, ty Type, steps int) (Alignment, error) {
	if steps > MaxSteps {
		return Alignment{}, perr.ResourceLimit("Invalid alignment", fmt.Sprintf("block length %d exceeds the maximum of %d", steps, MaxSteps))
	}
	if steps < 1 {
		return Alignment{}, perr.Semantic("Invalid alignment", fmt.Sprintf("block length %d must be at least 1", steps), perr.Context{})
	}
	seqA, seqB := a.Peptide(), b.Peptide()
	g := newGrid(seqA.Len(), seqB.Len())
	massesA := blockMasses(steps, seqA.Sequence)
	massesB := blockMasses(steps, seqB.Sequence)

	if ty.leftA() {
		g.globalStart(true)
	}
	if ty.leftB() {
		g.globalStart(false)
	}

	high := cell{}
	for ia := 1; ia <= seqA.Len(); ia++ {
		for ib := 1; ib <= seqB.Len(); ib++ {
			var best Piece
			found := false
			for la := 0; la <= steps; la++ {
				for lb := 0; lb <= steps; lb++ {
					// a run of gaps is scored as consecutive single gaps
					if la == 0 && lb != 1 || la != 1 && lb == 0 || la > ia || lb > ib {
						continue
					}
					prev := g.at(ia-la, ib-lb)
					var piece Piece
					var ok bool
					switch {
					case la == 0 || lb == 0:
						local := GapStartPenalty
						if prev.StepA == 0 && la == 0 || prev.StepB == 0 && lb == 0 {
							local = GapExtendPenalty
						}
						piece, ok = newPiece(prev.Score, local, Gap, la, lb), true
					case la == 1 && lb == 1:
						piece, ok = scorePair(seqA.Sequence[ia-1], massesA[0][ia], seqB.Sequence[ib-1], massesB[0][ib], matrix, prev.Score, tolerance), true
					default:
						piece, ok = scoreBlock(seqA.Sequence[ia-la:ia], massesA[la-1][ia], seqB.Sequence[ib-lb:ib], massesB[lb-1][ib], prev.Score, tolerance)
					}
					if ok && (!found || piece.Score > best.Score) {
						best, found = piece, true
					}
				}
			}
			if best.Score >= high.score {
				high = cell{best.Score, ia, ib}
			}
			*g.at(ia, ib) = best
		}
	}

	score, startA, startB, path := g.trace(ty, high)
	out := Alignment{
		A:      seqA,
		B:      seqB,
		StartA: startA,
		StartB: startB,
		Path:   path,
		Score:  score,
		Type:   ty,
		Steps:  steps,
	}
	self := 0
	for _, e := range seqA.Sequence[startA : startA+out.LenA()] {
		self += int(matrix[e.AminoAcid][e.AminoAcid])
	}
	for _, e := range seqB.Sequence[startB : startB+out.LenB()] {
		self += int(matrix[e.AminoAcid][e.AminoAcid])
	}
	out.MaximalScore = self / 2
	if out.MaximalScore != 0 {
		out.NormalisedScore = float64(score) / float64(out.MaximalScore)
	}
	return out, nil
}

func newPiece(base int, local int8, match MatchType, la, lb int) Piece {
	return Piece{Score: base + int(local), Local: local, Match: match, StepA: uint8(la), StepB: uint8(lb)}
}

// sameElement reports whether two residues carry the same amino acid and
// modifications.
func sameElement(a, b core.SequenceElement) bool {
	return a.AminoAcid == b.AminoAcid && a.ModificationsFormula().Equal(b.ModificationsFormula())
}

func scorePair(a core.SequenceElement, massA []float64, b core.SequenceElement, massB []float64, matrix *Matrix, base int, tolerance Tolerance) Piece {
	same, within := sameElement(a, b), tolerance.AnyWithin(massA, massB)
	switch {
	case same && within:
		return newPiece(base, matrix[a.AminoAcid][b.AminoAcid], FullIdentity, 1, 1)
	case same:
		return newPiece(base, matrix[a.AminoAcid][b.AminoAcid]+MassMismatchPenalty, IdentityMassMismatch, 1, 1)
	case within:
		return newPiece(base, Isobaric, IsobaricMatch, 1, 1)
	}
	return newPiece(base, Mismatch, MismatchMatch, 1, 1)
}

// scoreBlock scores two blocks of which at least one is longer than one
// residue. Blocks of different mass cannot be matched.
func scoreBlock(a []core.SequenceElement, massA []float64, b []core.SequenceElement, massB []float64, base int, tolerance Tolerance) (Piece, bool) {
	if !tolerance.AnyWithin(massA, massB) {
		return Piece{}, false
	}
	if isRotation(a, b) {
		return newPiece(base, int8(int(BaseSpecial)+int(Rotated)*len(a)), Rotation, len(a), len(b)), true
	}
	return newPiece(base, int8(int(BaseSpecial)+int(Isobaric)*(len(a)+len(b))/2), IsobaricMatch, len(a), len(b)), true
}

// isRotation reports whether b is a permutation of a.
func isRotation(a, b []core.SequenceElement) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, x := range a {
		for j, y := range b {
			if !used[j] && sameElement(x, y) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

func elementFormulas(e core.SequenceElement) chem.Formulas {
	f := e.ModificationsFormula()
	for _, m := range e.PossibleModifications {
		f = f.Add(m.Modification.ChemicalFormula())
	}
	return chem.AddTo(e.AminoAcid.Formulas(), f)
}

// blockMasses returns, indexed by [size-1][end], the masses of the block of
// size residues ending before end. Blocks that do not fit are zero.
func blockMasses(steps int, seq []core.SequenceElement) [][][]float64 {
	out := make([][][]float64, steps)
	for size := 1; size <= steps; size++ {
		row := make([][]float64, len(seq)+1)
		for end := range row {
			if end < size {
				row[end] = []float64{0}
				continue
			}
			formulas := chem.Single(chem.Formula{})
			for _, e := range seq[end-size : end] {
				formulas = chem.Combine(formulas, elementFormulas(e))
			}
			masses := make([]float64, 0, len(formulas))
			for _, f := range formulas {
				if mass, ok := f.MonoisotopicMass(); ok {
					masses = append(masses, mass)
				}
			}
			row[end] = masses
		}
		out[size-1] = row
	}
	return out
}

type cell struct {
	score  int
	ia, ib int
}

// grid holds the best incoming step of every cell.
type grid struct {
	values [][]Piece
	a, b   int
}

func newGrid(a, b int) *grid {
	values := make([][]Piece, a+1)
	for i := range values {
		values[i] = make([]Piece, b+1)
	}
	return &grid{values: values, a: a, b: b}
}

func (g *grid) at(ia, ib int) *Piece {
	return &g.values[ia][ib]
}

// globalStart fills the first column (isA) or row with extending gaps so
// that the alignment has to start at the first residue.
func (g *grid) globalStart(isA bool) {
	n := g.b
	if isA {
		n = g.a
	}
	for i := 0; i <= n; i++ {
		step := 0
		if i != 0 {
			step = 1
		}
		if isA {
			*g.at(i, 0) = Piece{Score: i * int(GapExtendPenalty), Local: GapExtendPenalty, Match: Gap, StepA: uint8(step)}
		} else {
			*g.at(0, i) = Piece{Score: i * int(GapExtendPenalty), Local: GapExtendPenalty, Match: Gap, StepB: uint8(step)}
		}
	}
}

// end finds the cell the trace back starts from.
func (g *grid) end(ty Type, high cell) cell {
	switch {
	case ty.rightA() && ty.rightB():
		return cell{g.values[g.a][g.b].Score, g.a, g.b}
	case ty.rightB():
		best := cell{g.values[0][g.b].Score, 0, g.b}
		for ia := 1; ia <= g.a; ia++ {
			if s := g.values[ia][g.b].Score; s > best.score {
				best = cell{s, ia, g.b}
			}
		}
		return best
	case ty.rightA():
		best := cell{g.values[g.a][0].Score, g.a, 0}
		for ib := 1; ib <= g.b; ib++ {
			if s := g.values[g.a][ib].Score; s > best.score {
				best = cell{s, g.a, ib}
			}
		}
		return best
	}
	return high
}

// trace walks back from the end cell and returns the score, the start
// offsets and the path in sequence order.
func (g *grid) trace(ty Type, high cell) (int, int, int, []Piece) {
	c := g.end(ty, high)
	score := c.score
	var path []Piece
	for c.ia != 0 || c.ib != 0 {
		p := g.values[c.ia][c.ib]
		if p.StepA == 0 && p.StepB == 0 || ty == Local && p.Score < 0 {
			break
		}
		c = cell{0, c.ia - int(p.StepA), c.ib - int(p.StepB)}
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return score, c.ia, c.ib, path
}
