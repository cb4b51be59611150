package align

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/core"
)

// Type selects which ends of both sequences are anchored. An anchored end
// must be part of the alignment, a free end may be left out.
type Type uint8

const (
	// Local leaves every end free.
	Local Type = iota
	// Global anchors both ends of both sequences.
	Global
	// GlobalA aligns all of A to any part of B.
	GlobalA
	// GlobalB aligns all of B to any part of A.
	GlobalB
)

var typeNames = map[Type]string{
	Local:   "local",
	Global:  "global",
	GlobalA: "global_a",
	GlobalB: "global_b",
}

func (t Type) String() string {
	return typeNames[t]
}

// ParseType parses "local", "global", "global_a" or "global_b".
func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		if strings.EqualFold(s, name) {
			return t, true
		}
	}
	return 0, false
}

func (t Type) leftA() bool  { return t == Global || t == GlobalA }
func (t Type) leftB() bool  { return t == Global || t == GlobalB }
func (t Type) rightA() bool { return t == Global || t == GlobalA }
func (t Type) rightB() bool { return t == Global || t == GlobalB }

// MatchType classifies a step of an alignment.
type MatchType uint8

const (
	Gap MatchType = iota
	FullIdentity
	IdentityMassMismatch
	IsobaricMatch
	Rotation
	MismatchMatch
)

func (m MatchType) symbol() byte {
	switch m {
	case FullIdentity:
		return '='
	case IdentityMassMismatch:
		return 'm'
	case IsobaricMatch:
		return 'i'
	case Rotation:
		return 'r'
	case MismatchMatch:
		return 'X'
	}
	return '-'
}

// Piece is one step of an alignment path: StepA residues of A matched to
// StepB residues of B.
type Piece struct {
	// Score is the cumulative score up to and including this step.
	Score int
	Local int8
	Match MatchType
	StepA uint8
	StepB uint8
}

// Alignment is the result of Align.
type Alignment struct {
	A, B            core.LinearPeptide
	StartA, StartB  int
	Path            []Piece
	Score           int
	MaximalScore    int
	NormalisedScore float64
	Type            Type
	Steps           int
}

// LenA returns the number of residues of A covered by the path.
func (a Alignment) LenA() int {
	n := 0
	for _, p := range a.Path {
		n += int(p.StepA)
	}
	return n
}

// LenB returns the number of residues of B covered by the path.
func (a Alignment) LenB() int {
	n := 0
	for _, p := range a.Path {
		n += int(p.StepB)
	}
	return n
}

// Short renders the path as runs of steps: "=" identity, "m" identity with
// a different mass, "i" isobaric, "r" rotation, "X" mismatch, "I" an extra
// residue of A and "D" an extra residue of B. Steps of more than one residue
// carry their sizes, e.g. "1r(2:2)".
func (a Alignment) Short() string {
	var sb strings.Builder
	token := func(p Piece) string {
		switch {
		case p.Match == Gap && p.StepB == 0:
			return "I"
		case p.Match == Gap:
			return "D"
		case p.StepA == 1 && p.StepB == 1:
			return string(p.Match.symbol())
		}
		return fmt.Sprintf("%c(%d:%d)", p.Match.symbol(), p.StepA, p.StepB)
	}
	run, last := 0, ""
	for _, p := range a.Path {
		t := token(p)
		if t != last && run > 0 {
			fmt.Fprintf(&sb, "%d%s", run, last)
			run = 0
		}
		last = t
		run++
	}
	if run > 0 {
		fmt.Fprintf(&sb, "%d%s", run, last)
	}
	return sb.String()
}

// Stats summarises an alignment.
type Stats struct {
	// Identical counts residues of A in identity steps.
	Identical int
	// MassSimilar counts residues of A in identity, isobaric or rotation
	// steps.
	MassSimilar int
	// Gaps counts gap steps.
	Gaps int
	// Length is the number of residues of the longer aligned region.
	Length int
}

// Identity returns the fraction of identical residues.
func (s Stats) Identity() float64 {
	if s.Length == 0 {
		return 0
	}
	return float64(s.Identical) / float64(s.Length)
}

// Stats computes the alignment statistics.
func (a Alignment) Stats() Stats {
	var s Stats
	for _, p := range a.Path {
		switch p.Match {
		case FullIdentity:
			s.Identical += int(p.StepA)
			s.MassSimilar += int(p.StepA)
		case IsobaricMatch, Rotation:
			s.MassSimilar += int(p.StepA)
		case Gap:
			s.Gaps++
		}
	}
	s.Length = max(a.LenA(), a.LenB())
	return s
}

// AlignedA returns the covered part of A.
func (a Alignment) AlignedA() core.LinearPeptide {
	return a.A.SubPeptide(a.StartA, a.StartA+a.LenA())
}

// AlignedB returns the covered part of B.
func (a Alignment) AlignedB() core.LinearPeptide {
	return a.B.SubPeptide(a.StartB, a.StartB+a.LenB())
}
