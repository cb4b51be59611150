package core

import (
	"strconv"
	"strings"
)

func writeScore(sb *strings.Builder, score *float64) {
	if score == nil {
		return
	}
	sb.WriteByte('(')
	sb.WriteString(strconv.FormatFloat(*score, 'f', -1, 64))
	sb.WriteByte(')')
}

// writeAmbiguous writes an ambiguous modification as it appears in a
// bracket: the full definition at its preferred location and a reference
// everywhere else.
func writeAmbiguous(sb *strings.Builder, m AmbiguousModification, define bool) {
	if define {
		sb.WriteString(m.Modification.String())
	}
	if m.Group != "" {
		sb.WriteByte('#')
		sb.WriteString(m.Group)
	}
	writeScore(sb, m.LocalisationScore)
}

// definitionSite returns the position the definition of id is written at:
// the preferred location, or the first one when none is preferred.
func (p LinearPeptide) definitionSite(id int) int {
	positions := p.AmbiguousModifications[id]
	for _, pos := range positions {
		if m, ok := p.Sequence[pos].possible(id); ok && m.Preferred {
			return pos
		}
	}
	if len(positions) == 0 {
		return -1
	}
	return positions[0]
}

func (p LinearPeptide) ambiguousGroup(id int) string {
	for _, pos := range p.AmbiguousModifications[id] {
		if m, ok := p.Sequence[pos].possible(id); ok {
			return m.Group
		}
	}
	return ""
}

// String renders the peptide in its canonical notation. Parsing the result
// yields an equal peptide.
func (p LinearPeptide) String() string {
	var sb strings.Builder
	for _, g := range p.Global {
		sb.WriteByte('<')
		sb.WriteString(g.String())
		sb.WriteByte('>')
	}

	// Ambiguous ids displayed as a prefix or behind a range are skipped
	// on the residues.
	hidden := make([]bool, len(p.AmbiguousModifications))
	for _, id := range p.UnknownPositions {
		hidden[id] = true
		mod, _ := p.ambiguousModification(id)
		sb.WriteByte('[')
		sb.WriteString(mod.String())
		sb.WriteString("]?")
	}
	rangeStart := map[int][]AmbiguousRange{}
	rangeEnd := map[int][]AmbiguousRange{}
	for _, r := range p.Ranges {
		hidden[r.ID] = true
		rangeStart[r.Start] = append(rangeStart[r.Start], r)
		rangeEnd[r.End-1] = append(rangeEnd[r.End-1], r)
	}

	for _, l := range p.Labile {
		sb.WriteByte('{')
		sb.WriteString(l.String())
		sb.WriteByte('}')
	}
	if p.NTerm != nil {
		sb.WriteByte('[')
		sb.WriteString(p.NTerm.String())
		sb.WriteString("]-")
	}

	definedAt := make([]int, len(p.AmbiguousModifications))
	for id := range definedAt {
		definedAt[id] = p.definitionSite(id)
	}
	for i, e := range p.Sequence {
		for range rangeStart[i] {
			sb.WriteByte('(')
		}
		if e.Ambiguous != 0 && (i == 0 || p.Sequence[i-1].Ambiguous != e.Ambiguous) {
			sb.WriteString("(?")
		}
		sb.WriteByte(e.AminoAcid.Char())
		for _, m := range e.Modifications {
			sb.WriteByte('[')
			sb.WriteString(m.String())
			sb.WriteByte(']')
		}
		for _, m := range e.PossibleModifications {
			if hidden[m.ID] {
				continue
			}
			sb.WriteByte('[')
			writeAmbiguous(&sb, m, definedAt[m.ID] == i)
			sb.WriteByte(']')
		}
		if e.Ambiguous != 0 && (i == len(p.Sequence)-1 || p.Sequence[i+1].Ambiguous != e.Ambiguous) {
			sb.WriteByte(')')
		}
		for _, r := range rangeEnd[i] {
			sb.WriteString(")[")
			mod, _ := p.ambiguousModification(r.ID)
			sb.WriteString(mod.String())
			if g := p.ambiguousGroup(r.ID); g != "" {
				sb.WriteByte('#')
				sb.WriteString(g)
			}
			writeScore(&sb, r.Score)
			sb.WriteByte(']')
		}
	}

	if p.CTerm != nil {
		sb.WriteString("-[")
		sb.WriteString(p.CTerm.String())
		sb.WriteByte(']')
	}
	if p.ChargeCarriers != nil {
		sb.WriteByte('/')
		sb.WriteString(p.ChargeCarriers.String())
	}
	return sb.String()
}
