package core

import (
	"fmt"
	"sort"

	"github.com/ChrisMcGann/pepform/pkg/chem"
)

// AmbiguousRange is a modification written after a parenthesised stretch,
// e.g. (EOSFORMS)[+19.05#g1(0.9)]. Start and End are half open residue
// indices.
type AmbiguousRange struct {
	ID    int
	Start int
	End   int
	// Score is the total localisation score written for the range.
	Score *float64
}

// LinearPeptide is a single peptide chain with all its modifications.
type LinearPeptide struct {
	Global   []chem.IsotopeOverride
	Labile   []Modification
	NTerm    *Modification
	CTerm    *Modification
	Sequence []SequenceElement
	// AmbiguousModifications lists, per ambiguous id, the residue indices
	// the modification may sit on.
	AmbiguousModifications [][]int
	// UnknownPositions holds the ambiguous ids written as [mod]? prefixes.
	UnknownPositions []int
	Ranges           []AmbiguousRange
	ChargeCarriers   *MolecularCharge
}

// NewLinearPeptide creates an unmodified peptide from one letter codes. It
// panics on an invalid code.
func NewLinearPeptide(sequence string) LinearPeptide {
	p := LinearPeptide{Sequence: make([]SequenceElement, len(sequence))}
	for i := 0; i < len(sequence); i++ {
		aa, ok := ParseAminoAcid(sequence[i])
		if !ok {
			panic(fmt.Sprintf("invalid amino acid %q", sequence[i]))
		}
		p.Sequence[i] = NewElement(aa)
	}
	return p
}

// Len returns the number of residues.
func (p LinearPeptide) Len() int {
	return len(p.Sequence)
}

// NTermFormula returns the N terminal group: a hydrogen plus the N terminal
// modification.
func (p LinearPeptide) NTermFormula() chem.Formula {
	if p.NTerm != nil {
		return Hydrogen.Add(p.NTerm.ChemicalFormula())
	}
	return Hydrogen
}

// CTermFormula returns the C terminal group: a hydroxyl plus the C terminal
// modification.
func (p LinearPeptide) CTermFormula() chem.Formula {
	oh := Water.Sub(Hydrogen)
	if p.CTerm != nil {
		return oh.Add(p.CTerm.ChemicalFormula())
	}
	return oh
}

func (p LinearPeptide) bareFormulas(limit int) (chem.Formulas, error) {
	placed := make([]bool, len(p.AmbiguousModifications))
	out := chem.Single(chem.Formula{})
	for _, e := range p.Sequence {
		var err error
		if out, err = combineLimited(out, e.formulas(placed), limit); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p LinearPeptide) formulas(limit int) (chem.Formulas, error) {
	bare, err := p.bareFormulas(limit)
	if err != nil {
		return nil, err
	}
	return chem.AddTo(bare, p.NTermFormula().Add(p.CTermFormula())), nil
}

func (p LinearPeptide) withGlobal(fs chem.Formulas) chem.Formulas {
	return fs.Map(func(f chem.Formula) chem.Formula { return f.MustWithGlobalIsotopes(p.Global) })
}

// BareFormulas returns the possible formulas of the residues alone, without
// the terminal groups. Every ambiguous modification is counted once. It
// fails with ErrResourceLimit when there are more than DefaultFanOutLimit
// alternatives.
func (p LinearPeptide) BareFormulas() (chem.Formulas, error) {
	fs, err := p.bareFormulas(DefaultFanOutLimit)
	if err != nil {
		return nil, err
	}
	return p.withGlobal(fs), nil
}

// Formulas returns the possible formulas of the whole neutral peptide.
// Labile modifications and charge carriers are not included. It fails with
// ErrResourceLimit when there are more than DefaultFanOutLimit alternatives.
func (p LinearPeptide) Formulas() (chem.Formulas, error) {
	fs, err := p.formulas(DefaultFanOutLimit)
	if err != nil {
		return nil, err
	}
	return p.withGlobal(fs), nil
}

// ambiguousModification returns the modification of ambiguous id together
// with the name used in pattern labels.
func (p LinearPeptide) ambiguousModification(id int) (Modification, string) {
	for _, pos := range p.AmbiguousModifications[id] {
		if m, ok := p.Sequence[pos].possible(id); ok {
			if m.Group != "" {
				return m.Modification, m.Group
			}
			return m.Modification, m.Modification.String()
		}
	}
	return Modification{}, ""
}

// SubPeptide returns an independent copy of residues [start, end). The N
// terminal modification is kept only when start is 0 and the C terminal
// one only when end is the peptide length. Ambiguous modifications without
// any location left are dropped.
func (p LinearPeptide) SubPeptide(start, end int) LinearPeptide {
	if start < 0 || end > p.Len() || start > end {
		panic(fmt.Sprintf("sub peptide [%d, %d) out of range for length %d", start, end, p.Len()))
	}
	out := LinearPeptide{
		Global:         append([]chem.IsotopeOverride(nil), p.Global...),
		Labile:         append([]Modification(nil), p.Labile...),
		ChargeCarriers: p.ChargeCarriers,
	}
	if start == 0 {
		out.NTerm = p.NTerm
	}
	if end == p.Len() {
		out.CTerm = p.CTerm
	}

	remap := make([]int, len(p.AmbiguousModifications))
	for id, positions := range p.AmbiguousModifications {
		remap[id] = -1
		var kept []int
		for _, pos := range positions {
			if pos >= start && pos < end {
				kept = append(kept, pos-start)
			}
		}
		if len(kept) > 0 {
			remap[id] = len(out.AmbiguousModifications)
			out.AmbiguousModifications = append(out.AmbiguousModifications, kept)
		}
	}

	out.Sequence = make([]SequenceElement, 0, end-start)
	for _, e := range p.Sequence[start:end] {
		e = e.clone()
		for i := range e.PossibleModifications {
			e.PossibleModifications[i].ID = remap[e.PossibleModifications[i].ID]
		}
		out.Sequence = append(out.Sequence, e)
	}
	for _, id := range p.UnknownPositions {
		if remap[id] >= 0 {
			out.UnknownPositions = append(out.UnknownPositions, remap[id])
		}
	}
	for _, r := range p.Ranges {
		if remap[r.ID] < 0 {
			continue
		}
		clipped := AmbiguousRange{ID: remap[r.ID], Start: max(r.Start, start) - start, End: min(r.End, end) - start}
		if r.Score != nil {
			total := 0.0
			for i := clipped.Start; i < clipped.End; i++ {
				if m, ok := out.Sequence[i].possible(clipped.ID); ok && m.LocalisationScore != nil {
					total += *m.LocalisationScore
				}
			}
			clipped.Score = &total
		}
		out.Ranges = append(out.Ranges, clipped)
	}
	out.CanonicalizeAmbiguous()
	return out
}

// Reverse returns the peptide with its residue order reversed. The terminal
// modifications stay at their termini.
func (p LinearPeptide) Reverse() LinearPeptide {
	out := p.SubPeptide(0, p.Len())
	n := out.Len()
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		out.Sequence[i], out.Sequence[j] = out.Sequence[j], out.Sequence[i]
	}
	for id, positions := range out.AmbiguousModifications {
		reversed := make([]int, len(positions))
		for i, pos := range positions {
			reversed[i] = n - 1 - pos
		}
		sort.Ints(reversed)
		out.AmbiguousModifications[id] = reversed
	}
	for i, r := range out.Ranges {
		out.Ranges[i].Start, out.Ranges[i].End = n-r.End, n-r.Start
	}
	out.CanonicalizeAmbiguous()
	return out
}

// Digest cuts the peptide at every protease site and returns all pieces
// spanning at most maxMissed uncut sites, ordered by start then length.
func (p LinearPeptide) Digest(protease Protease, maxMissed int) []LinearPeptide {
	sites := append([]int{0}, protease.Sites(p.Sequence)...)
	sites = append(sites, p.Len())
	sites = dedupSorted(sites)

	var out []LinearPeptide
	for index, start := range sites[:len(sites)-1] {
		ends := sites[index+1:]
		if len(ends) > maxMissed+1 {
			ends = ends[:maxMissed+1]
		}
		for _, end := range ends {
			out = append(out, p.SubPeptide(start, end))
		}
	}
	return out
}

func dedupSorted(v []int) []int {
	sort.Ints(v)
	out := v[:0]
	for i, x := range v {
		if i == 0 || x != v[i-1] {
			out = append(out, x)
		}
	}
	return out
}

// CanonicalizeAmbiguous renumbers the ambiguous ids in order of their first
// location (ties by old id), so that equal peptides have equal ids.
func (p *LinearPeptide) CanonicalizeAmbiguous() {
	n := len(p.AmbiguousModifications)
	if n == 0 {
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	first := func(id int) int {
		if len(p.AmbiguousModifications[id]) == 0 {
			return -1
		}
		return p.AmbiguousModifications[id][0]
	}
	sort.SliceStable(order, func(i, j int) bool {
		return first(order[i]) < first(order[j])
	})
	remap := make([]int, n)
	positions := make([][]int, n)
	for newID, oldID := range order {
		remap[oldID] = newID
		positions[newID] = p.AmbiguousModifications[oldID]
	}
	p.AmbiguousModifications = positions
	for i := range p.Sequence {
		for j := range p.Sequence[i].PossibleModifications {
			pm := &p.Sequence[i].PossibleModifications[j]
			pm.ID = remap[pm.ID]
		}
	}
	for i, id := range p.UnknownPositions {
		p.UnknownPositions[i] = remap[id]
	}
	for i := range p.Ranges {
		p.Ranges[i].ID = remap[p.Ranges[i].ID]
	}
}

// PlacementError reports a modification placed where its rules forbid it.
// Index is -1 for the N terminal and Len() for the C terminal modification.
type PlacementError struct {
	Index        int
	Modification Modification
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("modification %s is not allowed at position %d", e.Modification, e.Index)
}

// Validate checks every modification against its placement rules.
func (p LinearPeptide) Validate() error {
	n := p.Len()
	if p.NTerm != nil && n > 0 && !p.NTerm.IsPossibleTerminal(p.Sequence[0].AminoAcid, true) {
		return &PlacementError{Index: -1, Modification: *p.NTerm}
	}
	if p.CTerm != nil && n > 0 && !p.CTerm.IsPossibleTerminal(p.Sequence[n-1].AminoAcid, false) {
		return &PlacementError{Index: n, Modification: *p.CTerm}
	}
	for i, e := range p.Sequence {
		pos := NPosition(i, n)
		for _, m := range e.Modifications {
			if !m.IsPossible(e.AminoAcid, pos) {
				return &PlacementError{Index: i, Modification: m}
			}
		}
		for _, m := range e.PossibleModifications {
			if !m.Modification.IsPossible(e.AminoAcid, pos) {
				return &PlacementError{Index: i, Modification: m.Modification}
			}
		}
	}
	return nil
}

// CheckAmbiguous verifies that AmbiguousModifications and the residues'
// possible modifications describe the same locations.
func (p LinearPeptide) CheckAmbiguous() error {
	for id, positions := range p.AmbiguousModifications {
		for _, pos := range positions {
			count := 0
			for _, m := range p.Sequence[pos].PossibleModifications {
				if m.ID == id {
					count++
				}
			}
			if count != 1 {
				return fmt.Errorf("ambiguous modification %d listed %d times at position %d", id, count, pos)
			}
		}
	}
	for i, e := range p.Sequence {
		for _, m := range e.PossibleModifications {
			if m.ID < 0 || m.ID >= len(p.AmbiguousModifications) {
				return fmt.Errorf("unknown ambiguous modification %d at position %d", m.ID, i)
			}
			positions := p.AmbiguousModifications[m.ID]
			if k := sort.SearchInts(positions, i); k == len(positions) || positions[k] != i {
				return fmt.Errorf("position %d missing from ambiguous modification %d", i, m.ID)
			}
		}
	}
	return nil
}
