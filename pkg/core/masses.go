package core

import (
	"fmt"

	"github.com/ChrisMcGann/pepform/pkg/chem"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// DefaultFanOutLimit bounds the number of alternatives a single mass
// computation may enumerate.
const DefaultFanOutLimit = 1 << 16

// Partial is one possible formula of a stretch of a peptide.
type Partial struct {
	Formula chem.Formula
	// Label names the ambiguous modification placements of this
	// alternative as "name@position" items, empty if there are none.
	Label string
	// Loss is the modification specific neutral loss applied, if any.
	Loss *NeutralLoss
}

type placement struct {
	formula chem.Formula
	label   string
	loss    *NeutralLoss
}

// partialContext carries formulas that are attached to residues from the
// outside, such as cross-linked partner chains.
type partialContext struct {
	attached    map[int]chem.Formulas
	limit       int
	noPrecursor bool
}

// PartialFormulas returns every alternative formula of residues [start, end)
// including the N terminal group when start is 0 and the C terminal group
// when end is the peptide length. Ambiguous modifications that may land both
// inside and outside the stretch yield one alternative per choice. With
// losses set, alternatives with each applicable modification specific
// neutral loss are added. Global isotopes are not applied.
func (p LinearPeptide) PartialFormulas(start, end int, losses bool) ([]Partial, error) {
	return p.partials(start, end, losses, partialContext{limit: DefaultFanOutLimit})
}

func (p LinearPeptide) partials(start, end int, losses bool, ctx partialContext) ([]Partial, error) {
	n := p.Len()
	base := chem.Single(chem.Formula{})
	if start == 0 {
		base = chem.Single(p.NTermFormula())
	}
	var definiteLosses []NeutralLoss
	for i := start; i < end; i++ {
		e := p.Sequence[i]
		base = chem.Combine(base, chem.AddTo(e.AminoAcid.Formulas(), e.ModificationsFormula()))
		if extra, ok := ctx.attached[i]; ok {
			var err error
			if base, err = combineLimited(base, extra, ctx.limit); err != nil {
				return nil, err
			}
		}
		if losses {
			for _, m := range e.Modifications {
				definiteLosses = append(definiteLosses, m.NeutralLosses(e.AminoAcid, NPosition(i, n))...)
			}
		}
		if len(base) > ctx.limit {
			return nil, fanOutError(len(base), ctx.limit)
		}
	}
	if end == n {
		base = chem.AddTo(base, p.CTermFormula())
	}

	patterns := []placement{{}}
	for id, positions := range p.AmbiguousModifications {
		var inside []int
		outside := false
		for _, pos := range positions {
			if pos >= start && pos < end {
				inside = append(inside, pos)
			} else {
				outside = true
			}
		}
		if len(inside) == 0 {
			continue
		}
		mod, name := p.ambiguousModification(id)
		var options []placement
		if outside {
			options = append(options, placement{})
		}
		for _, pos := range inside {
			label := fmt.Sprintf("%s@%d", name, pos+1)
			f := mod.ChemicalFormula()
			options = append(options, placement{formula: f, label: label})
			if losses {
				aa := p.Sequence[pos].AminoAcid
				for _, l := range mod.NeutralLosses(aa, NPosition(pos, n)) {
					options = append(options, placement{formula: l.Apply(f), label: label, loss: &l})
				}
			}
		}
		if len(patterns)*len(options)*len(base) > ctx.limit {
			return nil, fanOutError(len(patterns)*len(options)*len(base), ctx.limit)
		}
		next := make([]placement, 0, len(patterns)*len(options))
		for _, pt := range patterns {
			for _, o := range options {
				if pt.loss != nil && o.loss != nil {
					continue
				}
				combined := placement{formula: pt.formula.Add(o.formula), label: joinLabel(pt.label, o.label), loss: pt.loss}
				if o.loss != nil {
					combined.loss = o.loss
				}
				next = append(next, combined)
			}
		}
		patterns = next
	}

	out := make([]Partial, 0, len(base)*len(patterns)*(1+len(definiteLosses)))
	for _, pt := range patterns {
		for _, f := range base {
			total := f.Add(pt.formula)
			out = append(out, Partial{Formula: total, Label: pt.label, Loss: pt.loss})
			if pt.loss != nil {
				continue
			}
			for i := range definiteLosses {
				out = append(out, Partial{Formula: definiteLosses[i].Apply(total), Label: pt.label, Loss: &definiteLosses[i]})
			}
		}
	}
	return out, nil
}

func joinLabel(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "," + b
}

// combineLimited is chem.Combine that fails instead of building more than
// limit alternatives.
func combineLimited(a, b chem.Formulas, limit int) (chem.Formulas, error) {
	if n := len(a) * len(b); n > limit {
		return nil, fanOutError(n, limit)
	}
	return chem.Combine(a, b), nil
}

func fanOutError(n, limit int) error {
	return perr.ResourceLimit("Too many combinations",
		fmt.Sprintf("%d alternatives exceed the limit of %d", n, limit))
}

// AmbiguousLabels returns, for documentation and debugging, every pattern
// label a stretch can produce.
func AmbiguousLabels(partials []Partial) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range partials {
		if p.Label != "" && !seen[p.Label] {
			seen[p.Label] = true
			out = append(out, p.Label)
		}
	}
	return out
}
