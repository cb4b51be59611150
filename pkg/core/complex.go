package core

import (
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
)

// Peptidoform is a set of peptide chains joined by cross-links or branches,
// written with "//" between the chains.
type Peptidoform struct {
	Chains []LinearPeptide
}

// ComplexPeptide is one or more peptidoforms measured together, written
// with "+" between them.
type ComplexPeptide struct {
	Peptidoforms []Peptidoform
}

// NewComplexPeptide wraps a single peptide.
func NewComplexPeptide(p LinearPeptide) ComplexPeptide {
	return ComplexPeptide{Peptidoforms: []Peptidoform{{Chains: []LinearPeptide{p}}}}
}

// Singular returns the only peptide, if there is exactly one.
func (c ComplexPeptide) Singular() (LinearPeptide, bool) {
	if len(c.Peptidoforms) != 1 || len(c.Peptidoforms[0].Chains) != 1 {
		return LinearPeptide{}, false
	}
	return c.Peptidoforms[0].Chains[0], true
}

// Peptides returns every chain of every peptidoform.
func (c ComplexPeptide) Peptides() []LinearPeptide {
	var out []LinearPeptide
	for _, pf := range c.Peptidoforms {
		out = append(out, pf.Chains...)
	}
	return out
}

func (c ComplexPeptide) String() string {
	parts := make([]string, len(c.Peptidoforms))
	for i, pf := range c.Peptidoforms {
		parts[i] = pf.String()
	}
	return strings.Join(parts, "+")
}

// GenerateTheoreticalFragments generates the fragments of every peptidoform.
// Identical fragments of different peptidoforms are all reported.
func (c ComplexPeptide) GenerateTheoreticalFragments(maxCharge int, model Model) ([]Fragment, error) {
	var out []Fragment
	for i, pf := range c.Peptidoforms {
		fragments, err := pf.generate(maxCharge, model, i)
		if err != nil {
			return nil, err
		}
		out = append(out, fragments...)
	}
	return out, nil
}

func (pf Peptidoform) String() string {
	parts := make([]string, len(pf.Chains))
	for i, p := range pf.Chains {
		parts[i] = p.String()
	}
	return strings.Join(parts, "//")
}

// Links returns, per cross-link label, every residue carrying it as
// (chain, residue index) pairs in notation order.
func (pf Peptidoform) Links() map[string][][2]int {
	out := map[string][][2]int{}
	for c, p := range pf.Chains {
		for i, e := range p.Sequence {
			for _, m := range e.Modifications {
				if m.Kind == KindCrossLink {
					out[m.Link.Label] = append(out[m.Link.Label], [2]int{c, i})
				}
			}
		}
	}
	return out
}

// Formulas returns the formulas of all chains together. Every linker is
// counted once, on its owning site. It fails with ErrResourceLimit when
// there are more than DefaultFanOutLimit alternatives.
func (pf Peptidoform) Formulas() (chem.Formulas, error) {
	out := chem.Single(chem.Formula{})
	for _, p := range pf.Chains {
		fs, err := p.Formulas()
		if err != nil {
			return nil, err
		}
		if out, err = combineLimited(out, fs, DefaultFanOutLimit); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// linkedChains returns the chains linked to residue i of chain c.
func (pf Peptidoform) linkedChains(links map[string][][2]int, c, i int) []int {
	var out []int
	for _, m := range pf.Chains[c].Sequence[i].Modifications {
		if m.Kind != KindCrossLink {
			continue
		}
		for _, site := range links[m.Link.Label] {
			if site[0] != c {
				out = append(out, site[0])
			}
		}
	}
	return out
}

// attachments returns, for chain c, the formulas of the other chains of its
// cross-linked component keyed by the residue of c through which they are
// reached, and the set of those chains. Each chain of the component is
// attached once, at the first residue of c that reaches it.
func (pf Peptidoform) attachments(c, limit int) (map[int]chem.Formulas, map[int]bool, error) {
	var out map[int]chem.Formulas
	attached := map[int]bool{c: true}
	links := pf.Links()
	for i := range pf.Chains[c].Sequence {
		queue := pf.linkedChains(links, c, i)
		for len(queue) > 0 {
			partner := queue[0]
			queue = queue[1:]
			if attached[partner] {
				continue
			}
			attached[partner] = true
			other := pf.Chains[partner]
			fs, err := other.formulas(limit)
			if err != nil {
				return nil, nil, err
			}
			if out == nil {
				out = map[int]chem.Formulas{}
			}
			extra, ok := out[i]
			if !ok {
				extra = chem.Single(chem.Formula{})
			}
			if out[i], err = combineLimited(extra, other.withGlobal(fs), limit); err != nil {
				return nil, nil, err
			}
			for j := range other.Sequence {
				queue = append(queue, pf.linkedChains(links, partner, j)...)
			}
		}
	}
	delete(attached, c)
	return out, attached, nil
}

func (pf Peptidoform) generate(maxCharge int, model Model, peptide int) ([]Fragment, error) {
	var out []Fragment
	for c, p := range pf.Chains {
		attached, partners, err := pf.attachments(c, DefaultFanOutLimit)
		if err != nil {
			return nil, err
		}
		ctx := partialContext{attached: attached, limit: DefaultFanOutLimit}
		// The lowest chain of a component generates its precursor.
		for partner := range partners {
			if partner < c {
				ctx.noPrecursor = true
			}
		}
		fragments, err := p.generate(maxCharge, model, peptide, c, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, fragments...)
	}
	return out, nil
}

// GenerateTheoreticalFragments generates the fragments of every chain.
// Fragments of a chain that contain a link to another chain include that
// whole chain.
func (pf Peptidoform) GenerateTheoreticalFragments(maxCharge int, model Model) ([]Fragment, error) {
	return pf.generate(maxCharge, model, 0)
}
