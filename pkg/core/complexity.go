package core

import "fmt"

// The complexity types wrap a LinearPeptide together with a guarantee about
// the features it uses. Narrowing checks the guarantee and returns false
// when it does not hold; widening (the As methods) always succeeds.
//
//	Linked          may contain cross-links and branches
//	Linear          no cross-links
//	Simple          no labile, global or charge carrier modifications
//	VerySimple      no ambiguous modifications or (?..) residues
//	ExtremelySimple no B or Z residues

// Linked is a peptide that may be cross-linked.
type Linked struct{ p LinearPeptide }

// Linear is a peptide without cross-links.
type Linear struct{ p LinearPeptide }

// Simple is a non empty linear peptide without labile, global or charge
// carrier modifications.
type Simple struct{ p LinearPeptide }

// VerySimple is a simple peptide without ambiguity in modifications or
// residue identity.
type VerySimple struct{ p LinearPeptide }

// ExtremelySimple is a very simple peptide without B or Z residues.
type ExtremelySimple struct{ p LinearPeptide }

// NewLinked wraps any peptide.
func NewLinked(p LinearPeptide) Linked { return Linked{p} }

// Peptide returns the wrapped peptide.
func (l Linked) Peptide() LinearPeptide { return l.p }

// Peptide returns the wrapped peptide.
func (l Linear) Peptide() LinearPeptide { return l.p }

// Peptide returns the wrapped peptide.
func (s Simple) Peptide() LinearPeptide { return s.p }

// Peptide returns the wrapped peptide.
func (v VerySimple) Peptide() LinearPeptide { return v.p }

// Peptide returns the wrapped peptide.
func (e ExtremelySimple) Peptide() LinearPeptide { return e.p }

func hasLinks(p LinearPeptide) bool {
	check := func(m *Modification) bool { return m != nil && m.Kind == KindCrossLink }
	if check(p.NTerm) || check(p.CTerm) {
		return true
	}
	for _, e := range p.Sequence {
		for i := range e.Modifications {
			if check(&e.Modifications[i]) {
				return true
			}
		}
	}
	return false
}

// Linear narrows to a peptide without cross-links.
func (l Linked) Linear() (Linear, bool) {
	if hasLinks(l.p) {
		return Linear{}, false
	}
	return Linear{l.p}, true
}

// Simple narrows to a simple peptide.
func (l Linear) Simple() (Simple, bool) {
	p := l.p
	if len(p.Labile) > 0 || len(p.Global) > 0 || p.ChargeCarriers != nil || p.Len() == 0 {
		return Simple{}, false
	}
	return Simple{p}, true
}

// VerySimple narrows to a peptide without ambiguity.
func (s Simple) VerySimple() (VerySimple, bool) {
	if len(s.p.AmbiguousModifications) > 0 {
		return VerySimple{}, false
	}
	for _, e := range s.p.Sequence {
		if e.Ambiguous != 0 {
			return VerySimple{}, false
		}
	}
	return VerySimple{s.p}, true
}

// ExtremelySimple narrows to a peptide without B or Z residues.
func (v VerySimple) ExtremelySimple() (ExtremelySimple, bool) {
	for _, e := range v.p.Sequence {
		if e.AminoAcid.IsAmbiguous() {
			return ExtremelySimple{}, false
		}
	}
	return ExtremelySimple{v.p}, true
}

// AsLinked widens to Linked.
func (l Linear) AsLinked() Linked { return Linked(l) }

// AsLinear widens to Linear.
func (s Simple) AsLinear() Linear { return Linear(s) }

// AsSimple widens to Simple.
func (v VerySimple) AsSimple() Simple { return Simple(v) }

// AsVerySimple widens to VerySimple.
func (e ExtremelySimple) AsVerySimple() VerySimple { return VerySimple(e) }

// ToSimple narrows any peptide to Simple in one step.
func ToSimple(p LinearPeptide) (Simple, bool) {
	linear, ok := NewLinked(p).Linear()
	if !ok {
		return Simple{}, false
	}
	return linear.Simple()
}

// MustSimple is ToSimple for callers that already guarantee the features.
// It panics otherwise.
func MustSimple(p LinearPeptide) Simple {
	s, ok := ToSimple(p)
	if !ok {
		panic(fmt.Sprintf("peptide %s is not a simple peptide", p))
	}
	return s
}
