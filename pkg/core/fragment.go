package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// Fragment is one theoretical ion.
type Fragment struct {
	// Formula is the full ion formula including the charge carriers.
	Formula chem.Formula
	Charge  int
	// Peptide is the index of the peptidoform in a complex peptide and
	// Chain the index of the chain inside it.
	Peptide int
	Chain   int
	Ion     IonType
	// Position is the residue the fragment was generated at. It is nil for
	// precursor and oxonium ions.
	Position *PeptidePosition
	// Glycan names the glycan composition of glycan fragments.
	Glycan GlycanComposition
	Loss   *NeutralLoss
	// Label holds the ambiguous modification placements, if any.
	Label string
}

// MZ returns the monoisotopic mass over charge. Uncharged fragments report
// their mass.
func (f Fragment) MZ() (float64, bool) {
	mass, ok := f.Formula.MonoisotopicMass()
	if !ok {
		return 0, false
	}
	if f.Charge == 0 {
		return mass, true
	}
	return mass / math.Abs(float64(f.Charge)), true
}

// Name returns the annotation of the ion, e.g. "b3", "y2-H2O1", "p" or
// "Y[Hex1HexNAc1]".
func (f Fragment) Name() string {
	var sb strings.Builder
	sb.WriteString(f.Ion.String())
	switch {
	case f.Ion == IonOxonium || f.Ion == IonGlycanY:
		fmt.Fprintf(&sb, "[%s]", f.Glycan)
	case f.Ion == IonDiagnostic && f.Position != nil:
		fmt.Fprintf(&sb, "@%d", f.Position.SequenceIndex+1)
	case f.Ion == IonM && f.Position != nil:
		fmt.Fprintf(&sb, "%d", f.Position.SequenceIndex+1)
	case f.Position != nil:
		fmt.Fprintf(&sb, "%d", f.Position.SeriesNumber)
	}
	if f.Loss != nil {
		sb.WriteString(f.Loss.String())
	}
	return sb.String()
}

func (f Fragment) String() string {
	var sb strings.Builder
	sb.WriteString(f.Name())
	fmt.Fprintf(&sb, "^%d", f.Charge)
	if f.Label != "" {
		fmt.Fprintf(&sb, " {%s}", f.Label)
	}
	sb.WriteByte(' ')
	sb.WriteString(f.Formula.String())
	return sb.String()
}

// generator holds the state shared by all fragments of one chain.
type generator struct {
	p       LinearPeptide
	model   Model
	charges []MolecularCharge
	singles []MolecularCharge
	peptide int
	chain   int
	ctx     partialContext
	// precursors holds the formulas of the chain with its attached partners.
	precursors chem.Formulas
	out        []Fragment
}

// emit appends one fragment for every charge option and loss variant.
// neutral must not yet have global isotopes applied.
func (g *generator) emit(base Fragment, neutral chem.Formula, charges []MolecularCharge, losses []NeutralLoss) {
	neutral = neutral.MustWithGlobalIsotopes(g.p.Global)
	for _, c := range charges {
		carriers := c.Formula()
		f := base
		f.Formula = neutral.Add(carriers)
		f.Charge = c.Charge()
		f.Peptide, f.Chain = g.peptide, g.chain
		g.out = append(g.out, f)
		for i := range losses {
			lf := f
			lf.Formula = losses[i].Apply(neutral).Add(carriers)
			lf.Loss = &losses[i]
			g.out = append(g.out, lf)
		}
	}
}

var (
	backboneIons   = []IonType{IonA, IonB, IonC, IonD, IonV, IonW, IonX, IonY, IonZ}
	carbonMonoxide = chem.MustParseFormula("C1O1")
	nh             = chem.MustParseFormula("N1H1")
)

// ionFormulas returns the neutral formulas of one ion type from the N (or
// C) terminal partial formula at residue index.
func (g *generator) ionFormulas(t IonType, partial chem.Formula, index int) []chem.Formula {
	aa := g.p.Sequence[index].AminoAcid
	switch t {
	case IonA:
		return []chem.Formula{partial.Sub(carbonMonoxide).Sub(Hydrogen)}
	case IonB:
		return []chem.Formula{partial.Sub(Hydrogen)}
	case IonC:
		return []chem.Formula{partial.Add(nh).Add(Hydrogen)}
	case IonD:
		a := partial.Sub(carbonMonoxide).Sub(Hydrogen)
		var out []chem.Formula
		for _, s := range aa.SatelliteGroups() {
			out = append(out, a.Sub(s).Add(Hydrogen))
		}
		return out
	case IonV:
		y := partial.Add(Hydrogen)
		var out []chem.Formula
		for _, s := range aa.SideChain() {
			out = append(out, y.Sub(s).Add(Hydrogen))
		}
		return out
	case IonW:
		z := partial.Sub(nh).Sub(Hydrogen)
		var out []chem.Formula
		for _, s := range aa.SatelliteGroups() {
			out = append(out, z.Sub(s).Add(Hydrogen))
		}
		return out
	case IonX:
		return []chem.Formula{partial.Add(carbonMonoxide).Sub(Hydrogen)}
	case IonY:
		return []chem.Formula{partial.Add(Hydrogen)}
	case IonZ:
		return []chem.Formula{partial.Sub(nh).Sub(Hydrogen)}
	}
	return nil
}

func (g *generator) backbone() error {
	n := g.p.Len()
	for index := 0; index < n; index++ {
		var nTerm, cTerm []Partial
		for _, t := range backboneIons {
			settings := g.model.Ion(t)
			position := NPosition(index, n)
			if t.IsCTerminal() {
				position = CPosition(index, n)
			}
			if !settings.Location.Possible(position) {
				continue
			}
			var partials []Partial
			var err error
			if t.IsNTerminal() {
				if nTerm == nil {
					nTerm, err = g.p.partials(0, index+1, g.model.ModificationLosses, g.ctx)
				}
				partials = nTerm
			} else {
				if cTerm == nil {
					cTerm, err = g.p.partials(index, n, g.model.ModificationLosses, g.ctx)
				}
				partials = cTerm
			}
			if err != nil {
				return err
			}
			for _, part := range partials {
				for _, formula := range g.ionFormulas(t, part.Formula, index) {
					pos := position
					g.emit(Fragment{Ion: t, Position: &pos, Label: part.Label, Loss: part.Loss},
						formula, g.charges, settings.Losses)
				}
			}
		}
		if g.model.M {
			if err := g.mFragments(index); err != nil {
				return err
			}
		}
	}
	return nil
}

// mFragments adds the precursor minus the residue at index and its
// modifications, keeping the backbone.
func (g *generator) mFragments(index int) error {
	e := g.p.Sequence[index]
	mods := e.ModificationsFormula()
	pos := NPosition(index, g.p.Len())
	residues := e.AminoAcid.Formulas()
	if n := len(g.precursors) * len(residues); n > g.ctx.limit {
		return fanOutError(n, g.ctx.limit)
	}
	for _, total := range g.precursors {
		for _, aa := range residues {
			g.emit(Fragment{Ion: IonM, Position: &pos}, total.Sub(aa).Sub(mods).Add(backbone), g.charges, nil)
		}
	}
	return nil
}

// precursorFormulas returns the full formulas including any cross-linked
// partner chains.
func (g *generator) precursorFormulas() (chem.Formulas, error) {
	own, err := g.p.formulas(g.ctx.limit)
	if err != nil {
		return nil, err
	}
	out := own
	for index := 0; index < g.p.Len(); index++ {
		if extra, ok := g.ctx.attached[index]; ok {
			if out, err = combineLimited(out, extra, g.ctx.limit); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (g *generator) precursor() {
	for _, f := range g.precursors {
		g.emit(Fragment{Ion: IonPrecursor}, f, g.charges, g.model.Precursor)
	}
}

// glycans adds Y ions (peptide with part of the glycan) and B ions
// (released glycan pieces) for every structured glycan.
func (g *generator) glycans() error {
	n := g.p.Len()
	for index, e := range g.p.Sequence {
		for _, m := range e.Modifications {
			tree := m.GlycanStructure()
			if tree == nil {
				continue
			}
			ys, bs, ok := tree.pieces(g.ctx.limit)
			if !ok {
				return perr.ResourceLimit("Too many glycan fragments",
					fmt.Sprintf("glycan %s has more than %d fragments", tree, g.ctx.limit))
			}
			full := tree.Formula()
			pos := NPosition(index, n)
			if count := len(g.precursors) * len(ys); count > g.ctx.limit {
				return fanOutError(count, g.ctx.limit)
			}
			for _, total := range g.precursors {
				for _, y := range ys {
					g.emit(Fragment{Ion: IonGlycanY, Position: &pos, Glycan: y.composition},
						total.Sub(full).Add(y.formula), g.charges, nil)
				}
			}
			for _, b := range bs {
				g.emit(Fragment{Ion: IonOxonium, Glycan: b.composition}, b.formula, g.charges, nil)
			}
		}
	}
	return nil
}

func (g *generator) diagnostics() {
	n := g.p.Len()
	for index, e := range g.p.Sequence {
		pos := NPosition(index, n)
		var formulas []chem.Formula
		for _, m := range e.Modifications {
			formulas = append(formulas, m.Diagnostics(e.AminoAcid, pos)...)
		}
		for _, m := range e.PossibleModifications {
			formulas = append(formulas, m.Modification.Diagnostics(e.AminoAcid, pos)...)
		}
		for _, f := range formulas {
			p := pos
			g.emit(Fragment{Ion: IonDiagnostic, Position: &p}, f, g.singles, nil)
		}
	}
}

func (p LinearPeptide) generate(maxCharge int, model Model, peptide, chain int, ctx partialContext) ([]Fragment, error) {
	if maxCharge < 1 {
		return nil, perr.Semantic("Invalid charge", fmt.Sprintf("the maximal charge must be at least 1, got %d", maxCharge), perr.Context{})
	}
	carriers := Protons(maxCharge)
	if p.ChargeCarriers != nil {
		carriers = *p.ChargeCarriers
	}
	g := &generator{
		p:       p,
		model:   model,
		charges: carriers.Options(),
		singles: carriers.SingleOptions(),
		peptide: peptide,
		chain:   chain,
		ctx:     ctx,
		out:     make([]Fragment, 0, 20*p.Len()+75),
	}
	var err error
	if g.precursors, err = g.precursorFormulas(); err != nil {
		return nil, err
	}
	if err := g.backbone(); err != nil {
		return nil, err
	}
	if !ctx.noPrecursor {
		g.precursor()
	}
	if model.GlycanFragmentation {
		if err := g.glycans(); err != nil {
			return nil, err
		}
	}
	if model.Diagnostics {
		g.diagnostics()
	}
	return g.out, nil
}

// GenerateTheoreticalFragments returns every fragment of the peptide under
// model, charged up to maxCharge protons unless the peptide defines its own
// charge carriers. The order is stable: backbone fragments by residue index
// then ion type, then the precursor, glycan and diagnostic ions.
func (p LinearPeptide) GenerateTheoreticalFragments(maxCharge int, model Model) ([]Fragment, error) {
	return p.generate(maxCharge, model, 0, 0, partialContext{limit: DefaultFanOutLimit})
}
