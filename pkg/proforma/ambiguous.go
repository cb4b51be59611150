package proforma

import (
	"fmt"
	"sort"

	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

type groupKind uint8

const (
	groupNamed groupKind = iota
	groupUnknown
	groupRange
)

type site struct {
	index     int
	score     *float64
	preferred bool
}

// group is one ambiguous modification of a chain: a named group, an
// unknown position prefix or a ranged modification.
type group struct {
	kind  groupKind
	label string
	mod   core.Modification
	span  perr.Context
	sites []site
	// start and end bound the residues of a ranged modification and
	// score holds its total score.
	start, end int
	score      *float64
}

// table is the ambiguous modification cross reference table of one chain.
// Ids are indices into groups.
type table struct {
	groups  []*group
	byLabel map[string]*group
	// pending holds references written before their group's definition.
	pending []pendingRef
}

type pendingRef struct {
	label *label
	index int
	span  perr.Context
}

func (t *table) add(g *group) {
	t.groups = append(t.groups, g)
	if g.label != "" {
		if t.byLabel == nil {
			t.byLabel = map[string]*group{}
		}
		t.byLabel[g.label] = g
	}
}

// define opens a named group at residue index.
func (t *table) define(l *label, mod core.Modification, index int, span perr.Context) error {
	if _, ok := t.byLabel[l.name]; ok {
		return perr.Semantic("Invalid ambiguous modification", fmt.Sprintf("group #%s is defined twice", l.name), span)
	}
	t.add(&group{
		kind:  groupNamed,
		label: l.name,
		mod:   mod,
		span:  span,
		sites: []site{{index: index, score: l.score, preferred: true}},
	})
	return nil
}

// reference adds residue index to a group. A group not defined yet is
// resolved by resolve once the chain is complete.
func (t *table) reference(l *label, index int, span perr.Context) error {
	g, ok := t.byLabel[l.name]
	if !ok {
		t.pending = append(t.pending, pendingRef{label: l, index: index, span: span})
		return nil
	}
	return g.addReference(l, index, span)
}

func (g *group) addReference(l *label, index int, span perr.Context) error {
	if g.kind == groupRange {
		return perr.Semantic("Invalid ambiguous modification", fmt.Sprintf("group #%s belongs to a range and cannot be referenced", l.name), span)
	}
	for _, s := range g.sites {
		if s.index == index {
			return perr.Semantic("Invalid ambiguous modification", fmt.Sprintf("group #%s is placed twice on the same residue", l.name), span)
		}
	}
	g.sites = append(g.sites, site{index: index, score: l.score})
	return nil
}

// resolve attaches the pending references to their groups.
func (t *table) resolve() error {
	for _, r := range t.pending {
		g, ok := t.byLabel[r.label.name]
		if !ok {
			return perr.Semantic("Invalid ambiguous modification", fmt.Sprintf("group #%s is referenced but never defined", r.label.name), r.span)
		}
		if err := g.addReference(r.label, r.index, r.span); err != nil {
			return err
		}
	}
	t.pending = nil
	return nil
}

// rangeGroup records a modification written after a parenthesised range.
func (t *table) rangeGroup(l *label, mod core.Modification, start, end int, span perr.Context) error {
	g := &group{kind: groupRange, mod: mod, span: span, start: start, end: end}
	if l != nil {
		if _, ok := t.byLabel[l.name]; ok {
			return perr.Semantic("Invalid ambiguous modification", fmt.Sprintf("group #%s is defined twice", l.name), span)
		}
		g.label, g.score = l.name, l.score
	}
	t.add(g)
	return nil
}

// place resolves pending references and fills in the locations of unknown
// position and ranged groups. A range spreads its score evenly over every
// residue it may sit on, all of them preferred.
func (t *table) place(seq []core.SequenceElement) error {
	if err := t.resolve(); err != nil {
		return err
	}
	n := len(seq)
	possible := func(mod core.Modification, i int) bool {
		return mod.IsPossible(seq[i].AminoAcid, core.NPosition(i, n))
	}
	for _, g := range t.groups {
		switch g.kind {
		case groupUnknown:
			for i := range seq {
				if possible(g.mod, i) {
					g.sites = append(g.sites, site{index: i})
				}
			}
		case groupRange:
			for i := g.start; i < g.end; i++ {
				if possible(g.mod, i) {
					g.sites = append(g.sites, site{index: i, preferred: true})
				}
			}
			if g.score != nil && len(g.sites) > 0 {
				share := *g.score / float64(len(g.sites))
				for i := range g.sites {
					g.sites[i].score = &share
				}
			}
		default:
			continue
		}
		if len(g.sites) == 0 {
			return perr.Semantic("Invalid ambiguous modification", fmt.Sprintf("%s cannot be placed on any residue", g.mod), g.span)
		}
	}
	return nil
}

// attach writes the table into the peptide and canonicalises the ids.
func (t *table) attach(p *core.LinearPeptide) {
	for id, g := range t.groups {
		positions := make([]int, 0, len(g.sites))
		for _, s := range g.sites {
			positions = append(positions, s.index)
			e := &p.Sequence[s.index]
			e.PossibleModifications = append(e.PossibleModifications, core.AmbiguousModification{
				ID:                id,
				Modification:      g.mod,
				LocalisationScore: s.score,
				Group:             g.label,
				Preferred:         s.preferred,
			})
		}
		sort.Ints(positions)
		p.AmbiguousModifications = append(p.AmbiguousModifications, positions)
		switch g.kind {
		case groupUnknown:
			p.UnknownPositions = append(p.UnknownPositions, id)
		case groupRange:
			p.Ranges = append(p.Ranges, core.AmbiguousRange{ID: id, Start: g.start, End: g.end, Score: g.score})
		}
	}
	p.CanonicalizeAmbiguous()
	for i := range p.Sequence {
		mods := p.Sequence[i].PossibleModifications
		sort.SliceStable(mods, func(a, b int) bool { return mods[a].ID < mods[b].ID })
	}
}

// linkSite is one end of a cross-link or branch.
type linkSite struct {
	link *core.CrossLink
	span perr.Context
}

// linkTable collects the cross-link labels of one peptidoform.
type linkTable struct {
	sites map[string][]linkSite
	order []string
}

func (t *linkTable) add(link *core.CrossLink, span perr.Context) error {
	if t.sites == nil {
		t.sites = map[string][]linkSite{}
	}
	sites, ok := t.sites[link.Label]
	if !ok {
		t.order = append(t.order, link.Label)
	}
	if link.Owner {
		for _, s := range sites {
			if s.link.Owner {
				return perr.Semantic("Invalid cross-link", fmt.Sprintf("the linker of #%s is defined twice", link.Label), span)
			}
		}
	}
	t.sites[link.Label] = append(sites, linkSite{link: link, span: span})
	return nil
}

// check requires every label to join at least two sites.
func (t *linkTable) check() error {
	for _, l := range t.order {
		if sites := t.sites[l]; len(sites) < 2 {
			return perr.Semantic("Invalid cross-link", fmt.Sprintf("#%s is used only once", l), sites[0].span)
		}
	}
	return nil
}
