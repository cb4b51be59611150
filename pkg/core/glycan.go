package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// MonoSaccharide is a glycan building block.
type MonoSaccharide uint8

const (
	Hex MonoSaccharide = iota
	HexNAc
	HexN
	HexA
	DHex
	NeuAc
	NeuGc
	Neu
	Pen
	Kdn
	HexS
	HexP
	Sulfo
	Phosphate
)

type saccharideData struct {
	name    string
	formula chem.Formula
}

var saccharides = []saccharideData{
	Hex:       {"Hex", chem.MustParseFormula("C6H10O5")},
	HexNAc:    {"HexNAc", chem.MustParseFormula("C8H13N1O5")},
	HexN:      {"HexN", chem.MustParseFormula("C6H11N1O4")},
	HexA:      {"HexA", chem.MustParseFormula("C6H8O6")},
	DHex:      {"dHex", chem.MustParseFormula("C6H10O4")},
	NeuAc:     {"NeuAc", chem.MustParseFormula("C11H17N1O8")},
	NeuGc:     {"NeuGc", chem.MustParseFormula("C11H17N1O9")},
	Neu:       {"Neu", chem.MustParseFormula("C9H15N1O7")},
	Pen:       {"Pen", chem.MustParseFormula("C5H8O4")},
	Kdn:       {"Kdn", chem.MustParseFormula("C9H14O8")},
	HexS:      {"HexS", chem.MustParseFormula("C6H10O8S1")},
	HexP:      {"HexP", chem.MustParseFormula("C6H11O8P1")},
	Sulfo:     {"Sulfo", chem.MustParseFormula("O3S1")},
	Phosphate: {"Phospho", chem.MustParseFormula("H1O3P1")},
}

// saccharideNames maps lower case names (and aliases) to monosaccharides,
// longest names first so that prefix matching is unambiguous.
var saccharideNames = func() []struct {
	name  string
	sugar MonoSaccharide
} {
	out := []struct {
		name  string
		sugar MonoSaccharide
	}{{"fuc", DHex}}
	for i, s := range saccharides {
		out = append(out, struct {
			name  string
			sugar MonoSaccharide
		}{strings.ToLower(s.name), MonoSaccharide(i)})
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].name) > len(out[j].name) })
	return out
}()

func (m MonoSaccharide) String() string {
	return saccharides[m].name
}

// Formula returns the residue formula (monosaccharide minus water).
func (m MonoSaccharide) Formula() chem.Formula {
	return saccharides[m].formula
}

func matchSaccharide(s string) (MonoSaccharide, int, bool) {
	for _, n := range saccharideNames {
		if len(s) >= len(n.name) && strings.EqualFold(s[:len(n.name)], n.name) {
			return n.sugar, len(n.name), true
		}
	}
	return 0, 0, false
}

// GlycanCount is one monosaccharide with its multiplicity.
type GlycanCount struct {
	Sugar MonoSaccharide
	Count int
}

// GlycanComposition is a canonical (sorted, merged) list of monosaccharides.
type GlycanComposition []GlycanCount

// ParseGlycanComposition parses "HexNAc2Hex5" style compositions. Names are
// case insensitive, an omitted count means one and spaces are ignored.
func ParseGlycanComposition(value string) (GlycanComposition, error) {
	counts := map[MonoSaccharide]int{}
	i := 0
	for i < len(value) {
		if value[i] == ' ' {
			i++
			continue
		}
		sugar, n, ok := matchSaccharide(value[i:])
		if !ok {
			return nil, perr.Syntax("Invalid glycan", "unknown monosaccharide", perr.Span(value, i, len(value)-i))
		}
		i += n
		start := i
		for i < len(value) && value[i] >= '0' && value[i] <= '9' {
			i++
		}
		count := 1
		if i > start {
			c, err := strconv.Atoi(value[start:i])
			if err != nil {
				return nil, perr.Syntax("Invalid glycan", "count is out of range", perr.Span(value, start, i-start))
			}
			count = c
		}
		counts[sugar] += count
	}
	if len(counts) == 0 {
		return nil, perr.Syntax("Invalid glycan", "empty glycan composition", perr.Full(value))
	}
	out := make(GlycanComposition, 0, len(counts))
	for sugar, c := range counts {
		if c != 0 {
			out = append(out, GlycanCount{sugar, c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sugar < out[j].Sugar })
	return out, nil
}

// Formula returns the summed residue formula.
func (g GlycanComposition) Formula() chem.Formula {
	f := chem.Formula{}
	for _, c := range g {
		f = f.Add(c.Sugar.Formula().Mul(c.Count))
	}
	return f
}

func (g GlycanComposition) String() string {
	var sb strings.Builder
	for _, c := range g {
		fmt.Fprintf(&sb, "%s%d", c.Sugar, c.Count)
	}
	return sb.String()
}

// GlycanStructure is a rooted glycan tree. The root is attached to the
// peptide.
type GlycanStructure struct {
	Sugar    MonoSaccharide
	Branches []*GlycanStructure
}

// ParseGlycanStructure parses the condensed tree notation where every
// branch follows its parent in parentheses, e.g.
// "HexNAc(HexNAc(Hex(Hex)(Hex)))".
func ParseGlycanStructure(value string) (*GlycanStructure, error) {
	g, end, err := parseGlycanNode(value, 0)
	if err != nil {
		return nil, err
	}
	if end != len(value) {
		return nil, perr.Syntax("Invalid glycan structure", "unexpected trailing characters", perr.Span(value, end, len(value)-end))
	}
	return g, nil
}

func parseGlycanNode(value string, i int) (*GlycanStructure, int, error) {
	sugar, n, ok := matchSaccharide(value[i:])
	if !ok {
		return nil, i, perr.Syntax("Invalid glycan structure", "unknown monosaccharide", perr.Span(value, i, 1))
	}
	node := &GlycanStructure{Sugar: sugar}
	i += n
	for i < len(value) && value[i] == '(' {
		child, end, err := parseGlycanNode(value, i+1)
		if err != nil {
			return nil, end, err
		}
		if end >= len(value) || value[end] != ')' {
			return nil, end, perr.Syntax("Invalid glycan structure", "unclosed branch", perr.Span(value, i, 1))
		}
		node.Branches = append(node.Branches, child)
		i = end + 1
	}
	return node, i, nil
}

func (g *GlycanStructure) String() string {
	var sb strings.Builder
	sb.WriteString(g.Sugar.String())
	for _, b := range g.Branches {
		sb.WriteByte('(')
		sb.WriteString(b.String())
		sb.WriteByte(')')
	}
	return sb.String()
}

// Formula returns the summed residue formula of the whole tree.
func (g *GlycanStructure) Formula() chem.Formula {
	f := g.Sugar.Formula()
	for _, b := range g.Branches {
		f = f.Add(b.Formula())
	}
	return f
}

// Size returns the number of monosaccharides in the tree.
func (g *GlycanStructure) Size() int {
	n := 1
	for _, b := range g.Branches {
		n += b.Size()
	}
	return n
}

// Composition returns the monosaccharide counts of the tree.
func (g *GlycanStructure) Composition() GlycanComposition {
	counts := map[MonoSaccharide]int{}
	var walk func(*GlycanStructure)
	walk = func(n *GlycanStructure) {
		counts[n.Sugar]++
		for _, b := range n.Branches {
			walk(b)
		}
	}
	walk(g)
	out := make(GlycanComposition, 0, len(counts))
	for s, c := range counts {
		out = append(out, GlycanCount{s, c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sugar < out[j].Sugar })
	return out
}

// glycanPiece is one fragment of a glycan tree.
type glycanPiece struct {
	formula     chem.Formula
	composition GlycanComposition
}

// rootedSubtrees enumerates every connected sub tree that contains the root,
// up to limit results. The full tree is included.
func (g *GlycanStructure) rootedSubtrees(limit int) ([]*GlycanStructure, bool) {
	options := []*GlycanStructure{{Sugar: g.Sugar}}
	for _, branch := range g.Branches {
		sub, ok := branch.rootedSubtrees(limit)
		if !ok {
			return nil, false
		}
		next := make([]*GlycanStructure, 0, len(options)*(len(sub)+1))
		for _, o := range options {
			next = append(next, o)
			for _, s := range sub {
				branches := append(append([]*GlycanStructure{}, o.Branches...), s)
				next = append(next, &GlycanStructure{Sugar: o.Sugar, Branches: branches})
			}
		}
		if len(next) > limit {
			return nil, false
		}
		options = next
	}
	return options, true
}

// subtrees returns every node's full sub tree: the B ion candidates.
func (g *GlycanStructure) subtrees() []*GlycanStructure {
	out := []*GlycanStructure{g}
	for _, b := range g.Branches {
		out = append(out, b.subtrees()...)
	}
	return out
}

// pieces returns the Y (rooted, kept on the peptide) and B (released) pieces
// of a single glycosidic cleavage series. Y pieces exclude the intact tree
// and include the fully stripped Y0.
func (g *GlycanStructure) pieces(limit int) (y, b []glycanPiece, ok bool) {
	rooted, ok := g.rootedSubtrees(limit)
	if !ok {
		return nil, nil, false
	}
	total := g.Size()
	y = append(y, glycanPiece{formula: chem.Formula{}})
	for _, r := range rooted {
		if r.Size() == total {
			continue
		}
		y = append(y, glycanPiece{formula: r.Formula(), composition: r.Composition()})
	}
	for _, s := range g.subtrees() {
		b = append(b, glycanPiece{formula: s.Formula(), composition: s.Composition()})
	}
	return y, b, true
}
