// Package proforma parses and validates peptide notation into the peptide
// model of package core.
//
// The grammar follows the ProForma notation: global isotopes and fixed
// modifications in angle brackets, unknown position and labile
// modifications, terminal modifications, residue modifications with
// ambiguous groups, ranges and (?..) stretches, charge carriers, "+"
// separated peptidoforms and "//" separated cross-linked chains.
package proforma

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// Parser parses peptide notation, resolving modification names against a
// modification database. It holds no parse state and is safe for
// concurrent use.
type Parser struct {
	db *core.ModDatabase
}

// New creates a parser using db, or the shared default database when db is
// nil.
func New(db *core.ModDatabase) *Parser {
	if db == nil {
		db = core.SharedModDatabase()
	}
	return &Parser{db: db}
}

// Parse parses value with the shared default database.
func Parse(value string) (core.ComplexPeptide, error) {
	return New(nil).Parse(value)
}

// ParseLinear parses a single peptide with the shared default database.
func ParseLinear(value string) (core.LinearPeptide, error) {
	return New(nil).ParseLinear(value)
}

// Parse parses a complete notation string.
func (p *Parser) Parse(value string) (core.ComplexPeptide, error) {
	if value == "" {
		return core.ComplexPeptide{}, perr.Syntax("Invalid peptide", "empty notation", perr.Full(value))
	}
	parts, err := split(value, segment{0, len(value)}, "+")
	if err != nil {
		return core.ComplexPeptide{}, err
	}
	var out core.ComplexPeptide
	for _, part := range parts {
		pf, err := p.peptidoform(value, part)
		if err != nil {
			return core.ComplexPeptide{}, err
		}
		out.Peptidoforms = append(out.Peptidoforms, pf)
	}
	return out, nil
}

// ParseLinear parses a notation string that must hold exactly one peptide.
func (p *Parser) ParseLinear(value string) (core.LinearPeptide, error) {
	c, err := p.Parse(value)
	if err != nil {
		return core.LinearPeptide{}, err
	}
	lp, ok := c.Singular()
	if !ok {
		return core.LinearPeptide{}, perr.Semantic("Invalid peptide", "expected a single peptide but found a chimeric or cross-linked one", perr.Full(value))
	}
	return lp, nil
}

type segment struct {
	start, end int
}

// split cuts line[s.start:s.end] at every sep outside brackets.
func split(line string, s segment, sep string) ([]segment, error) {
	var out []segment
	depth := 0
	angle := false
	start := s.start
	for i := s.start; i < s.end; i++ {
		switch line[i] {
		case '[', '{':
			depth++
			continue
		case ']', '}':
			depth--
			continue
		case '<':
			angle = angle || depth == 0
			continue
		case '>':
			angle = angle && depth != 0
			continue
		}
		if depth == 0 && !angle && strings.HasPrefix(line[i:s.end], sep) {
			out = append(out, segment{start, i})
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	out = append(out, segment{start, s.end})
	for _, seg := range out {
		if seg.start == seg.end {
			return nil, perr.Syntax("Invalid peptide", fmt.Sprintf("empty peptide next to %q", sep), perr.Span(line, max(seg.start-len(sep), 0), len(sep)))
		}
	}
	return out, nil
}

func (p *Parser) peptidoform(line string, s segment) (core.Peptidoform, error) {
	chains, err := split(line, s, "//")
	if err != nil {
		return core.Peptidoform{}, err
	}
	links := &linkTable{}
	var out core.Peptidoform
	for _, chain := range chains {
		c := &chainParser{
			resolver: resolver{db: p.db, line: line},
			line:     line,
			pos:      chain.start,
			end:      chain.end,
			links:    links,
		}
		lp, err := c.parse()
		if err != nil {
			return core.Peptidoform{}, err
		}
		out.Chains = append(out.Chains, lp)
	}
	if err := links.check(); err != nil {
		return core.Peptidoform{}, err
	}
	return out, nil
}

// fixedModification is a global modification applied to every matching
// location once the sequence is known.
type fixedModification struct {
	mod   core.Modification
	rules []core.PlacementRule
	span  perr.Context
}

// chainParser parses one linear chain. It is discarded after use.
type chainParser struct {
	resolver
	line     string
	pos, end int
	peptide  core.LinearPeptide
	table    table
	links    *linkTable
	fixed    []fixedModification
	offsets  []int
	nterm    perr.Context
	cterm    perr.Context
	stretch  int
}

func (c *chainParser) parse() (core.LinearPeptide, error) {
	if err := c.prefix(); err != nil {
		return core.LinearPeptide{}, err
	}
	if err := c.residues(); err != nil {
		return core.LinearPeptide{}, err
	}
	if err := c.suffix(); err != nil {
		return core.LinearPeptide{}, err
	}
	if err := c.applyFixed(); err != nil {
		return core.LinearPeptide{}, err
	}
	if err := c.table.place(c.peptide.Sequence); err != nil {
		return core.LinearPeptide{}, err
	}
	c.table.attach(&c.peptide)
	if err := c.validate(); err != nil {
		return core.LinearPeptide{}, err
	}
	return c.peptide, nil
}

// closing returns the index of the bracket closing the one at open.
func (c *chainParser) closing(open int) (int, error) {
	i, ok := closing(c.line, open, c.end)
	if !ok {
		return 0, perr.Syntax("Invalid peptide", fmt.Sprintf("unclosed %q", c.line[open]), perr.Span(c.line, open, c.end-open))
	}
	return i, nil
}

var closers = map[byte]byte{'[': ']', '{': '}', '(': ')', '<': '>'}

// closing finds the bracket closing line[open] before end. Square brackets
// nest inside every other kind, so "<[Gln->pyro-Glu]@Q>" closes at the
// last character.
func closing(line string, open, end int) (int, bool) {
	o, cl := line[open], closers[line[open]]
	depth, square := 0, 0
	for i := open; i < end; i++ {
		ch := line[i]
		if o != '[' {
			switch ch {
			case '[':
				square++
				continue
			case ']':
				square--
				continue
			}
			if square > 0 {
				continue
			}
		}
		switch ch {
		case o:
			depth++
		case cl:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// prefix parses the global, unknown position, labile and N terminal
// modifications.
func (c *chainParser) prefix() error {
	for c.pos < c.end {
		switch c.line[c.pos] {
		case '<':
			close, err := c.closing(c.pos)
			if err != nil {
				return err
			}
			if err := c.global(c.pos+1, close); err != nil {
				return err
			}
			c.pos = close + 1
		case '{':
			close, err := c.closing(c.pos)
			if err != nil {
				return err
			}
			mod, err := c.terminal(c.pos+1, close)
			if err != nil {
				return err
			}
			c.peptide.Labile = append(c.peptide.Labile, mod)
			c.pos = close + 1
		case '[':
			close, err := c.closing(c.pos)
			if err != nil {
				return err
			}
			next := close + 1
			switch {
			case next < c.end && c.line[next] == '-':
				mod, err := c.terminal(c.pos+1, close)
				if err != nil {
					return err
				}
				c.peptide.NTerm = &mod
				c.nterm = perr.Span(c.line, c.pos, next-c.pos)
				c.pos = next + 1
				return nil
			case next < c.end && (c.line[next] == '?' || c.line[next] == '^'):
				if err := c.unknown(c.pos+1, close); err != nil {
					return err
				}
			default:
				return perr.Syntax("Invalid peptide", "modification before the first residue", perr.Span(c.line, c.pos, next-c.pos))
			}
		default:
			return nil
		}
	}
	return nil
}

// global parses the content of a <...> block between start and end.
func (c *chainParser) global(start, end int) error {
	body := c.line[start:end]
	span := perr.Span(c.line, start-1, end-start+2)
	if strings.HasPrefix(body, "[") {
		close, err := c.closing(start)
		if err != nil || close >= end {
			return perr.Syntax("Invalid global modification", "unclosed modification", span)
		}
		mod, err := c.terminal(start+1, close)
		if err != nil {
			return err
		}
		targets, ok := strings.CutPrefix(c.line[close+1:end], "@")
		if !ok || targets == "" {
			return perr.Syntax("Invalid global modification", "expected '@' followed by the locations", span)
		}
		fixed := fixedModification{mod: mod, span: span}
		for _, t := range strings.Split(targets, ",") {
			rule, ok := core.ParseRule(strings.TrimSpace(t))
			if !ok {
				return perr.Syntax("Invalid global modification", fmt.Sprintf("invalid location %q", t), span)
			}
			fixed.rules = append(fixed.rules, rule)
		}
		c.fixed = append(c.fixed, fixed)
		return nil
	}

	override, err := parseIsotope(body)
	if err != nil {
		return relocate(err, c.line, start)
	}
	c.peptide.Global = append(c.peptide.Global, override)
	return nil
}

// parseIsotope parses "D" or an isotope written as mass number and
// element, e.g. "15N".
func parseIsotope(value string) (chem.IsotopeOverride, error) {
	if strings.EqualFold(value, "D") {
		return chem.IsotopeOverride{Element: chem.H, Isotope: 2}, nil
	}
	i := 0
	for i < len(value) && value[i] >= '0' && value[i] <= '9' {
		i++
	}
	if i == 0 {
		return chem.IsotopeOverride{}, perr.Syntax("Invalid global isotope", "expected a mass number followed by an element", perr.Full(value))
	}
	el, n, ok := chem.ParseElement(value[i:])
	if !ok || i+n != len(value) {
		return chem.IsotopeOverride{}, perr.Syntax("Invalid global isotope", "unknown element", perr.Span(value, i, len(value)-i))
	}
	isotope, err := strconv.ParseUint(value[:i], 10, 16)
	if err != nil || !el.IsValid(uint16(isotope)) {
		return chem.IsotopeOverride{}, perr.Semantic("Invalid global isotope", fmt.Sprintf("%s is not a known isotope of %s", value[:i], el), perr.Span(value, 0, i))
	}
	return chem.IsotopeOverride{Element: el, Isotope: uint16(isotope)}, nil
}

// unknown parses "[mod]?" and "[mod]^n?" with the modification between
// start and end.
func (c *chainParser) unknown(start, end int) error {
	span := perr.Span(c.line, start-1, end-start+2)
	mod, err := c.terminal(start, end)
	if err != nil {
		return err
	}
	count := 1
	i := end + 1
	if c.line[i] == '^' {
		j := i + 1
		for j < c.end && c.line[j] >= '0' && c.line[j] <= '9' {
			j++
		}
		count, err = strconv.Atoi(c.line[i+1 : j])
		if err != nil || count < 1 {
			return perr.Syntax("Invalid unknown position modification", "expected a positive count after '^'", perr.Span(c.line, i, j-i))
		}
		i = j
	}
	if i >= c.end || c.line[i] != '?' {
		return perr.Syntax("Invalid unknown position modification", "expected '?'", perr.Span(c.line, i, 1))
	}
	for k := 0; k < count; k++ {
		c.table.add(&group{kind: groupUnknown, mod: mod, span: span})
	}
	c.pos = i + 1
	return nil
}

// terminal resolves a modification that may not carry a group label.
func (c *chainParser) terminal(start, end int) (core.Modification, error) {
	body, l, err := splitLabel(c.line, c.line[start:end], start)
	if err != nil {
		return core.Modification{}, err
	}
	if l != nil {
		return core.Modification{}, perr.Semantic("Invalid modification", "only residue modifications can be ambiguous or cross-linked", perr.Span(c.line, l.offset, end-l.offset))
	}
	return c.resolve(body, start)
}

func (c *chainParser) residues() error {
	var (
		inStretch     bool
		stretchStart  int
		stretchOffset int
		inRange       bool
		rangeStart    int
		rangeOffset   int
	)
	for c.pos < c.end {
		ch := c.line[c.pos]
		switch {
		case ch == '(' && c.pos+1 < c.end && c.line[c.pos+1] == '?':
			if inStretch {
				return perr.Syntax("Invalid peptide", "ambiguous amino acids cannot be nested", perr.Span(c.line, c.pos, 2))
			}
			inStretch, stretchStart, stretchOffset = true, len(c.peptide.Sequence), c.pos
			c.stretch++
			c.pos += 2
		case ch == '(':
			if inRange || inStretch {
				return perr.Syntax("Invalid peptide", "ranges cannot be nested", perr.Span(c.line, c.pos, 1))
			}
			inRange, rangeStart, rangeOffset = true, len(c.peptide.Sequence), c.pos
			c.pos++
		case ch == ')' && inStretch:
			if len(c.peptide.Sequence) == stretchStart {
				return perr.Syntax("Invalid peptide", "empty ambiguous amino acid group", perr.Span(c.line, stretchOffset, c.pos-stretchOffset+1))
			}
			inStretch = false
			c.pos++
		case ch == ')':
			if !inRange {
				return perr.Syntax("Invalid peptide", "unmatched ')'", perr.Span(c.line, c.pos, 1))
			}
			if len(c.peptide.Sequence) == rangeStart {
				return perr.Syntax("Invalid peptide", "empty range", perr.Span(c.line, rangeOffset, c.pos-rangeOffset+1))
			}
			if c.pos+1 >= c.end || c.line[c.pos+1] != '[' {
				return perr.Syntax("Invalid peptide", "a range must be followed by its modification", perr.Span(c.line, rangeOffset, c.pos-rangeOffset+1))
			}
			close, err := c.closing(c.pos + 1)
			if err != nil {
				return err
			}
			if err := c.rangeModification(rangeStart, c.pos+2, close); err != nil {
				return err
			}
			inRange = false
			c.pos = close + 1
			if c.pos < c.end && c.line[c.pos] == '[' {
				return perr.Syntax("Invalid peptide", "a range takes a single modification", perr.Span(c.line, c.pos, 1))
			}
		case ch == '[':
			close, err := c.closing(c.pos)
			if err != nil {
				return err
			}
			if len(c.peptide.Sequence) == 0 {
				return perr.Syntax("Invalid peptide", "modification before the first residue", perr.Span(c.line, c.pos, close-c.pos+1))
			}
			if err := c.residueModification(len(c.peptide.Sequence)-1, c.pos+1, close); err != nil {
				return err
			}
			c.pos = close + 1
		case ch == '-' || ch == '/':
			if inStretch {
				return perr.Syntax("Invalid peptide", "unclosed ambiguous amino acid group", perr.Span(c.line, stretchOffset, 2))
			}
			if inRange {
				return perr.Syntax("Invalid peptide", "unclosed range", perr.Span(c.line, rangeOffset, 1))
			}
			return c.checkResidues()
		default:
			aa, ok := core.ParseAminoAcid(ch)
			if !ok {
				return perr.Syntax("Invalid peptide", fmt.Sprintf("%q is not an amino acid", ch), perr.Span(c.line, c.pos, 1))
			}
			e := core.NewElement(aa)
			if inStretch {
				e.Ambiguous = c.stretch
			}
			c.peptide.Sequence = append(c.peptide.Sequence, e)
			c.offsets = append(c.offsets, c.pos)
			c.pos++
		}
	}
	if inStretch {
		return perr.Syntax("Invalid peptide", "unclosed ambiguous amino acid group", perr.Span(c.line, stretchOffset, 2))
	}
	if inRange {
		return perr.Syntax("Invalid peptide", "unclosed range", perr.Span(c.line, rangeOffset, 1))
	}
	return c.checkResidues()
}

func (c *chainParser) checkResidues() error {
	if len(c.peptide.Sequence) == 0 {
		return perr.Syntax("Invalid peptide", "no amino acids", perr.Span(c.line, c.pos, 1))
	}
	return nil
}

// residueModification handles the bracket between start and end placed on
// residue index: a definite modification, a cross-link or an ambiguous
// group definition or reference.
func (c *chainParser) residueModification(index, start, end int) error {
	span := perr.Span(c.line, start-1, end-start+2)
	body, l, err := splitLabel(c.line, c.line[start:end], start)
	if err != nil {
		return err
	}
	e := &c.peptide.Sequence[index]
	if l == nil {
		mod, err := c.resolve(body, start)
		if err != nil {
			return err
		}
		e.Modifications = append(e.Modifications, mod)
		return nil
	}

	var mod *core.Modification
	if body != "" {
		m, err := c.resolve(body, start)
		if err != nil {
			return err
		}
		mod = &m
	}
	if l.isLink() {
		if l.score != nil {
			return perr.Syntax("Invalid cross-link", "cross-links do not take a localisation score", span)
		}
		link := &core.CrossLink{Label: l.name, Linker: mod, Owner: mod != nil}
		if err := c.links.add(link, span); err != nil {
			return err
		}
		e.Modifications = append(e.Modifications, core.Modification{Kind: core.KindCrossLink, Link: link})
		return nil
	}
	if mod != nil {
		return c.table.define(l, *mod, index, span)
	}
	return c.table.reference(l, index, span)
}

// rangeModification handles the modification of the range starting at
// residue first.
func (c *chainParser) rangeModification(first, start, end int) error {
	span := perr.Span(c.line, start-1, end-start+2)
	body, l, err := splitLabel(c.line, c.line[start:end], start)
	if err != nil {
		return err
	}
	if l != nil && l.isLink() {
		return perr.Semantic("Invalid modification", "a range cannot be cross-linked", span)
	}
	mod, err := c.resolve(body, start)
	if err != nil {
		return err
	}
	return c.table.rangeGroup(l, mod, first, len(c.peptide.Sequence), span)
}

// suffix parses the C terminal modification and the charge.
func (c *chainParser) suffix() error {
	if c.pos < c.end && c.line[c.pos] == '-' {
		if c.pos+1 >= c.end || c.line[c.pos+1] != '[' {
			return perr.Syntax("Invalid peptide", "expected a C-terminal modification after '-'", perr.Span(c.line, c.pos, 1))
		}
		close, err := c.closing(c.pos + 1)
		if err != nil {
			return err
		}
		mod, err := c.terminal(c.pos+2, close)
		if err != nil {
			return err
		}
		c.peptide.CTerm = &mod
		c.cterm = perr.Span(c.line, c.pos, close-c.pos+1)
		c.pos = close + 1
	}
	if c.pos < c.end && c.line[c.pos] == '/' {
		charge, err := parseCharge(c.line, c.pos+1, c.end)
		if err != nil {
			return err
		}
		c.peptide.ChargeCarriers = &charge
		c.pos = c.end
	}
	if c.pos < c.end {
		return perr.Syntax("Invalid peptide", "unexpected characters after the peptide", perr.Span(c.line, c.pos, c.end-c.pos))
	}
	return nil
}

// applyFixed places the global modifications on every matching location.
func (c *chainParser) applyFixed() error {
	seq := c.peptide.Sequence
	n := len(seq)
	for _, f := range c.fixed {
		for _, rule := range f.rules {
			switch rule.Site {
			case core.AnyNTerm, core.ProteinNTerm:
				if !rule.AllowsTerminal(seq[0].AminoAcid, true) {
					continue
				}
				if c.peptide.NTerm != nil {
					return perr.Semantic("Invalid global modification", "the N-terminus is already modified", f.span)
				}
				mod := f.mod
				c.peptide.NTerm = &mod
			case core.AnyCTerm, core.ProteinCTerm:
				if !rule.AllowsTerminal(seq[n-1].AminoAcid, false) {
					continue
				}
				if c.peptide.CTerm != nil {
					return perr.Semantic("Invalid global modification", "the C-terminus is already modified", f.span)
				}
				mod := f.mod
				c.peptide.CTerm = &mod
			default:
				for i := range seq {
					if rule.Allows(seq[i].AminoAcid, core.NPosition(i, n)) {
						seq[i].Modifications = append(seq[i].Modifications, f.mod)
					}
				}
			}
		}
	}
	return nil
}

// validate checks the placement of every modification.
func (c *chainParser) validate() error {
	err := c.peptide.Validate()
	if err == nil {
		return nil
	}
	var pe *core.PlacementError
	if !errors.As(err, &pe) {
		return err
	}
	span := c.nterm
	switch {
	case pe.Index >= c.peptide.Len():
		span = c.cterm
	case pe.Index >= 0:
		span = perr.Span(c.line, c.offsets[pe.Index], 1)
	}
	return perr.Semantic("Invalid modification placement", fmt.Sprintf("%s is not allowed here", pe.Modification), span)
}
