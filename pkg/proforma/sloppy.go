package proforma

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// ParseSloppy parses a single peptide with the shared default database.
func ParseSloppy(value string) (core.LinearPeptide, error) {
	return New(nil).ParseSloppy(value)
}

// ParseSloppy parses the loose peptide notations written by search engines
// and spectral libraries. Underscores are ignored, modifications may use
// round or square brackets and free text names ("M(ox)",
// "_(Acetyl (Protein N-term))PEPTIDE_"), and an MSFragger style lower case
// "n[...]" prefix is the N-terminal modification. A bracket that does not
// resolve as strict notation is looked up by name through SloppyLookup. The
// result has no ambiguous modifications and is not checked against
// placement rules.
func (p *Parser) ParseSloppy(value string) (core.LinearPeptide, error) {
	r := resolver{db: p.db, line: value}
	var out core.LinearPeptide
	i := 0
	if len(value) > 1 && value[0] == 'n' && value[1] == '[' {
		close, ok := closing(value, 1, len(value))
		if !ok {
			return core.LinearPeptide{}, perr.Syntax("Invalid peptide", "unclosed '['", perr.Span(value, 1, len(value)-1))
		}
		mod, err := sloppyModification(r, value[2:close], 2, nil)
		if err != nil {
			return core.LinearPeptide{}, err
		}
		out.NTerm = &mod
		i = close + 1
		if i < len(value) && value[i] == '-' {
			i++
		}
	}

	for i < len(value) {
		ch := value[i]
		switch {
		case ch == '_' || ch == ' ':
			i++
		case ch == '[' || ch == '(':
			close, ok := closing(value, i, len(value))
			if !ok {
				return core.LinearPeptide{}, perr.Syntax("Invalid peptide", fmt.Sprintf("unclosed %q", ch), perr.Span(value, i, len(value)-i))
			}
			var aa *core.AminoAcid
			if n := len(out.Sequence); n > 0 {
				aa = &out.Sequence[n-1].AminoAcid
			}
			mod, err := sloppyModification(r, value[i+1:close], i+1, aa)
			if err != nil {
				return core.LinearPeptide{}, err
			}
			switch {
			case len(out.Sequence) == 0 && out.NTerm == nil:
				out.NTerm = &mod
			case len(out.Sequence) == 0:
				return core.LinearPeptide{}, perr.Syntax("Invalid peptide", "second N-terminal modification", perr.Span(value, i, close-i+1))
			default:
				e := &out.Sequence[len(out.Sequence)-1]
				e.Modifications = append(e.Modifications, mod)
			}
			i = close + 1
			if len(out.Sequence) == 0 && i < len(value) && value[i] == '-' {
				i++
			}
		case ch == '-':
			if i+1 >= len(value) || value[i+1] != '[' {
				return core.LinearPeptide{}, perr.Syntax("Invalid peptide", "expected a C-terminal modification after '-'", perr.Span(value, i, 1))
			}
			close, ok := closing(value, i+1, len(value))
			if !ok {
				return core.LinearPeptide{}, perr.Syntax("Invalid peptide", "unclosed '['", perr.Span(value, i+1, len(value)-i-1))
			}
			mod, err := sloppyModification(r, value[i+2:close], i+2, nil)
			if err != nil {
				return core.LinearPeptide{}, err
			}
			out.CTerm = &mod
			i = close + 1
		default:
			aa, ok := core.ParseAminoAcid(ch)
			if !ok {
				return core.LinearPeptide{}, perr.Syntax("Invalid peptide", fmt.Sprintf("%q is not an amino acid", ch), perr.Span(value, i, 1))
			}
			out.Sequence = append(out.Sequence, core.NewElement(aa))
			i++
		}
	}
	if len(out.Sequence) == 0 {
		return core.LinearPeptide{}, perr.Syntax("Invalid peptide", "no amino acids", perr.Full(value))
	}
	return out, nil
}

func sloppyModification(r resolver, text string, offset int, aa *core.AminoAcid) (core.Modification, error) {
	text = strings.TrimSpace(text)
	if mod, err := r.resolve(text, offset); err == nil {
		return mod, nil
	}
	if mod, ok := r.db.SloppyLookup(text, aa); ok {
		return mod, nil
	}
	return core.Modification{}, perr.Semantic("Unknown modification", fmt.Sprintf("%q is not a known modification", text), perr.Span(r.line, offset, len(text)))
}
