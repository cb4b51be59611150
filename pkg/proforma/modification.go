package proforma

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// label is the "#name(score)" suffix of a modification token.
type label struct {
	name   string
	score  *float64
	offset int
}

var labelPattern = regexp.MustCompile(`^([A-Za-z0-9_]+)(?:\(([^()]*)\))?$`)

// isLink reports whether a label names a cross-link or branch.
func (l *label) isLink() bool {
	return strings.EqualFold(l.name, "BRANCH") || (len(l.name) > 2 && strings.EqualFold(l.name[:2], "XL"))
}

// splitLabel splits a token written at offset into its modification and
// its group label, if any.
func splitLabel(line, token string, offset int) (string, *label, error) {
	i := strings.LastIndexByte(token, '#')
	if i < 0 {
		return token, nil, nil
	}
	m := labelPattern.FindStringSubmatch(token[i+1:])
	if m == nil {
		if strings.Contains(strings.ToLower(token[:i]), "info:") {
			return token, nil, nil
		}
		return "", nil, perr.Syntax("Invalid group label", "labels consist of letters, digits and underscores", perr.Span(line, offset+i, len(token)-i))
	}
	l := &label{name: m[1], offset: offset + i}
	if strings.EqualFold(l.name, "XL") {
		return "", nil, perr.Syntax("Invalid cross-link", "a cross-link label needs a name after XL", perr.Span(line, offset+i, len(token)-i))
	}
	if m[2] != "" {
		score, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return "", nil, perr.Syntax("Invalid localisation score", "the score is not a number", perr.Span(line, offset+i+len(m[1])+2, len(m[2])))
		}
		l.score = &score
	}
	return token[:i], l, nil
}

// resolver turns modification tokens into modifications.
type resolver struct {
	db   *core.ModDatabase
	line string
}

// resolve parses a pipe separated modification token written at offset.
// The first tag with a chemical definition is the modification, the other
// tags are kept for display.
func (r resolver) resolve(token string, offset int) (core.Modification, error) {
	if strings.TrimSpace(token) == "" {
		return core.Modification{}, perr.Syntax("Invalid modification", "empty modification", perr.Span(r.line, offset, len(token)))
	}
	parts := strings.Split(token, "|")
	mods := make([]core.Modification, 0, len(parts))
	at := offset
	for _, part := range parts {
		m, err := r.single(part, at)
		if err != nil {
			return core.Modification{}, err
		}
		mods = append(mods, m)
		at += len(part) + 1
	}

	main := 0
	for i, m := range mods {
		if m.Kind != core.KindInfo {
			main = i
			break
		}
	}
	out := mods[main]
	for i, m := range mods {
		if i != main {
			out.Tags = append(out.Tags, m)
		}
	}
	return out, nil
}

func relocate(err error, line string, delta int) error {
	var e *perr.Error
	if errors.As(err, &e) {
		return e.Relocate(line, delta)
	}
	return err
}

func (r resolver) single(tag string, offset int) (core.Modification, error) {
	span := perr.Span(r.line, offset, len(tag))
	if tag == "" {
		return core.Modification{}, perr.Syntax("Invalid modification", "empty modification tag", span)
	}

	if prefix, rest, ok := strings.Cut(tag, ":"); ok {
		delta := offset + len(prefix) + 1
		switch strings.ToLower(prefix) {
		case "u":
			return r.ontology(core.Unimod, rest, false, span)
		case "unimod":
			return r.ontology(core.Unimod, rest, true, span)
		case "m":
			return r.ontology(core.PsiMod, rest, false, span)
		case "mod":
			return r.ontology(core.PsiMod, rest, true, span)
		case "x":
			return r.ontology(core.XlMod, rest, false, span)
		case "xlmod":
			return r.ontology(core.XlMod, rest, true, span)
		case "g", "gno":
			return r.ontology(core.Gnome, rest, false, span)
		case "c":
			return r.ontology(core.Custom, rest, false, span)
		case "r", "resid":
			return core.Modification{}, perr.Semantic("Unsupported ontology", "RESID modifications are not supported", span)
		case "formula":
			f, err := chem.ParseFormula(rest, false)
			if err != nil {
				return core.Modification{}, relocate(err, r.line, delta)
			}
			return core.FormulaModification(f), nil
		case "glycan":
			g, err := core.ParseGlycanComposition(rest)
			if err != nil {
				return core.Modification{}, relocate(err, r.line, delta)
			}
			return core.Modification{Kind: core.KindGlycan, Glycan: g}, nil
		case "info":
			return core.Modification{Kind: core.KindInfo, Info: rest}, nil
		case "obs":
			mass, err := strconv.ParseFloat(rest, 64)
			if err != nil {
				return core.Modification{}, perr.Syntax("Invalid observed mass", "the mass is not a number", perr.Span(r.line, delta, len(rest)))
			}
			return core.MassModification(mass), nil
		}
	}

	if c := tag[0]; c == '+' || c == '-' || (c >= '0' && c <= '9') {
		if mass, err := strconv.ParseFloat(tag, 64); err == nil {
			return core.MassModification(mass), nil
		}
	}
	if e, ok := r.db.Lookup(tag); ok {
		return core.Predefined(e), nil
	}
	return core.Modification{}, perr.Semantic("Unknown modification", fmt.Sprintf("%q is not a known modification name", tag), span)
}

// ontology looks a modification up by name, or by accession number when
// accession is set and the value is numeric.
func (r resolver) ontology(o core.Ontology, value string, accession bool, span perr.Context) (core.Modification, error) {
	if accession {
		if id, err := strconv.Atoi(value); err == nil {
			if e, ok := r.db.ByID(o, id); ok {
				return core.Predefined(e), nil
			}
			return core.Modification{}, perr.Semantic("Unknown modification", fmt.Sprintf("%s has no modification %s", o, o.Accession(id)), span)
		}
	}
	if e, ok := r.db.ByName(o, value); ok {
		return core.Predefined(e), nil
	}
	return core.Modification{}, perr.Semantic("Unknown modification", fmt.Sprintf("%s has no modification named %q", o, value), span)
}
