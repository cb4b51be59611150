package chem

import (
	"fmt"
	"strconv"
	"strings"

	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// ParseFormula parses the elemental formula notation: a sequence of
// "[13C2]" isotope blocks and "C12" element counts. Spaces are ignored, an
// omitted count means one and counts may be negative. Electrons ("e") are
// only accepted when allowElectrons is set. Errors point into value.
func ParseFormula(value string, allowElectrons bool) (Formula, error) {
	f := Formula{}
	i := 0
	for i < len(value) {
		switch {
		case value[i] == ' ':
			i++
		case value[i] == '[':
			end := strings.IndexByte(value[i:], ']')
			if end < 0 {
				return Formula{}, perr.Syntax("Invalid formula", "unterminated isotope bracket", perr.Span(value, i, len(value)-i))
			}
			end += i
			var err error
			f, err = parseIsotope(f, value, i+1, end)
			if err != nil {
				return Formula{}, err
			}
			i = end + 1
		default:
			el, n, ok := matchElement(value[i:], allowElectrons)
			if !ok {
				return Formula{}, perr.Syntax("Invalid formula", "unknown element symbol", perr.Span(value, i, 1))
			}
			start := i
			i += n
			count, used, err := parseCount(value, i)
			if err != nil {
				return Formula{}, err
			}
			i += used
			var valid bool
			f, valid = f.AddElement(el, 0, count)
			if !valid {
				return Formula{}, perr.Semantic("Invalid formula", fmt.Sprintf("element %s has no defined mass", el), perr.Span(value, start, n))
			}
		}
	}
	return f, nil
}

// MustParseFormula parses a formula literal and panics on failure. It is
// meant for package level tables.
func MustParseFormula(value string) Formula {
	f, err := ParseFormula(value, true)
	if err != nil {
		panic(err)
	}
	return f
}

func matchElement(s string, allowElectrons bool) (Element, int, bool) {
	if el, n, ok := ParseElement(s); ok {
		return el, n, true
	}
	if allowElectrons && (s[0] == 'e' || s[0] == 'E') {
		return Electron, 1, true
	}
	return 0, 0, false
}

// parseIsotope handles the inside of an isotope block value[start:end],
// e.g. "13C2".
func parseIsotope(f Formula, value string, start, end int) (Formula, error) {
	i := start
	for i < end && value[i] >= '0' && value[i] <= '9' {
		i++
	}
	if i == start {
		return f, perr.Syntax("Invalid formula", "isotope block requires a mass number", perr.Span(value, start, end-start))
	}
	number, err := strconv.ParseUint(value[start:i], 10, 16)
	if err != nil || number == 0 {
		return f, perr.Syntax("Invalid formula", "isotope mass number is not a positive integer", perr.Span(value, start, i-start))
	}
	el, n, ok := ParseElement(value[i:end])
	if !ok {
		return f, perr.Syntax("Invalid formula", "unknown element symbol", perr.Span(value, i, 1))
	}
	symbolAt := i
	i += n
	count, used, cerr := parseCount(value[:end], i)
	if cerr != nil {
		return f, cerr
	}
	i += used
	for i < end && value[i] == ' ' {
		i++
	}
	if i != end {
		return f, perr.Syntax("Invalid formula", "unexpected characters in isotope block", perr.Span(value, i, end-i))
	}
	out, valid := f.AddElement(el, uint16(number), count)
	if !valid {
		return f, perr.Semantic("Invalid formula", fmt.Sprintf("%d is not a known isotope of %s", number, el), perr.Span(value, start, symbolAt+n-start))
	}
	return out, nil
}

// parseCount reads an optional signed integer at value[i:]. A missing
// number counts as one.
func parseCount(value string, i int) (int, int, error) {
	j := i
	if j < len(value) && value[j] == '-' {
		j++
	}
	digits := j
	for j < len(value) && value[j] >= '0' && value[j] <= '9' {
		j++
	}
	if j == digits {
		if j > i {
			return 0, 0, perr.Syntax("Invalid formula", "a minus sign must be followed by a count", perr.Span(value, i, 1))
		}
		return 1, 0, nil
	}
	n, err := strconv.ParseInt(value[i:j], 10, 32)
	if err != nil {
		return 0, 0, perr.Syntax("Invalid formula", "count is out of range", perr.Span(value, i, j-i))
	}
	return int(n), j - i, nil
}
