package proforma

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// carrierPattern matches one adduct: sign, count, formula and charge, as
// in "+2Na+", "+Ca+2" or "-e-".
var carrierPattern = regexp.MustCompile(`^([+-]?)(\d*)(.+?)([+-])(\d*)$`)

// parseCharge parses the charge written after '/' between start and end:
// "2" for protons or "3[+2Na+,+H+]" with explicit charge carriers.
func parseCharge(line string, start, end int) (core.MolecularCharge, error) {
	text := line[start:end]
	i := 0
	if i < len(text) && (text[i] == '+' || text[i] == '-') {
		i++
	}
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	total, err := strconv.Atoi(text[:i])
	if err != nil {
		return core.MolecularCharge{}, perr.Syntax("Invalid charge", "expected the charge as a number", perr.Span(line, start, max(i, 1)))
	}
	rest := text[i:]
	if rest == "" {
		return core.Protons(total), nil
	}
	if rest[0] != '[' || !strings.HasSuffix(rest, "]") {
		return core.MolecularCharge{}, perr.Syntax("Invalid charge", "expected the charge carriers in square brackets", perr.Span(line, start+i, len(rest)))
	}

	var charge core.MolecularCharge
	at := start + i + 1
	for _, part := range strings.Split(rest[1:len(rest)-1], ",") {
		carrier, err := parseCarrier(line, part, at)
		if err != nil {
			return core.MolecularCharge{}, err
		}
		charge.Carriers = append(charge.Carriers, carrier)
		at += len(part) + 1
	}
	if charge.Charge() != total {
		return core.MolecularCharge{}, perr.Semantic("Invalid charge",
			fmt.Sprintf("the charge carriers add up to %d instead of %d", charge.Charge(), total), perr.Span(line, start, end-start))
	}
	return charge, nil
}

func parseCarrier(line, part string, offset int) (core.ChargeCarrier, error) {
	m := carrierPattern.FindStringSubmatch(part)
	if m == nil {
		return core.ChargeCarrier{}, perr.Syntax("Invalid charge carrier", "expected a carrier such as +2Na+", perr.Span(line, offset, len(part)))
	}
	c := core.ChargeCarrier{Count: 1, Charge: 1}
	if m[2] != "" {
		count, err := strconv.Atoi(m[2])
		if err != nil {
			return core.ChargeCarrier{}, perr.Syntax("Invalid charge carrier", "the carrier count is not a valid number",
				perr.Span(line, offset+len(m[1]), len(m[2])))
		}
		c.Count = count
	}
	if m[1] == "-" {
		c.Count = -c.Count
	}
	if m[5] != "" {
		charge, err := strconv.Atoi(m[5])
		if err != nil {
			return core.ChargeCarrier{}, perr.Syntax("Invalid charge carrier", "the carrier charge is not a valid number",
				perr.Span(line, offset+len(part)-len(m[5]), len(m[5])))
		}
		c.Charge = charge
	}
	if m[4] == "-" {
		c.Charge = -c.Charge
	}
	if !strings.EqualFold(m[3], "e") {
		f, err := chem.ParseFormula(m[3], false)
		if err != nil {
			return core.ChargeCarrier{}, relocate(err, line, offset+len(m[1])+len(m[2]))
		}
		c.Neutral = f
	}
	if c.Count == 0 || c.Charge == 0 {
		return core.ChargeCarrier{}, perr.Semantic("Invalid charge carrier", "count and charge must not be zero", perr.Span(line, offset, len(part)))
	}
	return c, nil
}
