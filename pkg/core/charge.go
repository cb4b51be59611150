package core

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/pepform/pkg/chem"
)

// ChargeCarrier is Count copies of an ion. Neutral is the ion without its
// charge electrons, so the ion formula is Neutral minus Charge electrons.
type ChargeCarrier struct {
	Count   int
	Neutral chem.Formula
	Charge  int
}

var electron = chem.NewFormula(chem.Entry{Element: chem.Electron, Count: 1})

// Formula returns the formula of a single carrier ion.
func (c ChargeCarrier) Formula() chem.Formula {
	return c.Neutral.Add(electron.Mul(-c.Charge))
}

func (c ChargeCarrier) isProton() bool {
	return c.Charge == 1 && c.Neutral.Equal(Hydrogen)
}

// String renders the carrier as written in an adduct list, e.g. "+2Na1+"
// or "+Ca1+2". The charge follows its sign so that it never merges with the
// last formula count.
func (c ChargeCarrier) String() string {
	var sb strings.Builder
	if c.Count < 0 {
		sb.WriteByte('-')
	} else {
		sb.WriteByte('+')
	}
	if abs(c.Count) != 1 {
		sb.WriteString(strconv.Itoa(abs(c.Count)))
	}
	if c.Neutral.IsEmpty() {
		sb.WriteByte('e')
	} else {
		sb.WriteString(c.Neutral.String())
	}
	switch {
	case c.Charge == 1:
		sb.WriteByte('+')
	case c.Charge == -1:
		sb.WriteByte('-')
	case c.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(c.Charge))
	case c.Charge < -1:
		sb.WriteString(strconv.Itoa(c.Charge))
	}
	return sb.String()
}

// MolecularCharge is the set of charge carriers of an ion.
type MolecularCharge struct {
	Carriers []ChargeCarrier
}

// Protons returns a charge of n protons.
func Protons(n int) MolecularCharge {
	return MolecularCharge{Carriers: []ChargeCarrier{{Count: n, Neutral: Hydrogen, Charge: 1}}}
}

// Charge returns the total charge.
func (m MolecularCharge) Charge() int {
	total := 0
	for _, c := range m.Carriers {
		total += c.Count * c.Charge
	}
	return total
}

// Formula returns the summed formula of all carrier ions.
func (m MolecularCharge) Formula() chem.Formula {
	f := chem.Formula{}
	for _, c := range m.Carriers {
		f = f.Add(c.Formula().Mul(c.Count))
	}
	return f
}

// ProtonsOnly reports whether every carrier is a proton.
func (m MolecularCharge) ProtonsOnly() bool {
	for _, c := range m.Carriers {
		if !c.isProton() {
			return false
		}
	}
	return true
}

// Options returns every combination of zero up to Count copies of each
// carrier, leaving out the uncharged one, ordered by absolute charge.
func (m MolecularCharge) Options() []MolecularCharge {
	options := []MolecularCharge{{}}
	for _, c := range m.Carriers {
		next := make([]MolecularCharge, 0, len(options)*(abs(c.Count)+1))
		for _, o := range options {
			for k := 0; k <= abs(c.Count); k++ {
				count := k
				if c.Count < 0 {
					count = -k
				}
				carriers := append([]ChargeCarrier(nil), o.Carriers...)
				if count != 0 {
					carriers = append(carriers, ChargeCarrier{Count: count, Neutral: c.Neutral, Charge: c.Charge})
				}
				next = append(next, MolecularCharge{Carriers: carriers})
			}
		}
		options = next
	}
	out := options[:0]
	for _, o := range options {
		if o.Charge() != 0 {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return abs(out[i].Charge()) < abs(out[j].Charge()) })
	return out
}

// SingleOptions returns one copy of each carrier on its own.
func (m MolecularCharge) SingleOptions() []MolecularCharge {
	out := make([]MolecularCharge, 0, len(m.Carriers))
	for _, c := range m.Carriers {
		count := 1
		if c.Count < 0 {
			count = -1
		}
		out = append(out, MolecularCharge{Carriers: []ChargeCarrier{{Count: count, Neutral: c.Neutral, Charge: c.Charge}}})
	}
	return out
}

// String renders the charge suffix without the leading slash: "2" for
// protons only, "3[+2Na1+,+H1+]" otherwise.
func (m MolecularCharge) String() string {
	s := strconv.Itoa(m.Charge())
	if m.ProtonsOnly() {
		return s
	}
	parts := make([]string, len(m.Carriers))
	for i, c := range m.Carriers {
		parts[i] = c.String()
	}
	return s + "[" + strings.Join(parts, ",") + "]"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
