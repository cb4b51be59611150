package chem

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Entry is one (element, isotope, count) triple of a Formula. Isotope 0
// stands for the natural isotope distribution.
type Entry struct {
	Element Element
	Isotope uint16
	Count   int
}

// Formula is an elemental formula with an additional mass term for
// modifications that are only known by mass. Formulas are values: all
// arithmetic returns a new Formula.
type Formula struct {
	entries    []Entry
	additional float64
}

// NewFormula builds a normalised formula from the given entries.
func NewFormula(entries ...Entry) Formula {
	f := Formula{}
	for _, e := range entries {
		f = f.add(e)
	}
	return f
}

// MassOnly returns a formula that only carries an additional mass.
func MassOnly(mass float64) Formula {
	return Formula{additional: mass}
}

// Entries returns a copy of the formula entries in canonical order.
func (f Formula) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// AdditionalMass returns the mass that is not expressed in elements.
func (f Formula) AdditionalMass() float64 {
	return f.additional
}

// IsEmpty reports whether the formula has no elements and no additional mass.
func (f Formula) IsEmpty() bool {
	return len(f.entries) == 0 && f.additional == 0
}

// Count returns the count of the given element and isotope.
func (f Formula) Count(el Element, isotope uint16) int {
	for _, e := range f.entries {
		if e.Element == el && e.Isotope == isotope {
			return e.Count
		}
	}
	return 0
}

func less(a, b Entry) bool {
	if a.Element != b.Element {
		return a.Element < b.Element
	}
	return a.Isotope < b.Isotope
}

// add merges one entry, keeping entries sorted and pruning zero counts.
func (f Formula) add(e Entry) Formula {
	if e.Count == 0 {
		return f
	}
	i := sort.Search(len(f.entries), func(i int) bool { return !less(f.entries[i], e) })
	out := make([]Entry, 0, len(f.entries)+1)
	out = append(out, f.entries[:i]...)
	if i < len(f.entries) && f.entries[i].Element == e.Element && f.entries[i].Isotope == e.Isotope {
		if c := f.entries[i].Count + e.Count; c != 0 {
			out = append(out, Entry{e.Element, e.Isotope, c})
		}
		out = append(out, f.entries[i+1:]...)
	} else {
		out = append(out, e)
		out = append(out, f.entries[i:]...)
	}
	return Formula{entries: out, additional: f.additional}
}

// AddElement adds count atoms of the element and isotope. It fails when the
// element has no mass data for that isotope.
func (f Formula) AddElement(el Element, isotope uint16, count int) (Formula, bool) {
	if !el.IsValid(isotope) {
		return f, false
	}
	return f.add(Entry{el, isotope, count}), true
}

// Add returns f + o.
func (f Formula) Add(o Formula) Formula {
	out := Formula{entries: f.entries, additional: f.additional + o.additional}
	for _, e := range o.entries {
		out = out.add(e)
	}
	return out
}

// Sub returns f - o.
func (f Formula) Sub(o Formula) Formula {
	return f.Add(o.Mul(-1))
}

// Mul returns f repeated n times.
func (f Formula) Mul(n int) Formula {
	if n == 0 {
		return Formula{}
	}
	out := Formula{entries: make([]Entry, len(f.entries)), additional: f.additional * float64(n)}
	for i, e := range f.entries {
		out.entries[i] = Entry{e.Element, e.Isotope, e.Count * n}
	}
	return out
}

// WithAdditionalMass returns f with mass added to its additional mass term.
func (f Formula) WithAdditionalMass(mass float64) Formula {
	return Formula{entries: f.entries, additional: f.additional + mass}
}

// Charge returns the charge implied by the electron count.
func (f Formula) Charge() int {
	return -f.Count(Electron, 0)
}

// MonoisotopicMass returns the monoisotopic mass. The second result is false
// when an entry lacks mass data.
func (f Formula) MonoisotopicMass() (float64, bool) {
	mass := f.additional
	for _, e := range f.entries {
		m, ok := e.Element.Mass(e.Isotope)
		if !ok {
			return 0, false
		}
		mass += m * float64(e.Count)
	}
	return mass, true
}

// AverageWeight returns the average weight. The second result is false when
// an entry lacks mass data.
func (f Formula) AverageWeight() (float64, bool) {
	mass := f.additional
	for _, e := range f.entries {
		m, ok := e.Element.AverageWeight(e.Isotope)
		if !ok {
			return 0, false
		}
		mass += m * float64(e.Count)
	}
	return mass, true
}

// IsotopeOverride replaces the natural distribution of Element by Isotope.
type IsotopeOverride struct {
	Element Element
	Isotope uint16
}

// String renders the override the way it is written in global notation.
func (o IsotopeOverride) String() string {
	if o.Element == H && o.Isotope == 2 {
		return "D"
	}
	return fmt.Sprintf("%d%s", o.Isotope, o.Element)
}

// WithGlobalIsotopes replaces every natural occurrence of the overridden
// elements with the given isotope.
func (f Formula) WithGlobalIsotopes(overrides []IsotopeOverride) (Formula, error) {
	if len(overrides) == 0 {
		return f, nil
	}
	out := Formula{additional: f.additional}
	for _, e := range f.entries {
		for _, o := range overrides {
			if e.Element == o.Element && e.Isotope == 0 {
				if !o.Element.IsValid(o.Isotope) {
					return f, fmt.Errorf("invalid global isotope %d for element %s", o.Isotope, o.Element)
				}
				e.Isotope = o.Isotope
				break
			}
		}
		out = out.add(e)
	}
	return out, nil
}

// MustWithGlobalIsotopes is WithGlobalIsotopes for overrides that were
// validated when the peptide was built.
func (f Formula) MustWithGlobalIsotopes(overrides []IsotopeOverride) Formula {
	out, err := f.WithGlobalIsotopes(overrides)
	if err != nil {
		panic(err)
	}
	return out
}

// Equal reports whether both formulas have the same entries and additional
// mass.
func (f Formula) Equal(o Formula) bool {
	if len(f.entries) != len(o.entries) || f.additional != o.additional {
		return false
	}
	for i := range f.entries {
		if f.entries[i] != o.entries[i] {
			return false
		}
	}
	return true
}

// String renders the formula in Hill order: C, H, then the other elements
// alphabetically (all alphabetically if there is no carbon). Counts are
// always written so that symbols like C and O never merge into Co. Isotopes
// are written as [13C2] and the additional mass as a trailing signed number.
func (f Formula) String() string {
	entries := f.Entries()
	hasCarbon := false
	for _, e := range entries {
		if e.Element == C {
			hasCarbon = true
			break
		}
	}
	rank := func(e Entry) int {
		if !hasCarbon {
			return 2
		}
		switch e.Element {
		case C:
			return 0
		case H:
			return 1
		}
		return 2
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := rank(entries[i]), rank(entries[j])
		if ri != rj {
			return ri < rj
		}
		si, sj := entries[i].Element.String(), entries[j].Element.String()
		if si != sj {
			return si < sj
		}
		return entries[i].Isotope < entries[j].Isotope
	})
	var sb strings.Builder
	for _, e := range entries {
		if e.Isotope != 0 {
			fmt.Fprintf(&sb, "[%d%s%d]", e.Isotope, e.Element, e.Count)
			continue
		}
		sb.WriteString(e.Element.String())
		sb.WriteString(strconv.Itoa(e.Count))
	}
	if f.additional != 0 {
		sb.WriteString(FormatSigned(f.additional))
	}
	return sb.String()
}

// FormatSigned renders a mass with an explicit sign and the shortest exact
// decimal representation.
func FormatSigned(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v >= 0 && !math.Signbit(v) {
		return "+" + s
	}
	return s
}
