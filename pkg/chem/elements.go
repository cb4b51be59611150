// Package chem implements elements, isotopes and elemental formulas.
package chem

import (
	"sort"
	"strings"
)

// Element is a chemical element identified by its atomic number. The zero
// value is the electron pseudo element used in charge carrier notation.
type Element uint8

// Electron is the electron pseudo element.
const Electron Element = 0

// Frequently used elements.
const (
	H  Element = 1
	He Element = 2
	Li Element = 3
	B  Element = 5
	C  Element = 6
	N  Element = 7
	O  Element = 8
	F  Element = 9
	Na Element = 11
	Mg Element = 12
	P  Element = 15
	S  Element = 16
	Cl Element = 17
	K  Element = 19
	Ca Element = 20
	Fe Element = 26
	Cu Element = 29
	Zn Element = 30
	Se Element = 34
	Br Element = 35
	I  Element = 53
	U  Element = 92
)

// ElectronMass is the rest mass of an electron in Dalton.
const ElectronMass = 0.000548579909065

var symbols = [...]string{
	"e",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// Isotope is one tabulated isotope of an element.
type Isotope struct {
	Number    uint16
	Mass      float64
	Abundance float64
}

// isotopes holds natural isotope masses and abundances (percent) for the
// elements that occur in peptides, modifications, adducts and labels.
var isotopes = map[Element][]Isotope{
	H:  {{1, 1.00782503207, 99.9885}, {2, 2.0141017778, 0.0115}, {3, 3.0160492777, 0}},
	He: {{3, 3.0160293191, 0.000134}, {4, 4.00260325415, 99.999866}},
	Li: {{6, 6.015122795, 7.59}, {7, 7.01600455, 92.41}},
	4:  {{9, 9.0121822, 100}},
	B:  {{10, 10.0129370, 19.9}, {11, 11.0093054, 80.1}},
	C:  {{12, 12, 98.93}, {13, 13.0033548378, 1.07}, {14, 14.003241989, 0}},
	N:  {{14, 14.0030740048, 99.636}, {15, 15.0001088982, 0.364}},
	O:  {{16, 15.99491461956, 99.757}, {17, 16.99913170, 0.038}, {18, 17.9991610, 0.205}},
	F:  {{19, 18.99840322, 100}},
	10: {{20, 19.9924401754, 90.48}, {21, 20.99384668, 0.27}, {22, 21.991385114, 9.25}},
	Na: {{23, 22.9897692809, 100}},
	Mg: {{24, 23.985041700, 78.99}, {25, 24.98583692, 10.00}, {26, 25.982592929, 11.01}},
	13: {{27, 26.98153863, 100}},
	14: {{28, 27.9769265325, 92.223}, {29, 28.976494700, 4.685}, {30, 29.97377017, 3.092}},
	P:  {{31, 30.97376163, 100}},
	S:  {{32, 31.97207100, 94.99}, {33, 32.97145876, 0.75}, {34, 33.96786690, 4.25}, {36, 35.96708076, 0.01}},
	Cl: {{35, 34.96885268, 75.76}, {37, 36.96590259, 24.24}},
	18: {{36, 35.967545106, 0.3365}, {38, 37.9627324, 0.0632}, {40, 39.9623831225, 99.6003}},
	K:  {{39, 38.96370668, 93.2581}, {40, 39.96399848, 0.0117}, {41, 40.96182576, 6.7302}},
	Ca: {{40, 39.96259098, 96.941}, {42, 41.95861801, 0.647}, {43, 42.9587666, 0.135}, {44, 43.9554818, 2.086}, {46, 45.9536926, 0.004}, {48, 47.952534, 0.187}},
	23: {{50, 49.9471585, 0.25}, {51, 50.9439595, 99.75}},
	24: {{50, 49.9460442, 4.345}, {52, 51.9405075, 83.789}, {53, 52.9406494, 9.501}, {54, 53.9388804, 2.365}},
	25: {{55, 54.9380451, 100}},
	Fe: {{54, 53.9396105, 5.845}, {56, 55.9349375, 91.754}, {57, 56.9353940, 2.119}, {58, 57.9332756, 0.282}},
	27: {{59, 58.9331950, 100}},
	28: {{58, 57.9353429, 68.0769}, {60, 59.9307864, 26.2231}, {61, 60.9310560, 1.1399}, {62, 61.9283451, 3.6345}, {64, 63.9279660, 0.9256}},
	Cu: {{63, 62.9295975, 69.15}, {65, 64.9277895, 30.85}},
	Zn: {{64, 63.9291422, 48.268}, {66, 65.9260334, 27.975}, {67, 66.9271273, 4.102}, {68, 67.9248442, 19.024}, {70, 69.9253193, 0.631}},
	33: {{75, 74.9215965, 100}},
	Se: {{74, 73.9224764, 0.89}, {76, 75.9192136, 9.37}, {77, 76.9199140, 7.63}, {78, 77.9173091, 23.77}, {80, 79.9165213, 49.61}, {82, 81.9166994, 8.73}},
	Br: {{79, 78.9183371, 50.69}, {81, 80.9162906, 49.31}},
	47: {{107, 106.905097, 51.839}, {109, 108.904752, 48.161}},
	51: {{121, 120.9038157, 57.21}, {123, 122.9042140, 42.79}},
	I:  {{127, 126.904473, 100}},
	55: {{133, 132.905451933, 100}},
	79: {{197, 196.9665687, 100}},
	U:  {{234, 234.0409521, 0.0054}, {235, 235.0439299, 0.7204}, {238, 238.0507882, 99.2742}},
}

// elementData is the precomputed natural mass data of one element.
type elementData struct {
	monoisotopic float64
	average      float64
}

var natural = func() map[Element]elementData {
	out := make(map[Element]elementData, len(isotopes)+1)
	out[Electron] = elementData{monoisotopic: ElectronMass, average: ElectronMass}
	for el, list := range isotopes {
		var best Isotope
		var weighted, total float64
		for _, iso := range list {
			if iso.Abundance > best.Abundance {
				best = iso
			}
			weighted += iso.Mass * iso.Abundance
			total += iso.Abundance
		}
		out[el] = elementData{monoisotopic: best.Mass, average: weighted / total}
	}
	return out
}()

// parseOrder lists element symbols so that two letter symbols are tried
// before one letter symbols.
var parseOrder = func() []Element {
	out := make([]Element, 0, len(symbols)-1)
	for i := 1; i < len(symbols); i++ {
		out = append(out, Element(i))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(symbols[out[i]]) > len(symbols[out[j]])
	})
	return out
}()

// String returns the element symbol.
func (e Element) String() string {
	if int(e) < len(symbols) {
		return symbols[e]
	}
	return "?"
}

// Isotopes returns the tabulated isotopes of the element.
func (e Element) Isotopes() []Isotope {
	return isotopes[e]
}

// IsValid reports whether the element has mass data for the given isotope.
// Isotope 0 means the natural distribution.
func (e Element) IsValid(isotope uint16) bool {
	if isotope == 0 {
		_, ok := natural[e]
		return ok
	}
	for _, iso := range isotopes[e] {
		if iso.Number == isotope {
			return true
		}
	}
	return false
}

// Mass returns the monoisotopic mass of the element, or of the given isotope
// when isotope is not 0.
func (e Element) Mass(isotope uint16) (float64, bool) {
	if isotope == 0 {
		d, ok := natural[e]
		return d.monoisotopic, ok
	}
	for _, iso := range isotopes[e] {
		if iso.Number == isotope {
			return iso.Mass, true
		}
	}
	return 0, false
}

// AverageWeight returns the abundance weighted mass of the element, or the
// mass of the given isotope when isotope is not 0.
func (e Element) AverageWeight(isotope uint16) (float64, bool) {
	if isotope == 0 {
		d, ok := natural[e]
		return d.average, ok
	}
	return e.Mass(isotope)
}

// ParseElement matches the longest element symbol at the start of s,
// ignoring case. It returns the element and the number of bytes consumed.
func ParseElement(s string) (Element, int, bool) {
	for _, el := range parseOrder {
		sym := symbols[el]
		if len(s) >= len(sym) && strings.EqualFold(s[:len(sym)], sym) {
			return el, len(sym), true
		}
	}
	return 0, 0, false
}
