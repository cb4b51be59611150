package core

import (
	"sort"
	"strings"
)

// Protease describes where an enzyme cleaves a peptide. A cut happens after
// a residue listed in After or before a residue listed in Before, unless the
// residue on the far side of the cut is listed in Blocked.
type Protease struct {
	Name    string
	After   string
	Before  string
	Blocked string
}

// Proteases lists the built in proteases by lower case name.
var Proteases = map[string]Protease{
	"trypsin":      {Name: "Trypsin", After: "KR", Blocked: "P"},
	"trypsin/p":    {Name: "Trypsin/P", After: "KR"},
	"lys-c":        {Name: "Lys-C", After: "K"},
	"arg-c":        {Name: "Arg-C", After: "R", Blocked: "P"},
	"glu-c":        {Name: "Glu-C", After: "E"},
	"asp-n":        {Name: "Asp-N", Before: "D"},
	"chymotrypsin": {Name: "Chymotrypsin", After: "FWYL", Blocked: "P"},
	"everywhere":   {Name: "Everywhere", After: codes},
}

// GetProtease returns a built in protease by name, case insensitive.
func GetProtease(name string) (Protease, bool) {
	p, ok := Proteases[strings.ToLower(name)]
	return p, ok
}

// ProteaseNames returns the sorted names of the built in proteases.
func ProteaseNames() []string {
	names := make([]string, 0, len(Proteases))
	for n := range Proteases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func contains(set string, aa AminoAcid) bool {
	return strings.IndexByte(set, aa.Char()) >= 0
}

// Sites returns the sorted cleavage sites: index i means a cut between
// residue i-1 and residue i.
func (p Protease) Sites(seq []SequenceElement) []int {
	var out []int
	for i := 1; i < len(seq); i++ {
		prev, next := seq[i-1].AminoAcid, seq[i].AminoAcid
		if contains(p.After, prev) && !contains(p.Blocked, next) {
			out = append(out, i)
			continue
		}
		if contains(p.Before, next) && !contains(p.Blocked, prev) {
			out = append(out, i)
		}
	}
	return out
}
