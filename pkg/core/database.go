package core

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/ChrisMcGann/pepform/pkg/chem"
)

// ModDatabase stores predefined modifications per ontology. It is safe for
// concurrent lookups; Add and LoadFromCSV take a write lock.
type ModDatabase struct {
	mu     sync.RWMutex
	byName map[Ontology]map[string]*OntologyEntry
	byID   map[Ontology]map[int]*OntologyEntry
	nextID int
}

// NewModDatabase creates an empty modification database
func NewModDatabase() *ModDatabase {
	db := &ModDatabase{
		byName: make(map[Ontology]map[string]*OntologyEntry),
		byID:   make(map[Ontology]map[int]*OntologyEntry),
		nextID: 1,
	}
	for _, o := range Ontologies {
		db.byName[o] = make(map[string]*OntologyEntry)
		db.byID[o] = make(map[int]*OntologyEntry)
	}
	return db
}

// Add adds or replaces an entry, indexed by name, synonyms and id.
func (db *ModDatabase) Add(e *OntologyEntry) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if e.Ontology == Custom && e.ID == 0 {
		e.ID = db.nextID
	}
	if e.Ontology == Custom && e.ID >= db.nextID {
		db.nextID = e.ID + 1
	}
	db.byName[e.Ontology][strings.ToLower(e.Name)] = e
	for _, s := range e.Synonyms {
		db.byName[e.Ontology][strings.ToLower(s)] = e
	}
	if e.ID != 0 {
		db.byID[e.Ontology][e.ID] = e
	}
}

// AddMass adds a custom modification known only by its mass.
func (db *ModDatabase) AddMass(name string, mass float64, rules ...PlacementRule) *OntologyEntry {
	e := &OntologyEntry{Ontology: Custom, Name: name, Formula: chem.MassOnly(mass)}
	if len(rules) > 0 {
		e.Specificities = []Specificity{{Rules: rules}}
	}
	db.Add(e)
	return e
}

// LoadFromCSV loads custom modifications (format: mod,massshift,aa). The
// mass shift column also accepts "Formula:<formula>"; the aa column lists
// residues ("STY") or termini ("N-term", "Protein C-term:K") separated by
// semicolons.
func (db *ModDatabase) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", lineNum)
		}

		entry := &OntologyEntry{Ontology: Custom, Name: strings.TrimSpace(parts[0])}
		value := strings.TrimSpace(parts[1])
		if f, ok := strings.CutPrefix(value, "Formula:"); ok {
			formula, err := chem.ParseFormula(f, false)
			if err != nil {
				return fmt.Errorf("line %d: invalid formula '%s': %w", lineNum, f, err)
			}
			entry.Formula = formula
		} else {
			mass, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, value, err)
			}
			entry.Formula = chem.MassOnly(mass)
		}

		if len(parts) >= 3 {
			var rules []PlacementRule
			for _, site := range strings.Split(parts[2], ";") {
				site = strings.TrimSpace(site)
				if site == "" {
					continue
				}
				rule, ok := ParseRule(site)
				if !ok {
					return fmt.Errorf("line %d: invalid placement '%s'", lineNum, site)
				}
				rules = append(rules, rule)
			}
			if len(rules) > 0 {
				entry.Specificities = []Specificity{{Rules: rules}}
			}
		}
		db.Add(entry)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// ByName looks up an entry by name (case insensitive) in one ontology.
func (db *ModDatabase) ByName(o Ontology, name string) (*OntologyEntry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, ok := db.byName[o][strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// ByID looks up an entry by numeric id in one ontology.
func (db *ModDatabase) ByID(o Ontology, id int) (*OntologyEntry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, ok := db.byID[o][id]
	return e, ok
}

// Lookup searches every ontology for a name, in Ontologies order.
func (db *ModDatabase) Lookup(name string) (*OntologyEntry, bool) {
	for _, o := range Ontologies {
		if e, ok := db.ByName(o, name); ok {
			return e, true
		}
	}
	return nil, false
}

// GetMass returns the monoisotopic mass shift for a modification name
func (db *ModDatabase) GetMass(name string) (float64, bool) {
	e, ok := db.Lookup(name)
	if !ok {
		return 0, false
	}
	return e.Formula.MonoisotopicMass()
}

var (
	sloppySite   = regexp.MustCompile(`\s*\(([A-Za-z\- ]+)\)\s*$`)
	sloppyFrom   = regexp.MustCompile(`(?i)^(.+?)\s+from\s+([A-Za-z])$`)
	sloppyFolder = strings.NewReplacer(" ", "", "_", "", "-", "", ">", "", "(", "", ")", "")
)

// sloppyAliases maps folded spellings used by search engines and spectral
// libraries to database names.
var sloppyAliases = map[string]string{
	"deamidation":          "Deamidated",
	"oxidized":             "Oxidation",
	"phosphorylation":      "Phospho",
	"acetylation":          "Acetyl",
	"carbamidomethylation": "Carbamidomethyl",
	"cam":                  "Carbamidomethyl",
	"methylation":          "Methyl",
	"pyroglu":              "Gln->pyro-Glu",
	"pyrocarbamidomethyl":  "Pyro-carbamidomethyl",
	"tmtpro":               "TMTpro",
	"tmt":                  "TMT6plex",
	"tmt10plex":            "TMT6plex",
	"tmt11plex":            "TMT6plex",
	"tmt16plex":            "TMTpro",
	"ox":                   "Oxidation",
	"ph":                   "Phospho",
	"ac":                   "Acetyl",
	"de":                   "Deamidated",
	"gl":                   "Gln->pyro-Glu",
	"cm":                   "Carbamidomethyl",
}

// SloppyLookup resolves free text written by other tools. It accepts bare
// mass shifts ("211", "+57.02"), trailing site annotations
// ("Deamidation (NQ)"), "X from Q" conversions and common aliases. aa is
// the residue the modification sits on, when known.
func (db *ModDatabase) SloppyLookup(text string, aa *AminoAcid) (Modification, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Modification{}, false
	}
	if mass, err := strconv.ParseFloat(text, 64); err == nil {
		return MassModification(mass), true
	}
	if m := sloppyFrom.FindStringSubmatch(text); m != nil {
		if from, ok := ParseAminoAcid(m[2][0]); ok {
			name := strings.ToLower(sloppyFolder.Replace(m[1]))
			if name == "pyroglu" {
				switch from {
				case GlutamicAcid:
					return db.predefined("Glu->pyro-Glu")
				case Glutamine:
					return db.predefined("Gln->pyro-Glu")
				}
			}
		}
	}
	text = sloppySite.ReplaceAllString(text, "")
	for _, prefix := range []string{"C:", "U:", "M:", "X:"} {
		text = strings.TrimPrefix(text, prefix)
	}
	if m, ok := db.predefined(text); ok {
		return m, true
	}
	folded := strings.ToLower(sloppyFolder.Replace(text))
	if name, ok := sloppyAliases[folded]; ok {
		if name == "Gln->pyro-Glu" && aa != nil && *aa == GlutamicAcid {
			name = "Glu->pyro-Glu"
		}
		return db.predefined(name)
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, o := range Ontologies {
		for name, e := range db.byName[o] {
			if sloppyFolder.Replace(name) == folded {
				return Predefined(e), true
			}
		}
	}
	return Modification{}, false
}

func (db *ModDatabase) predefined(name string) (Modification, bool) {
	e, ok := db.Lookup(name)
	if !ok {
		return Modification{}, false
	}
	return Predefined(e), true
}

var (
	defaultOnce sync.Once
	defaultDB   *ModDatabase
)

// SharedModDatabase returns a process wide default database. It is built
// once and must not be modified; use DefaultModDatabase for a private copy.
func SharedModDatabase() *ModDatabase {
	defaultOnce.Do(func() { defaultDB = DefaultModDatabase() })
	return defaultDB
}

func aas(codes string) []AminoAcid {
	out := make([]AminoAcid, 0, len(codes))
	for i := 0; i < len(codes); i++ {
		aa, _ := ParseAminoAcid(codes[i])
		out = append(out, aa)
	}
	return out
}

func on(codes string) PlacementRule { return PlacementRule{AminoAcids: aas(codes)} }

var (
	nTerm        = PlacementRule{Site: AnyNTerm}
	cTerm        = PlacementRule{Site: AnyCTerm}
	proteinNTerm = PlacementRule{Site: ProteinNTerm}
	proteinCTerm = PlacementRule{Site: ProteinCTerm}
	anywhere     = PlacementRule{}
)

func rules(r ...PlacementRule) []Specificity {
	return []Specificity{{Rules: r}}
}

func formula(s string) chem.Formula { return chem.MustParseFormula(s) }

// DefaultModDatabase returns a ModDatabase pre-loaded with common modifications
func DefaultModDatabase() *ModDatabase {
	db := NewModDatabase()

	phosphoLoss := []NeutralLoss{Loss("H3O4P1")}
	unimod := []*OntologyEntry{
		{ID: 1, Name: "Acetyl", Synonyms: []string{"Acetylation"}, Formula: formula("C2H2O1"), Specificities: []Specificity{
			{Rules: []PlacementRule{on("K")}, Diagnostics: []chem.Formula{formula("C7H11N1O1")}},
			{Rules: []PlacementRule{nTerm, proteinNTerm, on("STYCH")}},
		}},
		{ID: 2, Name: "Amidated", Formula: formula("H1N1O-1"), Specificities: rules(cTerm, proteinCTerm)},
		{ID: 3, Name: "Biotin", Formula: formula("C10H14N2O2S1"), Specificities: rules(on("K"), nTerm)},
		{ID: 4, Name: "Carbamidomethyl", Formula: formula("C2H3N1O1"), Specificities: rules(on("CKHDESTYU"), nTerm)},
		{ID: 5, Name: "Carbamyl", Formula: formula("C1H1N1O1"), Specificities: rules(on("KRCM"), nTerm)},
		{ID: 6, Name: "Carboxymethyl", Formula: formula("C2H2O2"), Specificities: rules(on("CKWU"), nTerm)},
		{ID: 7, Name: "Deamidated", Formula: formula("H-1N-1O1"), Specificities: rules(on("NQRF"))},
		{ID: 21, Name: "Phospho", Formula: formula("H1O3P1"), Specificities: []Specificity{
			{Rules: []PlacementRule{on("ST")}, NeutralLosses: phosphoLoss},
			{Rules: []PlacementRule{on("Y")}, Diagnostics: []chem.Formula{formula("C8H10N1O4P1")}},
			{Rules: []PlacementRule{on("HCDRK")}},
		}},
		{ID: 23, Name: "Dehydrated", Formula: formula("H-2O-1"), Specificities: rules(on("DSTYNQC"), cTerm, proteinCTerm)},
		{ID: 24, Name: "Propionamide", Formula: formula("C3H5N1O1"), Specificities: rules(on("CK"), nTerm)},
		{ID: 26, Name: "Pyro-carbamidomethyl", Formula: formula("C2O1"), Specificities: rules(PlacementRule{AminoAcids: aas("C"), Site: AnyNTerm})},
		{ID: 27, Name: "Glu->pyro-Glu", Formula: formula("H-2O-1"), Specificities: rules(PlacementRule{AminoAcids: aas("E"), Site: AnyNTerm})},
		{ID: 28, Name: "Gln->pyro-Glu", Formula: formula("H-3N-1"), Specificities: rules(PlacementRule{AminoAcids: aas("Q"), Site: AnyNTerm})},
		{ID: 30, Name: "Cation:Na", Formula: formula("H-1Na1"), Specificities: rules(on("DE"), cTerm)},
		{ID: 34, Name: "Methyl", Formula: formula("C1H2"), Specificities: rules(on("KRHCDENQST"), cTerm, nTerm)},
		{ID: 35, Name: "Oxidation", Formula: formula("O1"), Specificities: []Specificity{
			{Rules: []PlacementRule{on("M")}, NeutralLosses: []NeutralLoss{Loss("C1H4O1S1")}},
			{Rules: []PlacementRule{anywhere}},
		}},
		{ID: 36, Name: "Dimethyl", Formula: formula("C2H4"), Specificities: rules(on("KRN"), nTerm)},
		{ID: 37, Name: "Trimethyl", Formula: formula("C3H6"), Specificities: rules(on("KR"))},
		{ID: 39, Name: "Methylthio", Formula: formula("C1H2S1"), Specificities: rules(on("CDNK"), nTerm)},
		{ID: 40, Name: "Sulfo", Formula: formula("O3S1"), Specificities: rules(on("STYC"))},
		{ID: 41, Name: "Hex", Formula: formula("C6H10O5"), Specificities: []Specificity{
			{Rules: []PlacementRule{on("KNTSW"), nTerm}, Diagnostics: []chem.Formula{formula("C6H10O5")}},
		}},
		{ID: 42, Name: "Lipoyl", Formula: formula("C8H12O1S2"), Specificities: rules(on("K"))},
		{ID: 43, Name: "HexNAc", Formula: formula("C8H13N1O5"), Specificities: []Specificity{
			{Rules: []PlacementRule{on("NST")}, Diagnostics: []chem.Formula{
				formula("C8H13N1O5"), formula("C8H11N1O4"), formula("C7H7N1O2"), formula("C6H9N1O3"),
			}},
		}},
		{ID: 44, Name: "Farnesyl", Formula: formula("C15H24"), Specificities: rules(on("C"))},
		{ID: 45, Name: "Myristoyl", Formula: formula("C14H26O1"), Specificities: rules(on("KC"), PlacementRule{AminoAcids: aas("G"), Site: AnyNTerm})},
		{ID: 47, Name: "Palmitoyl", Formula: formula("C16H30O1"), Specificities: rules(on("CKST"), nTerm)},
		{ID: 121, Name: "GlyGly", Formula: formula("C4H6N2O2"), Specificities: rules(on("KSTC"), nTerm)},
		{ID: 122, Name: "Formyl", Formula: formula("C1O1"), Specificities: rules(on("KST"), nTerm)},
		{ID: 214, Name: "iTRAQ4plex", Formula: formula("C4H12[13C3]N1[15N1]O1"), Specificities: rules(on("KY"), nTerm)},
		{ID: 259, Name: "Label:13C(6)15N(2)", Formula: formula("C-6[13C6]N-2[15N2]"), Specificities: rules(on("K"))},
		{ID: 267, Name: "Label:13C(6)15N(4)", Formula: formula("C-6[13C6]N-4[15N4]"), Specificities: rules(on("R"))},
		{ID: 354, Name: "Nitro", Formula: formula("H-1N1O2"), Specificities: rules(on("YWC"))},
		{ID: 374, Name: "Dehydro", Formula: formula("H-1"), Specificities: rules(on("C"))},
		{ID: 730, Name: "iTRAQ8plex", Formula: formula("C7H24[13C7]N3[15N1]O3"), Specificities: rules(on("KY"), nTerm)},
		{ID: 737, Name: "TMT6plex", Formula: formula("C8H20[13C4]N1[15N1]O2"), Specificities: rules(on("KHST"), nTerm)},
		{ID: 2016, Name: "TMTpro", Formula: formula("C8H25[13C7]N1[15N2]O3"), Specificities: rules(on("KHST"), nTerm)},
	}
	for _, e := range unimod {
		e.Ontology = Unimod
		db.Add(e)
	}

	psimod := []*OntologyEntry{
		{ID: 34, Name: "L-cystine (cross-link)", Formula: formula("H-2"), Specificities: rules(on("C"))},
		{ID: 46, Name: "O-phospho-L-serine", Formula: formula("H1O3P1"), Specificities: []Specificity{
			{Rules: []PlacementRule{on("S")}, NeutralLosses: phosphoLoss},
		}},
		{ID: 47, Name: "O-phospho-L-threonine", Formula: formula("H1O3P1"), Specificities: []Specificity{
			{Rules: []PlacementRule{on("T")}, NeutralLosses: phosphoLoss},
		}},
		{ID: 48, Name: "O4'-phospho-L-tyrosine", Formula: formula("H1O3P1"), Specificities: rules(on("Y"))},
		{ID: 394, Name: "acetylated residue", Formula: formula("C2H2O1")},
		{ID: 425, Name: "monohydroxylated residue", Formula: formula("O1")},
		{ID: 719, Name: "L-methionine sulfoxide", Formula: formula("O1"), Specificities: rules(on("M"))},
		{ID: 798, Name: "half cystine", Formula: formula("H-1"), Specificities: rules(on("C"))},
		{ID: 1060, Name: "S-carboxamidomethyl-L-cysteine", Formula: formula("C2H3N1O1"), Specificities: rules(on("C"))},
		{ID: 1090, Name: "iodoacetamide derivatized amino-acid residue", Formula: formula("C2H3N1O1")},
	}
	for _, e := range psimod {
		e.Ontology = PsiMod
		db.Add(e)
	}

	db.Add(&OntologyEntry{Ontology: XlMod, ID: 2001, Name: "DSS", Formula: formula("C8H10O2"),
		Specificities: rules(on("KSTY"), nTerm)})

	return db
}
