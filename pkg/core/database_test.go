package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromCSV(t *testing.T) {
	csv := `mod,massshift,aa
Custom1,42.0106,K;N-term
# comment lines are skipped

Custom2,Formula:C2H2O1,Protein C-term:K
Custom3,-18.0106
`
	db := NewModDatabase()
	require.NoError(t, db.LoadFromCSV(strings.NewReader(csv)))

	mass, ok := db.GetMass("custom1")
	require.True(t, ok)
	assert.InDelta(t, 42.0106, mass, 1e-9)

	e, ok := db.ByName(Custom, "Custom1")
	require.True(t, ok)
	require.Len(t, e.Specificities, 1)
	assert.Len(t, e.Specificities[0].Rules, 2)
	assert.True(t, e.Allows(Lysine, NPosition(3, 5)))
	assert.True(t, e.Allows(Alanine, NPosition(0, 5)))
	assert.False(t, e.Allows(Alanine, NPosition(2, 5)))

	e, ok = db.ByName(Custom, "Custom2")
	require.True(t, ok)
	assert.True(t, e.Formula.Equal(testFormula(t, "C2H2O1")))

	_, ok = db.ByID(Custom, e.ID)
	assert.True(t, ok)

	e, ok = db.ByName(Custom, "Custom3")
	require.True(t, ok)
	assert.Empty(t, e.Specificities)
}

func TestLoadFromCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{name: "missing mass", csv: "h\nonlyname\n", want: "line 2"},
		{name: "bad mass", csv: "h\nx,abc,K\n", want: "invalid mass value"},
		{name: "bad formula", csv: "h\nx,Formula:Qq2,K\n", want: "invalid formula"},
		{name: "bad site", csv: "h\nx,1,K;7\n", want: "invalid placement '7'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModDatabase().LoadFromCSV(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSloppyLookup(t *testing.T) {
	db := DefaultModDatabase()
	glu := GlutamicAcid

	tests := []struct {
		name string
		text string
		aa   *AminoAcid
		want string
	}{
		{name: "unimod name", text: "Carbamidomethyl", want: "U:Carbamidomethyl"},
		{name: "prefixed", text: "U:Oxidation", want: "U:Oxidation"},
		{name: "site annotation", text: "Deamidation (NQ)", want: "U:Deamidated"},
		{name: "site annotation direct name", text: "Phospho (STY)", want: "U:Phospho"},
		{name: "alias", text: "oxidized", want: "U:Oxidation"},
		{name: "tmt", text: "TMT", want: "U:TMT6plex"},
		{name: "pyro-glu from Q", text: "Pyro-glu from Q", want: "U:Gln->pyro-Glu"},
		{name: "pyro-glu from E", text: "pyro-glu from E", want: "U:Glu->pyro-Glu"},
		{name: "pyro-glu on glutamic acid", text: "PyroGlu", aa: &glu, want: "U:Glu->pyro-Glu"},
		{name: "folded name", text: "glu pyro glu", want: "U:Glu->pyro-Glu"},
		{name: "unknown", text: "Frobnicated", want: ""},
		{name: "label with digits", text: "Label:13C(6)15N(2)", want: "U:Label:13C(6)15N(2)"},
		{name: "mass", text: "+57.021", want: "+57.021"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := db.SloppyLookup(tt.text, tt.aa)
			if tt.want == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, m.String())
		})
	}

	_, ok := db.SloppyLookup("   ", nil)
	assert.False(t, ok)
}

func TestGlycanComposition(t *testing.T) {
	g, err := ParseGlycanComposition("HexNAc2Hex5")
	require.NoError(t, err)
	assert.Equal(t, "Hex5HexNAc2", g.String())
	assert.True(t, g.Formula().Equal(testFormula(t, "C46H76N2O35")))

	fucose, err := ParseGlycanComposition("Fuc hexnac")
	require.NoError(t, err)
	want := GlycanComposition{{Sugar: HexNAc, Count: 1}, {Sugar: DHex, Count: 1}}
	if diff := cmp.Diff(want, fucose); diff != "" {
		t.Errorf("ParseGlycanComposition() mismatch (-want +got):\n%s", diff)
	}

	_, err = ParseGlycanComposition("Hex2Xyz")
	assert.Error(t, err)
	_, err = ParseGlycanComposition("")
	assert.Error(t, err)
}

func TestGlycanStructure(t *testing.T) {
	tree, err := ParseGlycanStructure("HexNAc(HexNAc(Hex(Hex)(Hex)))")
	require.NoError(t, err)
	assert.Equal(t, 5, tree.Size())
	assert.Equal(t, "HexNAc(HexNAc(Hex(Hex)(Hex)))", tree.String())
	assert.Equal(t, "Hex3HexNAc2", tree.Composition().String())

	ys, bs, ok := tree.pieces(DefaultFanOutLimit)
	require.True(t, ok)
	// Six rooted trees, the intact one dropped and Y0 added.
	assert.Len(t, ys, 6)
	assert.Len(t, bs, 5)

	_, err = ParseGlycanStructure("HexNAc(Hex")
	assert.Error(t, err)
	_, err = ParseGlycanStructure("HexNAc)")
	assert.Error(t, err)
}

func TestLibraryEntry(t *testing.T) {
	entry := LibraryEntry{
		Name:        "AAA/1",
		Peptide:     NewComplexPeptide(NewLinearPeptide("AAA")),
		Charge:      1,
		PrecursorMZ: 232.1292,
	}
	require.NoError(t, entry.Validate())
	assert.Equal(t, "AAA/1", entry.Key())

	mz, ok := entry.TheoreticalMZ()
	require.True(t, ok)
	assert.InDelta(t, 232.129, mz, 0.001)
	ppm, ok := entry.PrecursorError()
	require.True(t, ok)
	assert.InDelta(t, 0, ppm, 5)

	require.NoError(t, entry.ApplyModification(-1, MassModification(42)))
	require.NoError(t, entry.ApplyModification(1, MassModification(16)))
	require.NoError(t, entry.ApplyModification(3, MassModification(-1)))
	assert.Error(t, entry.ApplyModification(4, MassModification(1)))

	p, ok := entry.Peptide.Singular()
	require.True(t, ok)
	assert.NotNil(t, p.NTerm)
	assert.NotNil(t, p.CTerm)
	assert.Len(t, p.Sequence[1].Modifications, 1)

	invalid := LibraryEntry{Peptide: ComplexPeptide{}, Charge: 0}
	var verr *ValidationError
	require.ErrorAs(t, invalid.Validate(), &verr)
	assert.Contains(t, verr.Message, "peptide is required")
	assert.Contains(t, verr.Message, "charge must be positive")
}

func TestLibraryEntryApplyMods(t *testing.T) {
	db := DefaultModDatabase()
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "none", value: "0"},
		{name: "residue", value: "1/3,M,Oxidation"},
		{name: "terminal and residue", value: "2/-1,P,Acetyl/3,M,Oxidation"},
		{name: "alias", value: "1/3,M,ox"},
		{name: "count mismatch", value: "2/3,M,Oxidation", wantErr: true},
		{name: "bad count", value: "x/3,M,Oxidation", wantErr: true},
		{name: "bad field", value: "1/3,M", wantErr: true},
		{name: "unknown", value: "1/3,M,NotAModification", wantErr: true},
		{name: "out of range", value: "1/9,M,Oxidation", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := LibraryEntry{Peptide: NewComplexPeptide(NewLinearPeptide("PEPMK")), Charge: 2}
			err := entry.ApplyMods(db, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}

	entry := LibraryEntry{Peptide: NewComplexPeptide(NewLinearPeptide("PEPMK")), Charge: 2}
	require.NoError(t, entry.ApplyMods(db, "2/-1,P,Acetyl/3,M,Oxidation"))
	p, ok := entry.Peptide.Singular()
	require.True(t, ok)
	require.NotNil(t, p.NTerm)
	require.Len(t, p.Sequence[3].Modifications, 1)
	mass, ok := p.Sequence[3].Modifications[0].ChemicalFormula().MonoisotopicMass()
	require.True(t, ok)
	assert.InDelta(t, 15.9949, mass, 1e-4)
}
