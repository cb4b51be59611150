package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepform/pkg/chem"
)

func mustFormulas(t *testing.T, p LinearPeptide) chem.Formulas {
	t.Helper()
	fs, err := p.Formulas()
	require.NoError(t, err)
	return fs
}

func testFormula(t *testing.T, value string) chem.Formula {
	t.Helper()
	f, err := chem.ParseFormula(value, true)
	require.NoError(t, err)
	return f
}

func TestGlobalIsotopes(t *testing.T) {
	tests := []struct {
		name     string
		override chem.IsotopeOverride
		want     chem.Formula
	}{
		{
			name:     "deuterium",
			override: chem.IsotopeOverride{Element: chem.H, Isotope: 2},
			want: chem.NewFormula(
				chem.Entry{Element: chem.H, Isotope: 2, Count: 7},
				chem.Entry{Element: chem.C, Count: 3},
				chem.Entry{Element: chem.O, Count: 2},
				chem.Entry{Element: chem.N, Count: 1},
			),
		},
		{
			name:     "nitrogen 15",
			override: chem.IsotopeOverride{Element: chem.N, Isotope: 15},
			want: chem.NewFormula(
				chem.Entry{Element: chem.H, Count: 7},
				chem.Entry{Element: chem.C, Count: 3},
				chem.Entry{Element: chem.O, Count: 2},
				chem.Entry{Element: chem.N, Isotope: 15, Count: 1},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLinearPeptide("A")
			p.Global = []chem.IsotopeOverride{tt.override}
			got := mustFormulas(t, p)
			require.Len(t, got, 1)
			assert.True(t, got[0].Equal(tt.want), "got %s, want %s", got[0], tt.want)
		})
	}
}

func TestFormulasAmbiguousResidues(t *testing.T) {
	p := NewLinearPeptide("BA")
	got := mustFormulas(t, p)
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(mustFormulas(t, NewLinearPeptide("NA"))[0]))
	assert.True(t, got[1].Equal(mustFormulas(t, NewLinearPeptide("DA"))[0]))

	bare, err := p.BareFormulas()
	require.NoError(t, err)
	require.Len(t, bare, 2)
	assert.True(t, bare[0].Add(Water).Equal(got[0]))
}

// phosphoPeptide builds SAS with one phosphorylation that may sit on
// either serine.
func phosphoPeptide(t *testing.T) LinearPeptide {
	t.Helper()
	db := DefaultModDatabase()
	phospho, ok := db.ByName(Unimod, "Phospho")
	require.True(t, ok)
	p := NewLinearPeptide("SAS")
	p.AmbiguousModifications = [][]int{{0, 2}}
	p.Sequence[0].PossibleModifications = []AmbiguousModification{{ID: 0, Modification: Predefined(phospho), Group: "g", Preferred: true}}
	p.Sequence[2].PossibleModifications = []AmbiguousModification{{ID: 0, Modification: Predefined(phospho), Group: "g"}}
	return p
}

func TestAmbiguousModificationCountedOnce(t *testing.T) {
	p := phosphoPeptide(t)
	require.NoError(t, p.CheckAmbiguous())
	got := mustFormulas(t, p)
	require.Len(t, got, 1)
	want := mustFormulas(t, NewLinearPeptide("SAS"))[0].Add(testFormula(t, "H1O3P1"))
	assert.True(t, got[0].Equal(want), "got %s, want %s", got[0], want)
}

func TestPartialFormulas(t *testing.T) {
	p := phosphoPeptide(t)

	partials, err := p.PartialFormulas(0, 1, false)
	require.NoError(t, err)
	require.Len(t, partials, 2)
	assert.Equal(t, "", partials[0].Label)
	assert.Equal(t, "g@1", partials[1].Label)
	assert.True(t, partials[1].Formula.Sub(partials[0].Formula).Equal(testFormula(t, "H1O3P1")))

	all, err := p.PartialFormulas(0, 3, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"g@1", "g@3"}, AmbiguousLabels(all))

	withLosses, err := p.PartialFormulas(0, 1, true)
	require.NoError(t, err)
	require.Len(t, withLosses, 3)
	require.NotNil(t, withLosses[2].Loss)
	assert.True(t, withLosses[2].Loss.Formula.Equal(testFormula(t, "H3O4P1")))
}

func TestDigest(t *testing.T) {
	nterm := MassModification(42)
	cterm := MassModification(-1)
	p := NewLinearPeptide("PEPTIDE")
	p.NTerm = &nterm
	p.CTerm = &cterm

	everywhere, ok := GetProtease("everywhere")
	require.True(t, ok)
	pieces := p.Digest(everywhere, 0)
	require.Len(t, pieces, p.Len())
	for i, piece := range pieces {
		assert.Equal(t, 1, piece.Len())
		assert.Equal(t, i == 0, piece.NTerm != nil, "N terminal modification of piece %d", i)
		assert.Equal(t, i == len(pieces)-1, piece.CTerm != nil, "C terminal modification of piece %d", i)
	}

	missed := p.Digest(everywhere, 1)
	assert.Len(t, missed, 2*p.Len()-1)
}

func TestTrypsinSites(t *testing.T) {
	trypsin, _ := GetProtease("trypsin")
	p := NewLinearPeptide("AKPARAKA")
	assert.Equal(t, []int{5, 7}, trypsin.Sites(p.Sequence))

	aspN, _ := GetProtease("Asp-N")
	assert.Equal(t, []int{1}, aspN.Sites(NewLinearPeptide("ADA").Sequence))
}

func TestSubPeptideRenumbersAmbiguous(t *testing.T) {
	p := phosphoPeptide(t)

	sub := p.SubPeptide(1, 3)
	require.Equal(t, [][]int{{1}}, sub.AmbiguousModifications)
	require.Len(t, sub.Sequence[1].PossibleModifications, 1)
	assert.Equal(t, 0, sub.Sequence[1].PossibleModifications[0].ID)
	assert.NoError(t, sub.CheckAmbiguous())

	none := p.SubPeptide(1, 2)
	assert.Empty(t, none.AmbiguousModifications)
	assert.Panics(t, func() { p.SubPeptide(2, 4) })
}

func TestReverse(t *testing.T) {
	p := phosphoPeptide(t)
	p.Sequence[1].AminoAcid = Glycine
	r := p.Reverse()
	assert.Equal(t, Serine, r.Sequence[0].AminoAcid)
	assert.Equal(t, [][]int{{0, 2}}, r.AmbiguousModifications)
	assert.NoError(t, r.CheckAmbiguous())

	q := NewLinearPeptide("PEK")
	assert.Equal(t, "KEP", q.Reverse().String())
	assert.Equal(t, "PEK", q.String(), "reverse must not change the source")
}

func TestValidatePlacement(t *testing.T) {
	db := DefaultModDatabase()
	pyro, _ := db.ByName(Unimod, "Gln->pyro-Glu")
	oxidation, _ := db.ByName(Unimod, "Oxidation")

	ok := NewLinearPeptide("QAK")
	m := Predefined(pyro)
	ok.NTerm = &m
	assert.NoError(t, ok.Validate())

	bad := NewLinearPeptide("AQK")
	bad.NTerm = &m
	var placementErr *PlacementError
	require.ErrorAs(t, bad.Validate(), &placementErr)
	assert.Equal(t, -1, placementErr.Index)

	anywhere := NewLinearPeptide("AK")
	anywhere.Sequence[0].Modifications = []Modification{Predefined(oxidation)}
	assert.NoError(t, anywhere.Validate())
}

func TestComplexity(t *testing.T) {
	plain := NewLinearPeptide("PEPTIDE")
	simple, ok := ToSimple(plain)
	require.True(t, ok)
	very, ok := simple.VerySimple()
	require.True(t, ok)
	_, ok = very.ExtremelySimple()
	assert.True(t, ok)
	assert.Equal(t, plain.String(), very.AsSimple().AsLinear().AsLinked().Peptide().String())

	withB := NewLinearPeptide("PEB")
	very, _ = MustSimple(withB).VerySimple()
	_, ok = very.ExtremelySimple()
	assert.False(t, ok)

	_, ok = MustSimple(phosphoPeptide(t)).VerySimple()
	assert.False(t, ok)

	charged := NewLinearPeptide("AK")
	two := Protons(2)
	charged.ChargeCarriers = &two
	_, ok = ToSimple(charged)
	assert.False(t, ok)
	assert.Panics(t, func() { MustSimple(LinearPeptide{}) })

	linker := Modification{Kind: KindCrossLink, Link: &CrossLink{Label: "XL1"}}
	linked := NewLinearPeptide("AK")
	linked.Sequence[1].Modifications = []Modification{linker}
	_, ok = NewLinked(linked).Linear()
	assert.False(t, ok)
}
