package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// singleSeries only generates a ions, easier to reason about.
var singleSeries = Model{A: IonSettings{Location: SkipN(1)}}

func TestMultimericFragments(t *testing.T) {
	tests := []struct {
		name     string
		peptides []string
		want     int
	}{
		{name: "different sequences", peptides: []string{"AA", "CC"}, want: 4},
		{name: "identical sequences are not merged", peptides: []string{"AA", "AA"}, want: 4},
		{name: "single peptide", peptides: []string{"AAA"}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c ComplexPeptide
			for _, s := range tt.peptides {
				c.Peptidoforms = append(c.Peptidoforms, Peptidoform{Chains: []LinearPeptide{NewLinearPeptide(s)}})
			}
			fragments, err := c.GenerateTheoreticalFragments(1, singleSeries)
			require.NoError(t, err)
			assert.Len(t, fragments, tt.want)
			for _, f := range fragments {
				assert.Equal(t, 1, f.Charge)
			}
		})
	}
}

func findFragment(fragments []Fragment, ion IonType, series, charge int) (Fragment, bool) {
	for _, f := range fragments {
		if f.Ion == ion && f.Charge == charge && f.Loss == nil && f.Position != nil && f.Position.SeriesNumber == series {
			return f, true
		}
	}
	return Fragment{}, false
}

func TestBackboneMasses(t *testing.T) {
	fragments, err := NewLinearPeptide("PEPTIDE").GenerateTheoreticalFragments(2, AllModel())
	require.NoError(t, err)

	tests := []struct {
		name   string
		ion    IonType
		series int
		charge int
		mz     float64
	}{
		{name: "b2", ion: IonB, series: 2, charge: 1, mz: 227.10263},
		{name: "y1", ion: IonY, series: 1, charge: 1, mz: 148.06043},
		{name: "y2 doubly charged", ion: IonY, series: 2, charge: 2, mz: 132.04733},
		{name: "a2", ion: IonA, series: 2, charge: 1, mz: 199.10771},
		{name: "c2", ion: IonC, series: 2, charge: 1, mz: 244.12918},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := findFragment(fragments, tt.ion, tt.series, tt.charge)
			require.True(t, ok, "fragment not generated")
			mz, ok := f.MZ()
			require.True(t, ok)
			assert.InDelta(t, tt.mz, mz, 0.001)
		})
	}

	_, ok := findFragment(fragments, IonB, 7, 1)
	assert.False(t, ok, "the full length b ion must be skipped")
}

func TestPrecursorAndLosses(t *testing.T) {
	fragments, err := NewLinearPeptide("AAA").GenerateTheoreticalFragments(1, CIDHCDModel())
	require.NoError(t, err)

	var precursors []Fragment
	for _, f := range fragments {
		if f.Ion == IonPrecursor {
			precursors = append(precursors, f)
		}
	}
	require.Len(t, precursors, 2)
	assert.Equal(t, "p", precursors[0].Name())
	assert.Equal(t, "p-H2O1", precursors[1].Name())
	mz, _ := precursors[0].MZ()
	assert.InDelta(t, 232.129, mz, 0.001)
}

func TestDiagnosticIons(t *testing.T) {
	db := DefaultModDatabase()
	hexnac, ok := db.ByName(Unimod, "HexNAc")
	require.True(t, ok)

	p := NewLinearPeptide("AST")
	p.Sequence[1].Modifications = []Modification{Predefined(hexnac)}
	fragments, err := p.GenerateTheoreticalFragments(2, Model{Diagnostics: true})
	require.NoError(t, err)

	var diagnostics []Fragment
	for _, f := range fragments {
		if f.Ion == IonDiagnostic {
			diagnostics = append(diagnostics, f)
		}
	}
	require.Len(t, diagnostics, 4, "one proton option per diagnostic formula")
	assert.Equal(t, 1, diagnostics[0].Charge)
	assert.Equal(t, "diagnostic@2", diagnostics[0].Name())
	mz, _ := diagnostics[0].MZ()
	assert.InDelta(t, 204.0867, mz, 0.001)
}

func TestGlycanFragments(t *testing.T) {
	tree, err := ParseGlycanStructure("HexNAc(Hex)(Hex)")
	require.NoError(t, err)
	db := NewModDatabase()
	entry := &OntologyEntry{Ontology: Gnome, Name: "G00001", Formula: tree.Formula(), Glycan: tree}
	db.Add(entry)

	p := NewLinearPeptide("NAT")
	p.Sequence[0].Modifications = []Modification{Predefined(entry)}
	fragments, err := p.GenerateTheoreticalFragments(1, Model{GlycanFragmentation: true})
	require.NoError(t, err)

	count := map[IonType]int{}
	for _, f := range fragments {
		count[f.Ion]++
	}
	assert.Equal(t, 1, count[IonPrecursor])
	assert.Equal(t, 4, count[IonGlycanY], "Y0 and the three partial trees")
	assert.Equal(t, 3, count[IonOxonium], "one B ion per subtree")
}

func TestGenerateErrors(t *testing.T) {
	_, err := NewLinearPeptide("AA").GenerateTheoreticalFragments(0, AllModel())
	require.Error(t, err)
	assert.True(t, errors.Is(err, perr.ErrSemantic))
}

// linkedPeptidoform builds AK[X:DSS#XL1]//AK[#XL1]AK[X:DSS#XL2]//GK[#XL2].
func linkedPeptidoform(t *testing.T) Peptidoform {
	t.Helper()
	dss := FormulaModification(testFormula(t, "C8H10O2"))
	link := func(label string, owner bool) Modification {
		return Modification{Kind: KindCrossLink, Link: &CrossLink{Label: label, Linker: &dss, Owner: owner}}
	}
	first, middle, last := NewLinearPeptide("AK"), NewLinearPeptide("AKAK"), NewLinearPeptide("GK")
	first.Sequence[1].Modifications = []Modification{link("XL1", true)}
	middle.Sequence[1].Modifications = []Modification{link("XL1", false)}
	middle.Sequence[3].Modifications = []Modification{link("XL2", true)}
	last.Sequence[1].Modifications = []Modification{link("XL2", false)}
	return Peptidoform{Chains: []LinearPeptide{first, middle, last}}
}

func TestCrossLinkedComponent(t *testing.T) {
	pf := linkedPeptidoform(t)
	formulas, err := pf.Formulas()
	require.NoError(t, err)
	require.Len(t, formulas, 1)
	want := testFormula(t, "C51H92N12O15")
	assert.True(t, formulas[0].Equal(want), "got %s, want %s", formulas[0], want)

	t.Run("every chain reaches the whole component", func(t *testing.T) {
		for c := range pf.Chains {
			_, partners, err := pf.attachments(c, DefaultFanOutLimit)
			require.NoError(t, err)
			assert.Len(t, partners, 2, "chain %d", c)
			assert.False(t, partners[c])
		}
	})

	t.Run("one precursor per component", func(t *testing.T) {
		fragments, err := pf.GenerateTheoreticalFragments(1, NoneModel())
		require.NoError(t, err)
		require.Len(t, fragments, 1)
		assert.Equal(t, IonPrecursor, fragments[0].Ion)
		assert.Equal(t, 0, fragments[0].Chain)
		mass, ok := want.MonoisotopicMass()
		require.True(t, ok)
		mz, ok := fragments[0].MZ()
		require.True(t, ok)
		assert.InDelta(t, CalculateMZ(mass, 1), mz, 1e-6)
	})

	t.Run("fragments carry the partners", func(t *testing.T) {
		// y1 of GK holds the K linked to AKAK, which is linked to AK.
		fragments, err := pf.GenerateTheoreticalFragments(1, Model{Y: IonSettings{Location: LocationAll}})
		require.NoError(t, err)
		var y1 *Fragment
		for i, f := range fragments {
			if f.Chain == 2 && f.Ion == IonY && f.Position != nil && f.Position.SeriesNumber == 1 {
				y1 = &fragments[i]
			}
		}
		require.NotNil(t, y1)
		mass, ok := want.Sub(testFormula(t, "C2H3N1O1")).MonoisotopicMass()
		require.True(t, ok)
		mz, ok := y1.MZ()
		require.True(t, ok)
		assert.InDelta(t, CalculateMZ(mass, 1), mz, 1e-6)
	})

	t.Run("separate components", func(t *testing.T) {
		two := Peptidoform{Chains: append(linkedPeptidoform(t).Chains, NewLinearPeptide("PEP"))}
		fragments, err := two.GenerateTheoreticalFragments(1, NoneModel())
		require.NoError(t, err)
		require.Len(t, fragments, 2)
		assert.Equal(t, 0, fragments[0].Chain)
		assert.Equal(t, 3, fragments[1].Chain)
	})
}

func TestFanOutLimit(t *testing.T) {
	// Every B is N or D, 2^18 alternatives.
	p := NewLinearPeptide(strings.Repeat("B", 18))

	_, err := p.Formulas()
	assert.True(t, errors.Is(err, perr.ErrResourceLimit), "Formulas: %v", err)
	_, err = p.BareFormulas()
	assert.True(t, errors.Is(err, perr.ErrResourceLimit), "BareFormulas: %v", err)
	_, err = Peptidoform{Chains: []LinearPeptide{p}}.Formulas()
	assert.True(t, errors.Is(err, perr.ErrResourceLimit), "Peptidoform.Formulas: %v", err)

	_, err = p.GenerateTheoreticalFragments(1, NoneModel())
	assert.True(t, errors.Is(err, perr.ErrResourceLimit), "precursor: %v", err)
	_, err = NewComplexPeptide(p).GenerateTheoreticalFragments(1, Model{M: true})
	assert.True(t, errors.Is(err, perr.ErrResourceLimit), "m ions: %v", err)

	within := NewLinearPeptide(strings.Repeat("B", 16))
	formulas, err := within.Formulas()
	require.NoError(t, err)
	assert.Len(t, formulas, 1<<16)
}

func TestEmptyPeptide(t *testing.T) {
	fragments, err := LinearPeptide{}.GenerateTheoreticalFragments(1, AllModel())
	require.NoError(t, err)
	for _, f := range fragments {
		assert.Equal(t, IonPrecursor, f.Ion)
	}
	assert.NotEmpty(t, fragments)
}

func TestChargeOptions(t *testing.T) {
	options := Protons(2).Options()
	require.Len(t, options, 2)
	assert.Equal(t, 1, options[0].Charge())
	assert.Equal(t, 2, options[1].Charge())

	sodium := ChargeCarrier{Count: 2, Neutral: testFormula(t, "Na1"), Charge: 1}
	mixed := MolecularCharge{Carriers: []ChargeCarrier{sodium, {Count: 1, Neutral: Hydrogen, Charge: 1}}}
	assert.Equal(t, 3, mixed.Charge())
	assert.Len(t, mixed.Options(), 5)
	assert.Len(t, mixed.SingleOptions(), 2)
	assert.Equal(t, "3[+2Na1+,+H1+]", mixed.String())
	assert.Equal(t, "2", Protons(2).String())

	electron := MolecularCharge{Carriers: []ChargeCarrier{{Count: 1, Charge: -1}}}
	assert.Equal(t, "-1[+e-]", electron.String())
	assert.Equal(t, -1, electron.Formula().Charge())
}

func TestLocations(t *testing.T) {
	tests := []struct {
		name     string
		location Location
		want     []bool
	}{
		{name: "all", location: LocationAll, want: []bool{true, true, true, true}},
		{name: "none", location: Location{}, want: []bool{false, false, false, false}},
		{name: "skip n", location: SkipN(1), want: []bool{false, true, true, true}},
		{name: "skip c", location: SkipC(1), want: []bool{true, true, true, false}},
		{name: "skip nc", location: SkipNC(1, 1), want: []bool{false, true, true, false}},
		{name: "take n", location: TakeN(1, 2), want: []bool{false, true, true, false}},
		{name: "take c", location: TakeC(1), want: []bool{false, false, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				assert.Equal(t, want, tt.location.Possible(NPosition(i, 4)), "index %d", i)
			}
		})
	}
}
