package core

import (
	"math"
	"testing"

	"github.com/ChrisMcGann/pepform/pkg/chem"
)

func TestParseAminoAcid(t *testing.T) {
	tests := []struct {
		name  string
		code  byte
		want  AminoAcid
		valid bool
	}{
		{name: "upper case", code: 'A', want: Alanine, valid: true},
		{name: "lower case", code: 'k', want: Lysine, valid: true},
		{name: "ambiguous B", code: 'B', want: AmbiguousAsparagine, valid: true},
		{name: "pyrrolysine", code: 'o', want: Pyrrolysine, valid: true},
		{name: "digit", code: '1', valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAminoAcid(tt.code)
			if ok != tt.valid {
				t.Fatalf("ParseAminoAcid(%q) ok = %v, want %v", tt.code, ok, tt.valid)
			}
			if ok && got != tt.want {
				t.Errorf("ParseAminoAcid(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestResidueFormulas(t *testing.T) {
	alanine := chem.NewFormula(
		chem.Entry{Element: chem.C, Count: 3},
		chem.Entry{Element: chem.H, Count: 5},
		chem.Entry{Element: chem.N, Count: 1},
		chem.Entry{Element: chem.O, Count: 1},
	)
	if got := Alanine.Formulas(); len(got) != 1 || !got[0].Equal(alanine) {
		t.Errorf("Alanine.Formulas() = %v, want [%v]", got, alanine)
	}
	if got := AmbiguousAsparagine.Formulas(); len(got) != 2 {
		t.Errorf("B has %d formulas, want 2", len(got))
	}
	if got := Glycine.SideChain(); len(got) != 1 || !got[0].Equal(chem.MustParseFormula("H1")) {
		t.Errorf("Glycine side chain = %v, want H1", got)
	}
	if !AmbiguousLeucine.CanonicalIdentical(Isoleucine) || Leucine.CanonicalIdentical(Isoleucine) {
		t.Error("CanonicalIdentical does not treat J as covering I and L only")
	}
}

func TestCalculateMZ(t *testing.T) {
	tests := []struct {
		name      string
		sequence  string
		charge    int
		wantMZ    float64
		tolerance float64
	}{
		{
			name:      "simple peptide charge 1",
			sequence:  "AAA",
			charge:    1,
			wantMZ:    232.129, // Approximate
			tolerance: 0.001,
		},
		{
			name:      "simple peptide charge 2",
			sequence:  "AAA",
			charge:    2,
			wantMZ:    116.568, // Approximate
			tolerance: 0.001,
		},
		{
			name:      "neutral",
			sequence:  "AAA",
			charge:    0,
			wantMZ:    231.122,
			tolerance: 0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mass, ok := mustFormulas(t, NewLinearPeptide(tt.sequence))[0].MonoisotopicMass()
			if !ok {
				t.Fatal("mass not defined")
			}
			got := CalculateMZ(mass, tt.charge)
			if math.Abs(got-tt.wantMZ) > tt.tolerance {
				t.Errorf("CalculateMZ() = %.4f, want %.4f (within %.4f)", got, tt.wantMZ, tt.tolerance)
			}
		})
	}
}

func TestRoundFloat(t *testing.T) {
	if got := RoundFloat(57.0214637, 4); got != 57.0215 {
		t.Errorf("RoundFloat() = %v, want 57.0215", got)
	}
}
