package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

func simple(seq string) core.Simple {
	return core.MustSimple(core.NewLinearPeptide(seq))
}

func TestAlign(t *testing.T) {
	tests := []struct {
		name       string
		a, b       string
		matrix     *Matrix
		tolerance  Tolerance
		ty         Type
		score      int
		normalised float64
		short      string
		startA     int
		startB     int
	}{
		{
			name:       "self blosum62",
			a:          "PEPTIDE",
			b:          "PEPTIDE",
			matrix:     BLOSUM62,
			tolerance:  Ppm(0),
			ty:         Global,
			score:      39,
			normalised: 1,
			short:      "7=",
		},
		{
			name:       "self identity",
			a:          "ANAGRAMS",
			b:          "ANAGRAMS",
			matrix:     Identity,
			tolerance:  Ppm(0),
			ty:         Global,
			score:      64,
			normalised: 1,
			short:      "8=",
		},
		{
			name:       "isobaric residue",
			a:          "PEPTIDE",
			b:          "PEPTLDE",
			matrix:     BLOSUM62,
			tolerance:  Ppm(10),
			ty:         Global,
			score:      37,
			normalised: 37.0 / 39.0,
			short:      "4=1i2=",
		},
		{
			name:       "rotation",
			a:          "PEPTIDE",
			b:          "PETPIDE",
			matrix:     BLOSUM62,
			tolerance:  Ppm(10),
			ty:         Global,
			score:      34,
			normalised: 34.0 / 39.0,
			short:      "2=1r(2:2)3=",
		},
		{
			name:       "gap",
			a:          "PEPTIDE",
			b:          "PEPTDE",
			matrix:     BLOSUM62,
			tolerance:  Ppm(10),
			ty:         Global,
			score:      30,
			normalised: 30.0 / 37.0,
			short:      "4=1I2=",
		},
		{
			name:       "local",
			a:          "WWWPEPTIDE",
			b:          "PEPTIDE",
			matrix:     BLOSUM62,
			tolerance:  Ppm(10),
			ty:         Local,
			score:      39,
			normalised: 1,
			short:      "7=",
			startA:     3,
		},
		{
			name:       "global a",
			a:          "PEPTIDE",
			b:          "AAPEPTIDEAA",
			matrix:     BLOSUM62,
			tolerance:  Ppm(10),
			ty:         GlobalA,
			score:      39,
			normalised: 1,
			short:      "7=",
			startB:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Align(simple(tt.a), simple(tt.b), tt.matrix, tt.tolerance, tt.ty, 4)
			require.NoError(t, err)
			assert.Equal(t, tt.score, got.Score)
			assert.InDelta(t, tt.normalised, got.NormalisedScore, 1e-9)
			assert.Equal(t, tt.short, got.Short())
			assert.Equal(t, tt.startA, got.StartA)
			assert.Equal(t, tt.startB, got.StartB)
		})
	}
}

func TestSelfAlignmentHasNoGaps(t *testing.T) {
	got, err := Align(simple("MKWVTFISLLFLFSSAYS"), simple("MKWVTFISLLFLFSSAYS"), BLOSUM62, Ppm(0), Global, 3)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.NormalisedScore, 1e-12)
	for _, p := range got.Path {
		assert.Equal(t, FullIdentity, p.Match)
		assert.Equal(t, uint8(1), p.StepA)
		assert.Equal(t, uint8(1), p.StepB)
	}
	stats := got.Stats()
	assert.Equal(t, Stats{Identical: 18, MassSimilar: 18, Gaps: 0, Length: 18}, stats)
	assert.InDelta(t, 1.0, stats.Identity(), 1e-12)
	assert.Equal(t, "MKWVTFISLLFLFSSAYS", got.AlignedA().String())
}

func TestAlignStats(t *testing.T) {
	got, err := Align(simple("PEPTIDE"), simple("PEPTDE"), BLOSUM62, Ppm(10), Global, 4)
	require.NoError(t, err)
	assert.Equal(t, Stats{Identical: 6, MassSimilar: 6, Gaps: 1, Length: 7}, got.Stats())
	assert.Equal(t, 7, got.LenA())
	assert.Equal(t, 6, got.LenB())
}

func TestAlignSteps(t *testing.T) {
	tests := []struct {
		steps int
		kind  error
	}{
		{steps: 0, kind: perr.ErrSemantic},
		{steps: MaxSteps + 1, kind: perr.ErrResourceLimit},
	}

	for _, tt := range tests {
		_, err := Align(simple("PEPTIDE"), simple("PEPTIDE"), BLOSUM62, Ppm(10), Global, tt.steps)
		assert.ErrorIs(t, err, tt.kind, "steps %d", tt.steps)
	}

	_, err := Align(simple("PEPTIDE"), simple("PEPTIDE"), BLOSUM62, Ppm(10), Global, MaxSteps)
	assert.NoError(t, err)
}

func TestMatrices(t *testing.T) {
	for a := 0; a < core.TotalAminoAcids; a++ {
		for b := 0; b < core.TotalAminoAcids; b++ {
			require.Equal(t, BLOSUM62[a][b], BLOSUM62[b][a], "%d %d", a, b)
		}
	}
	assert.Equal(t, int8(11), BLOSUM62[core.Tryptophan][core.Tryptophan])
	assert.Equal(t, BLOSUM62[core.Leucine][core.Isoleucine], BLOSUM62[core.AmbiguousLeucine][core.Isoleucine])
	assert.Equal(t, int8(8), Identity[core.Alanine][core.Alanine])
	assert.Equal(t, int8(-1), Identity[core.Alanine][core.Glycine])

	m, ok := MatrixByName("BLOSUM62")
	require.True(t, ok)
	assert.Same(t, BLOSUM62, m)
	_, ok = MatrixByName("pam250")
	assert.False(t, ok)
}

func TestParseType(t *testing.T) {
	for _, ty := range []Type{Local, Global, GlobalA, GlobalB} {
		got, ok := ParseType(ty.String())
		require.True(t, ok)
		assert.Equal(t, ty, got)
	}
	got, ok := ParseType("GLOBAL_B")
	require.True(t, ok)
	assert.Equal(t, GlobalB, got)
	_, ok = ParseType("semi")
	assert.False(t, ok)
}

func TestTolerance(t *testing.T) {
	tests := []struct {
		value string
		want  Tolerance
		a, b  float64
		in    bool
	}{
		{value: "10 ppm", want: Ppm(10), a: 1000, b: 1000.009, in: true},
		{value: "10ppm", want: Ppm(10), a: 1000, b: 1000.02, in: false},
		{value: "0.02 Da", want: Da(0.02), a: 1000, b: 1000.019, in: true},
		{value: "0.5da", want: Da(0.5), a: 100, b: 100.6, in: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseTolerance(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.Within(tt.a, tt.b))
		})
	}

	for _, bad := range []string{"", "ppm", "ten ppm", "-1 da", "5 mmu"} {
		_, err := ParseTolerance(bad)
		assert.ErrorIs(t, err, perr.ErrSyntax, bad)
	}

	assert.True(t, Ppm(5).AnyWithin([]float64{10, 500}, []float64{500.001, 900}))
	assert.False(t, Ppm(5).AnyWithin([]float64{10}, []float64{11}))
}
