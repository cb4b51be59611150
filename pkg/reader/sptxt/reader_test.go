package sptxt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepform/pkg/core"
)

const library = `### SpectraST library
### ===

Name: n[43]PEPC[160]TIDE/2
LibID: 0
MW: 1000.4
PrecursorMZ: 501.21
Status: Normal
Comment: Parent=501.2 CollisionEnergy=27 Mods=2/-1,P,Acetyl/3,C,Carbamidomethyl RetentionTime=1520.5,1480.1,1570.9
NumPeaks: 2
98.06	1000	b1/0.01
147.11	500	y1/0.00

Name: n[43]PEPC[160]TIDE/3
Comment: Mods=0
NumPeaks: 0

Name: PEPTIDE/1
Comment: Parent=800.37
NumPeaks: 1
98.06	1000	b1/0.01
`

func readAll(t *testing.T, input string) ([]*core.LibraryEntry, error) {
	t.Helper()
	r := NewReader(strings.NewReader(input), nil)
	var entries []*core.LibraryEntry
	for r.Next() {
		entries = append(entries, r.Entry())
	}
	return entries, r.Err()
}

func modMass(t *testing.T, m *core.Modification) float64 {
	t.Helper()
	require.NotNil(t, m)
	mass, ok := m.ChemicalFormula().MonoisotopicMass()
	require.True(t, ok)
	return mass
}

func TestReader(t *testing.T) {
	entries, err := readAll(t, library)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	named := entries[0]
	assert.Equal(t, "[U:Acetyl]-PEPC[U:Carbamidomethyl]TIDE", named.Peptide.String())
	assert.Equal(t, 2, named.Charge)
	assert.InDelta(t, 501.21, named.PrecursorMZ, 1e-9)
	assert.False(t, named.Sloppy)
	require.NotNil(t, named.CollisionEnergy)
	assert.InDelta(t, 27, *named.CollisionEnergy, 1e-9)
	require.NotNil(t, named.RetentionTime)
	assert.InDelta(t, 1520.5, *named.RetentionTime, 1e-9)

	masses := entries[1]
	assert.True(t, masses.Sloppy)
	assert.Equal(t, 3, masses.Charge)
	p, ok := masses.Peptide.Singular()
	require.True(t, ok)
	assert.Equal(t, 8, p.Len())
	assert.InDelta(t, 41.99217, modMass(t, p.NTerm), 1e-4)
	require.Len(t, p.Sequence[3].Modifications, 1)
	assert.InDelta(t, 56.99081, modMass(t, &p.Sequence[3].Modifications[0]), 1e-4)

	plain := entries[2]
	assert.Equal(t, "PEPTIDE", plain.Peptide.String())
	assert.InDelta(t, 800.37, plain.PrecursorMZ, 1e-9)
	assert.False(t, plain.Sloppy)
	for _, e := range entries {
		assert.Equal(t, "sptxt", e.SourceFormat)
		assert.NoError(t, e.Validate())
	}
}

func TestParseInlineModifications(t *testing.T) {
	tests := []struct {
		raw      string
		sequence string
		mods     []inlineMod
	}{
		{raw: "PEPTIDE", sequence: "PEPTIDE"},
		{raw: "PEPM[147]K", sequence: "PEPMK", mods: []inlineMod{{position: 3, delta: 15.95951}}},
		{raw: "n[43]AK", sequence: "AK", mods: []inlineMod{{position: -1, delta: 41.99217}}},
		{raw: "AKc[17]", sequence: "AK", mods: []inlineMod{{position: 2, delta: -0.00274}}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			sequence, mods, err := parseInlineModifications(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.sequence, sequence)
			require.Len(t, mods, len(tt.mods))
			for i, want := range tt.mods {
				assert.Equal(t, want.position, mods[i].position)
				assert.InDelta(t, want.delta, mods[i].delta, 1e-3)
			}
		})
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no charge", input: "Name: PEPTIDE\n", want: "line 1: invalid name format"},
		{name: "bad peptide", input: "Name: PEP1TIDE/2\nNumPeaks: 0\n", want: "line 1: invalid peptide"},
		{name: "bad peak count", input: "Name: PEPTIDE/2\nNumPeaks: x\n", want: "line 2: invalid num peaks"},
		{name: "bad mods", input: "Name: PEPTIDE/2\nComment: Mods=1/3,T,Unknownium\nNumPeaks: 0\n", want: "line 2: unknown modification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readAll(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
