package msp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

const library = `Name: AAMK/2
MW: 466.2
Comment: Parent=234.11 Collision_energy=30 Mods=1/2,M,Oxidation iRT=12.5
Num peaks: 2
72.04	50	"b1/0.1ppm"
147.11	100	"y1"

Name: _(ac)PEPTIDE_/3
Comment: Parent=281.8
Num peaks: 0

Name: PEPT[Phospho]IDE/2
Comment: Mods=1/3,T,Phospho
Num peaks: 1
98.06	10	"b1"
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

func TestReader(t *testing.T) {
	entries, err := readAll(t, library)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	tests := []struct {
		name    string
		peptide string
		charge  int
		parent  float64
		sloppy  bool
	}{
		{name: "AAMK/2", peptide: "AAM[U:Oxidation]K", charge: 2, parent: 234.11},
		{name: "_(ac)PEPTIDE_/3", peptide: "[U:Acetyl]-PEPTIDE", charge: 3, parent: 281.8, sloppy: true},
		{name: "PEPT[Phospho]IDE/2", peptide: "PEPT[U:Phospho]IDE", charge: 2},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entries[i]
			assert.Equal(t, tt.name, e.Name)
			assert.Equal(t, tt.peptide, e.Peptide.String())
			assert.Equal(t, tt.charge, e.Charge)
			assert.InDelta(t, tt.parent, e.PrecursorMZ, 1e-9)
			assert.Equal(t, tt.sloppy, e.Sloppy)
			assert.Equal(t, "msp", e.SourceFormat)
			assert.NoError(t, e.Validate())
		})
	}

	require.NotNil(t, entries[0].CollisionEnergy)
	assert.InDelta(t, 30, *entries[0].CollisionEnergy, 1e-9)
	require.NotNil(t, entries[0].RetentionTime)
	assert.InDelta(t, 12.5, *entries[0].RetentionTime, 1e-9)
	assert.Nil(t, entries[1].RetentionTime)
}

func TestReaderTruncatedEntry(t *testing.T) {
	entries, err := readAll(t, "Name: PEPTIDE/1\nNum peaks: 3\n100 1\n")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PEPTIDE", entries[0].Peptide.String())
}

func TestReaderEmpty(t *testing.T) {
	entries, err := readAll(t, "\n\n")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no charge", input: "Name: PEPTIDE\n", want: "line 1: invalid name format"},
		{name: "bad charge", input: "Name: PEPTIDE/x\n", want: "line 1: invalid charge"},
		{name: "bad peptide", input: "Name: PEP!IDE/2\n", want: "line 1: invalid peptide"},
		{name: "bad peak count", input: "Name: PEPTIDE/2\nNum peaks: many\n", want: "line 2: invalid num peaks"},
		{name: "missing peak count", input: "Name: PEPTIDE/2\nName: PEPTIDE/3\n", want: "line 2: entry 'PEPTIDE/2' has no peak count"},
		{name: "bad mods", input: "Name: PEPTIDE/2\nComment: Mods=1/3,T\nNum peaks: 0\n", want: "line 2: invalid modification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readAll(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := readAll(t, "Name: PEP!IDE/2\n")
	assert.ErrorIs(t, err, perr.ErrSyntax)
}
