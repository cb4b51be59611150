package proforma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

func TestParseSloppy(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"PEPTIDE", "PEPTIDE"},
		{"_PEPTIDE_", "PEPTIDE"},
		{"pep tide", "PEPTIDE"},
		{"_(ac)PEPTIDE_", "[U:Acetyl]-PEPTIDE"},
		{"_(Acetyl (Protein N-term))PEPTIDE_", "[U:Acetyl]-PEPTIDE"},
		{"[Acetyl]-PEPTIDE", "[U:Acetyl]-PEPTIDE"},
		{"n[+42]PEPTIDE", "[+42]-PEPTIDE"},
		{"n[42.0106]-PEPTIDE", "[+42.0106]-PEPTIDE"},
		{"PEPTM(ox)IDE", "PEPTM[U:Oxidation]IDE"},
		{"_PEPTM(Oxidation (M))IDE_", "PEPTM[U:Oxidation]IDE"},
		{"PEPT(Phospho (ST))IDE", "PEPT[U:Phospho]IDE"},
		{"PEPC[+57.021]TIDE", "PEPC[+57.021]TIDE"},
		{"PEPC[57.021]TIDE", "PEPC[+57.021]TIDE"},
		{"PEPC[U:Carbamidomethyl]TIDE", "PEPC[U:Carbamidomethyl]TIDE"},
		{"Q(pyro-glu)PEPTIDE", "Q[U:Gln->pyro-Glu]PEPTIDE"},
		{"E(pyro-glu)PEPTIDE", "E[U:Glu->pyro-Glu]PEPTIDE"},
		{"PEPTIDE-[Amidated]", "PEPTIDE-[U:Amidated]"},
		{"A(Phospho)", "A[U:Phospho]"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			p, err := ParseSloppy(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
			assert.Empty(t, p.AmbiguousModifications)
		})
	}
}

func TestParseSloppyCustomDatabase(t *testing.T) {
	db := core.DefaultModDatabase()
	db.AddMass("Heavy", 8.0142, core.PlacementRule{AminoAcids: []core.AminoAcid{core.Lysine}})

	p, err := New(db).ParseSloppy("PEPK(heavy)")
	require.NoError(t, err)
	assert.Equal(t, "PEPK[C:Heavy]", p.String())
}

func TestParseSloppyErrors(t *testing.T) {
	tests := []struct {
		value string
		kind  error
	}{
		{"", perr.ErrSyntax},
		{"__", perr.ErrSyntax},
		{"PEP!", perr.ErrSyntax},
		{"PEP(ox", perr.ErrSyntax},
		{"n[+42", perr.ErrSyntax},
		{"PEPTIDE-", perr.ErrSyntax},
		{"PEPTIDE-[Amidated", perr.ErrSyntax},
		{"(ac)(ac)PEPTIDE", perr.ErrSyntax},
		{"PEP(Frobnicated)", perr.ErrSemantic},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			_, err := ParseSloppy(tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
