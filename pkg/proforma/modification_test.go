package proforma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepform/pkg/chem"
	"github.com/ChrisMcGann/pepform/pkg/core"
	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

func TestSplitLabel(t *testing.T) {
	tests := []struct {
		token string
		body  string
		label string
		score *float64
		link  bool
	}{
		{token: "Phospho", body: "Phospho"},
		{token: "Phospho#g1", body: "Phospho", label: "g1"},
		{token: "#g1(0.25)", body: "", label: "g1", score: func() *float64 { v := 0.25; return &v }()},
		{token: "X:DSS#XL_a", body: "X:DSS", label: "XL_a", link: true},
		{token: "#branch", body: "", label: "branch", link: true},
		{token: "INFO:see #12 below", body: "INFO:see #12 below"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			body, l, err := splitLabel(tt.token, tt.token, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.body, body)
			if tt.label == "" {
				assert.Nil(t, l)
				return
			}
			require.NotNil(t, l)
			assert.Equal(t, tt.label, l.name)
			assert.Equal(t, tt.score, l.score)
			assert.Equal(t, tt.link, l.isLink())
		})
	}
}

func TestResolveTags(t *testing.T) {
	r := resolver{db: core.SharedModDatabase(), line: "U:Oxidation|INFO:x|+15.995"}
	mod, err := r.resolve(r.line, 0)
	require.NoError(t, err)
	assert.Equal(t, core.KindPredefined, mod.Kind)
	require.Len(t, mod.Tags, 2)
	assert.Equal(t, core.KindInfo, mod.Tags[0].Kind)
	assert.Equal(t, core.KindMass, mod.Tags[1].Kind)

	info := resolver{db: core.SharedModDatabase(), line: "INFO:only"}
	mod, err = info.resolve(info.line, 0)
	require.NoError(t, err)
	assert.Equal(t, core.KindInfo, mod.Kind)
	assert.Empty(t, mod.Tags)

	_, err = r.resolve("U:Oxidation||INFO:x", 0)
	assert.ErrorIs(t, err, perr.ErrSyntax)
}

func TestParseIsotope(t *testing.T) {
	tests := []struct {
		value string
		want  chem.IsotopeOverride
		kind  error
	}{
		{value: "D", want: chem.IsotopeOverride{Element: chem.H, Isotope: 2}},
		{value: "13C", want: chem.IsotopeOverride{Element: chem.C, Isotope: 13}},
		{value: "18o", want: chem.IsotopeOverride{Element: chem.O, Isotope: 18}},
		{value: "N", kind: perr.ErrSyntax},
		{value: "15Q", kind: perr.ErrSyntax},
		{value: "3C", kind: perr.ErrSemantic},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseIsotope(tt.value)
			if tt.kind != nil {
				assert.ErrorIs(t, err, tt.kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
