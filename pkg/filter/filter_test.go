package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepform/pkg/align"
	"github.com/ChrisMcGann/pepform/pkg/chem"
	"github.com/ChrisMcGann/pepform/pkg/core"
)

func fragment(ion core.IonType, mass float64, charge int) core.Fragment {
	return core.Fragment{Formula: chem.MassOnly(mass), Charge: charge, Ion: ion}
}

func testFragments() []core.Fragment {
	water := core.Loss("H2O1")
	return []core.Fragment{
		fragment(core.IonB, 200, 1),
		fragment(core.IonY, 400, 2),
		fragment(core.IonY, 300, 1),
		{Formula: chem.MassOnly(282), Charge: 1, Ion: core.IonY, Loss: &water},
		fragment(core.IonPrecursor, 1000, 1),
		{Formula: chem.MustParseFormula("Xe1"), Charge: 1, Ion: core.IonB},
	}
}

func mzs(t *testing.T, fragments []core.Fragment) []float64 {
	t.Helper()
	out := make([]float64, len(fragments))
	for i, f := range fragments {
		mz, ok := f.MZ()
		require.True(t, ok)
		out[i] = mz
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   []float64
	}{
		{name: "no filters", config: Config{}, want: []float64{200, 200, 300, 282, 1000}},
		{name: "ion types", config: Config{IonTypes: []string{"y", "p"}}, want: []float64{200, 300, 282, 1000}},
		{name: "upper case backbone", config: Config{IonTypes: []string{"B"}}, want: nil},
		{name: "min mz", config: Config{MinMZ: 250}, want: []float64{300, 282, 1000}},
		{name: "mz range", config: Config{MinMZ: 250, MaxMZ: 500}, want: []float64{300, 282}},
		{name: "no losses", config: Config{IonTypes: []string{"y"}, NoLosses: true}, want: []float64{200, 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.config.Apply(testFragments())
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, mzs(t, got))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "unknown ion", config: Config{IonTypes: []string{"q"}}},
		{name: "negative", config: Config{MinMZ: -1}},
		{name: "inverted range", config: Config{MinMZ: 500, MaxMZ: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.config.Apply(testFragments())
			assert.Error(t, err)
		})
	}
}

func TestRemoveMassless(t *testing.T) {
	assert.Len(t, RemoveMassless(testFragments()), 5)
}

func TestMerge(t *testing.T) {
	fragments := []core.Fragment{
		fragment(core.IonY, 500.002, 1),
		fragment(core.IonB, 500.000, 1),
		fragment(core.IonB, 250.000, 1),
		fragment(core.IonY, 1000.008, 2),
		fragment(core.IonY, 600, 1),
		{Formula: chem.MustParseFormula("Xe1"), Charge: 1, Ion: core.IonB},
	}

	clusters := Merge(fragments, align.Ppm(10))
	require.Len(t, clusters, 3)

	assert.InDelta(t, 250.0, clusters[0].MZ, 1e-9)
	assert.Equal(t, "b^1", clusters[0].Names())

	require.Len(t, clusters[1].Fragments, 3)
	assert.InDelta(t, (500.0+500.002+500.004)/3, clusters[1].MZ, 1e-9)
	assert.Equal(t, core.IonB, clusters[1].Fragments[0].Ion)
	assert.Equal(t, "b^1,y^1,y^2", clusters[1].Names())

	assert.InDelta(t, 600.0, clusters[2].MZ, 1e-9)

	assert.Len(t, Merge(fragments, align.Ppm(0)), 5)
	assert.Empty(t, Merge(nil, align.Ppm(10)))
}
