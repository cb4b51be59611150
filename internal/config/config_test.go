package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/pepform/pkg/align"
)

const validConfigYAML = `
log:
  level: debug
  format: json
fragments:
  model: etd
  max_charge: 3
  ion_types: [c, z]
  min_mz: 150
  merge_ppm: 5
align:
  steps: 3
  tolerance: 0.02 da
  type: local
  matrix: identity
modifications:
  custom_csv: mods.csv
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pepform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultFragmentModel, cfg.Fragments.Model)
	assert.Equal(t, DefaultMaxCharge, cfg.Fragments.MaxCharge)
	assert.Equal(t, DefaultAlignSteps, cfg.Align.Steps)

	s, err := cfg.Align.Settings()
	require.NoError(t, err)
	assert.Equal(t, align.Ppm(10), s.Tolerance)
	assert.Equal(t, align.Global, s.Type)
	assert.Same(t, align.BLOSUM62, s.Matrix)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "etd", cfg.Fragments.Model)
	assert.Equal(t, 3, cfg.Fragments.MaxCharge)
	assert.Equal(t, []string{"c", "z"}, cfg.Fragments.IonTypes)
	assert.InDelta(t, 150, cfg.Fragments.MinMZ, 1e-9)
	assert.InDelta(t, 5, cfg.Fragments.MergePPM, 1e-9)
	assert.Equal(t, "mods.csv", cfg.Modifications.CustomCSV)

	s, err := cfg.Align.Settings()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Steps)
	assert.Equal(t, align.Da(0.02), s.Tolerance)
	assert.Equal(t, align.Local, s.Type)
	assert.Same(t, align.Identity, s.Matrix)

	f := cfg.Fragments.Filter()
	assert.Equal(t, []string{"c", "z"}, f.IonTypes)
	_, err = cfg.Fragments.FragmentModel()
	assert.NoError(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("PEPFORM_ALIGN_STEPS", "5")
	t.Setenv("PEPFORM_FRAGMENTS_MODEL", "cid_hcd")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Align.Steps)
	assert.Equal(t, "cid_hcd", cfg.Fragments.Model)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "log level", yaml: "log:\n  level: loud\n"},
		{name: "log format", yaml: "log:\n  format: xml\n"},
		{name: "model", yaml: "fragments:\n  model: ecd\n"},
		{name: "max charge", yaml: "fragments:\n  max_charge: -1\n"},
		{name: "ion type", yaml: "fragments:\n  ion_types: [q]\n"},
		{name: "mz range", yaml: "fragments:\n  min_mz: 500\n  max_mz: 100\n"},
		{name: "merge ppm", yaml: "fragments:\n  merge_ppm: -2\n"},
		{name: "steps", yaml: "align:\n  steps: 33\n"},
		{name: "tolerance", yaml: "align:\n  tolerance: 10 mmu\n"},
		{name: "type", yaml: "align:\n  type: semi\n"},
		{name: "matrix", yaml: "align:\n  matrix: pam250\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(createTempConfigFile(t, tt.yaml))
			assert.ErrorIs(t, err, ErrConfigValidation)
		})
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{Align: AlignConfig{Steps: 2, Type: "local"}}
	ApplyDefaults(cfg)
	assert.Equal(t, 2, cfg.Align.Steps)
	assert.Equal(t, "local", cfg.Align.Type)
	assert.Equal(t, DefaultAlignMatrix, cfg.Align.Matrix)
	assert.NoError(t, cfg.Validate())

	ApplyDefaults(nil)
}
