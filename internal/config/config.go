// Package config loads the pepform configuration from YAML files and
// PEPFORM_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/pepform/internal/logging"
	"github.com/ChrisMcGann/pepform/pkg/align"
	"github.com/ChrisMcGann/pepform/pkg/core"
	"github.com/ChrisMcGann/pepform/pkg/filter"
)

// FragmentsConfig controls theoretical fragment generation.
type FragmentsConfig struct {
	Model     string   `mapstructure:"model"` // all | cid_hcd | etd | ethcd | none
	MaxCharge int      `mapstructure:"max_charge"`
	IonTypes  []string `mapstructure:"ion_types"`
	MinMZ     float64  `mapstructure:"min_mz"`
	MaxMZ     float64  `mapstructure:"max_mz"`
	NoLosses  bool     `mapstructure:"no_losses"`
	// MergePPM clusters fragments within this tolerance; 0 disables merging.
	MergePPM float64 `mapstructure:"merge_ppm"`
}

// AlignConfig controls mass based alignment.
type AlignConfig struct {
	Steps     int    `mapstructure:"steps"`
	Tolerance string `mapstructure:"tolerance"` // "<value> ppm" or "<value> da"
	Type      string `mapstructure:"type"`      // global | local | global_a | global_b
	Matrix    string `mapstructure:"matrix"`    // blosum62 | identity
}

// ModificationsConfig adds entries to the modification database.
type ModificationsConfig struct {
	CustomCSV string `mapstructure:"custom_csv"`
}

// Config is the root configuration.
type Config struct {
	Log           logging.Config      `mapstructure:"log"`
	Fragments     FragmentsConfig     `mapstructure:"fragments"`
	Align         AlignConfig         `mapstructure:"align"`
	Modifications ModificationsConfig `mapstructure:"modifications"`
}

// Validate checks every field and reports the first invalid one.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected console|json", c.Log.Format)
	}

	if _, err := c.Fragments.FragmentModel(); err != nil {
		return err
	}
	if c.Fragments.MaxCharge < 1 {
		return fmt.Errorf("config: fragments.max_charge must be at least 1, got %d", c.Fragments.MaxCharge)
	}
	if err := c.Fragments.Filter().Validate(); err != nil {
		return fmt.Errorf("config: fragments: %w", err)
	}
	if c.Fragments.MergePPM < 0 {
		return fmt.Errorf("config: fragments.merge_ppm must not be negative, got %g", c.Fragments.MergePPM)
	}

	if c.Align.Steps < 1 || c.Align.Steps > align.MaxSteps {
		return fmt.Errorf("config: align.steps %d is out of range [1, %d]", c.Align.Steps, align.MaxSteps)
	}
	if _, err := align.ParseTolerance(c.Align.Tolerance); err != nil {
		return fmt.Errorf("config: align.tolerance: %w", err)
	}
	if _, ok := align.ParseType(c.Align.Type); !ok {
		return fmt.Errorf("config: align.type %q is invalid; expected global|local|global_a|global_b", c.Align.Type)
	}
	if _, ok := align.MatrixByName(c.Align.Matrix); !ok {
		return fmt.Errorf("config: align.matrix %q is invalid; expected blosum62|identity", c.Align.Matrix)
	}
	return nil
}

// FragmentModel returns the configured fragmentation model.
func (f FragmentsConfig) FragmentModel() (core.Model, error) {
	m, ok := core.ModelByName(f.Model)
	if !ok {
		return core.Model{}, fmt.Errorf("config: fragments.model %q is invalid; expected all|cid_hcd|etd|ethcd|none", f.Model)
	}
	return m, nil
}

// Filter returns the post-generation filter.
func (f FragmentsConfig) Filter() *filter.Config {
	return &filter.Config{
		IonTypes: f.IonTypes,
		MinMZ:    f.MinMZ,
		MaxMZ:    f.MaxMZ,
		NoLosses: f.NoLosses,
	}
}

// Settings holds the parsed alignment parameters.
type Settings struct {
	Steps     int
	Tolerance align.Tolerance
	Type      align.Type
	Matrix    *align.Matrix
}

// Settings parses the alignment parameters.
func (a AlignConfig) Settings() (Settings, error) {
	tol, err := align.ParseTolerance(a.Tolerance)
	if err != nil {
		return Settings{}, err
	}
	ty, ok := align.ParseType(a.Type)
	if !ok {
		return Settings{}, fmt.Errorf("unknown alignment type %q", a.Type)
	}
	m, ok := align.MatrixByName(a.Matrix)
	if !ok {
		return Settings{}, fmt.Errorf("unknown matrix %q", a.Matrix)
	}
	return Settings{Steps: a.Steps, Tolerance: tol, Type: ty, Matrix: m}, nil
}
