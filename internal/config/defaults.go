package config

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultFragmentModel = "all"
	DefaultMaxCharge     = 1

	DefaultAlignSteps     = 4
	DefaultAlignTolerance = "10 ppm"
	DefaultAlignType      = "global"
	DefaultAlignMatrix    = "blosum62"
)

// defaults maps every key to its default value. Registering all keys with
// viper also makes them resolvable from the environment.
var defaults = map[string]any{
	"log.level":                DefaultLogLevel,
	"log.format":               DefaultLogFormat,
	"log.output_paths":         []string{"stderr"},
	"fragments.model":          DefaultFragmentModel,
	"fragments.max_charge":     DefaultMaxCharge,
	"fragments.ion_types":      []string{},
	"fragments.min_mz":         0.0,
	"fragments.max_mz":         0.0,
	"fragments.no_losses":      false,
	"fragments.merge_ppm":      0.0,
	"align.steps":              DefaultAlignSteps,
	"align.tolerance":          DefaultAlignTolerance,
	"align.type":               DefaultAlignType,
	"align.matrix":             DefaultAlignMatrix,
	"modifications.custom_csv": "",
}

// ApplyDefaults fills zero-value fields in cfg. Explicit values are left
// unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Fragments.Model == "" {
		cfg.Fragments.Model = DefaultFragmentModel
	}
	if cfg.Fragments.MaxCharge == 0 {
		cfg.Fragments.MaxCharge = DefaultMaxCharge
	}
	if cfg.Align.Steps == 0 {
		cfg.Align.Steps = DefaultAlignSteps
	}
	if cfg.Align.Tolerance == "" {
		cfg.Align.Tolerance = DefaultAlignTolerance
	}
	if cfg.Align.Type == "" {
		cfg.Align.Type = DefaultAlignType
	}
	if cfg.Align.Matrix == "" {
		cfg.Align.Matrix = DefaultAlignMatrix
	}
}
