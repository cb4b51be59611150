// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/pepform/internal/config"
	"github.com/ChrisMcGann/pepform/internal/logging"
	"github.com/ChrisMcGann/pepform/pkg/core"
	"github.com/ChrisMcGann/pepform/pkg/proforma"
)

var (
	// Global flags
	configFile string
	logLevel   string
	modsCSV    string

	// Set up before every command runs
	cfg    *config.Config
	logger = zap.NewNop()
	modDB  *core.ModDatabase
	parser *proforma.Parser
)

var rootCmd = &cobra.Command{
	Use:   "pepform",
	Short: "pepform - peptide notation, mass and fragment tool",
	Long: `pepform parses ProForma peptide notation and computes what follows from it:
- canonical notation and validation of modifications
- monoisotopic and average masses, including ambiguous placements
- theoretical fragments for CID/HCD, ETD and EThcD
- protease digestion
- mass based alignment of two peptides
- conversion of MSP and SPTXT libraries into SQLite fragment libraries
- validation of spectral libraries and summaries of converted ones`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&modsCSV, "mods", "", "CSV file with custom modifications (mod,massshift,aa)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(massCmd)
	rootCmd.AddCommand(fragmentsCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(alignCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)
}

// setup loads the configuration, builds the logger and the modification
// database shared by all commands.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		c.Log.Level = logLevel
	}
	if cmd.Flags().Changed("mods") {
		c.Modifications.CustomCSV = modsCSV
	}

	l, err := logging.New(c.Log)
	if err != nil {
		return err
	}

	db, err := loadModDatabase(c.Modifications.CustomCSV)
	if err != nil {
		return err
	}

	cfg, logger, modDB, parser = c, l, db, proforma.New(db)
	logger.Debug("configuration loaded",
		zap.String("config", configFile),
		zap.String("model", cfg.Fragments.Model),
		zap.Int("max_charge", cfg.Fragments.MaxCharge))
	return nil
}

// loadModDatabase returns the shared database, or a fresh copy extended
// with the custom modifications in path.
func loadModDatabase(path string) (*core.ModDatabase, error) {
	if path == "" {
		return core.SharedModDatabase(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open modifications file: %w", err)
	}
	defer f.Close()

	db := core.DefaultModDatabase()
	if err := db.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return db, nil
}

// parsePeptide parses strict notation, or sloppy notation when sloppy is
// set.
func parsePeptide(value string, sloppy bool) (core.ComplexPeptide, error) {
	if sloppy {
		p, err := parser.ParseSloppy(value)
		if err != nil {
			return core.ComplexPeptide{}, err
		}
		return core.NewComplexPeptide(p), nil
	}
	return parser.Parse(value)
}
