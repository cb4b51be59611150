package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/pepform/pkg/align"
	"github.com/ChrisMcGann/pepform/pkg/core"
)

var (
	steps     int
	tolerance string
	alignType string
	matrix    string
)

var alignCmd = &cobra.Command{
	Use:   "align <a> <b>",
	Short: "Align two peptides by mass",
	Long: `Align two peptides, matching stretches of up to --steps residues on each side
whose masses agree within --tolerance (e.g. "10 ppm" or "0.02 da").

Types: global, local, global_a, global_b. Matrices: blosum62, identity.
The path is printed in short form: = identity, m identity with a different
mass, i isobaric, r rotation, X mismatch, I/D gaps.`,
	Args: cobra.ExactArgs(2),
	RunE: runAlign,
}

func init() {
	alignCmd.Flags().IntVar(&steps, "steps", 0, "Maximal residues per step")
	alignCmd.Flags().StringVar(&tolerance, "tolerance", "", "Mass tolerance")
	alignCmd.Flags().StringVar(&alignType, "type", "", "Alignment type")
	alignCmd.Flags().StringVar(&matrix, "matrix", "", "Scoring matrix")
}

func simplePeptide(value string) (core.Simple, error) {
	lp, err := parser.ParseLinear(value)
	if err != nil {
		return core.Simple{}, err
	}
	s, ok := core.ToSimple(lp)
	if !ok {
		return core.Simple{}, fmt.Errorf("'%s' is not a simple peptide", value)
	}
	return s, nil
}

func runAlign(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Align.Steps = steps
	}
	if flags.Changed("tolerance") {
		cfg.Align.Tolerance = tolerance
	}
	if flags.Changed("type") {
		cfg.Align.Type = alignType
	}
	if flags.Changed("matrix") {
		cfg.Align.Matrix = matrix
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	settings, err := cfg.Align.Settings()
	if err != nil {
		return err
	}

	a, err := simplePeptide(args[0])
	if err != nil {
		return err
	}
	b, err := simplePeptide(args[1])
	if err != nil {
		return err
	}

	result, err := align.Align(a, b, settings.Matrix, settings.Tolerance, settings.Type, settings.Steps)
	if err != nil {
		return err
	}
	stats := result.Stats()
	logger.Debug("aligned",
		zap.String("type", settings.Type.String()),
		zap.String("tolerance", settings.Tolerance.String()),
		zap.Int("steps", settings.Steps))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path\t%s\n", result.Short())
	fmt.Fprintf(out, "score\t%d\n", result.Score)
	fmt.Fprintf(out, "normalised\t%.4f\n", result.NormalisedScore)
	fmt.Fprintf(out, "a\t%d\t%s\n", result.StartA, result.AlignedA().String())
	fmt.Fprintf(out, "b\t%d\t%s\n", result.StartB, result.AlignedB().String())
	fmt.Fprintf(out, "identity\t%.4f\t%d/%d\n", stats.Identity(), stats.Identical, stats.Length)
	fmt.Fprintf(out, "similar\t%d\n", stats.MassSimilar)
	fmt.Fprintf(out, "gaps\t%d\n", stats.Gaps)
	return nil
}
