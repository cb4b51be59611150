package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/pepform/pkg/align"
	"github.com/ChrisMcGann/pepform/pkg/filter"
)

var (
	model      string
	maxCharge  int
	ionTypes   string
	minMZ      float64
	maxMZ      float64
	noLosses   bool
	mergePPM   float64
	fragSloppy bool
)

var fragmentsCmd = &cobra.Command{
	Use:   "fragments <notation>",
	Short: "Generate theoretical fragments of a peptide",
	Long: `Generate the theoretical fragments of a peptide under a fragmentation model.

Models: all, cid_hcd, etd, ethcd, none.
Ion types for --ion-types: a, b, c, d, v, w, x, y, z, p (precursor),
m (precursor minus a residue), diagnostic, B (oxonium) and Y (glycan).
Flags override the fragments section of the configuration file.`,
	Args: cobra.ExactArgs(1),
	RunE: runFragments,
}

func init() {
	fragmentsCmd.Flags().StringVarP(&model, "model", "m", "", "Fragmentation model")
	fragmentsCmd.Flags().IntVarP(&maxCharge, "max-charge", "z", 0, "Maximal fragment charge")
	fragmentsCmd.Flags().StringVar(&ionTypes, "ion-types", "", "Comma separated ion types to keep")
	fragmentsCmd.Flags().Float64Var(&minMZ, "min-mz", 0, "Minimal m/z")
	fragmentsCmd.Flags().Float64Var(&maxMZ, "max-mz", 0, "Maximal m/z (0 = no limit)")
	fragmentsCmd.Flags().BoolVar(&noLosses, "no-losses", false, "Drop fragments with a neutral loss")
	fragmentsCmd.Flags().Float64Var(&mergePPM, "merge-ppm", 0, "Merge fragments within this ppm tolerance")
	fragmentsCmd.Flags().BoolVar(&fragSloppy, "sloppy", false, "Accept sloppy library notation")
}

// applyFragmentFlags copies the explicitly set flags over the configuration.
func applyFragmentFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Fragments.Model = model
	}
	if flags.Changed("max-charge") {
		cfg.Fragments.MaxCharge = maxCharge
	}
	if flags.Changed("ion-types") {
		cfg.Fragments.IonTypes = strings.Split(ionTypes, ",")
	}
	if flags.Changed("min-mz") {
		cfg.Fragments.MinMZ = minMZ
	}
	if flags.Changed("max-mz") {
		cfg.Fragments.MaxMZ = maxMZ
	}
	if flags.Changed("no-losses") {
		cfg.Fragments.NoLosses = noLosses
	}
	if flags.Changed("merge-ppm") {
		cfg.Fragments.MergePPM = mergePPM
	}
	return cfg.Validate()
}

func runFragments(cmd *cobra.Command, args []string) error {
	if err := applyFragmentFlags(cmd); err != nil {
		return err
	}
	m, err := cfg.Fragments.FragmentModel()
	if err != nil {
		return err
	}

	p, err := parsePeptide(args[0], fragSloppy)
	if err != nil {
		return err
	}

	fragments, err := p.GenerateTheoreticalFragments(cfg.Fragments.MaxCharge, m)
	if err != nil {
		return err
	}
	generated := len(fragments)

	fragments, err = cfg.Fragments.Filter().Apply(fragments)
	if err != nil {
		return err
	}
	logger.Debug("generated fragments",
		zap.String("peptide", p.String()),
		zap.String("model", cfg.Fragments.Model),
		zap.Int("generated", generated),
		zap.Int("kept", len(fragments)))

	out := cmd.OutOrStdout()
	if cfg.Fragments.MergePPM > 0 {
		for _, c := range filter.Merge(fragments, align.Ppm(cfg.Fragments.MergePPM)) {
			fmt.Fprintf(out, "%.6f\t%s\n", c.MZ, c.Names())
		}
		return nil
	}

	for _, f := range fragments {
		mz, _ := f.MZ()
		fmt.Fprintf(out, "%.6f\t%s^%d\t%s", mz, f.Name(), f.Charge, f.Formula.String())
		if f.Label != "" {
			fmt.Fprintf(out, "\t%s", f.Label)
		}
		fmt.Fprintln(out)
	}
	return nil
}
