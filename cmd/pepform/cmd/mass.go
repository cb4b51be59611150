package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepform/pkg/core"
)

var (
	massCharge int
	massSloppy bool
)

var massCmd = &cobra.Command{
	Use:   "mass <notation>",
	Short: "Print the formulas and masses of a peptide",
	Long: `Print every molecular formula a peptide can have with its monoisotopic mass
and average weight. Ambiguous modifications give one line per placement.
With --charge the m/z of each formula is printed as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runMass,
}

func init() {
	massCmd.Flags().IntVarP(&massCharge, "charge", "z", 0, "Print m/z at this charge (0 = neutral only)")
	massCmd.Flags().BoolVar(&massSloppy, "sloppy", false, "Accept sloppy library notation")
}

func runMass(cmd *cobra.Command, args []string) error {
	if massCharge < 0 {
		return fmt.Errorf("charge must not be negative, got %d", massCharge)
	}
	p, err := parsePeptide(args[0], massSloppy)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, pf := range p.Peptidoforms {
		if len(p.Peptidoforms) > 1 {
			fmt.Fprintf(out, "# peptidoform %d: %s\n", i+1, pf.String())
		}
		formulas, err := pf.Formulas()
		if err != nil {
			return err
		}
		for _, f := range formulas {
			mono, ok := f.MonoisotopicMass()
			if !ok {
				fmt.Fprintf(out, "%s\tundefined\n", f.String())
				continue
			}
			avg, _ := f.AverageWeight()
			if massCharge > 0 {
				fmt.Fprintf(out, "%s\t%.6f\t%.6f\t%.6f\n", f.String(), mono, avg, core.CalculateMZ(mono, massCharge))
				continue
			}
			fmt.Fprintf(out, "%s\t%.6f\t%.6f\n", f.String(), mono, avg)
		}
	}

	for _, lp := range p.Peptides() {
		partials, err := lp.PartialFormulas(0, lp.Len(), false)
		if err != nil {
			return err
		}
		if labels := core.AmbiguousLabels(partials); len(labels) > 0 {
			fmt.Fprintf(out, "placements\t%s\n", strings.Join(labels, ","))
		}
	}
	return nil
}
