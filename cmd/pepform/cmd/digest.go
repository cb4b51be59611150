package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepform/pkg/core"
)

var (
	protease     string
	missed       int
	minLength    int
	digestSloppy bool
)

var digestCmd = &cobra.Command{
	Use:   "digest <notation>",
	Short: "Digest a peptide with a protease",
	Long: `Cut a peptide at every site of a protease and print each piece with at most
--missed uncut sites, with its monoisotopic mass.`,
	Args: cobra.ExactArgs(1),
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().StringVarP(&protease, "protease", "p", "trypsin",
		"Protease: "+strings.Join(core.ProteaseNames(), ", "))
	digestCmd.Flags().IntVar(&missed, "missed", 0, "Maximal missed cleavages")
	digestCmd.Flags().IntVar(&minLength, "min-length", 1, "Minimal piece length")
	digestCmd.Flags().BoolVar(&digestSloppy, "sloppy", false, "Accept sloppy library notation")
}

func runDigest(cmd *cobra.Command, args []string) error {
	enzyme, ok := core.GetProtease(protease)
	if !ok {
		return fmt.Errorf("unknown protease '%s' (known: %s)", protease, strings.Join(core.ProteaseNames(), ", "))
	}
	if missed < 0 {
		return fmt.Errorf("missed cleavages must not be negative, got %d", missed)
	}

	p, err := parsePeptide(args[0], digestSloppy)
	if err != nil {
		return err
	}
	lp, ok := p.Singular()
	if !ok {
		return fmt.Errorf("digest needs a single peptide, got %d", len(p.Peptides()))
	}

	out := cmd.OutOrStdout()
	for _, piece := range lp.Digest(enzyme, missed) {
		if piece.Len() < minLength {
			continue
		}
		formulas, err := piece.Formulas()
		if err != nil {
			return err
		}
		fmt.Fprint(out, piece.String())
		for _, f := range formulas {
			if mono, ok := f.MonoisotopicMass(); ok {
				fmt.Fprintf(out, "\t%.6f", mono)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}
