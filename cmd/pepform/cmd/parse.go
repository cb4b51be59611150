package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sloppy bool

var parseCmd = &cobra.Command{
	Use:   "parse <notation>...",
	Short: "Parse peptides and print their canonical notation",
	Long: `Parse one or more ProForma peptides and print the canonical notation of each.
With --sloppy the lenient notation used by spectral libraries is accepted,
e.g. _(ac)PEPTM(ox)IDE_ or n[43]PEPC[160]TIDE.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&sloppy, "sloppy", false, "Accept sloppy library notation")
}

func runParse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, value := range args {
		p, err := parsePeptide(value, sloppy)
		if err != nil {
			return err
		}
		logger.Debug("parsed peptide",
			zap.String("input", value),
			zap.Int("peptidoforms", len(p.Peptidoforms)),
			zap.Int("chains", len(p.Peptides())))
		fmt.Fprintln(out, p.String())
	}
	return nil
}
