package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateFormat string

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a spectral library",
	Long: `Read every entry of an MSP or SPTXT library and check that its peptide parses,
its modifications resolve and its charge and precursor m/z are usable.
Invalid entries are logged; a malformed file is reported with its line.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "from", "f", "", "Input format: msp, sptxt (default: from extension)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := detectFormat(args[0], validateFormat)
	if err != nil {
		return err
	}
	f, reader, err := openLibrary(args[0], format)
	if err != nil {
		return err
	}
	defer f.Close()

	entries, invalid, sloppyEntries := 0, 0, 0
	for reader.Next() {
		entry := reader.Entry()
		entries++
		if entry.Sloppy {
			sloppyEntries++
		}
		if err := entry.Validate(); err != nil {
			invalid++
			logger.Warn("invalid entry",
				zap.String("name", entry.Name),
				zap.Int("line", reader.LineNumber()),
				zap.Error(err))
		}
	}
	if err := reader.Err(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Entries: %d\n", entries)
	fmt.Fprintf(out, "Sloppy: %d\n", sloppyEntries)
	fmt.Fprintf(out, "Invalid: %d\n", invalid)
	if invalid > 0 {
		return fmt.Errorf("%d of %d entries are invalid", invalid, entries)
	}
	return nil
}
