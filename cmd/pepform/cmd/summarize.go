package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepform/pkg/writer/sqlite"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <library.db>",
	Short: "Summarize a SQLite fragment library",
	Long:  `Print the header of a library written by convert with its peptide and fragment counts and m/z range.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	s, err := sqlite.ReadSummary(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Library: %s\n", s.LibraryID)
	if s.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", s.Description)
	}
	fmt.Fprintf(out, "Created: %s\n", s.CreationDate)
	fmt.Fprintf(out, "Model: %s (max charge %d)\n", s.Model, s.MaxCharge)
	fmt.Fprintf(out, "Peptides: %d (%d sloppy)\n", s.Peptides, s.Sloppy)
	fmt.Fprintf(out, "Fragments: %d\n", s.Fragments)
	if s.Fragments > 0 {
		fmt.Fprintf(out, "m/z range: %.4f - %.4f\n", s.MinMZ, s.MaxMZ)
	}

	formats := make([]string, 0, len(s.SourceFormats))
	for f := range s.SourceFormats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	for _, f := range formats {
		fmt.Fprintf(out, "Source %s: %d\n", f, s.SourceFormats[f])
	}
	return nil
}
