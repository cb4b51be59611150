package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/pepform/pkg/core"
	"github.com/ChrisMcGann/pepform/pkg/reader/msp"
	"github.com/ChrisMcGann/pepform/pkg/reader/sptxt"
	"github.com/ChrisMcGann/pepform/pkg/writer/sqlite"
)

var (
	inputFile   string
	outputFile  string
	inputFormat string
	description string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a spectral library into a SQLite fragment library",
	Long: `Read the peptides of an MSP or SPTXT spectral library, generate their
theoretical fragments with the configured model and filters, and write
them to a SQLite database.

The input format is taken from the file extension unless --from is set.
Fragments are generated up to the smaller of the precursor charge and
fragments.max_charge. Entries that fail validation or fragment generation
are skipped with a warning; a malformed file stops the conversion.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input spectral library (required)")
	convertCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output SQLite database (required)")
	convertCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: msp, sptxt (default: from extension)")
	convertCmd.Flags().StringVar(&description, "description", "", "Library description")
	convertCmd.Flags().StringVarP(&model, "model", "m", "", "Fragmentation model")
	convertCmd.Flags().IntVarP(&maxCharge, "max-charge", "z", 0, "Maximal fragment charge")
	convertCmd.Flags().StringVar(&ionTypes, "ion-types", "", "Comma separated ion types to keep")
	convertCmd.Flags().Float64Var(&minMZ, "min-mz", 0, "Minimal m/z")
	convertCmd.Flags().Float64Var(&maxMZ, "max-mz", 0, "Maximal m/z (0 = no limit)")
	convertCmd.Flags().BoolVar(&noLosses, "no-losses", false, "Drop fragments with a neutral loss")

	convertCmd.MarkFlagRequired("in")
	convertCmd.MarkFlagRequired("out")
}

// libraryReader is implemented by the msp and sptxt readers.
type libraryReader interface {
	Next() bool
	Entry() *core.LibraryEntry
	Err() error
	LineNumber() int
}

// detectFormat returns the library format of path.
func detectFormat(path, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch strings.ToLower(format) {
	case "msp":
		return "msp", nil
	case "sptxt":
		return "sptxt", nil
	}
	return "", fmt.Errorf("unsupported library format '%s' (expected msp or sptxt)", format)
}

// openLibrary opens path and returns a reader for format.
func openLibrary(path, format string) (*os.File, libraryReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	if format == "msp" {
		return f, msp.NewReader(f, modDB), nil
	}
	return f, sptxt.NewReader(f, modDB), nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := applyFragmentFlags(cmd); err != nil {
		return err
	}
	m, err := cfg.Fragments.FragmentModel()
	if err != nil {
		return err
	}
	filterConfig := cfg.Fragments.Filter()

	format, err := detectFormat(inputFile, inputFormat)
	if err != nil {
		return err
	}

	inFile, reader, err := openLibrary(inputFile, format)
	if err != nil {
		return err
	}
	defer inFile.Close()

	// Create SQLite writer
	writer, err := sqlite.NewWriter(outputFile, sqlite.Header{
		Description: description,
		Model:       cfg.Fragments.Model,
		MaxCharge:   cfg.Fragments.MaxCharge,
	})
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	defer writer.Close()

	log := logger.With(zap.String("input", inputFile), zap.String("format", format))
	log.Info("converting library", zap.String("output", outputFile), zap.String("model", cfg.Fragments.Model))

	count := 0
	skipped := 0

	for reader.Next() {
		entry := reader.Entry()
		entry.SourceFile = filepath.Base(inputFile)

		if err := entry.Validate(); err != nil {
			log.Warn("invalid entry", zap.String("name", entry.Name), zap.Int("line", reader.LineNumber()), zap.Error(err))
			skipped++
			continue
		}

		fragments, err := entry.Peptide.GenerateTheoreticalFragments(min(entry.Charge, cfg.Fragments.MaxCharge), m)
		if err != nil {
			log.Warn("failed to generate fragments", zap.String("name", entry.Name), zap.Error(err))
			skipped++
			continue
		}

		fragments, err = filterConfig.Apply(fragments)
		if err != nil {
			return err
		}

		if err := writer.WritePeptide(entry, fragments); err != nil {
			return fmt.Errorf("failed to write peptide %s: %w", entry.Name, err)
		}

		count++
		if count%1000 == 0 {
			log.Info("progress", zap.Int("peptides", count))
		}
	}

	if err := reader.Err(); err != nil {
		return fmt.Errorf("error reading input file: %w", err)
	}

	_, fragmentCount := writer.Counts()
	libraryID := writer.LibraryID()

	// Finalize database
	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}

	log.Info("conversion complete",
		zap.Int("peptides", count),
		zap.Int("fragments", fragmentCount),
		zap.Int("skipped", skipped),
		zap.String("library_id", libraryID.String()))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed: %d peptides\n", count)
	fmt.Fprintf(out, "Fragments: %d\n", fragmentCount)
	if skipped > 0 {
		fmt.Fprintf(out, "Skipped: %d peptides\n", skipped)
	}
	fmt.Fprintf(out, "Output: %s\n", outputFile)
	return nil
}
