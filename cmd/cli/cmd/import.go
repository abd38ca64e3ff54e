package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/pipeline"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv | gs://bucket/object.csv>",
	Short: "Classify and store transactions from a CSV file",
	Long: `Import reads a CSV with the header date,amount,type,description,
classifies every valid row and stores it. Rows that fail validation are
reported and skipped.

Example:
  finwise import statements/jan.csv
  finwise import gs://finwise-uploads/imports/2026/01/05/jan.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	source := args[0]

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var result *pipeline.Result
	if strings.HasPrefix(source, "gs://") {
		if a.Storage == nil {
			return fmt.Errorf("GCS_BUCKET must be set to import from %s", source)
		}
		result, err = a.Importer.ImportFromGCS(ctx, domain.DefaultUserID, source)
	} else {
		data, readErr := os.ReadFile(source)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", source, readErr)
		}
		result, err = a.Importer.ImportCSV(ctx, domain.DefaultUserID, filepath.Base(source), data)
	}
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), result)
}
