package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dvloznov/finwise/internal/gcsuploader"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Upload a CSV file to the configured GCS bucket",
	Long: `Upload stores a CSV in GCS_BUCKET under imports/ and prints its
gs:// URI, which can later be passed to "finwise import" or to the API's
import endpoint.

Example:
  finwise upload statements/jan.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return errors.New("only CSV files can be uploaded")
	}
	if cfg.GCSBucket == "" {
		return errors.New("GCS_BUCKET environment variable is required")
	}

	ctx := cmd.Context()
	storage, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		return err
	}
	defer storage.Close()

	objectName := gcsuploader.ImportObjectName(uuid.New().String(), filepath.Base(path), time.Now().UTC())
	uri, err := storage.UploadFile(ctx, cfg.GCSBucket, objectName, path)
	if err != nil {
		return err
	}

	log.Info().Str("gcs_uri", uri).Msg("Uploaded CSV")
	fmt.Fprintln(cmd.OutOrStdout(), uri)
	return nil
}
