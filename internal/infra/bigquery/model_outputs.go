package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finwise/internal/ai"
)

type ModelOutputRow struct {
	OutputID  string `bigquery:"output_id"`  // REQUIRED
	Task      string `bigquery:"task"`       // REQUIRED: classify_transaction | generate_insights
	ModelName string `bigquery:"model_name"` // REQUIRED

	Prompt  bigquery.NullString `bigquery:"prompt"`   // NULLABLE
	RawText bigquery.NullString `bigquery:"raw_text"` // NULLABLE
	Error   bigquery.NullString `bigquery:"error"`    // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

func newModelOutputRow(out *ai.ModelOutput) *ModelOutputRow {
	return &ModelOutputRow{
		OutputID:  out.OutputID,
		Task:      out.Task,
		ModelName: out.ModelName,
		Prompt:    nullString(out.Prompt),
		RawText:   nullString(out.Response),
		Error:     nullString(out.Error),
		CreatedTS: out.CreatedAt.UTC(),
	}
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

var _ ai.OutputRecorder = (*Store)(nil)

// RecordModelOutput streams one model exchange into model_outputs. Audit
// rows are never updated, so the streaming buffer is acceptable here.
func (s *Store) RecordModelOutput(ctx context.Context, out *ai.ModelOutput) error {
	inserter := s.client.DatasetInProject(s.projectID, s.datasetID).Table(modelOutputsTable).Inserter()
	if err := inserter.Put(ctx, newModelOutputRow(out)); err != nil {
		return fmt.Errorf("RecordModelOutput: inserting row: %w", err)
	}
	return nil
}
