// Package bigquery is a Store backed by BigQuery tables. Rows are written
// with DML so they can be updated and deleted right away.
package bigquery

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finwise/internal/logger"
	"github.com/dvloznov/finwise/internal/repository"
)

const (
	DefaultDatasetID = "finwise"

	transactionsTable = "transactions"
	goalsTable        = "goals"
	modelOutputsTable = "model_outputs"
)

// Store implements repository.Store and ai.OutputRecorder on BigQuery. It
// holds a shared client for all operations.
type Store struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

var _ repository.Store = (*Store)(nil)

// NewStore creates a Store with a shared BigQuery client and makes sure the
// tables exist.
func NewStore(ctx context.Context, projectID, datasetID string) (*Store, error) {
	if projectID == "" {
		return nil, errors.New("NewStore: project id is required")
	}
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating client: %w", err)
	}

	s := &Store{client: client, projectID: projectID, datasetID: datasetID}
	if err := s.ensureTables(ctx); err != nil {
		client.Close()
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().Str("project", projectID).Str("dataset", datasetID).Msg("Connected to BigQuery")
	return s, nil
}

// Close closes the BigQuery client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// table returns the fully qualified, backquoted table name.
func (s *Store) table(name string) string {
	return "`" + s.projectID + "." + s.datasetID + "." + name + "`"
}

func (s *Store) ensureTables(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.table(transactionsTable) + ` (
			transaction_id        STRING NOT NULL,
			user_id               STRING NOT NULL,
			transaction_ts        TIMESTAMP NOT NULL,
			amount                NUMERIC NOT NULL,
			type                  STRING NOT NULL,
			description           STRING NOT NULL,
			category_name         STRING,
			confidence_score      FLOAT64,
			classification_source STRING,
			created_ts            TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.table(goalsTable) + ` (
			goal_id        STRING NOT NULL,
			user_id        STRING NOT NULL,
			title          STRING NOT NULL,
			target_amount  NUMERIC NOT NULL,
			target_date    DATE NOT NULL,
			current_amount NUMERIC NOT NULL,
			status         STRING NOT NULL,
			created_ts     TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.table(modelOutputsTable) + ` (
			output_id  STRING NOT NULL,
			task       STRING NOT NULL,
			model_name STRING NOT NULL,
			prompt     STRING,
			raw_text   STRING,
			error      STRING,
			created_ts TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range ddl {
		if _, err := s.runDML(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensureTables: %w", err)
		}
	}
	return nil
}

// runDML runs a statement and waits for it, returning the affected row count.
func (s *Store) runDML(ctx context.Context, sql string, params []bigquery.QueryParameter) (int64, error) {
	q := s.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("job error: %w", err)
	}

	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return stats.NumDMLAffectedRows, nil
	}
	return 0, nil
}
