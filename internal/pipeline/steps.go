package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/finwise/internal/classify"
	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/gcsuploader"
	"github.com/dvloznov/finwise/internal/logger"
	"github.com/dvloznov/finwise/internal/repository"
)

// PipelineStep represents a single step in the import pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	UserID   string
	Filename string
	GCSURI   string
	Data     []byte

	Rows      []Row
	RowErrors []RowError
	Added     []domain.TransactionRecord
}

// FetchStep downloads the CSV from GCS when no bytes were supplied.
type FetchStep struct {
	Storage StorageService
}

func (s *FetchStep) Execute(ctx context.Context, state *PipelineState) error {
	if len(state.Data) > 0 {
		return nil
	}
	if state.GCSURI == "" {
		return errors.New("fetch: no CSV data or GCS URI")
	}
	if s.Storage == nil {
		return errors.New("fetch: GCS storage is not configured")
	}

	data, err := s.Storage.FetchFromGCS(ctx, state.GCSURI)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if state.Filename == "" {
		state.Filename = gcsuploader.ExtractFilenameFromGCSURI(state.GCSURI)
	}
	state.Data = data
	return nil
}

// ArchiveStep keeps a copy of uploaded CSVs in the import bucket. Archive
// failures are logged and do not stop the import.
type ArchiveStep struct {
	Storage StorageService
	Bucket  string
	now     func() time.Time
}

func (s *ArchiveStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Storage == nil || s.Bucket == "" || state.GCSURI != "" {
		return nil
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}

	object := gcsuploader.ImportObjectName(uuid.NewString(), state.Filename, now())
	uri, err := s.Storage.UploadBytes(ctx, s.Bucket, object, state.Data)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("bucket", s.Bucket).Str("object", object).Msg("Failed to archive CSV upload")
		return nil
	}
	state.GCSURI = uri
	return nil
}

// ParseStep validates the CSV rows.
type ParseStep struct{}

func (s *ParseStep) Execute(ctx context.Context, state *PipelineState) error {
	rows, rowErrs, err := ParseCSV(state.Data)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	state.Rows = rows
	state.RowErrors = append(state.RowErrors, rowErrs...)
	return nil
}

// ClassifyAndStoreStep classifies rows concurrently and stores each one as
// soon as its own classification is done.
type ClassifyAndStoreStep struct {
	Classifier  classify.TextClassifier
	Repo        repository.TransactionRepository
	Concurrency int
}

func (s *ClassifyAndStoreStep) Execute(ctx context.Context, state *PipelineState) error {
	userID := state.UserID
	if userID == "" {
		userID = domain.DefaultUserID
	}

	added := make([]*domain.TransactionRecord, len(state.Rows))
	failed := make([]*RowError, len(state.Rows))

	g, gctx := errgroup.WithContext(ctx)
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}

	for i, row := range state.Rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result := s.Classifier.Classify(gctx, row.Description, row.Amount, row.Type)

			// Nothing is persisted once the import is cancelled.
			if err := gctx.Err(); err != nil {
				return err
			}

			txn := &domain.TransactionRecord{
				UserID:      userID,
				Date:        row.Date,
				Amount:      row.Amount,
				Type:        row.Type,
				Description: row.Description,
			}
			result.Apply(txn)

			if err := s.Repo.InsertTransaction(gctx, txn); err != nil {
				failed[i] = &RowError{Line: row.Line, Message: err.Error()}
				return nil
			}
			added[i] = txn
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("classify and store: %w", err)
	}

	for i := range state.Rows {
		if added[i] != nil {
			state.Added = append(state.Added, *added[i])
		}
		if failed[i] != nil {
			state.RowErrors = append(state.RowErrors, *failed[i])
		}
	}
	return nil
}
