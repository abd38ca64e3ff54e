// Package pipeline imports CSV transaction files: fetch, archive, parse,
// then classify and store every valid row.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/dvloznov/finwise/internal/classify"
	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/jobs"
	"github.com/dvloznov/finwise/internal/logger"
	"github.com/dvloznov/finwise/internal/repository"
)

const DefaultConcurrency = 4

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Result summarizes one import.
type Result struct {
	Message      string                     `json:"message"`
	Added        int                        `json:"transactions_added"`
	Errors       []string                   `json:"errors"`
	GCSURI       string                     `json:"gcs_uri,omitempty"`
	Transactions []domain.TransactionRecord `json:"-"`
}

// Invalidator is told when a user's stored data changed.
type Invalidator interface {
	Invalidate(userID string)
}

// Importer runs the import pipeline against one store.
type Importer struct {
	classifier  classify.TextClassifier
	repo        repository.TransactionRepository
	storage     StorageService
	bucket      string
	concurrency int
	invalidator Invalidator
}

// Option configures an Importer.
type Option func(*Importer)

// WithStorage enables GCS fetch and archiving of uploads into bucket.
func WithStorage(storage StorageService, bucket string) Option {
	return func(i *Importer) {
		i.storage = storage
		i.bucket = bucket
	}
}

// WithConcurrency bounds the number of rows classified at once.
func WithConcurrency(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// WithInvalidator notifies inv after rows were added for a user.
func WithInvalidator(inv Invalidator) Option {
	return func(i *Importer) {
		i.invalidator = inv
	}
}

// NewImporter creates an Importer.
func NewImporter(classifier classify.TextClassifier, repo repository.TransactionRepository, opts ...Option) *Importer {
	i := &Importer{
		classifier:  classifier,
		repo:        repo,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Importer) pipeline() *Pipeline {
	return NewPipeline(
		&FetchStep{Storage: i.storage},
		&ArchiveStep{Storage: i.storage, Bucket: i.bucket},
		&ParseStep{},
		&ClassifyAndStoreStep{Classifier: i.classifier, Repo: i.repo, Concurrency: i.concurrency},
	)
}

// ImportCSV imports an uploaded CSV file.
func (i *Importer) ImportCSV(ctx context.Context, userID, filename string, data []byte) (*Result, error) {
	return i.run(ctx, &PipelineState{UserID: userID, Filename: filename, Data: data})
}

// ImportFromGCS imports a CSV already stored at gcsURI.
func (i *Importer) ImportFromGCS(ctx context.Context, userID, gcsURI string) (*Result, error) {
	return i.run(ctx, &PipelineState{UserID: userID, GCSURI: gcsURI})
}

// HandleJob runs a queued import and records the outcome on the job.
func (i *Importer) HandleJob(ctx context.Context, job *jobs.ImportJob) error {
	var (
		result *Result
		err    error
	)
	if len(job.Data) == 0 && job.GCSURI != "" {
		result, err = i.ImportFromGCS(ctx, job.UserID, job.GCSURI)
	} else {
		result, err = i.ImportCSV(ctx, job.UserID, job.Filename, job.Data)
	}
	if err != nil {
		return err
	}

	job.TransactionsAdded = result.Added
	job.RowErrors = result.Errors
	if result.GCSURI != "" {
		job.GCSURI = result.GCSURI
	}
	return nil
}

func (i *Importer) run(ctx context.Context, state *PipelineState) (*Result, error) {
	log := logger.FromContext(ctx)
	if state.UserID == "" {
		state.UserID = domain.DefaultUserID
	}

	if err := i.pipeline().Execute(ctx, state); err != nil {
		log.Error().Err(err).Str("file", state.Filename).Msg("CSV import failed")
		return nil, err
	}

	sort.SliceStable(state.RowErrors, func(a, b int) bool {
		return state.RowErrors[a].Line < state.RowErrors[b].Line
	})
	errs := make([]string, 0, len(state.RowErrors))
	for _, e := range state.RowErrors {
		errs = append(errs, e.Error())
	}

	if len(state.Added) > 0 && i.invalidator != nil {
		i.invalidator.Invalidate(state.UserID)
	}

	log.Info().
		Str("file", state.Filename).
		Int("added", len(state.Added)).
		Int("errors", len(errs)).
		Msg("CSV import finished")

	return &Result{
		Message:      fmt.Sprintf("Processed %d transactions", len(state.Added)),
		Added:        len(state.Added),
		Errors:       errs,
		GCSURI:       state.GCSURI,
		Transactions: state.Added,
	}, nil
}
