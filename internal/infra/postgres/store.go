// Package postgres is a Store backed by PostgreSQL through pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/logger"
	"github.com/dvloznov/finwise/internal/repository"
)

//go:embed schema.sql
var schemaSQL string

// Config holds the connection settings.
type Config struct {
	URL string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
	// ConnectAttempts bounds the startup connection retries.
	ConnectAttempts uint
	// ConnectDelay is the base delay between connection attempts.
	ConnectDelay time.Duration
}

// Store implements repository.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

// Open connects to the database, retrying while it comes up, and applies
// the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("postgres.Open: database url is required")
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}
	if cfg.ConnectAttempts == 0 {
		cfg.ConnectAttempts = 5
	}
	if cfg.ConnectDelay == 0 {
		cfg.ConnectDelay = time.Second
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres.Open: parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	log := logger.FromContext(ctx)

	var pool *pgxpool.Pool
	err = retry.Do(
		func() error {
			p, err := pgxpool.NewWithConfig(ctx, poolConfig)
			if err != nil {
				return err
			}
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := p.Ping(pingCtx); err != nil {
				p.Close()
				return err
			}
			pool = p
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(cfg.ConnectAttempts),
		retry.Delay(cfg.ConnectDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msg("PostgreSQL not ready, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres.Open: connecting: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.Open: applying schema: %w", err)
	}

	log.Info().Msg("Connected to PostgreSQL")
	return &Store{pool: pool}, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// InsertTransaction stores one classified transaction.
func (s *Store) InsertTransaction(ctx context.Context, txn *domain.TransactionRecord) error {
	repository.PrepareTransaction(txn)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (
			id, user_id, date, amount, type, description,
			category, confidence_score, classification_source, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		txn.ID, txn.UserID, txn.Date, txn.Amount, string(txn.Type), txn.Description,
		txn.Category, txn.ConfidenceScore, string(txn.ClassificationSource), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's transactions, newest date first.
func (s *Store) ListTransactions(ctx context.Context, userID string, limit, skip int) ([]domain.TransactionRecord, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, date, amount, type, description,
		       category, confidence_score, classification_source, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`, userID, lim, skip)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query: %w", err)
	}
	defer rows.Close()

	out := []domain.TransactionRecord{}
	for rows.Next() {
		var (
			txn      domain.TransactionRecord
			typ, src string
		)
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Date, &txn.Amount, &typ, &txn.Description,
			&txn.Category, &txn.ConfidenceScore, &src, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListTransactions: scan: %w", err)
		}
		txn.Type = domain.TransactionType(typ)
		txn.ClassificationSource = domain.ClassificationSource(src)
		txn.Date = txn.Date.UTC()
		txn.CreatedAt = txn.CreatedAt.UTC()
		out = append(out, txn)
	}
	return out, rows.Err()
}

// DeleteTransaction removes one of the user's transactions.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// InsertGoal stores a goal.
func (s *Store) InsertGoal(ctx context.Context, goal *domain.GoalRecord) error {
	repository.PrepareGoal(goal)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO goals (
			id, user_id, title, target_amount, target_date,
			current_amount, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		goal.ID, goal.UserID, goal.Title, goal.TargetAmount, goal.TargetDate,
		goal.CurrentAmount, string(goal.Status), goal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertGoal: %w", err)
	}
	return nil
}

const goalColumns = `id, user_id, title, target_amount, target_date, current_amount, status, created_at`

// ListGoals returns the user's goals, most recently created first.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.GoalRecord, error) {
	return s.queryGoals(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
}

// ListActiveGoals returns up to limit active goals, most recent first.
func (s *Store) ListActiveGoals(ctx context.Context, userID string, limit int) ([]domain.GoalRecord, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	return s.queryGoals(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3`, userID, string(domain.GoalStatusActive), lim)
}

// UpdateGoal applies update to one of the user's goals.
func (s *Store) UpdateGoal(ctx context.Context, userID, id string, update repository.GoalUpdate) (*domain.GoalRecord, error) {
	var status *string
	if update.Status != nil {
		st := string(*update.Status)
		status = &st
	}

	goals, err := s.queryGoals(ctx, `
		UPDATE goals
		SET current_amount = COALESCE($1, current_amount),
		    status = COALESCE($2, status)
		WHERE id = $3 AND user_id = $4
		RETURNING `+goalColumns, update.CurrentAmount, status, id, userID)
	if err != nil {
		return nil, fmt.Errorf("UpdateGoal: %w", err)
	}
	if len(goals) == 0 {
		return nil, repository.ErrNotFound
	}
	return &goals[0], nil
}

// DeleteGoal removes one of the user's goals.
func (s *Store) DeleteGoal(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("DeleteGoal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) queryGoals(ctx context.Context, query string, args ...interface{}) ([]domain.GoalRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	goals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.GoalRecord, error) {
		var (
			g      domain.GoalRecord
			status string
		)
		err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.TargetAmount, &g.TargetDate,
			&g.CurrentAmount, &status, &g.CreatedAt)
		g.Status = domain.GoalStatus(status)
		g.TargetDate = g.TargetDate.UTC()
		g.CreatedAt = g.CreatedAt.UTC()
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("queryGoals: %w", err)
	}
	return goals, nil
}
