// Package sqlite is a Store backed by a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/repository"
)

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements repository.Store on SQLite.
type Store struct {
	db     *sql.DB
	dbPath string
}

var _ repository.Store = (*Store)(nil)

// Open opens (creating if needed) the database at dbPath and applies the
// schema. WAL mode and foreign keys are enabled.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.Open: creating database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: opening database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: ping: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: initializing schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// InsertTransaction stores one classified transaction.
func (s *Store) InsertTransaction(ctx context.Context, txn *domain.TransactionRecord) error {
	repository.PrepareTransaction(txn)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, user_id, date, amount, type, description,
			category, confidence_score, classification_source, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.UserID, formatTime(txn.Date), txn.Amount, string(txn.Type), txn.Description,
		txn.Category, txn.ConfidenceScore, string(txn.ClassificationSource), formatTime(txn.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's transactions, newest date first.
func (s *Store) ListTransactions(ctx context.Context, userID string, limit, skip int) ([]domain.TransactionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, amount, type, description,
		       category, confidence_score, classification_source, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC
		LIMIT ? OFFSET ?`, userID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query: %w", err)
	}
	defer rows.Close()

	out := []domain.TransactionRecord{}
	for rows.Next() {
		var (
			txn                domain.TransactionRecord
			date, created, typ string
			source             string
			category           sql.NullString
			confidence         sql.NullFloat64
		)
		if err := rows.Scan(&txn.ID, &txn.UserID, &date, &txn.Amount, &typ, &txn.Description,
			&category, &confidence, &source, &created); err != nil {
			return nil, fmt.Errorf("ListTransactions: scan: %w", err)
		}
		if txn.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("ListTransactions: parse date: %w", err)
		}
		if txn.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("ListTransactions: parse created_at: %w", err)
		}
		txn.Type = domain.TransactionType(typ)
		txn.ClassificationSource = domain.ClassificationSource(source)
		if category.Valid {
			c := category.String
			txn.Category = &c
		}
		if confidence.Valid {
			f := confidence.Float64
			txn.ConfidenceScore = &f
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

// DeleteTransaction removes one of the user's transactions.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	return expectAffected(res)
}

// InsertGoal stores a goal.
func (s *Store) InsertGoal(ctx context.Context, goal *domain.GoalRecord) error {
	repository.PrepareGoal(goal)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (
			id, user_id, title, target_amount, target_date,
			current_amount, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.Title, goal.TargetAmount, formatTime(goal.TargetDate),
		goal.CurrentAmount, string(goal.Status), formatTime(goal.CreatedAt),
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
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
}

// ListActiveGoals returns up to limit active goals, most recent first.
func (s *Store) ListActiveGoals(ctx context.Context, userID string, limit int) ([]domain.GoalRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryGoals(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = ? AND status = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, string(domain.GoalStatusActive), limit)
}

// UpdateGoal applies update to one of the user's goals.
func (s *Store) UpdateGoal(ctx context.Context, userID, id string, update repository.GoalUpdate) (*domain.GoalRecord, error) {
	var current, status interface{}
	if update.CurrentAmount != nil {
		current = *update.CurrentAmount
	}
	if update.Status != nil {
		status = string(*update.Status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE goals
		SET current_amount = COALESCE(?, current_amount),
		    status = COALESCE(?, status)
		WHERE id = ? AND user_id = ?`, current, status, id, userID)
	if err != nil {
		return nil, fmt.Errorf("UpdateGoal: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}

	goals, err := s.queryGoals(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, repository.ErrNotFound
	}
	return &goals[0], nil
}

// DeleteGoal removes one of the user's goals.
func (s *Store) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("DeleteGoal: %w", err)
	}
	return expectAffected(res)
}

func (s *Store) queryGoals(ctx context.Context, query string, args ...interface{}) ([]domain.GoalRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("queryGoals: %w", err)
	}
	defer rows.Close()

	out := []domain.GoalRecord{}
	for rows.Next() {
		var (
			g               domain.GoalRecord
			target, created string
			status          string
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.TargetAmount, &target,
			&g.CurrentAmount, &status, &created); err != nil {
			return nil, fmt.Errorf("queryGoals: scan: %w", err)
		}
		if g.TargetDate, err = parseTime(target); err != nil {
			return nil, fmt.Errorf("queryGoals: parse target_date: %w", err)
		}
		if g.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("queryGoals: parse created_at: %w", err)
		}
		g.Status = domain.GoalStatus(status)
		out = append(out, g)
	}
	return out, rows.Err()
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
