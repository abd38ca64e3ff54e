// Package memory is an in-process Store used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/repository"
)

// Store keeps transactions and goals in maps guarded by a mutex.
type Store struct {
	mu           sync.RWMutex
	transactions map[string]domain.TransactionRecord
	goals        map[string]domain.GoalRecord
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[string]domain.TransactionRecord),
		goals:        make(map[string]domain.GoalRecord),
	}
}

var _ repository.Store = (*Store)(nil)

// InsertTransaction stores a copy of txn.
func (s *Store) InsertTransaction(ctx context.Context, txn *domain.TransactionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repository.PrepareTransaction(txn)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[txn.ID] = *txn
	return nil
}

// ListTransactions returns the user's transactions by date, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string, limit, skip int) ([]domain.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]domain.TransactionRecord, 0, len(s.transactions))
	for _, txn := range s.transactions {
		if txn.UserID == userID {
			out = append(out, txn)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return page(out, limit, skip), nil
}

// DeleteTransaction removes the user's transaction or returns ErrNotFound.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[id]
	if !ok || txn.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

// InsertGoal stores a copy of goal.
func (s *Store) InsertGoal(ctx context.Context, goal *domain.GoalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repository.PrepareGoal(goal)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[goal.ID] = *goal
	return nil
}

// ListGoals returns the user's goals, most recently created first.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.GoalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]domain.GoalRecord, 0, len(s.goals))
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListActiveGoals returns up to limit active goals, most recent first.
func (s *Store) ListActiveGoals(ctx context.Context, userID string, limit int) ([]domain.GoalRecord, error) {
	goals, err := s.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return page(domain.ActiveGoals(goals), limit, 0), nil
}

// UpdateGoal applies update to the user's goal.
func (s *Store) UpdateGoal(ctx context.Context, userID, id string, update repository.GoalUpdate) (*domain.GoalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, repository.ErrNotFound
	}
	update.Apply(&g)
	s.goals[id] = g
	return &g, nil
}

// DeleteGoal removes the user's goal or returns ErrNotFound.
func (s *Store) DeleteGoal(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func page[T any](items []T, limit, skip int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
