// Package repository defines the persistence contracts used by the service.
// Implementations live under internal/infra.
package repository

import (
	"context"
	"errors"

	"github.com/dvloznov/finwise/internal/domain"
)

// ErrNotFound is returned when a record does not exist for the user.
var ErrNotFound = errors.New("record not found")

// Default page size for transaction listings.
const DefaultListLimit = 100

// TransactionRepository stores classified transactions.
type TransactionRepository interface {
	// InsertTransaction stores a fully classified record. ID and CreatedAt
	// are assigned when empty.
	InsertTransaction(ctx context.Context, txn *domain.TransactionRecord) error
	// ListTransactions returns the user's transactions, newest date first.
	ListTransactions(ctx context.Context, userID string, limit, skip int) ([]domain.TransactionRecord, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// GoalUpdate carries the mutable goal fields; nil fields are left as is.
type GoalUpdate struct {
	CurrentAmount *float64           `json:"current_amount,omitempty"`
	Status        *domain.GoalStatus `json:"status,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u GoalUpdate) Empty() bool {
	return u.CurrentAmount == nil && u.Status == nil
}

// Apply copies the set fields onto g.
func (u GoalUpdate) Apply(g *domain.GoalRecord) {
	if u.CurrentAmount != nil {
		g.CurrentAmount = *u.CurrentAmount
	}
	if u.Status != nil {
		g.Status = *u.Status
	}
}

// GoalRepository stores savings goals.
type GoalRepository interface {
	InsertGoal(ctx context.Context, goal *domain.GoalRecord) error
	// ListGoals returns the user's goals, most recently created first.
	ListGoals(ctx context.Context, userID string) ([]domain.GoalRecord, error)
	// ListActiveGoals returns up to limit active goals, most recent first.
	ListActiveGoals(ctx context.Context, userID string, limit int) ([]domain.GoalRecord, error)
	UpdateGoal(ctx context.Context, userID, id string, update GoalUpdate) (*domain.GoalRecord, error)
	DeleteGoal(ctx context.Context, userID, id string) error
}

// Store bundles both repositories behind one connection.
type Store interface {
	TransactionRepository
	GoalRepository
	Close() error
}
