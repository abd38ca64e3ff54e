package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finwise/internal/domain"
)

// PrepareTransaction fills ID, UserID and CreatedAt when they are empty.
func PrepareTransaction(txn *domain.TransactionRecord) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.UserID == "" {
		txn.UserID = domain.DefaultUserID
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
}

// PrepareGoal fills ID, UserID, Status and CreatedAt when they are empty.
func PrepareGoal(goal *domain.GoalRecord) {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	if goal.UserID == "" {
		goal.UserID = domain.DefaultUserID
	}
	if goal.Status == "" {
		goal.Status = domain.GoalStatusActive
	}
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now().UTC()
	}
}
