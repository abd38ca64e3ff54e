// Package repotest holds behaviour tests shared by every Store implementation.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/repository"
)

// NewStoreFunc returns an empty store; cleanup is registered on t.
type NewStoreFunc func(t *testing.T) repository.Store

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func statusPtr(s domain.GoalStatus) *domain.GoalStatus { return &s }

func day(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }

// Run exercises the full repository contract against newStore.
func Run(t *testing.T, newStore NewStoreFunc) {
	t.Run("TransactionsRoundTrip", func(t *testing.T) { testTransactionsRoundTrip(t, newStore(t)) })
	t.Run("TransactionsOrderingAndPaging", func(t *testing.T) { testTransactionsPaging(t, newStore(t)) })
	t.Run("DeleteTransaction", func(t *testing.T) { testDeleteTransaction(t, newStore(t)) })
	t.Run("GoalsLifecycle", func(t *testing.T) { testGoalsLifecycle(t, newStore(t)) })
	t.Run("ActiveGoals", func(t *testing.T) { testActiveGoals(t, newStore(t)) })
}

func testTransactionsRoundTrip(t *testing.T, store repository.Store) {
	ctx := context.Background()

	txn := &domain.TransactionRecord{
		Date:                 day(5),
		Amount:               450,
		Type:                 domain.TransactionTypeExpense,
		Description:          "Swiggy order",
		Category:             strPtr("Food & Dining"),
		ConfidenceScore:      floatPtr(0.6),
		ClassificationSource: domain.SourceRules,
	}
	if err := store.InsertTransaction(ctx, txn); err != nil {
		t.Fatalf("InsertTransaction failed: %v", err)
	}
	if txn.ID == "" || txn.UserID != domain.DefaultUserID || txn.CreatedAt.IsZero() {
		t.Errorf("expected ID, user and created_at to be assigned: %+v", txn)
	}

	got, err := store.ListTransactions(ctx, domain.DefaultUserID, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got))
	}
	g := got[0]
	if g.ID != txn.ID || g.Amount != 450 || g.Type != domain.TransactionTypeExpense || g.Description != "Swiggy order" {
		t.Errorf("unexpected transaction: %+v", g)
	}
	if g.Category == nil || *g.Category != "Food & Dining" || g.ConfidenceScore == nil || *g.ConfidenceScore != 0.6 {
		t.Errorf("classification not persisted: %+v", g)
	}
	if g.ClassificationSource != domain.SourceRules {
		t.Errorf("source = %q, want rules", g.ClassificationSource)
	}
	if !g.Date.Equal(day(5)) {
		t.Errorf("date = %v, want %v", g.Date, day(5))
	}

	other, err := store.ListTransactions(ctx, "someone_else", 10, 0)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no transactions for another user, got %d", len(other))
	}
}

func testTransactionsPaging(t *testing.T, store repository.Store) {
	ctx := context.Background()

	for _, d := range []int{3, 1, 4, 2, 5} {
		txn := &domain.TransactionRecord{
			Date:        day(d),
			Amount:      float64(d * 100),
			Type:        domain.TransactionTypeIncome,
			Description: "gig",
			Category:    strPtr("Freelance/Gig Income"),
		}
		if err := store.InsertTransaction(ctx, txn); err != nil {
			t.Fatalf("InsertTransaction failed: %v", err)
		}
	}

	all, err := store.ListTransactions(ctx, domain.DefaultUserID, 100, 0)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(all))
	}
	for i, want := range []float64{500, 400, 300, 200, 100} {
		if all[i].Amount != want {
			t.Errorf("all[%d].Amount = %v, want %v (newest first)", i, all[i].Amount, want)
		}
	}

	pageTwo, err := store.ListTransactions(ctx, domain.DefaultUserID, 2, 2)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(pageTwo) != 2 || pageTwo[0].Amount != 300 || pageTwo[1].Amount != 200 {
		t.Errorf("unexpected second page: %+v", pageTwo)
	}

	past, err := store.ListTransactions(ctx, domain.DefaultUserID, 10, 10)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(past))
	}
}

func testDeleteTransaction(t *testing.T, store repository.Store) {
	ctx := context.Background()

	txn := &domain.TransactionRecord{Date: day(1), Amount: 10, Type: domain.TransactionTypeExpense, Description: "tea"}
	if err := store.InsertTransaction(ctx, txn); err != nil {
		t.Fatalf("InsertTransaction failed: %v", err)
	}

	if err := store.DeleteTransaction(ctx, "someone_else", txn.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("deleting another user's transaction: err = %v, want ErrNotFound", err)
	}
	if err := store.DeleteTransaction(ctx, domain.DefaultUserID, txn.ID); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	if err := store.DeleteTransaction(ctx, domain.DefaultUserID, txn.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func testGoalsLifecycle(t *testing.T, store repository.Store) {
	ctx := context.Background()

	goal := &domain.GoalRecord{
		Title:        "Emergency fund",
		TargetAmount: 50000,
		TargetDate:   day(31),
	}
	if err := store.InsertGoal(ctx, goal); err != nil {
		t.Fatalf("InsertGoal failed: %v", err)
	}
	if goal.ID == "" || goal.Status != domain.GoalStatusActive {
		t.Errorf("expected id and active status: %+v", goal)
	}

	updated, err := store.UpdateGoal(ctx, domain.DefaultUserID, goal.ID, repository.GoalUpdate{CurrentAmount: floatPtr(1200)})
	if err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}
	if updated.CurrentAmount != 1200 || updated.Status != domain.GoalStatusActive || updated.Title != "Emergency fund" {
		t.Errorf("unexpected goal after update: %+v", updated)
	}

	updated, err = store.UpdateGoal(ctx, domain.DefaultUserID, goal.ID, repository.GoalUpdate{Status: statusPtr(domain.GoalStatusCompleted)})
	if err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}
	if updated.Status != domain.GoalStatusCompleted || updated.CurrentAmount != 1200 {
		t.Errorf("unexpected goal after status update: %+v", updated)
	}

	if _, err := store.UpdateGoal(ctx, domain.DefaultUserID, "missing", repository.GoalUpdate{CurrentAmount: floatPtr(1)}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("updating missing goal: err = %v, want ErrNotFound", err)
	}

	goals, err := store.ListGoals(ctx, domain.DefaultUserID)
	if err != nil {
		t.Fatalf("ListGoals failed: %v", err)
	}
	if len(goals) != 1 || goals[0].TargetAmount != 50000 || !goals[0].TargetDate.Equal(day(31)) {
		t.Errorf("unexpected goals: %+v", goals)
	}

	if err := store.DeleteGoal(ctx, domain.DefaultUserID, goal.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}
	if err := store.DeleteGoal(ctx, domain.DefaultUserID, goal.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func testActiveGoals(t *testing.T, store repository.Store) {
	ctx := context.Background()

	for i, status := range []domain.GoalStatus{
		domain.GoalStatusActive,
		domain.GoalStatusAbandoned,
		domain.GoalStatusActive,
		domain.GoalStatusActive,
	} {
		goal := &domain.GoalRecord{
			Title:        string(rune('A' + i)),
			TargetAmount: 1000,
			TargetDate:   day(28),
			Status:       status,
			CreatedAt:    day(i + 1),
		}
		if err := store.InsertGoal(ctx, goal); err != nil {
			t.Fatalf("InsertGoal failed: %v", err)
		}
	}

	active, err := store.ListActiveGoals(ctx, domain.DefaultUserID, 2)
	if err != nil {
		t.Fatalf("ListActiveGoals failed: %v", err)
	}
	if len(active) != 2 || active[0].Title != "D" || active[1].Title != "C" {
		t.Errorf("unexpected active goals: %+v", active)
	}
}
