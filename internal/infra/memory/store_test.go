package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/repository"
	"github.com/dvloznov/finwise/internal/repository/repotest"
)

func TestStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Store {
		return NewStore()
	})
}

func TestStore_ConcurrentInserts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.InsertTransaction(ctx, &domain.TransactionRecord{Amount: 1, Type: domain.TransactionTypeExpense})
		}()
	}
	wg.Wait()

	got, err := store.ListTransactions(ctx, domain.DefaultUserID, 0, 0)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(got) != 50 {
		t.Errorf("expected 50 transactions, got %d", len(got))
	}
}

func TestStore_CancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.InsertTransaction(ctx, &domain.TransactionRecord{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
