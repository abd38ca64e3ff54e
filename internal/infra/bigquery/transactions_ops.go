package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/repository"
)

// InsertTransaction inserts one classified transaction.
func (s *Store) InsertTransaction(ctx context.Context, txn *domain.TransactionRecord) error {
	repository.PrepareTransaction(txn)
	row := newTransactionRow(txn)

	_, err := s.runDML(ctx, `
		INSERT INTO `+s.table(transactionsTable)+` (
			transaction_id, user_id, transaction_ts, amount, type, description,
			category_name, confidence_score, classification_source, created_ts
		)
		VALUES (
			@transaction_id, @user_id, @transaction_ts, @amount, @type, @description,
			@category_name, @confidence_score, @classification_source, @created_ts
		)
	`, []bigquery.QueryParameter{
		{Name: "transaction_id", Value: row.TransactionID},
		{Name: "user_id", Value: row.UserID},
		{Name: "transaction_ts", Value: row.TransactionTS},
		{Name: "amount", Value: row.Amount},
		{Name: "type", Value: row.Type},
		{Name: "description", Value: row.Description},
		{Name: "category_name", Value: row.CategoryName},
		{Name: "confidence_score", Value: row.ConfidenceScore},
		{Name: "classification_source", Value: row.ClassificationSource},
		{Name: "created_ts", Value: row.CreatedTS},
	})
	if err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string, limit, skip int) ([]domain.TransactionRecord, error) {
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	q := s.client.Query(`
		SELECT
			transaction_id,
			user_id,
			transaction_ts,
			amount,
			type,
			description,
			category_name,
			confidence_score,
			classification_source,
			created_ts
		FROM ` + s.table(transactionsTable) + `
		WHERE user_id = @user_id
		ORDER BY transaction_ts DESC, created_ts DESC
		LIMIT @limit OFFSET @skip
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "limit", Value: limit},
		{Name: "skip", Value: skip},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query read: %w", err)
	}

	out := []domain.TransactionRecord{}
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iter next: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

// DeleteTransaction deletes one of the user's transactions.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	n, err := s.runDML(ctx, `
		DELETE FROM `+s.table(transactionsTable)+`
		WHERE transaction_id = @transaction_id AND user_id = @user_id
	`, []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
		{Name: "user_id", Value: userID},
	})
	if err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
