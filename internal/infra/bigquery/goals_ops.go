package bigquery

import (
	"context"
	"fmt"
	"math/big"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/repository"
)

const goalColumns = `goal_id, user_id, title, target_amount, target_date, current_amount, status, created_ts`

// InsertGoal inserts one goal.
func (s *Store) InsertGoal(ctx context.Context, goal *domain.GoalRecord) error {
	repository.PrepareGoal(goal)
	row := newGoalRow(goal)

	_, err := s.runDML(ctx, `
		INSERT INTO `+s.table(goalsTable)+` (`+goalColumns+`)
		VALUES (
			@goal_id, @user_id, @title, @target_amount, @target_date,
			@current_amount, @status, @created_ts
		)
	`, []bigquery.QueryParameter{
		{Name: "goal_id", Value: row.GoalID},
		{Name: "user_id", Value: row.UserID},
		{Name: "title", Value: row.Title},
		{Name: "target_amount", Value: row.TargetAmount},
		{Name: "target_date", Value: row.TargetDate},
		{Name: "current_amount", Value: row.CurrentAmount},
		{Name: "status", Value: row.Status},
		{Name: "created_ts", Value: row.CreatedTS},
	})
	if err != nil {
		return fmt.Errorf("InsertGoal: %w", err)
	}
	return nil
}

// ListGoals returns the user's goals, most recently created first.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.GoalRecord, error) {
	return s.queryGoals(ctx, `
		SELECT `+goalColumns+`
		FROM `+s.table(goalsTable)+`
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
	`, []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	})
}

// ListActiveGoals returns up to limit active goals, most recent first.
func (s *Store) ListActiveGoals(ctx context.Context, userID string, limit int) ([]domain.GoalRecord, error) {
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}
	return s.queryGoals(ctx, `
		SELECT `+goalColumns+`
		FROM `+s.table(goalsTable)+`
		WHERE user_id = @user_id AND status = @status
		ORDER BY created_ts DESC
		LIMIT @limit
	`, []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "status", Value: string(domain.GoalStatusActive)},
		{Name: "limit", Value: limit},
	})
}

// UpdateGoal applies update to one of the user's goals and returns it.
func (s *Store) UpdateGoal(ctx context.Context, userID, id string, update repository.GoalUpdate) (*domain.GoalRecord, error) {
	current := &big.Rat{}
	hasCurrent := update.CurrentAmount != nil
	if hasCurrent {
		current.SetFloat64(*update.CurrentAmount)
	}
	status := bigquery.NullString{}
	if update.Status != nil {
		status = bigquery.NullString{StringVal: string(*update.Status), Valid: true}
	}

	n, err := s.runDML(ctx, `
		UPDATE `+s.table(goalsTable)+`
		SET current_amount = IF(@has_current, @current_amount, current_amount),
		    status = COALESCE(@status, status)
		WHERE goal_id = @goal_id AND user_id = @user_id
	`, []bigquery.QueryParameter{
		{Name: "has_current", Value: hasCurrent},
		{Name: "current_amount", Value: current},
		{Name: "status", Value: status},
		{Name: "goal_id", Value: id},
		{Name: "user_id", Value: userID},
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateGoal: %w", err)
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}

	goals, err := s.queryGoals(ctx, `
		SELECT `+goalColumns+`
		FROM `+s.table(goalsTable)+`
		WHERE goal_id = @goal_id AND user_id = @user_id
	`, []bigquery.QueryParameter{
		{Name: "goal_id", Value: id},
		{Name: "user_id", Value: userID},
	})
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, repository.ErrNotFound
	}
	return &goals[0], nil
}

// DeleteGoal deletes one of the user's goals.
func (s *Store) DeleteGoal(ctx context.Context, userID, id string) error {
	n, err := s.runDML(ctx, `
		DELETE FROM `+s.table(goalsTable)+`
		WHERE goal_id = @goal_id AND user_id = @user_id
	`, []bigquery.QueryParameter{
		{Name: "goal_id", Value: id},
		{Name: "user_id", Value: userID},
	})
	if err != nil {
		return fmt.Errorf("DeleteGoal: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) queryGoals(ctx context.Context, sql string, params []bigquery.QueryParameter) ([]domain.GoalRecord, error) {
	q := s.client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("queryGoals: query read: %w", err)
	}

	out := []domain.GoalRecord{}
	for {
		var r GoalRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("queryGoals: iter next: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}
