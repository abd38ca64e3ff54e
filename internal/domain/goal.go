package domain

import (
	"sort"
	"time"
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// Valid reports whether s is a known status.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusAbandoned:
		return true
	}
	return false
}

// GoalRecord is a savings target set by the user.
type GoalRecord struct {
	ID            string     `json:"_id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	TargetAmount  float64    `json:"target_amount"`
	TargetDate    time.Time  `json:"target_date"`
	CurrentAmount float64    `json:"current_amount"`
	Status        GoalStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ActiveGoals returns the active goals, most recently created first.
func ActiveGoals(goals []GoalRecord) []GoalRecord {
	active := make([]GoalRecord, 0, len(goals))
	for _, g := range goals {
		if g.Status == GoalStatusActive {
			active = append(active, g)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active
}
