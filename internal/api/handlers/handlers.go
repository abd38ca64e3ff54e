// Package handlers implements the HTTP endpoints. Every request acts on
// the single default user.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/pipeline"
)

// Importer runs synchronous CSV imports.
type Importer interface {
	ImportCSV(ctx context.Context, userID, filename string, data []byte) (*pipeline.Result, error)
}

// Coacher turns transactions and goals into coaching.
type Coacher interface {
	Coach(ctx context.Context, txs []domain.TransactionRecord, goals []domain.GoalRecord) (*domain.CoachingResult, error)
}

// Invalidator drops cached insights after a user's data changed.
type Invalidator interface {
	Invalidate(userID string)
}

// InsightsCache caches coaching results per user. SetIfGeneration drops a
// result when the user was invalidated after gen was read.
type InsightsCache interface {
	Invalidator
	Get(userID string) (*domain.CoachingResult, bool)
	Generation(userID string) uint64
	SetIfGeneration(userID string, gen uint64, result *domain.CoachingResult) bool
}

// maxUploadBytes caps CSV uploads.
const maxUploadBytes = 10 << 20

// queryInt reads a non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func invalidate(inv Invalidator, userID string) {
	if inv != nil {
		inv.Invalidate(userID)
	}
}
