package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finwise/internal/api/middleware"
	"github.com/dvloznov/finwise/internal/coaching"
	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/repository"
)

// Windows used for coaching.
const (
	InsightsTransactionLimit = 100
	InsightsGoalLimit        = 10
)

const noTransactionsMessage = "No transactions found. Add some transactions first to get insights."

// InsightsHandler serves coaching results.
type InsightsHandler struct {
	store repository.Store
	coach Coacher
	cache InsightsCache
	log   zerolog.Logger
}

// NewInsightsHandler creates a new insights handler. cache may be nil.
func NewInsightsHandler(store repository.Store, coach Coacher, cache InsightsCache, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		store: store,
		coach: coach,
		cache: cache,
		log:   log,
	}
}

// GetInsights handles GET /api/insights
func (h *InsightsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := domain.DefaultUserID

	var gen uint64
	if h.cache != nil {
		if cached, ok := h.cache.Get(userID); ok {
			middleware.WriteJSON(w, http.StatusOK, cached)
			return
		}
		gen = h.cache.Generation(userID)
	}

	txs, err := h.store.ListTransactions(ctx, userID, InsightsTransactionLimit, 0)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}
	if len(txs) == 0 {
		middleware.WriteError(w, http.StatusNotFound, noTransactionsMessage)
		return
	}

	goals, err := h.store.ListActiveGoals(ctx, userID, InsightsGoalLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load goals for insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	result, err := h.coach.Coach(ctx, txs, goals)
	if errors.Is(err, coaching.ErrNoTransactions) {
		middleware.WriteError(w, http.StatusNotFound, noTransactionsMessage)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to generate insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	if h.cache != nil && !h.cache.SetIfGeneration(userID, gen, result) {
		h.log.Debug().Msg("Data changed while generating insights, result not cached")
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}
