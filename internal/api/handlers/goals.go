package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finwise/internal/api/middleware"
	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/pipeline"
	"github.com/dvloznov/finwise/internal/repository"
)

// GoalsHandler handles savings goal endpoints.
type GoalsHandler struct {
	repo  repository.GoalRepository
	cache Invalidator
	log   zerolog.Logger
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(repo repository.GoalRepository, cache Invalidator, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

type createGoalRequest struct {
	Title         string  `json:"title"`
	TargetAmount  float64 `json:"target_amount"`
	TargetDate    string  `json:"target_date"`
	CurrentAmount float64 `json:"current_amount"`
}

// CreateGoal handles POST /api/goals
func (h *GoalsHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		middleware.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.TargetAmount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "target_amount must be positive")
		return
	}
	if req.CurrentAmount < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "current_amount cannot be negative")
		return
	}
	targetDate, ok := pipeline.ParseDate(strings.TrimSpace(req.TargetDate))
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid target_date format")
		return
	}

	goal := &domain.GoalRecord{
		UserID:        domain.DefaultUserID,
		Title:         title,
		TargetAmount:  req.TargetAmount,
		TargetDate:    targetDate,
		CurrentAmount: req.CurrentAmount,
		Status:        domain.GoalStatusActive,
	}

	if err := h.repo.InsertGoal(r.Context(), goal); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert goal")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create goal")
		return
	}
	invalidate(h.cache, goal.UserID)

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Goal created successfully",
		"goal":    goal,
	})
}

// ListGoals handles GET /api/goals
func (h *GoalsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.repo.ListGoals(r.Context(), domain.DefaultUserID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list goals")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list goals")
		return
	}
	if goals == nil {
		goals = []domain.GoalRecord{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"goals": goals,
		"count": len(goals),
	})
}

// UpdateGoal handles PATCH /api/goals/{id}. Fields come from a JSON body
// or from the current_amount and status query parameters.
func (h *GoalsHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	update, msg := parseGoalUpdate(r)
	if msg != "" {
		middleware.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	if update.Empty() {
		middleware.WriteError(w, http.StatusBadRequest, "No update data provided")
		return
	}

	goal, err := h.repo.UpdateGoal(r.Context(), domain.DefaultUserID, id, update)
	if errors.Is(err, repository.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Goal not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("goal_id", id).Msg("Failed to update goal")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update goal")
		return
	}
	invalidate(h.cache, domain.DefaultUserID)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Goal updated successfully",
		"goal":    goal,
	})
}

func parseGoalUpdate(r *http.Request) (repository.GoalUpdate, string) {
	var update repository.GoalUpdate

	if r.ContentLength != 0 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			return update, "Invalid request body"
		}
	}

	q := r.URL.Query()
	if s := q.Get("current_amount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return update, "Invalid current_amount"
		}
		update.CurrentAmount = &v
	}
	if s := q.Get("status"); s != "" {
		status := domain.GoalStatus(s)
		update.Status = &status
	}

	if update.CurrentAmount != nil && *update.CurrentAmount < 0 {
		return update, "current_amount cannot be negative"
	}
	if update.Status != nil && !update.Status.Valid() {
		return update, "status must be active, completed or abandoned"
	}
	return update, ""
}

// DeleteGoal handles DELETE /api/goals/{id}
func (h *GoalsHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.repo.DeleteGoal(r.Context(), domain.DefaultUserID, id)
	if errors.Is(err, repository.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Goal not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("goal_id", id).Msg("Failed to delete goal")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete goal")
		return
	}
	invalidate(h.cache, domain.DefaultUserID)

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Goal deleted successfully"})
}
