package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/finwise/internal/api/middleware"
)

// Version is reported by the service banner.
const Version = "1.0.0"

// Root handles GET /api
func Root(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to FinWise AI API",
		"version": Version,
		"status":  "running",
	})
}

// Health handles GET /health and /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
