// Package api wires the HTTP routes.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finwise/internal/api/handlers"
	"github.com/dvloznov/finwise/internal/api/middleware"
	"github.com/dvloznov/finwise/internal/classify"
	"github.com/dvloznov/finwise/internal/jobs"
	"github.com/dvloznov/finwise/internal/repository"
)

// Deps are the collaborators the routes need. Publisher and Cache may be nil.
type Deps struct {
	Store          repository.Store
	Classifier     classify.TextClassifier
	Coach          handlers.Coacher
	Importer       handlers.Importer
	Publisher      jobs.Publisher
	JobStore       jobs.JobStore
	Cache          handlers.InsightsCache
	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter builds the HTTP handler for the service.
func NewRouter(d Deps) *chi.Mux {
	var invalidator handlers.Invalidator
	if d.Cache != nil {
		invalidator = d.Cache
	}

	transactionsHandler := handlers.NewTransactionsHandler(d.Store, d.Classifier, d.Importer, d.Publisher, invalidator, d.Log)
	goalsHandler := handlers.NewGoalsHandler(d.Store, invalidator, d.Log)
	insightsHandler := handlers.NewInsightsHandler(d.Store, d.Coach, d.Cache, d.Log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", handlers.Root)
		r.Get("/health", handlers.Health)

		// Transactions
		r.Post("/transactions", transactionsHandler.CreateTransaction)
		r.Get("/transactions", transactionsHandler.ListTransactions)
		r.Post("/transactions/bulk", transactionsHandler.BulkUpload)
		r.Post("/transactions/import", transactionsHandler.EnqueueImport)
		r.Delete("/transactions/{id}", transactionsHandler.DeleteTransaction)

		// Goals
		r.Post("/goals", goalsHandler.CreateGoal)
		r.Get("/goals", goalsHandler.ListGoals)
		r.Patch("/goals/{id}", goalsHandler.UpdateGoal)
		r.Delete("/goals/{id}", goalsHandler.DeleteGoal)

		// Insights
		r.Get("/insights", insightsHandler.GetInsights)

		// Jobs
		if d.JobStore != nil {
			jobsHandler := handlers.NewJobsHandler(d.JobStore, d.Log)
			r.Get("/jobs", jobsHandler.ListJobs)
			r.Get("/jobs/{id}", jobsHandler.GetJob)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
