package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finwise/internal/api/middleware"
	"github.com/dvloznov/finwise/internal/classify"
	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/gcsuploader"
	"github.com/dvloznov/finwise/internal/jobs"
	"github.com/dvloznov/finwise/internal/pipeline"
	"github.com/dvloznov/finwise/internal/repository"
)

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	repo       repository.TransactionRepository
	classifier classify.TextClassifier
	importer   Importer
	publisher  jobs.Publisher
	cache      Invalidator
	log        zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler. publisher may
// be nil, which disables asynchronous imports.
func NewTransactionsHandler(
	repo repository.TransactionRepository,
	classifier classify.TextClassifier,
	importer Importer,
	publisher jobs.Publisher,
	cache Invalidator,
	log zerolog.Logger,
) *TransactionsHandler {
	return &TransactionsHandler{
		repo:       repo,
		classifier: classifier,
		importer:   importer,
		publisher:  publisher,
		cache:      cache,
		log:        log,
	}
}

type createTransactionRequest struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txType, ok := domain.ParseTransactionType(req.Type)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "type must be income or expense")
		return
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		middleware.WriteError(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	date, ok := pipeline.ParseDate(strings.TrimSpace(req.Date))
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date format")
		return
	}

	txn := &domain.TransactionRecord{
		UserID:      domain.DefaultUserID,
		Date:        date,
		Amount:      req.Amount,
		Type:        txType,
		Description: description,
	}
	h.classifier.Classify(ctx, description, req.Amount, txType).Apply(txn)

	if err := h.repo.InsertTransaction(ctx, txn); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}
	invalidate(h.cache, txn.UserID)

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Transaction created successfully",
		"transaction": txn,
	})
}

// ListTransactions handles GET /api/transactions?limit=&skip=
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", repository.DefaultListLimit)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	skip, ok := queryInt(r, "skip", 0)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid skip")
		return
	}

	transactions, err := h.repo.ListTransactions(r.Context(), domain.DefaultUserID, limit, skip)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []domain.TransactionRecord{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.repo.DeleteTransaction(r.Context(), domain.DefaultUserID, id)
	if errors.Is(err, repository.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	invalidate(h.cache, domain.DefaultUserID)

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

// BulkUpload handles POST /api/transactions/bulk with a multipart "file".
func (h *TransactionsHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	filename, data, status, msg := readUploadedCSV(w, r)
	if status != 0 {
		middleware.WriteError(w, status, msg)
		return
	}

	result, err := h.importer.ImportCSV(r.Context(), domain.DefaultUserID, filename, data)
	if err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("Bulk upload failed")
		middleware.WriteError(w, http.StatusBadRequest, "Could not read CSV file")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// EnqueueImport handles POST /api/transactions/import. The body is either
// JSON {"gcs_uri": "gs://..."}, a multipart "file", or raw CSV.
func (h *TransactionsHandler) EnqueueImport(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Background imports are disabled")
		return
	}

	job := &jobs.ImportJob{UserID: domain.DefaultUserID}
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "application/json"):
		var req struct {
			GCSURI string `json:"gcs_uri"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if _, _, err := gcsuploader.ParseGCSURI(req.GCSURI); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "gcs_uri must look like gs://bucket/path/file.csv")
			return
		}
		job.GCSURI = req.GCSURI
		job.Filename = gcsuploader.ExtractFilenameFromGCSURI(req.GCSURI)

	case strings.HasPrefix(contentType, "multipart/form-data"):
		filename, data, status, msg := readUploadedCSV(w, r)
		if status != 0 {
			middleware.WriteError(w, status, msg)
			return
		}
		job.Filename = filename
		job.Data = data

	default:
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
		if err != nil {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "CSV body too large")
			return
		}
		if len(data) == 0 {
			middleware.WriteError(w, http.StatusBadRequest, "CSV body is empty")
			return
		}
		job.Filename = "upload.csv"
		job.Data = data
	}

	if err := h.publisher.PublishImport(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("filename", job.Filename).Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(jobs.JobStatusPending),
	})
}

// readUploadedCSV pulls the multipart "file" field. A non-zero status means
// the request was rejected with msg.
func readUploadedCSV(w http.ResponseWriter, r *http.Request) (filename string, data []byte, status int, msg string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, http.StatusBadRequest, "Expected a multipart upload with a file field"
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, http.StatusBadRequest, "file is required"
	}
	defer file.Close()

	filename = filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return "", nil, http.StatusBadRequest, "Only CSV files are allowed"
	}

	data, err = io.ReadAll(file)
	if err != nil {
		return "", nil, http.StatusBadRequest, "Could not read uploaded file"
	}
	return filename, data, 0, ""
}
