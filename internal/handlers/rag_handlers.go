package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"portfolio-rag-backend/internal/config"
	"portfolio-rag-backend/internal/models"
	"portfolio-rag-backend/internal/services"
)

// Fixed user-safe messages for terminal pipeline outcomes. Raw provider
// errors are logged server-side and never included here.
const (
	msgNotConfigured = "The RAG system doesn't have any document embeddings. Please contact the administrator to run the embedding generation script."
	msgNoUserMessage = "No user message found."
	msgTimedOut      = "Request timed out. Please try again."
	msgProcessing    = "An error occurred while processing your request."
	msgIndexMissing  = "Required resources not available."
)

// DocumentUpserter writes embedded records into the vector index. Satisfied by
// the Pinecone gateway; only the admin ingestion endpoint uses it.
type DocumentUpserter interface {
	Upsert(ctx context.Context, records []models.VectorRecord) (int, error)
}

// RAGHandlers handles the HTTP surface of the RAG pipeline.
type RAGHandlers struct {
	ragService *services.RAGService
	upserter   DocumentUpserter
	cfg        *config.Config
}

// NewRAGHandlers creates a new RAGHandlers instance.
func NewRAGHandlers(ragService *services.RAGService, upserter DocumentUpserter, cfg *config.Config) *RAGHandlers {
	return &RAGHandlers{
		ragService: ragService,
		upserter:   upserter,
		cfg:        cfg,
	}
}

// HandleVectorStatus reports whether the vector index exists and holds
// vectors. Served from a short-lived cache; cheap enough for the UI to poll.
func (h *RAGHandlers) HandleVectorStatus(w http.ResponseWriter, r *http.Request) {
	status := h.ragService.CheckVectorStatus(r.Context())
	RespondWithJSON(w, http.StatusOK, models.StatusResponse{
		Exists:      status.Exists,
		HasVectors:  status.HasVectors,
		VectorCount: status.VectorCount,
	})
}

// HandleQuery performs retrieval only: embed the query, search the index,
// return the ranked matches. Used by the playground's document-search view.
func (h *RAGHandlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Query == "" {
		RespondWithError(w, http.StatusBadRequest, "Query must be a non-empty string")
		return
	}

	matches, err := h.ragService.Retrieve(r.Context(), req.Query)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQueryTooShort):
			RespondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("Query must be at least %d characters long", h.cfg.MinQueryLength))
		case errors.Is(err, services.ErrIndexUnavailable):
			RespondWithError(w, http.StatusNotFound, msgIndexMissing)
		case errors.Is(err, services.ErrTimeout):
			RespondWithError(w, http.StatusGatewayTimeout, msgTimedOut)
		default:
			RespondWithError(w, http.StatusInternalServerError, msgProcessing)
		}
		return
	}

	RespondWithJSON(w, http.StatusOK, models.QueryResponse{Success: true, Matches: matches})
}

// HandleGenerate runs the end-to-end pipeline: validate the history, admit
// through the rate limiter, retrieve context and generate a grounded answer.
func (h *RAGHandlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	clientKey := ClientKeyFromRequest(r)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.ragService.MessageLimit()))

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	// Validation is resolved here, before any remote call: history length,
	// role shape, and per-message truncation.
	history, err := models.SanitizeHistory(req.Messages, h.cfg.MaxHistoryMessages, h.cfg.MaxMessageLength)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	content, err := h.ragService.GenerateResponse(r.Context(), clientKey, history)
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(h.ragService.MessagesRemaining(clientKey)))
	if err != nil {
		var rateErr *services.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			w.Header().Set("Retry-After", strconv.Itoa(int(rateErr.Wait.Seconds())))
			RespondWithError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Message limit reached. Try again in %s.", rateErr.Wait.Round(time.Minute)))
		case errors.Is(err, services.ErrIndexUnavailable):
			RespondWithError(w, http.StatusServiceUnavailable, msgNotConfigured)
		case errors.Is(err, services.ErrNoUserMessage):
			RespondWithError(w, http.StatusBadRequest, msgNoUserMessage)
		case errors.Is(err, services.ErrQueryTooShort):
			RespondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("Query must be at least %d characters long", h.cfg.MinQueryLength))
		case errors.Is(err, services.ErrTimeout):
			RespondWithError(w, http.StatusGatewayTimeout, msgTimedOut)
		default:
			RespondWithError(w, http.StatusInternalServerError, msgProcessing)
		}
		return
	}

	duration := time.Since(startTime)
	w.Header().Set("X-Response-Time", duration.String())
	RespondWithJSON(w, http.StatusOK, models.GenerateResponse{
		Content:        content,
		Success:        true,
		ResponseTimeMs: duration.Milliseconds(),
	})
}

// HandleRateLimitStatus reports the caller's remaining allowance and the time
// until their window resets.
func (h *RAGHandlers) HandleRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	clientKey := ClientKeyFromRequest(r)
	RespondWithJSON(w, http.StatusOK, models.RateLimitResponse{
		Limit:          h.ragService.MessageLimit(),
		Remaining:      h.ragService.MessagesRemaining(clientKey),
		ResetInSeconds: int64(h.ragService.TimeUntilReset(clientKey).Seconds()),
	})
}

// HandleUpsertDocuments accepts embedded records from the offline ingestion
// tooling and writes them into the vector index. Admin-token protected; never
// called by the query-time pipeline.
func (h *RAGHandlers) HandleUpsertDocuments(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if len(req.Records) == 0 {
		RespondWithError(w, http.StatusBadRequest, "records array is required and must not be empty")
		return
	}

	for i := range req.Records {
		if len(req.Records[i].Values) == 0 {
			RespondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("record at index %d has no embedding values", i))
			return
		}
		if req.Records[i].ID == "" {
			req.Records[i].ID = uuid.NewString()
		}
	}

	count, err := h.upserter.Upsert(r.Context(), req.Records)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to upsert records into the vector index.")
		return
	}

	RespondWithJSON(w, http.StatusOK, models.UpsertResponse{UpsertedCount: count})
}
