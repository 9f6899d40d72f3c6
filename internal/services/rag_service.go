package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"portfolio-rag-backend/internal/config"
	"portfolio-rag-backend/internal/integrations/groq"
	"portfolio-rag-backend/internal/integrations/pinecone"
	"portfolio-rag-backend/internal/models"
	"portfolio-rag-backend/internal/rag"
	"portfolio-rag-backend/internal/ratelimit"
)

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex performs top-K similarity search against the vector store.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]models.RetrievedChunk, error)
}

// StatusProvider reports whether the vector index exists and holds vectors.
type StatusProvider interface {
	Status(ctx context.Context) (models.VectorIndexStatus, error)
}

// Generator invokes the language model with an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, messages []models.Message) (string, error)
}

// RAGService sequences the retrieval-augmented generation pipeline: rate
// limiting, index status check, query sanitization, embedding, similarity
// search, context assembly, prompt construction and generation. Each query
// runs the stages strictly in order; there are no retries across stages.
type RAGService struct {
	embedder Embedder
	index    VectorIndex
	status   StatusProvider
	llm      Generator
	limiter  *ratelimit.Limiter
	persona  rag.Persona
	cfg      *config.Config
}

// NewRAGService creates a RAGService with injected collaborators.
func NewRAGService(
	embedder Embedder,
	index VectorIndex,
	status StatusProvider,
	llm Generator,
	limiter *ratelimit.Limiter,
	persona rag.Persona,
	cfg *config.Config,
) *RAGService {
	return &RAGService{
		embedder: embedder,
		index:    index,
		status:   status,
		llm:      llm,
		limiter:  limiter,
		persona:  persona,
		cfg:      cfg,
	}
}

// CheckVectorStatus returns the (cached) status of the vector index for the
// UI's status probe. Errors fall open to "assume usable" so a transient
// control-plane hiccup doesn't grey out the chat widget; the query pipeline
// itself never relies on this optimistic default.
func (s *RAGService) CheckVectorStatus(ctx context.Context) models.VectorIndexStatus {
	status, err := s.status.Status(ctx)
	if err != nil {
		log.Printf("WARN: vector status check failed, assuming index usable: %v", err)
		return models.VectorIndexStatus{Exists: true, HasVectors: true, VectorCount: 0}
	}
	return status
}

// SanitizeQuery trims the query and caps its length. Queries below the
// minimum length are rejected before any remote call is made.
func (s *RAGService) SanitizeQuery(query string) (string, error) {
	sanitized := strings.TrimSpace(query)
	if runes := []rune(sanitized); len(runes) > s.cfg.MaxQueryLength {
		sanitized = string(runes[:s.cfg.MaxQueryLength])
	}
	if len([]rune(sanitized)) < s.cfg.MinQueryLength {
		return "", fmt.Errorf("%w: must be at least %d characters", ErrQueryTooShort, s.cfg.MinQueryLength)
	}
	return sanitized, nil
}

// ensureIndexReady is the single status gate for the query pipeline. Unlike
// the display probe it fails closed: a status error or an absent/empty index
// stops the pipeline before any embedding work.
func (s *RAGService) ensureIndexReady(ctx context.Context) error {
	status, err := s.status.Status(ctx)
	if err != nil {
		log.Printf("ERROR: vector status check failed: %v", err)
		return fmt.Errorf("%w: vector status check failed", ErrProcessing)
	}
	if !status.Exists || !status.HasVectors {
		return ErrIndexUnavailable
	}
	return nil
}

// Retrieve checks the index, embeds the sanitized query and performs the
// top-K similarity search. Unlike the status probe, failures here always
// propagate so the caller can distinguish "retrieval broke" from "no relevant
// documents".
func (s *RAGService) Retrieve(ctx context.Context, query string) ([]models.RetrievedChunk, error) {
	if err := s.ensureIndexReady(ctx); err != nil {
		return nil, err
	}
	return s.retrieve(ctx, query)
}

// retrieve runs the sanitize, embed and search stages. The caller has already
// passed the status gate.
func (s *RAGService) retrieve(ctx context.Context, query string) ([]models.RetrievedChunk, error) {
	sanitized, err := s.SanitizeQuery(query)
	if err != nil {
		return nil, err
	}

	vector, err := s.embedder.EmbedQuery(ctx, sanitized)
	if err != nil {
		log.Printf("ERROR: embedding query failed: %v", err)
		return nil, fmt.Errorf("%w: embedding failed", ErrProcessing)
	}

	chunks, err := s.index.Query(ctx, vector, s.cfg.TopK, true)
	if err != nil {
		if errors.Is(err, pinecone.ErrQueryTimeout) {
			return nil, fmt.Errorf("%w: similarity search", ErrTimeout)
		}
		log.Printf("ERROR: similarity search failed: %v", err)
		return nil, fmt.Errorf("%w: similarity search failed", ErrProcessing)
	}
	return chunks, nil
}

// GenerateResponse runs the end-to-end pipeline for one user query. history
// must already be validated and truncated at the API boundary. The returned
// error, when non-nil, is always one of the terminal outcomes in errors.go
// (or a RateLimitError); the text result is only valid when the error is nil.
func (s *RAGService) GenerateResponse(ctx context.Context, clientKey string, history []models.Message) (string, error) {
	// Cheapest failure paths first: no remote call is attempted for a
	// rate-limited client or an empty history.
	if ok, wait := s.limiter.Admit(clientKey); !ok {
		return "", &RateLimitError{Wait: wait}
	}

	// One status gate for the whole pipeline; retrieve below does not
	// re-check.
	if err := s.ensureIndexReady(ctx); err != nil {
		return "", err
	}

	lastUser, ok := models.LastUserMessage(history)
	if !ok {
		return "", ErrNoUserMessage
	}

	chunks, err := s.retrieve(ctx, lastUser.Content)
	if err != nil {
		return "", err
	}

	contextBlock := rag.AssembleContext(chunks)
	prompt := rag.BuildPrompt(s.persona, contextBlock, history)

	start := time.Now()
	text, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, groq.ErrGenerationTimeout) {
			return "", fmt.Errorf("%w: generation", ErrTimeout)
		}
		log.Printf("ERROR: generation failed: %v", err)
		return "", fmt.Errorf("%w: generation failed", ErrProcessing)
	}
	log.Printf("LLM response generated in %s", time.Since(start).Round(time.Millisecond))

	return text, nil
}

// MessagesRemaining reports how many queries the client may still issue in
// the current rate-limit window.
func (s *RAGService) MessagesRemaining(clientKey string) int {
	return s.limiter.Remaining(clientKey)
}

// TimeUntilReset reports how long until the client's rate-limit window resets.
func (s *RAGService) TimeUntilReset(clientKey string) time.Duration {
	return s.limiter.TimeUntilReset(clientKey)
}

// MessageLimit returns the per-window message allowance.
func (s *RAGService) MessageLimit() int {
	return s.limiter.Limit()
}
