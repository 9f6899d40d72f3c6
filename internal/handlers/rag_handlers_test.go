package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-rag-backend/internal/config"
	"portfolio-rag-backend/internal/models"
	"portfolio-rag-backend/internal/rag"
	"portfolio-rag-backend/internal/ratelimit"
	"portfolio-rag-backend/internal/services"
)

// --- collaborator fakes ---

type fakeEmbedder struct{ calls int }

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2}, nil
}

type fakeIndex struct {
	calls  int
	chunks []models.RetrievedChunk
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]models.RetrievedChunk, error) {
	f.calls++
	return f.chunks, nil
}

type fakeStatus struct{ status models.VectorIndexStatus }

func (f *fakeStatus) Status(ctx context.Context) (models.VectorIndexStatus, error) {
	return f.status, nil
}

type fakeLLM struct {
	calls   int
	gotMsgs []models.Message
}

func (f *fakeLLM) Generate(ctx context.Context, messages []models.Message) (string, error) {
	f.calls++
	f.gotMsgs = messages
	return "generated answer", nil
}

type fakeUpserter struct {
	gotRecords []models.VectorRecord
	err        error
}

func (f *fakeUpserter) Upsert(ctx context.Context, records []models.VectorRecord) (int, error) {
	f.gotRecords = records
	if f.err != nil {
		return 0, f.err
	}
	return len(records), nil
}

// --- fixtures ---

type fixture struct {
	handlers *RAGHandlers
	embedder *fakeEmbedder
	index    *fakeIndex
	llm      *fakeLLM
	upserter *fakeUpserter
}

func newFixture(t *testing.T, limiterMax int, status models.VectorIndexStatus) *fixture {
	t.Helper()
	cfg := &config.Config{
		TopK:                 4,
		MaxHistoryMessages:   20,
		MaxMessageLength:     4000,
		MaxQueryLength:       1000,
		MinQueryLength:       3,
		RateLimitMaxMessages: limiterMax,
		RateLimitWindow:      5 * time.Hour,
	}
	embedder := &fakeEmbedder{}
	index := &fakeIndex{chunks: []models.RetrievedChunk{
		{ID: "c1", Score: 0.9, Title: "Doc1", Content: "RAG combines retrieval and generation."},
	}}
	llm := &fakeLLM{}
	upserter := &fakeUpserter{}
	persona := rag.Persona{Name: "Test", SystemMessage: "You are the portfolio assistant."}
	limiter := ratelimit.NewLimiter(limiterMax, cfg.RateLimitWindow)
	svc := services.NewRAGService(embedder, index, &fakeStatus{status: status}, llm, limiter, persona, cfg)

	return &fixture{
		handlers: NewRAGHandlers(svc, upserter, cfg),
		embedder: embedder,
		index:    index,
		llm:      llm,
		upserter: upserter,
	}
}

func readyIndex() models.VectorIndexStatus {
	return models.VectorIndexStatus{Exists: true, HasVectors: true, VectorCount: 15}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func generateBody(contents ...string) models.GenerateRequest {
	msgs := make([]models.Message, 0, len(contents))
	for _, c := range contents {
		msgs = append(msgs, models.Message{Role: models.RoleUser, Content: c})
	}
	return models.GenerateRequest{Messages: msgs}
}

// --- generate endpoint ---

func TestHandleGenerate_Success(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	rec := postJSON(t, f.handlers.HandleGenerate, "/v1/rag/generate", generateBody("What is RAG?"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "generated answer", resp.Content)
	assert.Equal(t, "9", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestHandleGenerate_TooManyMessages(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	contents := make([]string, 21)
	for i := range contents {
		contents[i] = fmt.Sprintf("message %d", i)
	}
	rec := postJSON(t, f.handlers.HandleGenerate, "/v1/rag/generate", generateBody(contents...))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.embedder.calls, "oversized history must be rejected before any embedding call")
	assert.Zero(t, f.llm.calls, "oversized history must be rejected before any generation call")
}

func TestHandleGenerate_InvalidRole(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	body := models.GenerateRequest{Messages: []models.Message{
		{Role: "robot", Content: "beep"},
	}}
	rec := postJSON(t, f.handlers.HandleGenerate, "/v1/rag/generate", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.llm.calls)
}

func TestHandleGenerate_TruncatesLongMessages(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	long := strings.Repeat("a", 5000)
	rec := postJSON(t, f.handlers.HandleGenerate, "/v1/rag/generate", generateBody(long))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, f.llm.gotMsgs)
	userMsg := f.llm.gotMsgs[len(f.llm.gotMsgs)-1]
	assert.Len(t, userMsg.Content, 4000, "content is truncated exactly to the maximum length")
}

func TestHandleGenerate_IndexNotConfigured(t *testing.T) {
	f := newFixture(t, 10, models.VectorIndexStatus{Exists: false})

	rec := postJSON(t, f.handlers.HandleGenerate, "/v1/rag/generate", generateBody("What is RAG?"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "doesn't have any document embeddings")
	assert.Zero(t, f.embedder.calls)
	assert.Zero(t, f.llm.calls)
}

func TestHandleGenerate_RateLimited(t *testing.T) {
	f := newFixture(t, 1, readyIndex())

	rec := postJSON(t, f.handlers.HandleGenerate, "/v1/rag/generate", generateBody("first"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, f.handlers.HandleGenerate, "/v1/rag/generate", generateBody("second"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, f.llm.calls, "denied request must not reach the model")
}

func TestHandleGenerate_InvalidJSON(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	req := httptest.NewRequest(http.MethodPost, "/v1/rag/generate", strings.NewReader("{not json"))
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	f.handlers.HandleGenerate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- query endpoint ---

func TestHandleQuery_Success(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	rec := postJSON(t, f.handlers.HandleQuery, "/v1/rag/query", models.QueryRequest{Query: "What is RAG?"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "Doc1", resp.Matches[0].Title)
}

func TestHandleQuery_EmptyQuery(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	rec := postJSON(t, f.handlers.HandleQuery, "/v1/rag/query", models.QueryRequest{Query: ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.embedder.calls)
}

func TestHandleQuery_TooShort(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	rec := postJSON(t, f.handlers.HandleQuery, "/v1/rag/query", models.QueryRequest{Query: " a "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 3 characters")
}

func TestHandleQuery_IndexMissing(t *testing.T) {
	f := newFixture(t, 10, models.VectorIndexStatus{Exists: false})

	rec := postJSON(t, f.handlers.HandleQuery, "/v1/rag/query", models.QueryRequest{Query: "What is RAG?"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- status and limit endpoints ---

func TestHandleVectorStatus(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	req := httptest.NewRequest(http.MethodGet, "/v1/rag/status", nil)
	rec := httptest.NewRecorder()
	f.handlers.HandleVectorStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Exists)
	assert.True(t, resp.HasVectors)
	assert.Equal(t, 15, resp.VectorCount)
}

func TestHandleRateLimitStatus(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	postJSON(t, f.handlers.HandleGenerate, "/v1/rag/generate", generateBody("What is RAG?"))

	req := httptest.NewRequest(http.MethodGet, "/v1/rag/limit", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	f.handlers.HandleRateLimitStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.RateLimitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, 9, resp.Remaining)
	assert.Positive(t, resp.ResetInSeconds)
}

// --- upsert endpoint ---

func TestHandleUpsertDocuments(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	body := models.UpsertRequest{Records: []models.VectorRecord{
		{ID: "about-chunk-0", Values: []float32{0.1, 0.2}, Metadata: models.ChunkMetadata{Content: "bio", Source: "about", Title: "About"}},
		{Values: []float32{0.3, 0.4}, Metadata: models.ChunkMetadata{Content: "projects", Source: "projects", Title: "Projects"}},
	}}
	rec := postJSON(t, f.handlers.HandleUpsertDocuments, "/v1/rag/documents", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.UpsertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.UpsertedCount)

	require.Len(t, f.upserter.gotRecords, 2)
	assert.Equal(t, "about-chunk-0", f.upserter.gotRecords[0].ID)
	assert.NotEmpty(t, f.upserter.gotRecords[1].ID, "records without an ID get one assigned")
}

func TestHandleUpsertDocuments_EmptyRecords(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	rec := postJSON(t, f.handlers.HandleUpsertDocuments, "/v1/rag/documents", models.UpsertRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpsertDocuments_MissingValues(t *testing.T) {
	f := newFixture(t, 10, readyIndex())

	body := models.UpsertRequest{Records: []models.VectorRecord{
		{ID: "bad", Metadata: models.ChunkMetadata{Content: "no vector"}},
	}}
	rec := postJSON(t, f.handlers.HandleUpsertDocuments, "/v1/rag/documents", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
