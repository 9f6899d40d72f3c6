package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"portfolio-rag-backend/internal/models"
)

func TestAssembleContext_Empty(t *testing.T) {
	assert.Empty(t, AssembleContext(nil))
	assert.Empty(t, AssembleContext([]models.RetrievedChunk{}))
}

func TestAssembleContext_PreservesOrder(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "A", Content: "first chunk"},
		{Title: "B", Content: "second chunk"},
	}

	ctx := AssembleContext(chunks)

	posA := strings.Index(ctx, "first chunk")
	posB := strings.Index(ctx, "second chunk")
	assert.GreaterOrEqual(t, posA, 0)
	assert.GreaterOrEqual(t, posB, 0)
	assert.Less(t, posA, posB, "chunk A must appear before chunk B")
}

func TestAssembleContext_ProvenanceTags(t *testing.T) {
	tests := []struct {
		name  string
		chunk models.RetrievedChunk
		want  string
	}{
		{
			name:  "title preferred",
			chunk: models.RetrievedChunk{Title: "Doc1", Source: "doc1.md", Content: "text"},
			want:  "[From: Doc1]\ntext",
		},
		{
			name:  "falls back to source",
			chunk: models.RetrievedChunk{Source: "doc1.md", Content: "text"},
			want:  "[From: doc1.md]\ntext",
		},
		{
			name:  "unknown source",
			chunk: models.RetrievedChunk{Content: "text"},
			want:  "[From: Unknown Source]\ntext",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssembleContext([]models.RetrievedChunk{tt.chunk}))
		})
	}
}

func TestAssembleContext_ChunkFormat(t *testing.T) {
	chunks := []models.RetrievedChunk{
		{Title: "Doc1", Content: "RAG combines retrieval and generation.", Score: 0.9},
	}

	ctx := AssembleContext(chunks)

	assert.Equal(t, "[From: Doc1]\nRAG combines retrieval and generation.", ctx)
}
