package rag

import (
	"fmt"
	"strings"

	"portfolio-rag-backend/internal/models"
)

// chunkSeparator joins retrieved chunks in the assembled context block.
const chunkSeparator = "\n\n"

// provenanceTag derives the source label shown before each chunk. Title wins
// over source; chunks with neither are attributed to "Unknown Source".
func provenanceTag(chunk models.RetrievedChunk) string {
	switch {
	case chunk.Title != "":
		return chunk.Title
	case chunk.Source != "":
		return chunk.Source
	default:
		return "Unknown Source"
	}
}

// AssembleContext formats retrieved chunks into a single context block for the
// prompt. Each chunk is prefixed with its provenance tag and chunks keep the
// order they arrived in; the gateway already returns them ranked by score. No
// deduplication or re-ranking happens here. An empty match list yields an
// empty block.
func AssembleContext(chunks []models.RetrievedChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, fmt.Sprintf("[From: %s]\n%s", provenanceTag(chunk), chunk.Content))
	}
	return strings.Join(parts, chunkSeparator)
}
