package models

// --- Request Structs ---

// GenerateRequest defines the expected body for the generate endpoint.
type GenerateRequest struct {
	Messages []Message `json:"messages"`
}

// QueryRequest defines the expected body for the retrieval-only query endpoint.
type QueryRequest struct {
	Query string `json:"query"`
}

// UpsertRequest defines the body for the admin document-upsert endpoint, used
// by the offline ingestion tooling.
type UpsertRequest struct {
	Records []VectorRecord `json:"records"`
}

// --- Response Structs ---

// GenerateResponse defines the response body for a successful generation.
type GenerateResponse struct {
	Content        string `json:"content"`
	Success        bool   `json:"success"`
	ResponseTimeMs int64  `json:"responseTime"`
}

// QueryResponse defines the response body for the retrieval-only query endpoint.
type QueryResponse struct {
	Success bool             `json:"success"`
	Matches []RetrievedChunk `json:"matches"`
}

// StatusResponse defines the response body for the vector status probe.
type StatusResponse struct {
	Exists      bool `json:"exists"`
	HasVectors  bool `json:"hasVectors"`
	VectorCount int  `json:"vectorCount"`
}

// RateLimitResponse defines the rate-limit introspection response.
type RateLimitResponse struct {
	Limit          int   `json:"limit"`
	Remaining      int   `json:"remaining"`
	ResetInSeconds int64 `json:"resetInSeconds"`
}

// UpsertResponse reports how many records the index accepted.
type UpsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}
