package models

// RetrievedChunk represents one nearest-neighbor match returned by the vector
// index. Chunks arrive ordered by descending similarity score.
type RetrievedChunk struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`  // similarity in [0,1], higher = more relevant
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Title   string  `json:"title"`
}

// VectorIndexStatus is a short-lived snapshot of the remote index's state,
// used to fail fast before any embedding or retrieval work is attempted.
type VectorIndexStatus struct {
	Exists      bool `json:"exists"`
	HasVectors  bool `json:"hasVectors"`
	VectorCount int  `json:"vectorCount"`
}

// VectorRecord is one embedded chunk to upsert into the vector index. Only the
// offline ingestion tooling produces these; the query-time pipeline never does.
type VectorRecord struct {
	ID       string        `json:"id"`
	Values   []float32     `json:"values"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata is the metadata stored alongside each vector.
type ChunkMetadata struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Title   string `json:"title"`
}
