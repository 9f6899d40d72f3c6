// Package integrations holds shared pieces of the remote-provider clients
// (embedding, vector index, language model). The clients themselves live in
// the subpackages nomic, pinecone and groq.
package integrations

import "fmt"

// ProviderError reports a non-success response from a remote provider. The
// status and body are logged server-side; they are never shown to end users.
type ProviderError struct {
	Provider string // "nomic", "pinecone" or "groq"
	Status   int    // HTTP status code returned by the provider
	Body     string // response body, for logs
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
}
