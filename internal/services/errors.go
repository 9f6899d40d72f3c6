package services

import (
	"errors"
	"fmt"
	"time"
)

// Terminal pipeline outcomes. Every failure in the RAG pipeline maps to
// exactly one of these, so the HTTP layer always produces one of a small fixed
// set of user-safe messages. Raw provider errors are logged server-side only.
var (
	// ErrIndexUnavailable means the vector index does not exist or holds no
	// vectors yet; the system is not configured rather than broken.
	ErrIndexUnavailable = errors.New("vector index is not available")

	// ErrNoUserMessage means the supplied history contains no user message to
	// answer.
	ErrNoUserMessage = errors.New("no user message found")

	// ErrQueryTooShort means the sanitized query fell below the minimum length.
	ErrQueryTooShort = errors.New("query is too short")

	// ErrTimeout means a retrieval or generation deadline fired; the user may
	// retry. Distinct from ErrProcessing so the caller can say so.
	ErrTimeout = errors.New("request timed out")

	// ErrProcessing covers every other remote failure. Deliberately opaque.
	ErrProcessing = errors.New("error processing request")
)

// RateLimitError is a normal control-flow outcome, not a provider failure: the
// client has used up its message allowance for the current window.
type RateLimitError struct {
	Wait time.Duration // time remaining until the window resets
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets in %s", e.Wait.Round(time.Second))
}
