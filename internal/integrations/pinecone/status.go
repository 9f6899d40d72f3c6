package pinecone

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"portfolio-rag-backend/internal/models"
)

// StatusCache wraps the gateway's stats probe with a short TTL so repeated
// status checks from the UI don't hammer the remote service. Concurrent cache
// misses are collapsed into a single remote probe.
//
// The cache stores only successful probes; errors are returned to the caller
// and the next access probes again.
type StatusCache struct {
	client *Client
	ttl    time.Duration

	mu        sync.Mutex
	cached    models.VectorIndexStatus
	fetchedAt time.Time

	group singleflight.Group
	now   func() time.Time // injectable for tests
}

// NewStatusCache creates a cache over the client's DescribeStats with the
// given TTL.
func NewStatusCache(client *Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatusCache{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Status returns the index status, served from cache when fresh.
func (s *StatusCache) Status(ctx context.Context) (models.VectorIndexStatus, error) {
	s.mu.Lock()
	if !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < s.ttl {
		status := s.cached
		s.mu.Unlock()
		return status, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("status", func() (interface{}, error) {
		status, err := s.client.DescribeStats(ctx)
		if err != nil {
			return models.VectorIndexStatus{}, err
		}
		s.mu.Lock()
		s.cached = status
		s.fetchedAt = s.now()
		s.mu.Unlock()
		return status, nil
	})
	if err != nil {
		return models.VectorIndexStatus{}, err
	}
	return v.(models.VectorIndexStatus), nil
}
