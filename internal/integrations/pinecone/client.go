// Package pinecone implements the vector index gateway on the official
// Pinecone Go SDK: existence checks against the control plane, top-K
// similarity queries and stats against the index data plane, and upserts for
// the offline ingestion tooling.
package pinecone

import (
	"context"
	"errors"
	"fmt"
	"time"

	pc "github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"portfolio-rag-backend/internal/models"
)

// ErrQueryTimeout indicates the client-side query deadline fired before the
// index responded. Distinct from other provider failures so callers can tell
// the user a retry might succeed.
var ErrQueryTimeout = errors.New("vector index query timed out")

// controlPlane is the slice of the SDK's account-level client used here.
// Satisfied by *pinecone.Client; faked in tests.
type controlPlane interface {
	ListIndexes(ctx context.Context) ([]*pc.Index, error)
}

// dataPlane is the slice of the SDK's index connection used here. Satisfied by
// *pinecone.IndexConnection; faked in tests.
type dataPlane interface {
	QueryByVectorValues(ctx context.Context, req *pc.QueryByVectorValuesRequest) (*pc.QueryVectorsResponse, error)
	DescribeIndexStats(ctx context.Context) (*pc.DescribeIndexStatsResponse, error)
	UpsertVectors(ctx context.Context, vectors []*pc.Vector) (uint32, error)
}

// Client is the gateway to one Pinecone index.
type Client struct {
	control      controlPlane
	data         dataPlane
	indexName    string
	queryTimeout time.Duration
}

// NewClient creates a gateway for the named index. indexHost is the index's
// data-plane endpoint; queryTimeout bounds each similarity query from the
// client side, independent of whatever timeout the provider applies.
func NewClient(apiKey, indexName, indexHost string, queryTimeout time.Duration) (*Client, error) {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}

	sdkClient, err := pc.NewClient(pc.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating Pinecone client: %w", err)
	}
	conn, err := sdkClient.Index(pc.NewIndexConnParams{Host: indexHost})
	if err != nil {
		return nil, fmt.Errorf("connecting to index host %s: %w", indexHost, err)
	}

	return &Client{
		control:      sdkClient,
		data:         conn,
		indexName:    indexName,
		queryTimeout: queryTimeout,
	}, nil
}

// IndexName returns the configured index name.
func (c *Client) IndexName() string { return c.indexName }

// ListIndexes returns the names of all indexes visible to the API key.
func (c *Client) ListIndexes(ctx context.Context) ([]string, error) {
	indexes, err := c.control.ListIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing indexes: %w", err)
	}
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		names = append(names, idx.Name)
	}
	return names, nil
}

// IndexExists reports whether the configured index is present. It is a cheap
// existence probe used to short-circuit with a clear "not configured" response
// before any embedding work.
func (c *Client) IndexExists(ctx context.Context) (bool, error) {
	names, err := c.ListIndexes(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == c.indexName {
			return true, nil
		}
	}
	return false, nil
}

// Query performs a top-K similarity search. The call is bounded by the
// client-side query timeout; if the deadline fires first, at any phase of the
// call, the result is ErrQueryTimeout and the in-flight request is abandoned.
func (c *Client) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]models.RetrievedChunk, error) {
	queryCtx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	resp, err := c.data.QueryByVectorValues(queryCtx, &pc.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: includeMetadata,
	})
	if err != nil {
		if queryCtx.Err() != nil && ctx.Err() == nil {
			return nil, ErrQueryTimeout
		}
		return nil, fmt.Errorf("querying index: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		chunk := models.RetrievedChunk{
			ID:      m.Vector.Id,
			Score:   float64(m.Score),
			Content: metadataString(m.Vector.Metadata, "content"),
			Source:  metadataString(m.Vector.Metadata, "source"),
			Title:   metadataString(m.Vector.Metadata, "title"),
		}
		if chunk.Source == "" {
			chunk.Source = "Unknown"
		}
		if chunk.Title == "" {
			chunk.Title = "Untitled"
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// DescribeStats fetches the index's vector count alongside an existence check.
func (c *Client) DescribeStats(ctx context.Context) (models.VectorIndexStatus, error) {
	exists, err := c.IndexExists(ctx)
	if err != nil {
		return models.VectorIndexStatus{}, err
	}
	if !exists {
		return models.VectorIndexStatus{Exists: false, HasVectors: false, VectorCount: 0}, nil
	}

	stats, err := c.data.DescribeIndexStats(ctx)
	if err != nil {
		return models.VectorIndexStatus{}, fmt.Errorf("describing index stats: %w", err)
	}
	count := int(stats.TotalVectorCount)
	return models.VectorIndexStatus{
		Exists:      true,
		HasVectors:  count > 0,
		VectorCount: count,
	}, nil
}

// Upsert writes embedded records into the index. Only the offline ingestion
// tooling calls this; the query-time pipeline never does.
func (c *Client) Upsert(ctx context.Context, records []models.VectorRecord) (int, error) {
	if len(records) == 0 {
		return 0, errors.New("no records to upsert")
	}

	vectors := make([]*pc.Vector, 0, len(records))
	for _, r := range records {
		metadata, err := structpb.NewStruct(map[string]interface{}{
			"content": r.Metadata.Content,
			"source":  r.Metadata.Source,
			"title":   r.Metadata.Title,
		})
		if err != nil {
			return 0, fmt.Errorf("building metadata for record %s: %w", r.ID, err)
		}
		values := r.Values
		vectors = append(vectors, &pc.Vector{
			Id:       r.ID,
			Values:   &values,
			Metadata: metadata,
		})
	}

	count, err := c.data.UpsertVectors(ctx, vectors)
	if err != nil {
		return 0, fmt.Errorf("upserting %d records: %w", len(records), err)
	}
	return int(count), nil
}

// metadataString reads one string field from a match's metadata, tolerating
// vectors stored without it.
func metadataString(metadata *pc.Metadata, key string) string {
	if metadata == nil {
		return ""
	}
	if v, ok := metadata.Fields[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
