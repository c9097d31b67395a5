// Package retrieve is the only place downstream components read chunk
// metadata out of the vector index.
package retrieve

import (
	"context"
	"errors"
	"fmt"

	"legalresearch-engine/index"
	"legalresearch-engine/models"
)

var ErrIndexNotReady = errors.New("retrieve: index not ready")

// Embedder is the capability the Retriever needs to turn query text
// into a vector, satisfied by llmclient.Client. Accepting a narrow
// interface here keeps this package from importing a specific provider
// by name.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Retriever embeds a query with the same embedding function used at
// ingest time and returns top-k hits from the Vector Index.
type Retriever struct {
	idx      *index.Index
	embedder Embedder
}

func New(idx *index.Index, embedder Embedder) *Retriever {
	return &Retriever{idx: idx, embedder: embedder}
}

// Retrieve embeds query_text and returns the top-k hits.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, k int) ([]models.RetrievalHit, error) {
	if r.idx == nil {
		return nil, ErrIndexNotReady
	}

	vec, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("retrieve: embed query: %w", err)
	}

	scored, err := r.idx.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: search: %w", err)
	}

	hits := make([]models.RetrievalHit, len(scored))
	for i, s := range scored {
		hits[i] = models.RetrievalHit{Chunk: s.Chunk, Distance: s.Distance, Query: queryText}
	}
	return hits, nil
}

// RetrieveWithScores is an alias for Retrieve that makes explicit, at
// call sites, that raw distances are consumed rather than discarded.
// The contract itself is identical, since Retrieve already carries
// Distance on every hit.
func (r *Retriever) RetrieveWithScores(ctx context.Context, queryText string, k int) ([]models.RetrievalHit, error) {
	return r.Retrieve(ctx, queryText, k)
}
