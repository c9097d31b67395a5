// Package similarity layers three retrieval modes over the Retriever,
// deduplicating and grouping hits into case bundles.
package similarity

import (
	"context"
	"sort"

	"legalresearch-engine/models"
	"legalresearch-engine/retrieve"
)

// Engine holds the Retriever, never the reverse, to avoid a dependency
// cycle between the two packages.
type Engine struct {
	retriever *retrieve.Retriever
}

func New(retriever *retrieve.Retriever) *Engine {
	return &Engine{retriever: retriever}
}

// lessHit orders hits by ascending distance, then ascending
// chunk_ordinal, then case key, giving a deterministic tie-break.
func lessHit(a, b models.RetrievalHit) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	if a.Chunk.ChunkOrdinal != b.Chunk.ChunkOrdinal {
		return a.Chunk.ChunkOrdinal < b.Chunk.ChunkOrdinal
	}
	return a.Chunk.CaseKey() < b.Chunk.CaseKey()
}

// DedupedCases is Mode A: up to k unique cases, kept by lowest
// distance per case, in ascending-distance order.
func (e *Engine) DedupedCases(ctx context.Context, query string, k int) ([]models.RetrievalHit, error) {
	hits, err := e.retriever.Retrieve(ctx, query, k*3)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(hits, func(i, j int) bool { return lessHit(hits[i], hits[j]) })

	bestByCase := make(map[string]models.RetrievalHit)
	order := make([]string, 0, k)
	for _, h := range hits {
		key := h.Chunk.CaseKey()
		existing, seen := bestByCase[key]
		if !seen {
			bestByCase[key] = h
			order = append(order, key)
			if len(order) >= k {
				break
			}
			continue
		}
		if h.Distance < existing.Distance {
			bestByCase[key] = h
		}
	}

	out := make([]models.RetrievalHit, 0, len(order))
	for _, key := range order {
		out = append(out, bestByCase[key])
	}
	sort.SliceStable(out, func(i, j int) bool { return lessHit(out[i], out[j]) })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// RawChunks is Mode B: the Retriever's top-k hits, unchanged, duplicate
// cases allowed.
func (e *Engine) RawChunks(ctx context.Context, query string, k int) ([]models.RetrievalHit, error) {
	hits, err := e.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(hits, func(i, j int) bool { return lessHit(hits[i], hits[j]) })
	return hits, nil
}

// Grouped is Mode C: k_cases case groups, each truncated to
// max_chunks_per_case hits, ordered by each group's best distance.
func (e *Engine) Grouped(ctx context.Context, query string, kCases, maxChunksPerCase int) ([]models.GroupedCaseHit, error) {
	hits, err := e.retriever.Retrieve(ctx, query, kCases*maxChunksPerCase*3)
	if err != nil {
		return nil, err
	}

	byCase := make(map[string][]models.RetrievalHit)
	var caseOrder []string
	for _, h := range hits {
		key := h.Chunk.CaseKey()
		if _, ok := byCase[key]; !ok {
			caseOrder = append(caseOrder, key)
		}
		byCase[key] = append(byCase[key], h)
	}

	groups := make([]models.GroupedCaseHit, 0, len(caseOrder))
	for _, key := range caseOrder {
		group := byCase[key]
		sort.SliceStable(group, func(i, j int) bool { return lessHit(group[i], group[j]) })
		if len(group) > maxChunksPerCase {
			group = group[:maxChunksPerCase]
		}
		groups = append(groups, models.GroupedCaseHit{
			CaseKey:      key,
			BestDistance: group[0].Distance,
			Hits:         group,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].BestDistance != groups[j].BestDistance {
			return groups[i].BestDistance < groups[j].BestDistance
		}
		return groups[i].CaseKey < groups[j].CaseKey
	})

	if len(groups) > kCases {
		groups = groups[:kCases]
	}
	return groups, nil
}
