// Package rerank re-orders retrieval candidates by query-specific relevance.
//
// Vector retrieval optimizes coarse topical similarity; reranking scores
// each (query, passage) pair together, which is more precise but too slow
// to run against the whole corpus. Retrieval therefore over-fetches and the
// reranker reorders the short candidate list.
package rerank

import (
	"context"

	"github.com/jmorales/normabot/internal/retriever"
)

// Reranker re-orders candidates by relevance to the query.
type Reranker interface {
	// Rerank returns a permutation of cands sorted by RerankScore
	// descending, ties keeping the original retrieval order. No candidates
	// are created or dropped; truncation belongs to the caller.
	Rerank(ctx context.Context, query string, cands []retriever.Candidate) ([]retriever.Candidate, error)
}
