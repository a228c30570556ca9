// Package retriever turns a text query into a ranked candidate passage list.
//
// Three backends implement the same contract: a flat index file joined
// against the parquet passage table (the default), a Qdrant collection, and
// a Postgres table with pgvector. All backends are read-only at query time
// and safe for concurrent searches.
package retriever

import (
	"context"
	"errors"

	"github.com/jmorales/normabot/internal/passage"
)

// ErrUnavailable indicates the index or passage store could not be opened.
// This is a startup-time failure, not a per-query one.
var ErrUnavailable = errors.New("retriever: index or store unavailable")

// Candidate is a passage annotated with retrieval and reranking scores.
// Candidates are created per query and discarded at the end of a pipeline
// run; they are never persisted.
type Candidate struct {
	passage.Passage

	// Score is the backend-native retrieval score. For the flat backend it
	// is an L2 distance (smaller = more similar).
	Score float32

	// RerankScore is set by the reranker (larger = more relevant).
	RerankScore float32
}

// Retriever retrieves candidate passages for a text query.
type Retriever interface {
	// Search returns up to topK candidates ordered by the backend's native
	// metric. The result may be shorter than topK and is never padded.
	Search(ctx context.Context, query string, topK int) ([]Candidate, error)
}
