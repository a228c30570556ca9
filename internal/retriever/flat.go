package retriever

import (
	"context"
	"fmt"

	"github.com/jmorales/normabot/internal/embedder"
	"github.com/jmorales/normabot/internal/flatindex"
	"github.com/jmorales/normabot/internal/passage"
)

// Flat retrieves by embedding the query and scanning a flat L2 index, then
// joining hit positions against the passage store. Index vector order and
// store row order correspond 1:1; the join trusts that invariant.
type Flat struct {
	embed embedder.Embedder
	index *flatindex.Index
	store passage.Store
}

// NewFlat creates a flat retriever from already-loaded parts.
func NewFlat(embed embedder.Embedder, index *flatindex.Index, store passage.Store) *Flat {
	return &Flat{embed: embed, index: index, store: store}
}

// OpenFlat loads the index file and passage table from disk. Open failures
// wrap ErrUnavailable so callers can distinguish startup failures.
func OpenFlat(embed embedder.Embedder, indexPath, passagePath string) (*Flat, error) {
	index, err := flatindex.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	store, err := passage.OpenParquet(passagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return NewFlat(embed, index, store), nil
}

// Search embeds the query and returns up to topK candidates ordered by
// increasing L2 distance. Hits whose position does not resolve to a passage
// are skipped, not fatal.
func (r *Flat) Search(ctx context.Context, query string, topK int) ([]Candidate, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	vector, err := r.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := r.index.Search(vector, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 {
			continue // no-match sentinel
		}
		p, ok := r.store.Get(hit.Position)
		if !ok {
			continue // store/index skew, skip the slot
		}
		candidates = append(candidates, Candidate{
			Passage: p,
			Score:   hit.Distance,
		})
	}

	return candidates, nil
}

// Ensure Flat implements Retriever.
var _ Retriever = (*Flat)(nil)
