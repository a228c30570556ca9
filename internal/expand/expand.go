// Package expand produces alternative query strings to improve retrieval
// recall before vector search.
package expand

import (
	"context"
)

// Expander turns a user query into one or more retrieval queries.
type Expander interface {
	// Expand returns the query strings to retrieve with. A generation
	// failure is surfaced to the caller; expansion never silently returns
	// an empty result.
	Expand(ctx context.Context, query string) ([]string, error)
}
