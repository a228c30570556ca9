// Package eval measures answer quality against a gold set of questions.
package eval

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/jmorales/normabot/internal/embedder"
	"github.com/jmorales/normabot/internal/passage"
)

var citationPattern = regexp.MustCompile(`\[([\w-]+)\]`)

// ExactMatch returns 1 when the answers are identical after normalization.
func ExactMatch(generated, expected string) float64 {
	if strings.EqualFold(strings.TrimSpace(generated), strings.TrimSpace(expected)) {
		return 1.0
	}
	return 0.0
}

// CitationPresence returns 1 when the generated answer cites at least one of
// the sources it was given. Matching accepts both the full "{doc_id}-{page}"
// key and the bare doc id.
func CitationPresence(generated string, sources []passage.Passage) float64 {
	if len(sources) == 0 {
		return 0.0
	}

	cited := make(map[string]struct{})
	for _, m := range citationPattern.FindAllStringSubmatch(generated, -1) {
		cited[m[1]] = struct{}{}
	}
	if len(cited) == 0 {
		return 0.0
	}

	for _, p := range sources {
		if _, ok := cited[p.CitationKey()]; ok {
			return 1.0
		}
		if _, ok := cited[p.DocID]; ok {
			return 1.0
		}
	}
	return 0.0
}

// PrecisionAtK returns the fraction of expected documents found among the
// retrieved ones.
func PrecisionAtK(retrievedDocIDs, expectedDocIDs []string) float64 {
	if len(retrievedDocIDs) == 0 || len(expectedDocIDs) == 0 {
		return 0.0
	}

	retrieved := make(map[string]struct{}, len(retrievedDocIDs))
	for _, id := range retrievedDocIDs {
		retrieved[id] = struct{}{}
	}

	relevant := 0
	for _, id := range expectedDocIDs {
		if _, ok := retrieved[id]; ok {
			relevant++
		}
	}
	return float64(relevant) / float64(len(expectedDocIDs))
}

// CosineSimilarity embeds both texts and returns their cosine similarity.
func CosineSimilarity(ctx context.Context, embed embedder.Embedder, a, b string) (float64, error) {
	if a == "" || b == "" {
		return 0.0, nil
	}

	vectors, err := embed.EmbedBatch(ctx, []string{a, b})
	if err != nil {
		return 0, fmt.Errorf("embedding texts for similarity: %w", err)
	}

	return cosine(vectors[0], vectors[1]), nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
