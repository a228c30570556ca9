package eval

import (
	"context"
	"math"
	"testing"

	"github.com/jmorales/normabot/internal/passage"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return f.vectors[text], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vectors[text]
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int    { return 2 }
func (f *fakeEmbedder) ModelName() string { return "fake" }

func TestExactMatch(t *testing.T) {
	if got := ExactMatch("  La nota es 4,0. ", "la nota es 4,0."); got != 1.0 {
		t.Errorf("ExactMatch = %v, want 1 for case and whitespace differences", got)
	}
	if got := ExactMatch("respuesta a", "respuesta b"); got != 0.0 {
		t.Errorf("ExactMatch = %v, want 0 for different answers", got)
	}
}

func TestCitationPresence(t *testing.T) {
	sources := []passage.Passage{{DocID: "Reg", Page: 4, Text: "texto"}}

	if got := CitationPresence("La nota mínima es 4,0. [Reg-4]", sources); got != 1.0 {
		t.Errorf("full key citation not recognized: got %v", got)
	}
	if got := CitationPresence("La nota mínima es 4,0. [Reg]", sources); got != 1.0 {
		t.Errorf("bare doc id citation not recognized: got %v", got)
	}
	if got := CitationPresence("La nota mínima es 4,0.", sources); got != 0.0 {
		t.Errorf("uncited answer scored %v, want 0", got)
	}
	if got := CitationPresence("Texto [Otro-1]", sources); got != 0.0 {
		t.Errorf("citation of an unretrieved source scored %v, want 0", got)
	}
	if got := CitationPresence("Texto [Reg-4]", nil); got != 0.0 {
		t.Errorf("no sources scored %v, want 0", got)
	}
}

func TestPrecisionAtK(t *testing.T) {
	cases := []struct {
		name      string
		retrieved []string
		expected  []string
		want      float64
	}{
		{"all found", []string{"A", "B", "C"}, []string{"A", "B"}, 1.0},
		{"half found", []string{"A", "X"}, []string{"A", "B"}, 0.5},
		{"none found", []string{"X", "Y"}, []string{"A"}, 0.0},
		{"empty retrieval", nil, []string{"A"}, 0.0},
		{"empty expectation", []string{"A"}, nil, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PrecisionAtK(tc.retrieved, tc.expected); got != tc.want {
				t.Errorf("PrecisionAtK(%v, %v) = %v, want %v", tc.retrieved, tc.expected, got, tc.want)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	embed := &fakeEmbedder{vectors: map[string][]float32{
		"igual":      {1, 0},
		"también":    {1, 0},
		"ortogonal":  {0, 1},
		"opuesto":    {-1, 0},
	}}
	ctx := context.Background()

	got, err := CosineSimilarity(ctx, embed, "igual", "también")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("identical vectors: similarity %v, want 1", got)
	}

	got, err = CosineSimilarity(ctx, embed, "igual", "ortogonal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: similarity %v, want 0", got)
	}

	got, err = CosineSimilarity(ctx, embed, "igual", "opuesto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got+1.0) > 1e-9 {
		t.Errorf("opposite vectors: similarity %v, want -1", got)
	}

	got, err = CosineSimilarity(ctx, embed, "", "igual")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.0 {
		t.Errorf("empty text: similarity %v, want 0", got)
	}
}
