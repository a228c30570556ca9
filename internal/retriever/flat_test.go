package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/jmorales/normabot/internal/flatindex"
	"github.com/jmorales/normabot/internal/passage"
)

// fakeEmbedder maps texts to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float32
	dim     int
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		return make([]float32, f.dim), nil
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int    { return f.dim }
func (f *fakeEmbedder) ModelName() string { return "fake" }

func buildFlat(t *testing.T, vectors [][]float32, store passage.Store, embed *fakeEmbedder) *Flat {
	t.Helper()
	idx, err := flatindex.New(len(vectors[0]))
	if err != nil {
		t.Fatalf("flatindex.New: %v", err)
	}
	for i, vec := range vectors {
		if err := idx.Add(vec); err != nil {
			t.Fatalf("Add vector %d: %v", i, err)
		}
	}
	return NewFlat(embed, idx, store)
}

func TestFlatSearch_OrdersByDistance(t *testing.T) {
	store := passage.SliceStore{
		{DocID: "A", Page: 1, Text: "lejano"},
		{DocID: "B", Page: 2, Text: "cercano"},
		{DocID: "C", Page: 3, Text: "medio"},
	}
	embed := &fakeEmbedder{dim: 2, vectors: map[string][]float32{"consulta": {0, 0}}}
	r := buildFlat(t, [][]float32{{10, 0}, {1, 0}, {3, 0}}, store, embed)

	got, err := r.Search(context.Background(), "consulta", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	wantDocs := []string{"B", "C", "A"}
	if len(got) != len(wantDocs) {
		t.Fatalf("got %d candidates, want %d", len(got), len(wantDocs))
	}
	for i, want := range wantDocs {
		if got[i].DocID != want {
			t.Errorf("candidate %d: doc %s, want %s", i, got[i].DocID, want)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score < got[i-1].Score {
			t.Errorf("candidates not in increasing distance order: %v", got)
		}
	}
}

func TestFlatSearch_TruncatesToTopK(t *testing.T) {
	store := passage.SliceStore{
		{DocID: "A", Text: "a"}, {DocID: "B", Text: "b"}, {DocID: "C", Text: "c"},
	}
	embed := &fakeEmbedder{dim: 1, vectors: map[string][]float32{"q": {0}}}
	r := buildFlat(t, [][]float32{{1}, {2}, {3}}, store, embed)

	got, err := r.Search(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d candidates, want 2", len(got))
	}
}

func TestFlatSearch_SkipsUnresolvablePositions(t *testing.T) {
	// The index has three vectors but the store only two rows: the third hit
	// cannot be resolved and must be dropped silently.
	store := passage.SliceStore{
		{DocID: "A", Text: "a"}, {DocID: "B", Text: "b"},
	}
	embed := &fakeEmbedder{dim: 1, vectors: map[string][]float32{"q": {0}}}
	r := buildFlat(t, [][]float32{{1}, {2}, {3}}, store, embed)

	got, err := r.Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d candidates, want 2 resolvable ones", len(got))
	}
	for _, c := range got {
		if c.DocID != "A" && c.DocID != "B" {
			t.Errorf("unexpected candidate %+v", c)
		}
	}
}

func TestFlatSearch_RejectsNonPositiveTopK(t *testing.T) {
	embed := &fakeEmbedder{dim: 1}
	r := buildFlat(t, [][]float32{{1}}, passage.SliceStore{{DocID: "A", Text: "a"}}, embed)

	if _, err := r.Search(context.Background(), "q", 0); err == nil {
		t.Error("expected error for topK = 0")
	}
}

func TestFlatSearch_PropagatesEmbedError(t *testing.T) {
	embedErr := errors.New("embedding service down")
	embed := &fakeEmbedder{dim: 1, err: embedErr}
	r := buildFlat(t, [][]float32{{1}}, passage.SliceStore{{DocID: "A", Text: "a"}}, embed)

	if _, err := r.Search(context.Background(), "q", 1); !errors.Is(err, embedErr) {
		t.Errorf("error = %v, want wrapped %v", err, embedErr)
	}
}

func TestOpenFlat_MissingIndexIsUnavailable(t *testing.T) {
	embed := &fakeEmbedder{dim: 1}
	_, err := OpenFlat(embed, "does/not/exist.nbix", "does/not/exist.parquet")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
