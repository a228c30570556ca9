package flatindex

import (
	"os"
	"path/filepath"
	"testing"
)

func buildIndex(t *testing.T, vectors [][]float32) *Index {
	t.Helper()
	idx, err := New(len(vectors[0]))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i, vec := range vectors {
		if err := idx.Add(vec); err != nil {
			t.Fatalf("Add vector %d: %v", i, err)
		}
	}
	return idx
}

func TestSearch_OrdersByDistance(t *testing.T) {
	idx := buildIndex(t, [][]float32{
		{10, 0}, // position 0, far
		{1, 0},  // position 1, near
		{3, 0},  // position 2, middle
	})

	hits, err := idx.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	wantPositions := []int{1, 2, 0}
	for i, want := range wantPositions {
		if hits[i].Position != want {
			t.Errorf("hit %d: position %d, want %d", i, hits[i].Position, want)
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("hits not in increasing distance order: %v", hits)
		}
	}
}

func TestSearch_TruncatesToTopK(t *testing.T) {
	idx := buildIndex(t, [][]float32{{1}, {2}, {3}, {4}})

	hits, err := idx.Search([]float32{0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
}

func TestSearch_NeverPads(t *testing.T) {
	idx := buildIndex(t, [][]float32{{1}, {2}})

	hits, err := idx.Search([]float32{0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2 (index size)", len(hits))
	}
}

func TestSearch_RejectsBadInput(t *testing.T) {
	idx := buildIndex(t, [][]float32{{1, 2}})

	if _, err := idx.Search([]float32{1}, 1); err == nil {
		t.Error("expected error for dimension mismatch")
	}
	if _, err := idx.Search([]float32{1, 2}, 0); err == nil {
		t.Error("expected error for topK = 0")
	}
}

func TestAdd_RejectsDimensionMismatch(t *testing.T) {
	idx, err := New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := idx.Add([]float32{1, 2}); err == nil {
		t.Error("expected error for wrong-dimension vector")
	}
}

func TestNew_RejectsInvalidDimension(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Error("expected error for dimension 0")
	}
}

func TestWriteOpen_Roundtrip(t *testing.T) {
	vectors := [][]float32{
		{0.1, 0.2, 0.3},
		{-1, 0, 1},
		{42, 42, 42},
	}
	idx := buildIndex(t, vectors)

	path := filepath.Join(t.TempDir(), "index.nbix")
	if err := idx.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if loaded.Len() != idx.Len() {
		t.Fatalf("loaded %d vectors, want %d", loaded.Len(), idx.Len())
	}
	if loaded.Dimension() != idx.Dimension() {
		t.Fatalf("loaded dimension %d, want %d", loaded.Dimension(), idx.Dimension())
	}

	// Positions must survive the roundtrip.
	hits, err := loaded.Search([]float32{42, 42, 42}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits[0].Position != 2 || hits[0].Distance != 0 {
		t.Errorf("hit = %+v, want position 2 at distance 0", hits[0])
	}
}

func TestOpen_RejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.nbix")
	if err := os.WriteFile(path, []byte("JUNKxxxxxxxxxxxx"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error for bad magic")
	}
}
