// Package flatindex implements a brute-force L2 nearest-neighbor index
// persisted as a flat file of float32 vectors.
//
// The on-disk layout is little-endian: magic "NBIX", uint32 version,
// uint32 dimension, uint32 count, then count×dimension float32 values.
// Vector order corresponds 1:1 to passage table row order.
//
// An Index is built once (Add is not safe for concurrent use) and is
// read-only afterwards; Search may be called concurrently.
package flatindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
)

const (
	magic   = "NBIX"
	version = 1
)

// Hit is a single search result: a row position and its L2 distance
// (smaller = more similar).
type Hit struct {
	Position int
	Distance float32
}

// Index holds the vectors of a flat L2 index in memory.
type Index struct {
	dim     int
	vectors [][]float32
}

// New creates an empty index for vectors of the given dimension.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dim)
	}
	return &Index{dim: dim}, nil
}

// Add appends a vector. Vectors must be added in passage table row order.
func (idx *Index) Add(vector []float32) error {
	if len(vector) != idx.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vector), idx.dim)
	}
	idx.vectors = append(idx.vectors, vector)
	return nil
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Dimension returns the vector dimensionality.
func (idx *Index) Dimension() int {
	return idx.dim
}

// Search returns the topK nearest vectors to query by L2 distance, ordered
// by increasing distance. Fewer than topK hits are returned when the index
// holds fewer vectors; the result is never padded.
func (idx *Index) Search(query []float32, topK int) ([]Hit, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), idx.dim)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	hits := make([]Hit, len(idx.vectors))
	for i, vec := range idx.vectors {
		hits[i] = Hit{Position: i, Distance: l2Distance(query, vec)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// l2Distance computes squared Euclidean distance. The square root is
// monotonic, so ranking does not need it.
func l2Distance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Open loads an index file from path.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("reading index header: %w", err)
	}
	if string(head) != magic {
		return nil, fmt.Errorf("not an index file: bad magic %q", head)
	}

	var ver, dim, count uint32
	for _, field := range []*uint32{&ver, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("reading index header: %w", err)
		}
	}
	if ver != version {
		return nil, fmt.Errorf("unsupported index version %d", ver)
	}

	idx, err := New(int(dim))
	if err != nil {
		return nil, err
	}

	idx.vectors = make([][]float32, count)
	for i := range idx.vectors {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, fmt.Errorf("reading vector %d: %w", i, err)
		}
		idx.vectors[i] = vec
	}

	return idx, nil
}

// Write persists the index to path.
func (idx *Index) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating index %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if _, err := w.WriteString(magic); err != nil {
		return fmt.Errorf("writing index header: %w", err)
	}
	for _, field := range []uint32{version, uint32(idx.dim), uint32(len(idx.vectors))} {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("writing index header: %w", err)
		}
	}
	for i, vec := range idx.vectors {
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("writing vector %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing index: %w", err)
	}
	return nil
}
