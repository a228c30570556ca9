// Package passage defines the passage model and the read-only passage store.
//
// A passage is the atomic unit of retrieval: a chunk of source-document text
// with identifying metadata. The persisted store is a columnar parquet table
// whose row order corresponds 1:1 to the vector order of the flat index — an
// invariant preserved at build time and relied on at query time without
// re-validation.
package passage

import "fmt"

// PageUnknown marks a passage whose source page could not be determined.
const PageUnknown = 0

// Passage is an immutable chunk of source-document text with metadata.
// Text is never empty; (DocID, Page) need not be unique.
type Passage struct {
	DocID   string
	Title   string
	Page    int // PageUnknown when the page is not known
	Text    string
	ChunkID string // unique within a document
}

// PageLabel renders the page for citation keys and display.
func (p Passage) PageLabel() string {
	if p.Page == PageUnknown {
		return "unknown"
	}
	return fmt.Sprintf("%d", p.Page)
}

// CitationKey returns the "{doc_id}-{page}" token that correlates an inline
// citation marker in generated text back to this passage.
func (p Passage) CitationKey() string {
	return fmt.Sprintf("%s-%s", p.DocID, p.PageLabel())
}

// Store is a read-only, position-addressable passage collection. Positions
// match the row order of the persisted table.
type Store interface {
	// Get returns the passage at the given row position. The second return
	// is false when the position cannot be resolved (store/index skew).
	Get(position int) (Passage, bool)

	// Len returns the number of passages in the store.
	Len() int
}

// SliceStore is an in-memory Store backed by a slice, used by ingestion
// before persisting and by tests.
type SliceStore []Passage

// Get returns the passage at position.
func (s SliceStore) Get(position int) (Passage, bool) {
	if position < 0 || position >= len(s) {
		return Passage{}, false
	}
	return s[position], true
}

// Len returns the number of passages.
func (s SliceStore) Len() int {
	return len(s)
}

// Ensure SliceStore implements Store.
var _ Store = (SliceStore)(nil)
