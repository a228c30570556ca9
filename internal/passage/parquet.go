package passage

import (
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// parquetRow mirrors the columnar table schema.
type parquetRow struct {
	DocID   string `parquet:"doc_id"`
	Title   string `parquet:"title,optional"`
	Page    int32  `parquet:"page"`
	Text    string `parquet:"text"`
	ChunkID string `parquet:"chunk_id,optional"`
}

// ParquetStore is a Store loaded from a parquet passage table. The whole
// table is held in memory; it is read-only and safe for concurrent use.
type ParquetStore struct {
	passages []Passage
}

// OpenParquet loads the passage table at path.
func OpenParquet(path string) (*ParquetStore, error) {
	rows, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, fmt.Errorf("reading passage table %s: %w", path, err)
	}

	passages := make([]Passage, len(rows))
	for i, row := range rows {
		passages[i] = Passage{
			DocID:   row.DocID,
			Title:   row.Title,
			Page:    int(row.Page),
			Text:    row.Text,
			ChunkID: row.ChunkID,
		}
	}

	return &ParquetStore{passages: passages}, nil
}

// Get returns the passage at the given row position.
func (s *ParquetStore) Get(position int) (Passage, bool) {
	if position < 0 || position >= len(s.passages) {
		return Passage{}, false
	}
	return s.passages[position], true
}

// Len returns the number of passages in the table.
func (s *ParquetStore) Len() int {
	return len(s.passages)
}

// All returns every passage in row order. Used by the index builder, which
// must embed texts in exactly this order.
func (s *ParquetStore) All() []Passage {
	return s.passages
}

// WriteParquet persists passages as a parquet table in the given order.
func WriteParquet(path string, passages []Passage) error {
	rows := make([]parquetRow, len(passages))
	for i, p := range passages {
		rows[i] = parquetRow{
			DocID:   p.DocID,
			Title:   p.Title,
			Page:    int32(p.Page),
			Text:    p.Text,
			ChunkID: p.ChunkID,
		}
	}

	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("writing passage table %s: %w", path, err)
	}
	return nil
}

// Ensure ParquetStore implements Store.
var _ Store = (*ParquetStore)(nil)
