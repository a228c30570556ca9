package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmorales/normabot/internal/passage"
)

// Ingestor turns raw corpus files into passages.
type Ingestor struct {
	chunker *Chunker
	logger  *slog.Logger
}

// NewIngestor creates an ingestor with the given chunker configuration.
func NewIngestor(cfg ChunkerConfig, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{chunker: NewChunker(cfg), logger: logger}
}

// IngestFile reads one text file and returns its passages. The document id
// is the file name without extension. Plain-text sources carry no page
// structure, so every passage is attributed to page 1.
func (ing *Ingestor) IngestFile(path string) ([]passage.Passage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	text := CleanText(string(raw))

	chunks := ing.chunker.Chunk(text)
	passages := make([]passage.Passage, 0, len(chunks))
	for i, chunk := range chunks {
		if chunk == "" {
			continue
		}
		passages = append(passages, passage.Passage{
			DocID:   docID,
			Title:   docID,
			Page:    1,
			Text:    chunk,
			ChunkID: fmt.Sprintf("c%04d", i),
		})
	}
	return passages, nil
}

// IngestDir ingests every .txt and .md file under dir, in name order, and
// returns the combined passages in table row order.
func (ing *Ingestor) IngestDir(dir string) ([]passage.Passage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		ing.logger.Warn("no .txt or .md files found in corpus directory", "dir", dir)
		return nil, nil
	}

	var all []passage.Passage
	for _, file := range files {
		ing.logger.Info("ingesting file", "file", file)
		passages, err := ing.IngestFile(file)
		if err != nil {
			return nil, err
		}
		all = append(all, passages...)
	}
	return all, nil
}
