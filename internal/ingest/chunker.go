// Package ingest splits raw corpus documents into passages and writes the
// passage table the retriever reads.
package ingest

import (
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the chunk window in words.
	DefaultChunkSize = 900

	// DefaultChunkOverlap is how many words consecutive chunks share.
	DefaultChunkOverlap = 120
)

// ChunkerConfig configures the word-window chunker.
type ChunkerConfig struct {
	// Size is the chunk window in words.
	Size int

	// Overlap is how many words consecutive chunks share, so sentences cut
	// at a boundary still appear whole in one of the two chunks.
	Overlap int
}

// Chunker splits cleaned text into overlapping word windows.
type Chunker struct {
	config ChunkerConfig
}

// NewChunker creates a chunker, applying defaults for zero values.
func NewChunker(cfg ChunkerConfig) *Chunker {
	if cfg.Size <= 0 {
		cfg.Size = DefaultChunkSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = DefaultChunkOverlap
		if cfg.Overlap >= cfg.Size {
			cfg.Overlap = cfg.Size / 4
		}
	}
	return &Chunker{config: cfg}
}

// Chunk splits text into word windows of the configured size and overlap.
// Returns nil for empty or whitespace-only input.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	step := c.config.Size - c.config.Overlap
	for start := 0; start < len(words); start += step {
		end := start + c.config.Size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

var (
	multiNewline = regexp.MustCompile(`\n+`)
	multiSpace   = regexp.MustCompile(`[ \t]+`)
	pageNumber   = regexp.MustCompile(`\n\d+\n`)
)

// CleanText normalizes whitespace and strips bare page-number lines left by
// text extraction.
func CleanText(text string) string {
	text = multiNewline.ReplaceAllString(text, "\n")
	text = multiSpace.ReplaceAllString(text, " ")
	text = pageNumber.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
