package eval

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmorales/normabot/internal/embedder"
	"github.com/jmorales/normabot/internal/pipeline"
	"github.com/jmorales/normabot/internal/retriever"
)

// GoldItem is one line of the gold-set JSONL file.
type GoldItem struct {
	Question          string   `json:"question"`
	ExpectedAnswer    string   `json:"expected_answer"`
	ExpectedCitations []string `json:"expected_citations"`
}

// LoadGoldSet reads a JSONL gold set from path.
func LoadGoldSet(path string) ([]GoldItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gold set %s: %w", path, err)
	}
	defer f.Close()

	var items []GoldItem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var item GoldItem
		if err := json.Unmarshal(scanner.Bytes(), &item); err != nil {
			return nil, fmt.Errorf("parsing gold set line %d: %w", line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading gold set: %w", err)
	}
	return items, nil
}

// Record holds the metrics for one (provider, question) pair.
type Record struct {
	Provider         string  `json:"provider"`
	Question         string  `json:"question"`
	GeneratedAnswer  string  `json:"generated_answer"`
	ExpectedAnswer   string  `json:"expected_answer"`
	PrecisionAtK     float64 `json:"precision_at_k"`
	ExactMatch       float64 `json:"exact_match"`
	CosineSimilarity float64 `json:"cosine_similarity"`
	CitationPresence float64 `json:"citation_presence"`
}

// Runner evaluates one or more provider pipelines against a gold set.
type Runner struct {
	retriever retriever.Retriever
	embed     embedder.Embedder
	pipelines map[string]*pipeline.Pipeline
	topK      int
	logger    *slog.Logger
}

// NewRunner creates a Runner. The retriever is queried directly (with the
// literal question) to compute retrieval precision independently of any
// expansion strategy the pipelines use.
func NewRunner(r retriever.Retriever, embed embedder.Embedder, pipelines map[string]*pipeline.Pipeline, topK int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if topK <= 0 {
		topK = pipeline.DefaultTopK
	}
	return &Runner{
		retriever: r,
		embed:     embed,
		pipelines: pipelines,
		topK:      topK,
		logger:    logger,
	}
}

// Run evaluates every gold item with every pipeline and returns one record
// per (provider, question) pair. A failing pipeline run is recorded with an
// empty answer rather than aborting the whole evaluation.
func (r *Runner) Run(ctx context.Context, items []GoldItem) ([]Record, error) {
	var records []Record

	for i, item := range items {
		r.logger.Info("evaluating question", "index", i+1, "total", len(items), "question", item.Question)

		retrieved, err := r.retriever.Search(ctx, item.Question, r.topK)
		if err != nil {
			return nil, fmt.Errorf("retrieving for question %d: %w", i+1, err)
		}
		docIDs := make([]string, len(retrieved))
		for j, cand := range retrieved {
			docIDs[j] = cand.DocID
		}
		precision := PrecisionAtK(docIDs, item.ExpectedCitations)

		for provider, pl := range r.pipelines {
			record := Record{
				Provider:       provider,
				Question:       item.Question,
				ExpectedAnswer: item.ExpectedAnswer,
				PrecisionAtK:   precision,
			}

			result, err := pl.Run(ctx, item.Question)
			if err != nil {
				r.logger.Error("pipeline run failed during evaluation", "provider", provider, "error", err)
				records = append(records, record)
				continue
			}

			record.GeneratedAnswer = result.Answer
			record.ExactMatch = ExactMatch(result.Answer, item.ExpectedAnswer)
			record.CitationPresence = CitationPresence(result.Answer, result.Sources)

			similarity, err := CosineSimilarity(ctx, r.embed, result.Answer, item.ExpectedAnswer)
			if err != nil {
				r.logger.Error("similarity computation failed", "provider", provider, "error", err)
			} else {
				record.CosineSimilarity = similarity
			}

			records = append(records, record)
		}
	}

	return records, nil
}

// Summary aggregates record metrics per provider.
type Summary struct {
	Provider         string  `json:"provider"`
	Questions        int     `json:"questions"`
	PrecisionAtK     float64 `json:"precision_at_k"`
	ExactMatch       float64 `json:"exact_match"`
	CosineSimilarity float64 `json:"cosine_similarity"`
	CitationPresence float64 `json:"citation_presence"`
}

// Summarize averages the metrics of records grouped by provider.
func Summarize(records []Record) []Summary {
	byProvider := make(map[string]*Summary)
	var order []string

	for _, rec := range records {
		s, ok := byProvider[rec.Provider]
		if !ok {
			s = &Summary{Provider: rec.Provider}
			byProvider[rec.Provider] = s
			order = append(order, rec.Provider)
		}
		s.Questions++
		s.PrecisionAtK += rec.PrecisionAtK
		s.ExactMatch += rec.ExactMatch
		s.CosineSimilarity += rec.CosineSimilarity
		s.CitationPresence += rec.CitationPresence
	}

	summaries := make([]Summary, 0, len(order))
	for _, provider := range order {
		s := byProvider[provider]
		if s.Questions > 0 {
			n := float64(s.Questions)
			s.PrecisionAtK /= n
			s.ExactMatch /= n
			s.CosineSimilarity /= n
			s.CitationPresence /= n
		}
		summaries = append(summaries, *s)
	}
	return summaries
}
