// Package pipeline orchestrates the retrieval-augmented generation run:
// query expansion, retrieval, reranking, synthesis and postprocessing.
//
// Each Run is independent and safe to call concurrently: all per-run state
// (candidate lists, context strings) is run-local, and the shared
// collaborators are read-only during queries.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jmorales/normabot/internal/expand"
	"github.com/jmorales/normabot/internal/llm"
	"github.com/jmorales/normabot/internal/passage"
	"github.com/jmorales/normabot/internal/prompt"
	"github.com/jmorales/normabot/internal/rerank"
	"github.com/jmorales/normabot/internal/retriever"
)

const (
	// DefaultTopK is how many candidates retrieval over-fetches so the
	// reranker has enough to work with.
	DefaultTopK = 20

	// DefaultFinalK is how many passages reach the synthesizer.
	DefaultFinalK = 3

	// retrieveConcurrency bounds parallel per-query retrieval under
	// multi-query expansion.
	retrieveConcurrency = 4
)

// Result is the outcome of a successful pipeline run. Sources are exactly
// the passages handed to the synthesizer.
type Result struct {
	Answer  string
	Sources []passage.Passage
}

// Pipeline sequences the stages of a retrieval-augmented generation run.
type Pipeline struct {
	retriever retriever.Retriever
	client    llm.Client
	expander  expand.Expander // nil: retrieve with the literal query
	reranker  rerank.Reranker // nil: truncate the retrieved list directly
	logger    *slog.Logger

	topK              int
	finalK            int
	fallbackToLiteral bool // on expansion failure, retry with the literal query
}

// Option is a functional option for configuring a Pipeline.
type Option func(*Pipeline)

// WithExpander sets the query expansion strategy.
func WithExpander(e expand.Expander) Option {
	return func(p *Pipeline) { p.expander = e }
}

// WithReranker enables the reranking stage.
func WithReranker(r rerank.Reranker) Option {
	return func(p *Pipeline) { p.reranker = r }
}

// WithTopK sets how many candidates retrieval fetches per query.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithFinalK sets how many passages are kept for synthesis.
func WithFinalK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.finalK = k
		}
	}
}

// WithExpandFallback controls what happens when query expansion fails:
// fall back to the literal query (true) or abort the run (false).
func WithExpandFallback(fallback bool) Option {
	return func(p *Pipeline) { p.fallbackToLiteral = fallback }
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a Pipeline around the given retriever and generation provider.
func New(r retriever.Retriever, client llm.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		retriever:         r,
		client:            client,
		logger:            slog.Default(),
		topK:              DefaultTopK,
		finalK:            DefaultFinalK,
		fallbackToLiteral: true,
	}

	for _, opt := range opts {
		opt(p)
	}

	// finalK never exceeds topK.
	if p.finalK > p.topK {
		p.finalK = p.topK
	}

	return p
}

// Run answers a query end to end. An empty retrieval short-circuits to the
// fixed no-information answer with empty sources; any stage failure aborts
// the run with the stage attached.
func (p *Pipeline) Run(ctx context.Context, query string) (Result, error) {
	logger := p.logger.With("run_id", uuid.NewString())

	// Stage 1: expand the query.
	queries := []string{query}
	if p.expander != nil {
		expanded, err := p.expander.Expand(ctx, query)
		switch {
		case err == nil:
			queries = expanded
		case p.fallbackToLiteral:
			logger.Warn("query expansion failed, falling back to literal query", "stage", StageExpand, "error", err)
		default:
			logger.Error("query expansion failed", "stage", StageExpand, "error", err)
			return Result{}, &StageError{Stage: StageExpand, Err: err}
		}
	}

	// Stage 2: retrieve candidates for every query and merge.
	candidates, err := p.retrieve(ctx, queries)
	if err != nil {
		logger.Error("retrieval failed", "stage", StageRetrieve, "error", err)
		return Result{}, &StageError{Stage: StageRetrieve, Err: err}
	}
	logger.Info("retrieved candidates", "queries", len(queries), "candidates", len(candidates))

	if len(candidates) == 0 {
		// Valid terminal state, not an error: no synthesis call is made.
		return Result{Answer: prompt.NoInformation, Sources: []passage.Passage{}}, nil
	}

	// Stage 3 (optional): rerank against the original query, then truncate.
	if p.reranker != nil {
		reranked, err := p.reranker.Rerank(ctx, query, candidates)
		if err != nil {
			logger.Error("reranking failed", "stage", StageRerank, "error", err)
			return Result{}, &StageError{Stage: StageRerank, Err: err}
		}
		candidates = reranked
		logger.Info("reranked candidates", "best_score", candidates[0].RerankScore)
	}
	if len(candidates) > p.finalK {
		candidates = candidates[:p.finalK]
	}

	passages := make([]passage.Passage, len(candidates))
	for i, cand := range candidates {
		passages[i] = cand.Passage
	}

	// Stage 4: synthesize a grounded answer.
	raw, err := p.synthesize(ctx, query, passages)
	if err != nil {
		logger.Error("synthesis failed", "stage", StageSynthesize, "error", err)
		return Result{}, &StageError{Stage: StageSynthesize, Err: err}
	}

	// Stage 5: repair citation artifacts.
	answer := Clean(raw)
	logger.Info("pipeline completed", "sources", len(passages))

	return Result{Answer: answer, Sources: passages}, nil
}

// retrieve fetches candidates for each query (concurrently when expansion
// produced several) and merges them in query order, deduplicated by passage
// identity.
func (p *Pipeline) retrieve(ctx context.Context, queries []string) ([]retriever.Candidate, error) {
	perQuery := make([][]retriever.Candidate, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(retrieveConcurrency)
	for i, q := range queries {
		g.Go(func() error {
			cands, err := p.retriever.Search(gctx, q, p.topK)
			if err != nil {
				return fmt.Errorf("searching %q: %w", q, err)
			}
			perQuery[i] = cands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(queries) == 1 {
		return perQuery[0], nil
	}

	seen := make(map[string]struct{})
	var merged []retriever.Candidate
	for _, cands := range perQuery {
		for _, cand := range cands {
			key := cand.DocID + "\x00" + cand.ChunkID
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, cand)
		}
	}
	return merged, nil
}
