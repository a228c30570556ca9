// Package main is the entry point for the normabot CLI: a citation-grounded
// question-answering assistant over institutional documents.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmorales/normabot/internal/config"
	"github.com/jmorales/normabot/internal/embedder"
	"github.com/jmorales/normabot/internal/expand"
	"github.com/jmorales/normabot/internal/llm"
	"github.com/jmorales/normabot/internal/pipeline"
	"github.com/jmorales/normabot/internal/rerank"
	"github.com/jmorales/normabot/internal/retriever"
)

// rootCmd is the base command for the normabot CLI.
var rootCmd = &cobra.Command{
	Use:   "normabot",
	Short: "Citation-grounded QA over university regulations",
	Long: `normabot answers natural-language questions against a corpus of
institutional documents by retrieving relevant passages and synthesizing a
grounded, citation-backed answer.

Typical workflow: "normabot ingest" builds the passage table from raw
documents, "normabot index" embeds it into a vector index, and
"normabot serve" (or "normabot ask") answers questions against it.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads configuration and configures the default slog logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	return cfg, nil
}

// buildEmbedder constructs the shared Ollama embedder.
func buildEmbedder(cfg *config.Config) *embedder.OllamaEmbedder {
	return embedder.NewOllamaEmbedder(embedder.OllamaConfig{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaEmbeddingModel,
	})
}

// buildRegistry constructs the generation provider registry.
func buildRegistry(cfg *config.Config) *llm.Registry {
	return llm.NewRegistry(
		llm.NewOpenAIClient("chatgpt", cfg.OpenRouterKey, cfg.OpenRouterModel,
			llm.WithOpenAIBaseURL(llm.DefaultOpenRouterBaseURL)),
		llm.NewOpenAIClient("deepseek", cfg.DeepSeekKey, cfg.DeepSeekModel,
			llm.WithOpenAIBaseURL(llm.DefaultDeepSeekBaseURL)),
		llm.NewOllamaClient(
			llm.WithBaseURL(cfg.OllamaURL),
			llm.WithModel(cfg.OllamaLLMModel)),
	)
}

// buildRetriever constructs the configured retrieval backend. The returned
// close function releases backend connections (a no-op for the flat backend).
func buildRetriever(ctx context.Context, cfg *config.Config, embed embedder.Embedder) (retriever.Retriever, func(), error) {
	switch cfg.RetrieverBackend {
	case "flat":
		r, err := retriever.OpenFlat(embed, cfg.IndexPath, cfg.PassagePath)
		if err != nil {
			return nil, nil, err
		}
		return r, func() {}, nil
	case "qdrant":
		r, err := retriever.NewQdrant(ctx, cfg.QdrantGRPCURL, cfg.QdrantCollection, embed)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case "pgvector":
		r, err := retriever.NewPgvector(ctx, cfg.DatabaseURL, embed)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown retriever backend %q", cfg.RetrieverBackend)
	}
}

// buildPipeline assembles a pipeline for the given provider client,
// applying the configured expansion mode and reranking.
func buildPipeline(cfg *config.Config, r retriever.Retriever, client llm.Client, finalK int) (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{
		pipeline.WithTopK(cfg.TopK),
		pipeline.WithFinalK(finalK),
		pipeline.WithExpandFallback(cfg.ExpandFallback),
	}

	switch cfg.ExpandMode {
	case "hyde":
		opts = append(opts, pipeline.WithExpander(expand.NewHyDE(client)))
	case "multi":
		opts = append(opts, pipeline.WithExpander(expand.NewMultiQuery(client, expand.DefaultMaxParaphrases)))
	case "none":
	default:
		return nil, fmt.Errorf("unknown expand mode %q", cfg.ExpandMode)
	}

	if cfg.RerankEnabled {
		opts = append(opts, pipeline.WithReranker(rerank.NewLLMReranker(client)))
	}

	return pipeline.New(r, client, opts...), nil
}
