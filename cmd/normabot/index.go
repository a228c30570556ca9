package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmorales/normabot/internal/flatindex"
	"github.com/jmorales/normabot/internal/passage"
	"github.com/jmorales/normabot/internal/retriever"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the passage table into the configured vector backend",
	Long: `index embeds every passage in the passage table and writes the
vectors to the configured retrieval backend. For the flat backend the vector
order matches the passage table row order 1:1; that correspondence is what
the retriever relies on at query time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		store, err := passage.OpenParquet(cfg.PassagePath)
		if err != nil {
			return fmt.Errorf("failed to open passage table: %w", err)
		}
		passages := store.All()
		if len(passages) == 0 {
			return fmt.Errorf("passage table %s is empty", cfg.PassagePath)
		}

		embed := buildEmbedder(cfg)
		texts := make([]string, len(passages))
		for i, p := range passages {
			texts[i] = p.Text
		}

		slog.Info("embedding passages", "count", len(texts), "model", embed.ModelName())
		vectors, err := embed.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed passages: %w", err)
		}

		switch cfg.RetrieverBackend {
		case "flat":
			idx, err := flatindex.New(len(vectors[0]))
			if err != nil {
				return err
			}
			for i, vec := range vectors {
				if err := idx.Add(vec); err != nil {
					return fmt.Errorf("adding vector %d: %w", i, err)
				}
			}
			if err := idx.Write(cfg.IndexPath); err != nil {
				return err
			}
			slog.Info("flat index written", "path", cfg.IndexPath, "vectors", idx.Len())

		case "qdrant":
			r, err := retriever.NewQdrant(ctx, cfg.QdrantGRPCURL, cfg.QdrantCollection, embed)
			if err != nil {
				return err
			}
			defer r.Close()
			if err := r.EnsureCollection(ctx, len(vectors[0])); err != nil {
				return err
			}
			if err := r.Upsert(ctx, passages, vectors); err != nil {
				return err
			}
			slog.Info("qdrant collection populated", "collection", cfg.QdrantCollection, "vectors", len(vectors))

		case "pgvector":
			r, err := retriever.NewPgvector(ctx, cfg.DatabaseURL, embed)
			if err != nil {
				return err
			}
			defer r.Close()
			if err := r.EnsureSchema(ctx, len(vectors[0])); err != nil {
				return err
			}
			if err := r.Upsert(ctx, passages, vectors); err != nil {
				return err
			}
			slog.Info("pgvector table populated", "vectors", len(vectors))

		default:
			return fmt.Errorf("unknown retriever backend %q", cfg.RetrieverBackend)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
