package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmorales/normabot/internal/ingest"
	"github.com/jmorales/normabot/internal/passage"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Split raw corpus documents into the passage table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ingestor := ingest.NewIngestor(ingest.ChunkerConfig{
			Size:    cfg.ChunkSize,
			Overlap: cfg.ChunkOverlap,
		}, slog.Default())

		passages, err := ingestor.IngestDir(cfg.RawDir)
		if err != nil {
			return err
		}
		if len(passages) == 0 {
			return fmt.Errorf("no passages produced from %s", cfg.RawDir)
		}

		if err := os.MkdirAll(filepath.Dir(cfg.PassagePath), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := passage.WriteParquet(cfg.PassagePath, passages); err != nil {
			return err
		}

		slog.Info("passage table written", "path", cfg.PassagePath, "passages", len(passages))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
