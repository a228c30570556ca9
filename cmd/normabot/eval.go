package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmorales/normabot/internal/eval"
	"github.com/jmorales/normabot/internal/pipeline"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate answer quality against a gold set",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		goldPath, _ := cmd.Flags().GetString("gold")
		providerList, _ := cmd.Flags().GetString("providers")
		recordsPath, _ := cmd.Flags().GetString("out")

		items, err := eval.LoadGoldSet(goldPath)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("gold set %s is empty", goldPath)
		}

		embed := buildEmbedder(cfg)
		registry := buildRegistry(cfg)

		retr, closeRetriever, err := buildRetriever(cmd.Context(), cfg, embed)
		if err != nil {
			return fmt.Errorf("failed to open retriever: %w", err)
		}
		defer closeRetriever()

		providers := strings.Split(providerList, ",")
		pipelines := make(map[string]*pipeline.Pipeline, len(providers))
		for _, name := range providers {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			client, err := registry.Get(name)
			if err != nil {
				return err
			}
			pl, err := buildPipeline(cfg, retr, client, cfg.FinalK)
			if err != nil {
				return err
			}
			pipelines[name] = pl
		}
		if len(pipelines) == 0 {
			return fmt.Errorf("no providers selected")
		}

		runner := eval.NewRunner(retr, embed, pipelines, cfg.TopK, slog.Default())
		records, err := runner.Run(cmd.Context(), items)
		if err != nil {
			return err
		}

		if recordsPath != "" {
			f, err := os.Create(recordsPath)
			if err != nil {
				return fmt.Errorf("creating records file: %w", err)
			}
			defer f.Close()
			enc := json.NewEncoder(f)
			for _, rec := range records {
				if err := enc.Encode(rec); err != nil {
					return fmt.Errorf("writing record: %w", err)
				}
			}
			slog.Info("evaluation records written", "path", recordsPath, "records", len(records))
		}

		for _, s := range eval.Summarize(records) {
			fmt.Printf("%s: questions=%d precision@k=%.3f exact_match=%.3f cosine=%.3f citation_presence=%.3f\n",
				s.Provider, s.Questions, s.PrecisionAtK, s.ExactMatch, s.CosineSimilarity, s.CitationPresence)
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().String("gold", "eval/gold_set.jsonl", "path to the gold set JSONL file")
	evalCmd.Flags().String("providers", "deepseek", "comma-separated providers to evaluate")
	evalCmd.Flags().String("out", "", "optional path for per-question JSONL records")
	rootCmd.AddCommand(evalCmd)
}
