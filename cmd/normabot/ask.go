package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmorales/normabot/internal/server"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		provider, _ := cmd.Flags().GetString("provider")
		if provider == "" {
			provider = cfg.DefaultProvider
		}
		k, _ := cmd.Flags().GetInt("k")
		if k <= 0 {
			k = cfg.FinalK
		}

		embed := buildEmbedder(cfg)
		registry := buildRegistry(cfg)

		client, err := registry.Get(provider)
		if err != nil {
			return err
		}

		retr, closeRetriever, err := buildRetriever(cmd.Context(), cfg, embed)
		if err != nil {
			return fmt.Errorf("failed to open retriever: %w", err)
		}
		defer closeRetriever()

		pl, err := buildPipeline(cfg, retr, client, k)
		if err != nil {
			return err
		}

		result, err := pl.Run(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Println(result.Answer)
		if len(result.Sources) > 0 {
			fmt.Println()
			fmt.Println("Fuentes:")
			for _, label := range server.RenderSources(result.Sources) {
				fmt.Printf("  - %s\n", label)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().String("provider", "", "generation provider (chatgpt, deepseek, ollama)")
	askCmd.Flags().Int("k", 0, "number of passages to synthesize from")
	rootCmd.AddCommand(askCmd)
}
