package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmorales/normabot/internal/pipeline"
	"github.com/jmorales/normabot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP question-answering API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		embed := buildEmbedder(cfg)
		registry := buildRegistry(cfg)

		retr, closeRetriever, err := buildRetriever(ctx, cfg, embed)
		if err != nil {
			return fmt.Errorf("failed to open retriever: %w", err)
		}
		defer closeRetriever()
		slog.Info("retriever ready", "backend", cfg.RetrieverBackend)

		query := func(ctx context.Context, q, provider string, k int) (pipeline.Result, error) {
			if provider == "" {
				provider = cfg.DefaultProvider
			}
			client, err := registry.Get(provider)
			if err != nil {
				return pipeline.Result{}, err
			}
			pl, err := buildPipeline(cfg, retr, client, k)
			if err != nil {
				return pipeline.Result{}, err
			}
			return pl.Run(ctx, q)
		}

		httpServer := server.New(server.Config{
			Port:      cfg.HTTPPort,
			Logger:    slog.Default(),
			Query:     query,
			Providers: registry.Names(),
			DefaultK:  cfg.FinalK,
		})

		errCh := make(chan error, 1)
		go func() {
			slog.Info("starting HTTP server", "port", cfg.HTTPPort, "environment", cfg.Environment)
			if err := httpServer.Start(); err != nil {
				errCh <- fmt.Errorf("HTTP server error: %w", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			slog.Info("received shutdown signal", "signal", sig.String())
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP server", "error", err)
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
