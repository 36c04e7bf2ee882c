// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pawmart_web/internal/config"
	"pawmart_web/internal/jobs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pawmart-web",
		Short:         "PawMart web server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
	root.AddCommand(newServeCmd(), newSyncListingsCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newSyncListingsCmd() *cobra.Command {
	opts := jobs.SyncOptions{}
	cmd := &cobra.Command{
		Use:   "sync-listings",
		Short: "Copy every backend listing into the search mirror once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListingSync(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 100, "Batch size for syncing listings")
	cmd.Flags().StringVar(&opts.Refresh, "es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")
	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
		return err
	}
	log.Println("INFO: Server shutdown complete.")
	return nil
}

func runListingSync(ctx context.Context, opts jobs.SyncOptions) error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
	}

	ls, cleanup, err := initializeListingSync(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize listing sync: %v", err)
	}
	defer cleanup()

	ls.Logger.Info("Starting listing synchronization to Elasticsearch...",
		zap.Int("batchSize", opts.BatchSize),
		zap.String("esRefreshPolicy", opts.Refresh),
	)
	result, err := ls.Job.RunOnce(ctx, opts)
	if err != nil {
		ls.Logger.Error("Listing synchronization failed",
			zap.Error(err),
			zap.Int("indexed", result.Indexed),
			zap.Int("failed", result.Failed),
		)
		return err
	}
	ls.Logger.Info("Listing synchronization completed successfully.",
		zap.Int("fetched", result.Fetched),
		zap.Int("indexed", result.Indexed),
		zap.Int("batches", result.Batches),
	)
	return nil
}
