package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/courtlens/docketdex/internal/config"
	dbRedis "github.com/courtlens/docketdex/internal/db/redis"
	"github.com/courtlens/docketdex/internal/domain"
	logpkg "github.com/courtlens/docketdex/internal/logger"
	"github.com/courtlens/docketdex/internal/metrics"
	checkpointrepo "github.com/courtlens/docketdex/internal/repository/checkpoint"
	docketrepo "github.com/courtlens/docketdex/internal/repository/docket"
	searchrepo "github.com/courtlens/docketdex/internal/repository/search"
	sourcerepo "github.com/courtlens/docketdex/internal/repository/source"
	chiTransport "github.com/courtlens/docketdex/internal/transport/chi"
	healthuc "github.com/courtlens/docketdex/internal/usecase/health"
	reindexuc "github.com/courtlens/docketdex/internal/usecase/reindex"
	searchuc "github.com/courtlens/docketdex/internal/usecase/search"
	syncuc "github.com/courtlens/docketdex/internal/usecase/sync"
	"github.com/courtlens/docketdex/internal/version"
	"github.com/courtlens/docketdex/internal/worker"
)

func main() {
	root := &cobra.Command{
		Use:           "docketdex",
		Short:         "Two-level docket search index",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), reindexCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds everything the commands share after bootstrap.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  *dbRedis.Store
	source *sourcerepo.Client
}

// bootstrap loads config, builds the logger and connects the store.
func bootstrap() (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	domain.KeyPrefix = cfg.Storage.KeyPrefix

	logger.Info("Starting docketdex",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	var source *sourcerepo.Client
	if cfg.Source.BaseURL != "" {
		source = sourcerepo.New(cfg.Source.BaseURL, cfg.Source.APIKey,
			time.Duration(cfg.Source.TimeoutSec)*time.Second)
	}

	return &app{cfg: cfg, logger: logger, store: store, source: source}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server and event synchronizer",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			if a.source == nil {
				return fmt.Errorf("source.base_url is required for serve")
			}
			return runServe(a)
		},
	}
}

func runServe(a *app) error {
	cfg, logger := a.cfg, a.logger

	metrics.RegisterIndexingMetrics()

	ctx := context.Background()
	if err := docketrepo.EnsureIndexes(ctx, a.store); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("Search indexes ready")

	repo := docketrepo.New(a.store)
	syncSvc := syncuc.New(repo, a.source, logger)

	pool := worker.NewPool(worker.Config{
		Workers:    cfg.Sync.Workers,
		QueueSize:  cfg.Sync.QueueSize,
		MaxRetries: cfg.Sync.MaxRetries,
		RetryDelay: time.Duration(cfg.Sync.RetryDelayMS) * time.Millisecond,
	}, syncSvc, logger)
	pool.Start()

	searchSvc := searchuc.New(searchrepo.New(a.store), logger).WithLimits(
		cfg.Search.ChildHitsPerResult,
		cfg.Search.ViewMoreChildHits,
		cfg.Search.MaxJoinChildren,
		cfg.Search.NoMatchHLSize,
	)
	healthSvc := healthuc.New(a.store)

	server := chiTransport.NewServer(searchSvc, pool, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	pool.Stop(shutdownCtx)

	logger.Info("Server stopped gracefully")
	return nil
}

func reindexCmd() *cobra.Command {
	var (
		searchType string
		batchSize  int
	)
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the system of record",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			if a.source == nil {
				return fmt.Errorf("source.base_url is required for reindex")
			}
			if batchSize <= 0 {
				batchSize = a.cfg.Sync.ReindexBatchSize
			}
			return runReindex(a, searchType, batchSize)
		},
	}
	cmd.Flags().StringVar(&searchType, "type", "recap", "search type to reindex")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "dockets per checkpointed batch (default from config)")
	return cmd
}

func runReindex(a *app, searchType string, batchSize int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := docketrepo.EnsureIndexes(ctx, a.store); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	svc := reindexuc.New(a.source, docketrepo.New(a.store), checkpointrepo.New(a.store), a.logger)

	start := time.Now()
	stats, err := svc.Run(ctx, searchType, batchSize)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	a.logger.Info("Reindex complete",
		zap.String("search_type", searchType),
		zap.Int("dockets", stats.Dockets),
		zap.Int("filings", stats.Filings),
		zap.Int64("last_id", stats.LastID),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
