package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"triage-kb/internal/config"
	"triage-kb/internal/handlers"
	"triage-kb/internal/http"
	"triage-kb/internal/kb"
	"triage-kb/internal/kbadmin"
	"triage-kb/internal/learning"
	"triage-kb/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Select the feedback store backend
	var feedbackStore learning.Store
	switch cfg.FeedbackBackend {
	case config.BackendSQLite:
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer func() {
			_ = db.Close()
		}()
		if err := storage.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		feedbackStore = storage.NewFeedbackRepo(db)
		slog.Info("Feedback store initialized", "backend", cfg.FeedbackBackend, "path", cfg.DBPath)
	default:
		store, err := learning.NewJSONLStore(cfg.FeedbackLogPath())
		if err != nil {
			log.Fatalf("Failed to open feedback log: %v", err)
		}
		feedbackStore = store
		slog.Info("Feedback store initialized", "backend", cfg.FeedbackBackend, "path", cfg.FeedbackLogPath())
	}

	calculator := learning.NewCalculator(feedbackStore)

	// Create the search engine over the corpus directory
	source, err := kb.NewDirSource(cfg.KBDir)
	if err != nil {
		log.Fatalf("Failed to open corpus directory: %v", err)
	}
	engine := kb.NewEngine(source, cfg.ChunkTargetWords, cfg.IndexSummaryPath())

	// Build the initial snapshot. A failure here leaves the engine serving
	// an empty index; the reindex endpoint can retry once the corpus is fixed.
	if stats, err := engine.Reindex(context.Background()); err != nil {
		slog.Error("Initial index build failed", "error", err)
	} else {
		slog.Info("Knowledge base indexed",
			"documents", stats.DocumentsIndexed,
			"chunks", stats.ChunksIndexed,
			"avg_chunk_length", stats.AvgChunkLength,
		)
	}

	deps := &http.Deps{
		Engine:         engine,
		ArticleManager: kbadmin.NewManager(cfg.KBDir),
		FeedbackStore:  feedbackStore,
		Calculator:     calculator,
		Defaults: handlers.Defaults{
			SearchThreshold:   cfg.SearchThreshold,
			AnswerThreshold:   cfg.AnswerThreshold,
			Alpha:             cfg.SearchAlpha,
			PriorHalfLifeDays: cfg.PriorHalfLifeDays,
			PriorSmoothingM:   cfg.PriorSmoothingM,
		},
	}
	router := http.NewRouter(deps)

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting API server", "port", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
