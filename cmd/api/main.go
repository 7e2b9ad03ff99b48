package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/saludlab/sf36-survey-backend/internal/api"
	"github.com/saludlab/sf36-survey-backend/internal/config"
	"github.com/saludlab/sf36-survey-backend/internal/profile"
	"github.com/saludlab/sf36-survey-backend/internal/records"
	"github.com/saludlab/sf36-survey-backend/internal/store"
	"github.com/saludlab/sf36-survey-backend/internal/survey"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	// ── Questionnaire ─────────────────────────────────────────────────────────
	// The built-in RAND-36 dataset unless QUESTIONNAIRE_PATH points at a
	// custom JSON definition. A broken file is a startup error, not a
	// silent fallback.
	questionnaire, err := loadQuestionnaire(cfg.QuestionnairePath)
	if err != nil {
		return fmt.Errorf("questionnaire: %w", err)
	}
	logger.Info("questionnaire loaded",
		"title", questionnaire.Title,
		"items", questionnaire.ItemCount(),
		"scales", len(questionnaire.Scales),
	)

	// ── Remote assessments table ──────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := records.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("assessments database: %w", err)
	}
	defer pool.Close()

	recs := records.New(pool)
	if err := recs.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("assessments schema: %w", err)
	}
	logger.Info("assessments database connected")

	// ── Local store (profiles + drafts) ───────────────────────────────────────
	st, err := store.Open(cfg.LocalStorePath)
	if err != nil {
		return fmt.Errorf("local store: %w", err)
	}
	defer st.Close()
	logger.Info("local store opened", "path", cfg.LocalStorePath)

	// ── Submission service ────────────────────────────────────────────────────
	svc := profile.NewService(st, st, recs, logger)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		questionnaire,
		svc,
		st, // *Store satisfies profile.Repository
		st, // and profile.DraftStore
		recs,
		api.Config{
			Env:            cfg.Env,
			AdminToken:     cfg.AdminToken,
			StrictSubmit:   cfg.StrictSubmit,
			MinScaleRatio:  cfg.MinScaleRatio,
			RequestTimeout: cfg.RequestTimeout,
		},
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // generous — the PDF export can be slow on long histories
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until either a signal arrives or the server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// loadQuestionnaire returns the built-in dataset, or the parsed contents of
// path when it is non-empty.
func loadQuestionnaire(path string) (*survey.Questionnaire, error) {
	if path == "" {
		return survey.Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	q, err := survey.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return q, nil
}
