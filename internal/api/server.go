// Package api implements the HTTP layer for the SF-36 survey backend.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/saludlab/sf36-survey-backend/internal/profile"
	"github.com/saludlab/sf36-survey-backend/internal/records"
	"github.com/saludlab/sf36-survey-backend/internal/survey"
)

// RecordReader is the read side of the remote assessments table, used by the
// admin listing endpoints. The write side is wired into profile.Service.
type RecordReader interface {
	ListRecent(ctx context.Context, limit int, ascending bool) ([]records.Record, error)
	Ping(ctx context.Context) error
}

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// AdminToken authenticates the /api/admin routes via X-Admin-Token.
	AdminToken string

	// StrictSubmit requires all items answered before a submission is
	// accepted. When false, partial answer sets may be submitted.
	StrictSubmit bool

	// MinScaleRatio is the advisory per-scale completeness threshold used
	// for warnings. Warnings never block a submission.
	MinScaleRatio float64

	// RequestTimeout bounds every handler, default 30s.
	RequestTimeout time.Duration
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// mu guards questionnaire, which can be swapped at runtime by the
	// import endpoint. All other fields are read-only after NewServer.
	mu            sync.RWMutex
	questionnaire *survey.Questionnaire

	// svc runs the submission gate and profile upserts.
	svc *profile.Service

	// repo and drafts are the local store, used directly for reads.
	repo   profile.Repository
	drafts profile.DraftStore

	// recs reads the remote assessments table for the admin endpoints.
	recs RecordReader

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(
	q *survey.Questionnaire,
	svc *profile.Service,
	repo profile.Repository,
	drafts profile.DraftStore,
	recs RecordReader,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	s := &Server{
		questionnaire: q,
		svc:           svc,
		repo:          repo,
		drafts:        drafts,
		recs:          recs,
		cfg:           cfg,
		logger:        logger,
	}

	return s.routes()
}

// current returns the active questionnaire. Handlers must not mutate it.
func (s *Server) current() *survey.Questionnaire {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questionnaire
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r.Use(middleware.Timeout(timeout))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ── API v1 ────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {

		// Questionnaire definition — read by the form, replaceable at runtime.
		r.Get("/questionnaire", s.handleGetQuestionnaire)
		r.Post("/questionnaire/import", s.handleImportQuestionnaire)

		// Profiles and their drafts / previews / submissions / exports.
		r.Get("/profiles", s.handleListProfiles)
		r.Route("/profiles/{userID}", func(r chi.Router) {
			r.Get("/", s.handleGetProfile)
			r.Put("/", s.handleSaveProfile)

			r.Get("/draft", s.handleGetDraft)
			r.Put("/draft", s.handleSaveDraft)
			r.Delete("/draft", s.handleClearDraft)

			r.Post("/scores", s.handlePreviewScores)
			r.Post("/assessments", s.handleSubmitAssessment)

			r.Get("/export.json", s.handleExportProfileJSON)
			r.Get("/export.csv", s.handleExportProfileCSV)
			r.Get("/export.pdf", s.handleExportProfilePDF)
		})

		// Cross-profile exports.
		r.Get("/export.json", s.handleExportAllJSON)
		r.Get("/export.csv", s.handleExportAllCSV)

		// Admin — remote assessments table, token-gated.
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdminToken)
			r.Get("/ping", s.handleAdminPing)
			r.Get("/assessments", s.handleAdminListAssessments)
			r.Get("/assessments.csv", s.handleAdminAssessmentsCSV)
		})
	})

	return r
}
