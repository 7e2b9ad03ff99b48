package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saludlab/sf36-survey-backend/internal/profile"
	"github.com/saludlab/sf36-survey-backend/internal/scoring"
)

// ─── POST /api/profiles/:userID/scores ───────────────────────────────────────
//
// Stateless score preview. The client sends the current answer set and gets
// back all eight scale scores plus progress and per-scale completeness
// warnings. Nothing is persisted; unanswered scales come back with a null
// score and n=0.

type previewScoresRequest struct {
	Answers scoring.Answers `json:"answers"`
}

type previewScoresResponse struct {
	Scores   map[string]scoring.ScaleScore `json:"scores"`
	Answered int                           `json:"answered"`
	Total    int                           `json:"total"`
	Warnings []string                      `json:"warnings"`
}

func (s *Server) handlePreviewScores(w http.ResponseWriter, r *http.Request) {
	var req previewScoresRequest
	if !decode(w, r, &req) {
		return
	}

	q := s.current()
	warnings := scoring.ValidateCompleteness(req.Answers, q.Scales, s.cfg.MinScaleRatio)
	if warnings == nil {
		warnings = []string{}
	}

	respond(w, http.StatusOK, previewScoresResponse{
		Scores:   scoring.ComputeScaleScores(req.Answers, q.Scales),
		Answered: scoring.AnsweredCount(req.Answers, q),
		Total:    q.ItemCount(),
		Warnings: warnings,
	})
}

// ─── POST /api/profiles/:userID/assessments ──────────────────────────────────
//
// The submission gate. In strict mode (the default) every item must be
// answered; a partial answer set is rejected with 422 and the exact missing
// count, and nothing is persisted. When the remote record insert fails, the
// response is 502 and the draft is left intact so the caller can retry.

type submitAssessmentRequest struct {
	Name    string          `json:"name"`
	Notes   string          `json:"notes"`
	Answers scoring.Answers `json:"answers"`
	// Strict overrides the server-wide default when present.
	Strict *bool `json:"strict,omitempty"`
}

type submitAssessmentResponse struct {
	Assessment profile.Assessment `json:"assessment"`
	Warnings   []string           `json:"warnings"`
}

func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req submitAssessmentRequest
	if !decode(w, r, &req) {
		return
	}

	strict := s.cfg.StrictSubmit
	if req.Strict != nil {
		strict = *req.Strict
	}

	q := s.current()
	a, err := s.svc.Submit(r.Context(), profile.SubmitParams{
		User:          profile.User{ID: userID, Name: req.Name},
		Notes:         req.Notes,
		Answers:       req.Answers,
		Strict:        strict,
		Questionnaire: q,
	})

	switch {
	case errors.Is(err, profile.ErrMissingIdentity):
		respondErr(w, http.StatusUnprocessableEntity, "user id must not be empty")
		return
	case err != nil:
		var incomplete *profile.IncompleteError
		if errors.As(err, &incomplete) {
			respond(w, http.StatusUnprocessableEntity, map[string]any{
				"error":   "questionnaire incomplete",
				"missing": incomplete.Missing,
			})
			return
		}
		// The remote insert is the only step that can surface an error here;
		// local follow-up failures are logged inside the service instead.
		s.logger.Error("assessment submit failed", "error", err, "user_id", userID, logField(r))
		respondErr(w, http.StatusBadGateway, "assessment could not be recorded; please retry")
		return
	}

	warnings := scoring.ValidateCompleteness(req.Answers, q.Scales, s.cfg.MinScaleRatio)
	if warnings == nil {
		warnings = []string{}
	}

	respond(w, http.StatusCreated, submitAssessmentResponse{
		Assessment: a,
		Warnings:   warnings,
	})
}
