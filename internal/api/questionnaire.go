package api

import (
	"io"
	"net/http"

	"github.com/saludlab/sf36-survey-backend/internal/survey"
)

// ─── GET /api/questionnaire ──────────────────────────────────────────────────
//
// Returns the active questionnaire definition: title, instructions, the full
// item list with option labels/values, and the scale → item mapping. The form
// renders entirely from this payload.

func (s *Server) handleGetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.current())
}

// ─── POST /api/questionnaire/import ──────────────────────────────────────────
//
// Replaces the active questionnaire with a caller-supplied JSON dataset.
// The dataset is validated before it is swapped in; a rejected dataset leaves
// the current questionnaire untouched. Title and instructions fall back to
// the built-in defaults when omitted.
//
// A successful swap wipes all saved drafts: they are keyed to the previous
// definition's item ids and would otherwise linger as stray answers.

type importQuestionnaireResponse struct {
	Title  string `json:"title"`
	Items  int    `json:"items"`
	Scales int    `json:"scales"`
}

func (s *Server) handleImportQuestionnaire(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		respondErr(w, http.StatusBadRequest, "could not read request body")
		return
	}

	q, err := survey.Parse(raw)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "invalid questionnaire: "+err.Error())
		return
	}

	s.mu.Lock()
	s.questionnaire = q
	s.mu.Unlock()

	if err := s.drafts.ClearAllDrafts(r.Context()); err != nil {
		s.logger.Error("clear drafts after import", "error", err, logField(r))
	}

	s.logger.Info("questionnaire imported",
		"title", q.Title,
		"items", q.ItemCount(),
		"scales", len(q.Scales),
		logField(r),
	)

	respond(w, http.StatusOK, importQuestionnaireResponse{
		Title:  q.Title,
		Items:  q.ItemCount(),
		Scales: len(q.Scales),
	})
}
