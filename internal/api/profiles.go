package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saludlab/sf36-survey-backend/internal/profile"
	"github.com/saludlab/sf36-survey-backend/internal/scoring"
)

// ─── GET /api/profiles ───────────────────────────────────────────────────────

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.repo.LoadAll(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []profile.Profile{}
	}
	respond(w, http.StatusOK, profiles)
}

// ─── GET /api/profiles/:userID ───────────────────────────────────────────────

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	p, found, err := s.repo.FindByID(r.Context(), userID)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	if !found {
		respondErr(w, http.StatusNotFound, "profile not found")
		return
	}
	respond(w, http.StatusOK, p)
}

// ─── PUT /api/profiles/:userID ───────────────────────────────────────────────
//
// Upserts identity fields (name, notes). The assessment history is always
// preserved; replaying the same payload is safe.

type saveProfileRequest struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req saveProfileRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := s.svc.SaveProfile(r.Context(), profile.User{ID: userID, Name: req.Name}, req.Notes)
	if errors.Is(err, profile.ErrMissingIdentity) {
		respondErr(w, http.StatusUnprocessableEntity, "user id must not be empty")
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, p)
}

// ─── /api/profiles/:userID/draft ─────────────────────────────────────────────
//
// The draft is the per-user in-progress answer set. It survives restarts and
// is cleared automatically on a successful submission. A missing draft reads
// as an empty answer set, never as an error.

type draftPayload struct {
	Answers scoring.Answers `json:"answers"`
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	answers, err := s.drafts.LoadDraft(r.Context(), userID)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, draftPayload{Answers: answers})
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondErr(w, http.StatusUnprocessableEntity, "user id must not be empty")
		return
	}

	var req draftPayload
	if !decode(w, r, &req) {
		return
	}
	if req.Answers == nil {
		req.Answers = scoring.Answers{}
	}

	if err := s.drafts.SaveDraft(r.Context(), userID, req.Answers); err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"saved": len(req.Answers)})
}

func (s *Server) handleClearDraft(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := s.drafts.ClearDraft(r.Context(), userID); err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
