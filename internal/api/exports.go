package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/saludlab/sf36-survey-backend/internal/export"
	"github.com/saludlab/sf36-survey-backend/internal/profile"
	"github.com/saludlab/sf36-survey-backend/internal/survey"
)

// ─── Per-profile exports ─────────────────────────────────────────────────────
//
// GET /api/profiles/:userID/export.json — full profile with history
// GET /api/profiles/:userID/export.csv  — one row per assessment, BOM-prefixed
// GET /api/profiles/:userID/export.pdf  — printable score history
//
// Filenames follow the established download conventions so re-exports
// overwrite older files in the browser's download directory.

func (s *Server) loadProfile(w http.ResponseWriter, r *http.Request) (profile.Profile, bool) {
	userID := chi.URLParam(r, "userID")

	p, found, err := s.repo.FindByID(r.Context(), userID)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return profile.Profile{}, false
	}
	if !found {
		respondErr(w, http.StatusNotFound, "profile not found")
		return profile.Profile{}, false
	}
	return p, true
}

func (s *Server) handleExportProfileJSON(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}

	body, err := export.ProfileJSON(p)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respondDownload(w, "application/json", "sf36_perfil_"+p.User.ID+".json", body)
}

func (s *Server) handleExportProfileCSV(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}

	body := export.ProfileCSV(p, survey.ScaleKeys)
	respondDownload(w, "text/csv; charset=utf-8", "sf36_historial_"+p.User.ID+".csv", body)
}

func (s *Server) handleExportProfilePDF(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}

	body, err := export.ProfilePDF(p, survey.ScaleKeys)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respondDownload(w, "application/pdf", "sf36_historial_"+p.User.ID+".pdf", body)
}

// ─── Cross-profile exports ───────────────────────────────────────────────────
//
// GET /api/export.json — every profile with full history
// GET /api/export.csv  — one row per (profile, assessment) pair

func (s *Server) handleExportAllJSON(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.repo.LoadAll(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	body, err := export.AllProfilesJSON(profiles)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	name := "sf36_todos_perfiles_" + export.Stamp(time.Now()) + ".json"
	respondDownload(w, "application/json", name, body)
}

func (s *Server) handleExportAllCSV(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.repo.LoadAll(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	body := export.AllProfilesCSV(profiles, survey.ScaleKeys)
	name := "sf36_todos_perfiles_" + export.Stamp(time.Now()) + ".csv"
	respondDownload(w, "text/csv; charset=utf-8", name, body)
}
