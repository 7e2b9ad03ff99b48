package api

import (
	"net/http"
	"strconv"

	"github.com/saludlab/sf36-survey-backend/internal/export"
	"github.com/saludlab/sf36-survey-backend/internal/records"
)

// ─── GET /api/admin/ping ─────────────────────────────────────────────────────

func (s *Server) handleAdminPing(w http.ResponseWriter, r *http.Request) {
	if err := s.recs.Ping(r.Context()); err != nil {
		s.logger.Error("admin ping failed", "error", err, logField(r))
		respondErr(w, http.StatusBadGateway, "assessments table unreachable")
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── GET /api/admin/assessments ──────────────────────────────────────────────
//
// Lists recent rows from the shared remote assessments table across all
// respondents. Newest first by default; ?order=asc flips it. ?limit= is
// clamped server-side to the table's hard cap.

func listParams(r *http.Request) (limit int, ascending bool, err error) {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, false, errInvalidLimit
		}
	}

	switch r.URL.Query().Get("order") {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		return 0, false, errInvalidOrder
	}
	return limit, ascending, nil
}

var (
	errInvalidLimit = &paramError{"limit must be a positive integer"}
	errInvalidOrder = &paramError{`order must be "asc" or "desc"`}
)

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }

type adminListResponse struct {
	Assessments []records.Record `json:"assessments"`
	Count       int              `json:"count"`
}

func (s *Server) handleAdminListAssessments(w http.ResponseWriter, r *http.Request) {
	limit, ascending, err := listParams(r)
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.recs.ListRecent(r.Context(), limit, ascending)
	if err != nil {
		s.logger.Error("admin listing failed", "error", err, logField(r))
		respondErr(w, http.StatusBadGateway, "assessments table unreachable")
		return
	}
	if rows == nil {
		rows = []records.Record{}
	}
	respond(w, http.StatusOK, adminListResponse{Assessments: rows, Count: len(rows)})
}

// ─── GET /api/admin/assessments.csv ──────────────────────────────────────────

func (s *Server) handleAdminAssessmentsCSV(w http.ResponseWriter, r *http.Request) {
	limit, ascending, err := listParams(r)
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.recs.ListRecent(r.Context(), limit, ascending)
	if err != nil {
		s.logger.Error("admin listing failed", "error", err, logField(r))
		respondErr(w, http.StatusBadGateway, "assessments table unreachable")
		return
	}

	body, err := export.RecordsCSV(rows)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respondDownload(w, "text/csv; charset=utf-8", "sf36_evaluaciones.csv", body)
}
