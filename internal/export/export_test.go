package export_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/saludlab/sf36-survey-backend/internal/export"
	"github.com/saludlab/sf36-survey-backend/internal/profile"
	"github.com/saludlab/sf36-survey-backend/internal/records"
	"github.com/saludlab/sf36-survey-backend/internal/scoring"
	"github.com/saludlab/sf36-survey-backend/internal/survey"
)

func score(v float64, n int) scoring.ScaleScore {
	return scoring.ScaleScore{Label: "x", Score: &v, N: n}
}

func sampleProfile(assessments int) profile.Profile {
	p := profile.Profile{
		User:  profile.User{ID: "ana@example.com", Name: "Ana"},
		Notes: "antecedentes",
	}
	for i := 0; i < assessments; i++ {
		p.Assessments = append(p.Assessments, profile.Assessment{
			ID:        uuid.NewString(),
			Timestamp: time.Date(2026, 8, 1+i, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
			Answers:   scoring.Answers{"S21": 100, "S22": 80},
			Scores: map[string]scoring.ScaleScore{
				"BP": score(90, 2),
				"GH": score(66.666, 3),
				"PF": {Label: "Función física (PF)", N: 0}, // untouched → empty cell
			},
			UserID:   "ana@example.com",
			UserName: "Ana",
		})
	}
	return p
}

// ─── JSON ────────────────────────────────────────────────────────────────────

func TestProfileJSON_RoundTrip(t *testing.T) {
	orig := sampleProfile(2)

	raw, err := export.ProfileJSON(orig)
	if err != nil {
		t.Fatalf("ProfileJSON: %v", err)
	}

	var back profile.Profile
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if back.User != orig.User || back.Notes != orig.Notes {
		t.Errorf("user/notes mismatch: %+v", back)
	}
	if len(back.Assessments) != 2 {
		t.Fatalf("assessments: got %d, want 2", len(back.Assessments))
	}
	gotBP := back.Assessments[0].Scores["BP"]
	if gotBP.Score == nil || *gotBP.Score != 90 || gotBP.N != 2 {
		t.Errorf("BP score after round trip: %+v", gotBP)
	}
	if back.Assessments[0].Answers["S22"] != 80 {
		t.Errorf("answers after round trip: %v", back.Assessments[0].Answers)
	}
}

func TestAllProfilesJSON_NilBecomesEmptyArray(t *testing.T) {
	raw, err := export.AllProfilesJSON(nil)
	if err != nil {
		t.Fatalf("AllProfilesJSON: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("got %q, want []", raw)
	}
}

// ─── CSV ─────────────────────────────────────────────────────────────────────

func TestCSV_StartsWithUTF8BOMBytes(t *testing.T) {
	// Spreadsheet apps sniff the encoding from the first three bytes.
	wantPrefix := []byte{0xEF, 0xBB, 0xBF}

	for name, out := range map[string][]byte{
		"profile": export.ProfileCSV(sampleProfile(1), survey.ScaleKeys),
		"all":     export.AllProfilesCSV([]profile.Profile{sampleProfile(1)}, survey.ScaleKeys),
	} {
		if !bytes.HasPrefix(out, wantPrefix) {
			t.Errorf("%s: first bytes are % X, want EF BB BF", name, out[:min(3, len(out))])
		}
	}
}

func TestProfileCSV_RowCountAndHeader(t *testing.T) {
	p := sampleProfile(3)
	out := export.ProfileCSV(p, survey.ScaleKeys)

	text := strings.TrimPrefix(string(out), "\uFEFF")
	if len(text) == len(out) {
		t.Error("expected BOM prefix")
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 4 { // header + one per assessment
		t.Fatalf("lines: got %d, want 4", len(lines))
	}
	wantHeader := "timestamp," + strings.Join(survey.ScaleKeys, ",")
	if lines[0] != wantHeader {
		t.Errorf("header: got %q, want %q", lines[0], wantHeader)
	}
}

func TestProfileCSV_CellValues(t *testing.T) {
	p := sampleProfile(1)
	out := export.ProfileCSV(p, []string{"BP", "GH", "PF", "MH"})

	lines := strings.Split(strings.TrimPrefix(string(out), "\uFEFF"), "\n")
	row := strings.Split(lines[1], ",")
	if row[0] != p.Assessments[0].Timestamp {
		t.Errorf("timestamp cell: %q", row[0])
	}
	// BP 90, GH 66.666 → 67, PF n=0 → empty, MH absent → empty.
	if row[1] != "90" || row[2] != "67" || row[3] != "" || row[4] != "" {
		t.Errorf("cells: %v", row[1:])
	}
}

func TestProfileCSV_NoAssessments(t *testing.T) {
	out := export.ProfileCSV(sampleProfile(0), survey.ScaleKeys)
	lines := strings.Split(strings.TrimPrefix(string(out), "\uFEFF"), "\n")
	if len(lines) != 1 {
		t.Errorf("expected header only, got %d lines", len(lines))
	}
}

func TestAllProfilesCSV(t *testing.T) {
	a := sampleProfile(2)
	b := sampleProfile(1)
	b.User = profile.User{ID: "luis@example.com", Name: "Luis"}

	out := export.AllProfilesCSV([]profile.Profile{a, b}, survey.ScaleKeys)
	lines := strings.Split(strings.TrimPrefix(string(out), "\uFEFF"), "\n")
	if len(lines) != 4 { // header + 3 assessments across profiles
		t.Fatalf("lines: got %d, want 4", len(lines))
	}
	wantHeader := "userId,userName,timestamp," + strings.Join(survey.ScaleKeys, ",")
	if lines[0] != wantHeader {
		t.Errorf("header: got %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "luis@example.com,Luis,") {
		t.Errorf("row 3: got %q", lines[3])
	}
}

func TestRecordsCSV_QuotingAndHeader(t *testing.T) {
	id := uuid.New()
	out, err := export.RecordsCSV([]records.Record{
		{ID: id, UserID: "ana@example.com", UserName: `Ana "La Jefa", Pérez`, Timestamp: "2026-08-31T12:00:00Z"},
	})
	if err != nil {
		t.Fatalf("RecordsCSV: %v", err)
	}
	text := strings.TrimPrefix(string(out), "\uFEFF")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	if lines[0] != "id,user_id,user_name,timestamp" {
		t.Errorf("header: %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Ana ""La Jefa"", Pérez"`) {
		t.Errorf("name not quoted/escaped: %q", lines[1])
	}
	if !strings.HasPrefix(lines[1], id.String()) {
		t.Errorf("row should start with the row id: %q", lines[1])
	}
}

// ─── Determinism ─────────────────────────────────────────────────────────────

func TestExports_Deterministic(t *testing.T) {
	p := sampleProfile(2)

	j1, _ := export.ProfileJSON(p)
	j2, _ := export.ProfileJSON(p)
	if !bytes.Equal(j1, j2) {
		t.Error("ProfileJSON not deterministic")
	}

	c1 := export.ProfileCSV(p, survey.ScaleKeys)
	c2 := export.ProfileCSV(p, survey.ScaleKeys)
	if !bytes.Equal(c1, c2) {
		t.Error("ProfileCSV not deterministic")
	}

	d1, err := export.ProfilePDF(p, survey.ScaleKeys)
	if err != nil {
		t.Fatalf("ProfilePDF: %v", err)
	}
	d2, _ := export.ProfilePDF(p, survey.ScaleKeys)
	if !bytes.Equal(d1, d2) {
		t.Error("ProfilePDF not deterministic")
	}
}

// ─── PDF ─────────────────────────────────────────────────────────────────────

func TestProfilePDF_ProducesDocument(t *testing.T) {
	out, err := export.ProfilePDF(sampleProfile(2), survey.ScaleKeys)
	if err != nil {
		t.Fatalf("ProfilePDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("expected %PDF header")
	}
}

func TestProfilePDF_PaginatesLongHistories(t *testing.T) {
	short, err := export.ProfilePDF(sampleProfile(1), survey.ScaleKeys)
	if err != nil {
		t.Fatalf("ProfilePDF short: %v", err)
	}
	// Enough assessments to overflow one A4 page (each takes ~9 lines).
	long, err := export.ProfilePDF(sampleProfile(12), survey.ScaleKeys)
	if err != nil {
		t.Fatalf("ProfilePDF long: %v", err)
	}
	marker := []byte("/Type /Page")
	if bytes.Count(long, marker) <= bytes.Count(short, marker) {
		t.Error("expected the long history to span more pages than the short one")
	}
}

func TestProfilePDF_EmptyHistory(t *testing.T) {
	out, err := export.ProfilePDF(sampleProfile(0), survey.ScaleKeys)
	if err != nil {
		t.Fatalf("ProfilePDF: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected non-empty document")
	}
}
