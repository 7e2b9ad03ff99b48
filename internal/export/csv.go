package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/saludlab/sf36-survey-backend/internal/profile"
	"github.com/saludlab/sf36-survey-backend/internal/records"
	"github.com/saludlab/sf36-survey-backend/internal/scoring"
)

// bom is the UTF-8 byte-order marker. Spreadsheet apps need it to detect the
// encoding of the accented Spanish scale labels.
const bom = "\uFEFF"

// scoreCell renders one scale cell: the rounded integer score, or an empty
// cell when the scale has no answered items.
func scoreCell(scores map[string]scoring.ScaleScore, key string) string {
	s, ok := scores[key]
	if !ok {
		return ""
	}
	v, ok := scoring.RoundScore(s.Score)
	if !ok {
		return ""
	}
	return strconv.Itoa(v)
}

// ProfileCSV renders one profile's assessment history. Layout:
//
//	timestamp,PF,RP,...
//	2026-08-31T12:00:00Z,85,100,...
//
// One data row per assessment, in history order. scaleKeys fixes the column
// order (use survey.ScaleKeys for the canonical one).
func ProfileCSV(p profile.Profile, scaleKeys []string) []byte {
	lines := make([]string, 0, len(p.Assessments)+1)
	lines = append(lines, strings.Join(append([]string{"timestamp"}, scaleKeys...), ","))

	for _, a := range p.Assessments {
		cols := make([]string, 0, len(scaleKeys)+1)
		cols = append(cols, a.Timestamp)
		for _, key := range scaleKeys {
			cols = append(cols, scoreCell(a.Scores, key))
		}
		lines = append(lines, strings.Join(cols, ","))
	}

	return []byte(bom + strings.Join(lines, "\n"))
}

// AllProfilesCSV renders every assessment across all profiles, prefixed with
// the owning user's id and name.
func AllProfilesCSV(ps []profile.Profile, scaleKeys []string) []byte {
	var lines []string
	lines = append(lines, strings.Join(append([]string{"userId", "userName", "timestamp"}, scaleKeys...), ","))

	for _, p := range ps {
		for _, a := range p.Assessments {
			cols := make([]string, 0, len(scaleKeys)+3)
			cols = append(cols, p.User.ID, p.User.Name, a.Timestamp)
			for _, key := range scaleKeys {
				cols = append(cols, scoreCell(a.Scores, key))
			}
			lines = append(lines, strings.Join(cols, ","))
		}
	}

	return []byte(bom + strings.Join(lines, "\n"))
}

// RecordsCSV renders the admin listing: id, user_id, user_name, timestamp,
// properly quoted since user names are free text.
func RecordsCSV(rows []records.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(bom)

	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "user_id", "user_name", "timestamp"}); err != nil {
		return nil, fmt.Errorf("export: records csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write([]string{r.ID.String(), r.UserID, r.UserName, r.Timestamp}); err != nil {
			return nil, fmt.Errorf("export: records csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: records csv: %w", err)
	}
	return buf.Bytes(), nil
}
