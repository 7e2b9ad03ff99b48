// Package export renders profiles and admin record listings into downloadable
// payloads: pretty-printed JSON, spreadsheet-friendly CSV, and a paginated
// PDF. Every formatter is a pure transform — deterministic for identical
// input and never touching the repository.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/saludlab/sf36-survey-backend/internal/profile"
)

// ProfileJSON dumps one profile, pretty-printed.
func ProfileJSON(p profile.Profile) ([]byte, error) {
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: profile json: %w", err)
	}
	return out, nil
}

// AllProfilesJSON dumps the whole profile collection, pretty-printed.
func AllProfilesJSON(ps []profile.Profile) ([]byte, error) {
	if ps == nil {
		ps = []profile.Profile{}
	}
	out, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: profiles json: %w", err)
	}
	return out, nil
}

// Stamp formats t as the compact YYYYMMDD_HHMM token used in all-profiles
// export filenames.
func Stamp(t time.Time) string {
	return t.Format("20060102_1504")
}
