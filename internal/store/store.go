// Package store implements the local profile and draft repository on SQLite.
//
// Profiles and drafts are stored as JSON blobs keyed by user id — the same
// shape the data has on the wire — with no schema versioning. A blob that no
// longer parses is treated as absent rather than surfaced as an error, so a
// corrupt row degrades the application to an empty state instead of breaking
// it.
//
// Concurrent-write discipline is last-writer-wins at the granularity of a
// full profile save. Concurrent assessment appends are not merged; this is
// acceptable for the single-operator usage this system assumes, and is a
// known limitation.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/saludlab/sf36-survey-backend/internal/profile"
	"github.com/saludlab/sf36-survey-backend/internal/scoring"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id    TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);

CREATE TABLE IF NOT EXISTS drafts (
	user_id    TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);
`

// Store is the SQLite-backed repository. It satisfies both
// profile.Repository and profile.DraftStore.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and bootstraps the
// schema. The parent directory is created when absent.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	// modernc.org/sqlite serialises writes itself, but a single connection
	// avoids SQLITE_BUSY on overlapping write transactions.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: bootstrap schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// ─── PROFILES ────────────────────────────────────────────────────────────────

// LoadAll returns every stored profile. A missing table, an empty table, or
// rows whose blobs no longer parse all yield an empty (or shortened) result —
// never an error for corrupt data, matching the repository contract.
func (s *Store) LoadAll(ctx context.Context) ([]profile.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM profiles ORDER BY user_id`)
	if err != nil {
		return []profile.Profile{}, fmt.Errorf("store: load profiles: %w", err)
	}
	defer rows.Close()

	out := []profile.Profile{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return out, fmt.Errorf("store: scan profile: %w", err)
		}
		var p profile.Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue // corrupt blob — skip, don't fail the whole listing
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("store: iterate profiles: %w", err)
	}
	return out, nil
}

// Save inserts or fully replaces the profile for p.User.ID.
func (s *Store) Save(ctx context.Context, p profile.Profile) error {
	if p.User.ID == "" {
		return errors.New("store: profile has no user id")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store: marshal profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, data, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		ON CONFLICT(user_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		p.User.ID, string(raw))
	if err != nil {
		return fmt.Errorf("store: save profile %q: %w", p.User.ID, err)
	}
	return nil
}

// AppendAssessment appends one assessment snapshot to the user's history,
// preserving insertion order. It is a no-op — not an error — when no profile
// exists for userID; profile creation is an explicit Save.
func (s *Store) AppendAssessment(ctx context.Context, userID string, a profile.Assessment) error {
	p, found, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	p.Assessments = append(p.Assessments, a)
	return s.Save(ctx, p)
}

// FindByID loads one profile. found is false for an unknown id or a blob
// that no longer parses.
func (s *Store) FindByID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Profile{}, false, nil
	}
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("store: find profile %q: %w", userID, err)
	}

	var p profile.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return profile.Profile{}, false, nil // corrupt blob — treat as absent
	}
	return p, true, nil
}

// ─── DRAFTS ──────────────────────────────────────────────────────────────────

// SaveDraft stores the user's in-progress answer set, replacing any previous
// draft.
func (s *Store) SaveDraft(ctx context.Context, userID string, answers scoring.Answers) error {
	if userID == "" {
		return errors.New("store: draft has no user id")
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("store: marshal draft: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (user_id, data, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		ON CONFLICT(user_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		userID, string(raw))
	if err != nil {
		return fmt.Errorf("store: save draft %q: %w", userID, err)
	}
	return nil
}

// LoadDraft returns the user's saved answer set, or an empty one when there
// is no draft or the stored blob is unreadable.
func (s *Store) LoadDraft(ctx context.Context, userID string) (scoring.Answers, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM drafts WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return scoring.Answers{}, nil
	}
	if err != nil {
		return scoring.Answers{}, fmt.Errorf("store: load draft %q: %w", userID, err)
	}

	var answers scoring.Answers
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return scoring.Answers{}, nil // corrupt draft — start fresh
	}
	if answers == nil {
		answers = scoring.Answers{}
	}
	return answers, nil
}

// ClearDraft removes the user's draft. Clearing an absent draft is fine.
func (s *Store) ClearDraft(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("store: clear draft %q: %w", userID, err)
	}
	return nil
}

// ClearAllDrafts removes every draft. Called after a questionnaire swap,
// since existing drafts are keyed to the old definition's item ids.
func (s *Store) ClearAllDrafts(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts`); err != nil {
		return fmt.Errorf("store: clear all drafts: %w", err)
	}
	return nil
}
