// Package records is the remote assessment record table: one Postgres row per
// submitted assessment, written atomically at submission time and read back
// by the admin listing view.
//
// Dependency rule: records imports profile for the adapter method only; it
// never imports api, store, or export.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/saludlab/sf36-survey-backend/internal/profile"
)

// Schema creates the assessments table. EnsureSchema applies it at startup so
// the server refuses to run against a database it cannot write to.
const Schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id        UUID PRIMARY KEY,
	user_id   TEXT NOT NULL,
	user_name TEXT NOT NULL DEFAULT '',
	ts        TIMESTAMPTZ NOT NULL,
	answers   JSONB,
	scores    JSONB,
	notes     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS assessments_ts_idx ON assessments (ts DESC);
`

// MaxListLimit caps the admin listing page size.
const MaxListLimit = 1000

// Record is one row of the remote table. Answers and Scores are the JSON
// documents exactly as submitted; the admin view does not re-score.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	UserName  string          `json:"user_name"`
	Timestamp string          `json:"timestamp"` // ISO-8601 / RFC 3339 UTC
	Answers   json.RawMessage `json:"answers"`
	Scores    json.RawMessage `json:"scores"`
	Notes     string          `json:"notes,omitempty"`
}

// Store wraps the Postgres connection pool for the assessments table.
type Store struct {
	pool *sql.DB
}

func New(pool *sql.DB) *Store { return &Store{pool: pool} }

// Open opens and verifies the connection pool. The pool is tuned for the low
// write rate of a single-operator survey station.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("records: open: %w", err)
	}

	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("records: ping: %w", err)
	}
	return pool, nil
}

// EnsureSchema applies Schema. Safe to call on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("records: ensure schema: %w", err)
	}
	return nil
}

// Ping reports whether the remote database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.PingContext(ctx); err != nil {
		return fmt.Errorf("records: ping: %w", err)
	}
	return nil
}

// Insert writes one record as a single row — it succeeds entirely or fails
// entirely; there are no partial-field updates. A zero ID is assigned here.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	if rec.UserID == "" {
		return fmt.Errorf("records: insert: empty user_id")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	ts, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("records: insert: bad timestamp %q: %w", rec.Timestamp, err)
	}

	_, err = s.pool.ExecContext(ctx, `
		INSERT INTO assessments (id, user_id, user_name, ts, answers, scores, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.UserID, rec.UserName, ts,
		pqtype.NullRawMessage{RawMessage: rec.Answers, Valid: len(rec.Answers) > 0},
		pqtype.NullRawMessage{RawMessage: rec.Scores, Valid: len(rec.Scores) > 0},
		rec.Notes,
	)
	if err != nil {
		return fmt.Errorf("records: insert assessment for %q: %w", rec.UserID, err)
	}
	return nil
}

// InsertAssessment adapts a profile.Assessment to a Record and inserts it.
// This is the method the submission gate calls (profile.Recorder).
func (s *Store) InsertAssessment(ctx context.Context, a profile.Assessment) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("records: marshal answers: %w", err)
	}
	scores, err := json.Marshal(a.Scores)
	if err != nil {
		return fmt.Errorf("records: marshal scores: %w", err)
	}

	id, err := uuid.Parse(a.ID)
	if err != nil {
		id = uuid.New()
	}

	return s.Insert(ctx, Record{
		ID:        id,
		UserID:    a.UserID,
		UserName:  a.UserName,
		Timestamp: a.Timestamp,
		Answers:   answers,
		Scores:    scores,
		Notes:     a.Notes,
	})
}

// ListRecent fetches up to limit records ordered by timestamp, newest first
// unless ascending is set. limit is clamped to [1, MaxListLimit].
func (s *Store) ListRecent(ctx context.Context, limit int, ascending bool) ([]Record, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	order := "DESC"
	if ascending {
		order = "ASC"
	}

	rows, err := s.pool.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, user_name, ts, answers, scores, notes
		FROM assessments
		ORDER BY ts %s
		LIMIT $1`, order), limit)
	if err != nil {
		return nil, fmt.Errorf("records: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			rec     Record
			ts      time.Time
			answers pqtype.NullRawMessage
			scores  pqtype.NullRawMessage
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.UserName, &ts, &answers, &scores, &rec.Notes); err != nil {
			return nil, fmt.Errorf("records: scan: %w", err)
		}
		rec.Timestamp = ts.UTC().Format(time.RFC3339)
		if answers.Valid {
			rec.Answers = answers.RawMessage
		}
		if scores.Valid {
			rec.Scores = scores.RawMessage
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: iterate: %w", err)
	}
	return out, nil
}
