package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saludlab/sf36-survey-backend/internal/scoring"
	"github.com/saludlab/sf36-survey-backend/internal/survey"
)

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrMissingIdentity is returned by Submit when no user id is set. The form
// stays editable; nothing is persisted.
var ErrMissingIdentity = errors.New("profile: missing user id")

// IncompleteError is returned by Submit in strict mode when not every item is
// answered. Missing is the exact number of unanswered items, so the caller
// can tell the user how much work remains.
type IncompleteError struct {
	Missing int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("profile: %d item(s) still unanswered", e.Missing)
}

// ─── DEPENDENCY CONTRACTS ────────────────────────────────────────────────────

// Repository is the local profile store. Save replaces a whole profile
// (last-writer-wins); AppendAssessment is a no-op when the user id has no
// profile, so callers that need a guaranteed append must Save first.
type Repository interface {
	LoadAll(ctx context.Context) ([]Profile, error)
	Save(ctx context.Context, p Profile) error
	AppendAssessment(ctx context.Context, userID string, a Assessment) error
	FindByID(ctx context.Context, userID string) (Profile, bool, error)
}

// DraftStore keeps the per-user in-progress answer set between sessions.
// ClearAllDrafts wipes every draft at once; it exists for questionnaire
// swaps, which invalidate the item ids drafts are keyed on.
type DraftStore interface {
	SaveDraft(ctx context.Context, userID string, answers scoring.Answers) error
	LoadDraft(ctx context.Context, userID string) (scoring.Answers, error)
	ClearDraft(ctx context.Context, userID string) error
	ClearAllDrafts(ctx context.Context) error
}

// Recorder writes one assessment record to the remote table. The insert is
// atomic: a single row that either lands entirely or not at all.
type Recorder interface {
	InsertAssessment(ctx context.Context, a Assessment) error
}

// ─── SERVICE ─────────────────────────────────────────────────────────────────

// Service coordinates the submission gate and profile upserts across the
// local repository, the draft store, and the remote record table.
type Service struct {
	repo    Repository
	drafts  DraftStore
	records Recorder
	logger  *slog.Logger
}

func NewService(repo Repository, drafts DraftStore, records Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, drafts: drafts, records: records, logger: logger}
}

// SaveProfile upserts the user's name and notes. An existing assessment
// history is always preserved; only identity fields are replaced.
func (s *Service) SaveProfile(ctx context.Context, user User, notes string) (Profile, error) {
	if user.ID == "" {
		return Profile{}, ErrMissingIdentity
	}

	p, found, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("save profile: find: %w", err)
	}
	if !found {
		p = Profile{User: user, Notes: notes, Assessments: []Assessment{}}
	} else {
		p.User = user
		p.Notes = notes
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// SubmitParams is the full editing state handed to the gate.
type SubmitParams struct {
	User    User
	Notes   string
	Answers scoring.Answers
	// Strict requires every questionnaire item to be answered. When false,
	// partial submissions are accepted (per-scale completeness warnings are
	// still computed by the caller, but never block).
	Strict        bool
	Questionnaire *survey.Questionnaire
}

// Submit runs the submission gate:
//
//  1. A non-empty user id is required — ErrMissingIdentity otherwise.
//  2. In strict mode every item must be answered — *IncompleteError with the
//     exact missing count otherwise.
//  3. On success the current answers and scores are snapshotted into an
//     Assessment, written to the remote record table and appended to the
//     local profile history, and the user's draft is cleared.
//
// The remote write happens before any local mutation: if it is rejected, the
// answer set and draft are left untouched so the user can retry without
// re-entering anything.
func (s *Service) Submit(ctx context.Context, p SubmitParams) (Assessment, error) {
	if p.User.ID == "" {
		return Assessment{}, ErrMissingIdentity
	}

	if p.Strict {
		answered := scoring.AnsweredCount(p.Answers, p.Questionnaire)
		if missing := p.Questionnaire.ItemCount() - answered; missing > 0 {
			return Assessment{}, &IncompleteError{Missing: missing}
		}
	}

	scores := scoring.ComputeScaleScores(p.Answers, p.Questionnaire.Scales)
	assessment := NewAssessment(p.User, p.Notes, p.Answers, scores)

	if err := s.records.InsertAssessment(ctx, assessment); err != nil {
		return Assessment{}, fmt.Errorf("submit: remote insert: %w", err)
	}

	// Remote row is in; from here on local bookkeeping failures are logged
	// but no longer abort the submission.
	prof, found, err := s.repo.FindByID(ctx, p.User.ID)
	if err != nil || !found {
		prof = Profile{User: p.User, Notes: p.Notes, Assessments: []Assessment{}}
		if saveErr := s.repo.Save(ctx, prof); saveErr != nil {
			s.logger.Error("submit: create profile", "user_id", p.User.ID, "error", saveErr)
		}
	}
	if err := s.repo.AppendAssessment(ctx, p.User.ID, assessment); err != nil {
		s.logger.Error("submit: append assessment", "user_id", p.User.ID, "error", err)
	}

	if err := s.drafts.ClearDraft(ctx, p.User.ID); err != nil {
		s.logger.Error("submit: clear draft", "user_id", p.User.ID, "error", err)
	}

	return assessment, nil
}
