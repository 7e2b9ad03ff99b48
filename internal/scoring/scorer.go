// Package scoring implements the scale-score engine: the mapping from a
// sparse answer set to the eight 0–100 health-dimension scores. It is
// intentionally dependency-free: it imports only internal/survey and math,
// and every function is pure — safe to re-run on each answer change.
package scoring

import (
	"math"
	"sort"

	"github.com/saludlab/sf36-survey-backend/internal/survey"
)

// Answers maps item id → the chosen option's point value. An absent key means
// the item is unanswered; unanswered items are excluded from means, never
// treated as zero.
type Answers map[string]float64

// Clone returns an independent copy. Assessment snapshots use this so that
// persisted history never aliases the live editing answer set.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for id, v := range a {
		out[id] = v
	}
	return out
}

// ScaleScore is the computed result for one scale. Score is nil exactly when
// N == 0 (no member item answered); otherwise it is the arithmetic mean of
// the answered members' values, at full float precision. Rounding happens at
// display/export time, not here.
type ScaleScore struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
	N     int      `json:"n"`
}

// ComputeScaleScores computes one ScaleScore per scale. The result always has
// an entry for every scale in the input, including scales with no answered
// items. There are no error conditions.
func ComputeScaleScores(answers Answers, scales map[string]survey.ScaleDef) map[string]ScaleScore {
	results := make(map[string]ScaleScore, len(scales))
	for key, def := range scales {
		sum := 0.0
		n := 0
		for _, id := range def.ItemIDs {
			v, ok := answers[id]
			if !ok {
				continue
			}
			sum += v
			n++
		}

		entry := ScaleScore{Label: def.Label, N: n}
		if n > 0 {
			mean := sum / float64(n)
			entry.Score = &mean
		}
		results[key] = entry
	}
	return results
}

// CloneScores deep-copies a score map for assessment snapshots.
func CloneScores(scores map[string]ScaleScore) map[string]ScaleScore {
	out := make(map[string]ScaleScore, len(scores))
	for key, s := range scores {
		cp := s
		if s.Score != nil {
			v := *s.Score
			cp.Score = &v
		}
		out[key] = cp
	}
	return out
}

// ValidateCompleteness flags scales that were started but left under the
// minimum answered ratio: 0 < n < ceil(len(itemIds) * minRatio). Untouched
// scales (n == 0) are never flagged — "not started" is a different state from
// "partial". Returned keys are sorted for deterministic output.
//
// This check is advisory. The submission gate enforces total completeness
// separately; callers surface these keys as warnings only.
func ValidateCompleteness(answers Answers, scales map[string]survey.ScaleDef, minRatio float64) []string {
	var incomplete []string
	for key, def := range scales {
		n := 0
		for _, id := range def.ItemIDs {
			if _, ok := answers[id]; ok {
				n++
			}
		}
		required := int(math.Ceil(float64(len(def.ItemIDs)) * minRatio))
		if n > 0 && n < required {
			incomplete = append(incomplete, key)
		}
	}
	sort.Strings(incomplete)
	return incomplete
}

// AnsweredCount returns how many of the questionnaire's items have an answer.
// Stray answer keys that match no item are not counted, so an imported
// questionnaire swap cannot inflate the progress count.
func AnsweredCount(answers Answers, q *survey.Questionnaire) int {
	n := 0
	for _, it := range q.Items {
		if _, ok := answers[it.ID]; ok {
			n++
		}
	}
	return n
}

// RoundScore converts a ScaleScore's float mean to the rounded integer shown
// in exports and summaries. ok is false when the score is nil (n == 0).
func RoundScore(score *float64) (v int, ok bool) {
	if score == nil {
		return 0, false
	}
	return int(math.Round(*score)), true
}
