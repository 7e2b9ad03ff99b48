// Package survey defines the questionnaire: the 36 RAND-36 items, their
// answer options with pre-mapped 0–100 point values, and the eight scales
// that group items into health dimensions. It is intentionally
// dependency-free: it imports nothing from internal/ and can be tested
// without a database.
package survey

import (
	"encoding/json"
	"fmt"
)

// Option is one selectable answer for an item. Value is the pre-mapped point
// value in [0, 100]; the scoring engine averages these directly.
type Option struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Item is a single questionnaire question. Scale is the key of the scale the
// item contributes to, or "" for items that do not score (the health-trend
// item S2 in the canonical set).
type Item struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Options []Option `json:"options"`
	Scale   string   `json:"scale,omitempty"`
}

// ScaleDef names one health dimension and lists the item IDs that feed it.
type ScaleDef struct {
	Label   string   `json:"label"`
	ItemIDs []string `json:"itemIds"`
}

// Questionnaire is the full definition: items in presentation order plus the
// scale map. The built-in dataset comes from Default(); an override with the
// same JSON shape can be loaded through Parse.
type Questionnaire struct {
	Title        string              `json:"title"`
	Instructions string              `json:"instructions"`
	Items        []Item              `json:"items"`
	Scales       map[string]ScaleDef `json:"scales"`
}

// ItemCount returns the number of items. The strict submission gate requires
// an answer for every one of them.
func (q *Questionnaire) ItemCount() int { return len(q.Items) }

// ItemByID returns the item with the given id, or false if no such item.
func (q *Questionnaire) ItemByID(id string) (Item, bool) {
	for _, it := range q.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Validate checks the structural invariants of a questionnaire:
//
//   - items must not be empty and every item must have an id;
//   - item ids must be unique;
//   - option values within one item must be pairwise distinct;
//   - every itemId referenced by a scale must exist.
//
// Imported documents are untrusted; call this before accepting one. The
// built-in dataset is validated by the package tests.
func (q *Questionnaire) Validate() error {
	if len(q.Items) == 0 {
		return fmt.Errorf("questionnaire: items must not be empty")
	}

	ids := make(map[string]struct{}, len(q.Items))
	for i, it := range q.Items {
		if it.ID == "" {
			return fmt.Errorf("questionnaire: item at index %d has no id", i)
		}
		if _, dup := ids[it.ID]; dup {
			return fmt.Errorf("questionnaire: duplicate item id %q", it.ID)
		}
		ids[it.ID] = struct{}{}

		seen := make(map[float64]struct{}, len(it.Options))
		for _, op := range it.Options {
			if _, dup := seen[op.Value]; dup {
				return fmt.Errorf("questionnaire: item %q has duplicate option value %v", it.ID, op.Value)
			}
			seen[op.Value] = struct{}{}
		}
	}

	for key, s := range q.Scales {
		for _, id := range s.ItemIDs {
			if _, ok := ids[id]; !ok {
				return fmt.Errorf("questionnaire: scale %q references unknown item id %q", key, id)
			}
		}
	}

	return nil
}

// Parse unmarshals an untrusted questionnaire override document and validates
// it. Title and instructions fall back to the built-in ones when absent, so
// an override only needs items and scales.
//
// Returns a descriptive error if the document is malformed (items not an
// array, scales not an object, missing/duplicate ids, duplicate option
// values). The caller keeps its current definition on error.
func Parse(raw []byte) (*Questionnaire, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("questionnaire: empty document")
	}

	var q Questionnaire
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("questionnaire: invalid JSON: %w", err)
	}

	if q.Items == nil {
		return nil, fmt.Errorf("questionnaire: missing 'items' (array)")
	}
	if q.Scales == nil {
		return nil, fmt.Errorf("questionnaire: missing 'scales' (object)")
	}

	def := Default()
	if q.Title == "" {
		q.Title = def.Title
	}
	if q.Instructions == "" {
		q.Instructions = def.Instructions
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}
