package questions

import (
	"fmt"
	"strings"
)

// validateQuestions performs structural checks on a question set.
// Returns a combined error describing all problems found, or nil if valid.
func validateQuestions(qs []Question) error {
	var errs []string

	if len(qs) == 0 {
		return fmt.Errorf("question bank validation failed:\n  - bank is empty")
	}

	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if q.ID == "" {
			errs = append(errs, fmt.Sprintf("question with text %q has no ID", q.Text))
			continue
		}
		if seen[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		seen[q.ID] = true

		if !q.Category.Valid() {
			errs = append(errs, fmt.Sprintf("question %q has unknown category %q", q.ID, q.Category))
		}
		if !q.Difficulty.Valid() {
			errs = append(errs, fmt.Sprintf("question %q has unknown difficulty %q", q.ID, q.Difficulty))
		}
		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %q has empty text", q.ID))
		}
		if q.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("question %q has non-positive weight %v", q.ID, q.Weight))
		}

		switch q.Type {
		case TypeLikert:
			if len(q.Options) < 2 {
				errs = append(errs, fmt.Sprintf("likert question %q needs at least 2 options, has %d", q.ID, len(q.Options)))
			}
		case TypeOpen:
			if len(q.Options) > 0 {
				errs = append(errs, fmt.Sprintf("open question %q must not declare options", q.ID))
			}
		default:
			errs = append(errs, fmt.Sprintf("question %q has unknown type %q", q.ID, q.Type))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("question bank validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
