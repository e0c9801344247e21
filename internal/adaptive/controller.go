// Package adaptive chooses the difficulty tier and category of the next
// screening question from the running per-category accuracy, optionally
// steered by an LLM advisor.
package adaptive

import (
	"github.com/abhisek/neuroscreen/internal/questions"
	"github.com/abhisek/neuroscreen/internal/session"
)

// Difficulty thresholds. Advancing comparisons are inclusive.
const (
	EasyToMedium = 0.8 // easy -> medium once accuracy >= this
	MediumToHard = 0.6 // medium -> hard once accuracy >= this
	HardToMedium = 0.4 // hard -> medium once accuracy < this
)

// Action is a next-step directive for the selector.
type Action string

const (
	// ActionContinue defers to the threshold table.
	ActionContinue Action = "continue"

	// ActionAdjustDifficulty replaces the threshold result with the
	// advisor's suggested tier for this step.
	ActionAdjustDifficulty Action = "adjust_difficulty"

	// ActionRepeat re-issues the question just answered.
	ActionRepeat Action = "repeat"

	// ActionMoveToNext advances one tier regardless of accuracy.
	ActionMoveToNext Action = "move_to_next"
)

// AllActions returns every action in a fixed order.
func AllActions() []Action {
	return []Action{ActionContinue, ActionAdjustDifficulty, ActionRepeat, ActionMoveToNext}
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionContinue, ActionAdjustDifficulty, ActionRepeat, ActionMoveToNext:
		return true
	}
	return false
}

// Step applies the threshold table to the current tier.
func Step(level questions.Difficulty, accuracy float64) questions.Difficulty {
	switch level {
	case questions.DifficultyEasy:
		if accuracy >= EasyToMedium {
			return questions.DifficultyMedium
		}
	case questions.DifficultyMedium:
		if accuracy >= MediumToHard {
			return questions.DifficultyHard
		}
	case questions.DifficultyHard:
		if accuracy < HardToMedium {
			return questions.DifficultyMedium
		}
	default:
		return questions.DifficultyEasy
	}
	return level
}

// Focus returns the category with the lowest running accuracy. Categories
// without responses count as zero so they are explored first. Ties go to
// the earlier category in questions.AllCategories order.
func Focus(acc map[questions.Category]session.Accuracy) questions.Category {
	cats := questions.AllCategories()
	best := cats[0]
	bestMean := acc[best].Mean()
	for _, c := range cats[1:] {
		if m := acc[c].Mean(); m < bestMean {
			best, bestMean = c, m
		}
	}
	return best
}

// Decision is the outcome of one adaptive step.
type Decision struct {
	Action     Action               `json:"action"`
	Difficulty questions.Difficulty `json:"difficultyLevel"`
	Focus      questions.Category   `json:"categoryFocus"`

	// Repeat is set when the answered question must be issued again.
	Repeat bool `json:"repeat"`

	// Reasoning is the advisor's rationale, empty for the threshold path.
	Reasoning string `json:"reasoning,omitempty"`

	// Fallback is set when an enabled advisor failed to answer.
	Fallback bool `json:"fallback"`
}

// Decide combines the threshold table with advice after a response in
// category answered has been folded into state.Accuracy.
func Decide(state session.AdaptiveData, answered questions.Category, advice Advice) Decision {
	threshold := Step(state.DifficultyLevel, state.Accuracy[answered].Mean())
	d := Decision{
		Action:     advice.Action,
		Difficulty: threshold,
		Focus:      Focus(state.Accuracy),
		Reasoning:  advice.Reasoning,
		Fallback:   advice.Fallback,
	}

	switch advice.Action {
	case ActionAdjustDifficulty:
		if advice.Difficulty.Valid() {
			d.Difficulty = advice.Difficulty
		}
	case ActionRepeat:
		d.Difficulty = state.DifficultyLevel
		d.Repeat = true
	case ActionMoveToNext:
		d.Difficulty = state.DifficultyLevel.Harder()
	default:
		d.Action = ActionContinue
	}
	return d
}

// Apply writes d into the adaptive state.
func (d Decision) Apply(state *session.AdaptiveData) {
	state.DifficultyLevel = d.Difficulty
	state.CategoryFocus = d.Focus
	state.LastAction = string(d.Action)
}
