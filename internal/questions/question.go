package questions

import "strings"

// Category is the screening domain a question covers.
type Category string

const (
	CategorySocial        Category = "social"
	CategoryCommunication Category = "communication"
	CategoryBehavior      Category = "behavior"
	CategorySensory       Category = "sensory"
)

// AllCategories returns all categories in their fixed priority order.
// The order is used to break ties when choosing a category focus.
func AllCategories() []Category {
	return []Category{
		CategorySocial,
		CategoryCommunication,
		CategoryBehavior,
		CategorySensory,
	}
}

// CategoryDisplayName returns a human-readable name for a category.
func CategoryDisplayName(c Category) string {
	switch c {
	case CategorySocial:
		return "Social Interaction"
	case CategoryCommunication:
		return "Communication"
	case CategoryBehavior:
		return "Restricted & Repetitive Behavior"
	case CategorySensory:
		return "Sensory Processing"
	default:
		return string(c)
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySocial, CategoryCommunication, CategoryBehavior, CategorySensory:
		return true
	}
	return false
}

// Difficulty is a question difficulty tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty tier.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Harder returns the next tier up. Hard stays hard.
func (d Difficulty) Harder() Difficulty {
	switch d {
	case DifficultyEasy:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Type is the answer format of a question.
type Type string

const (
	TypeLikert Type = "likert"
	TypeOpen   Type = "open"
)

// Question is a single screening item.
type Question struct {
	ID         string     `yaml:"id" json:"id"`
	Category   Category   `yaml:"category" json:"category"`
	Text       string     `yaml:"text" json:"text"`
	Type       Type       `yaml:"type" json:"type"`
	Options    []string   `yaml:"options,omitempty" json:"options,omitempty"`
	Weight     float64    `yaml:"weight" json:"weight"`
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"`
}

// OptionIndex returns the position of answer in the question's option set,
// or -1 when the answer is not one of the options. Matching ignores case
// and surrounding whitespace.
func (q *Question) OptionIndex(answer string) int {
	answer = strings.TrimSpace(answer)
	for i, o := range q.Options {
		if strings.EqualFold(o, answer) {
			return i
		}
	}
	return -1
}
