package questions

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var bankYAML []byte

// Bank is an immutable question catalog with lookup indices.
type Bank struct {
	questions  []Question
	byID       map[string]*Question
	byCategory map[Category][]Question
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the embedded question bank. It panics if the embedded
// catalog is malformed, which can only happen at build time.
func Default() *Bank {
	defaultOnce.Do(func() {
		b, err := Parse(bankYAML)
		if err != nil {
			panic(fmt.Sprintf("questions: embedded bank invalid: %v", err))
		}
		defaultBank = b
	})
	return defaultBank
}

// Parse decodes a YAML question list and validates it.
func Parse(data []byte) (*Bank, error) {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return New(doc.Questions)
}

// New builds a bank from the given questions after validating them.
func New(qs []Question) (*Bank, error) {
	if err := validateQuestions(qs); err != nil {
		return nil, err
	}

	b := &Bank{
		questions:  append([]Question(nil), qs...),
		byID:       make(map[string]*Question, len(qs)),
		byCategory: make(map[Category][]Question),
	}
	for i := range b.questions {
		q := &b.questions[i]
		b.byID[q.ID] = q
		b.byCategory[q.Category] = append(b.byCategory[q.Category], *q)
	}
	return b, nil
}

// All returns every question in catalog order.
func (b *Bank) All() []Question {
	return append([]Question(nil), b.questions...)
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int { return len(b.questions) }

// ByID returns the question with the given ID.
func (b *Bank) ByID(id string) (Question, bool) {
	q, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return *q, true
}

// ByCategory returns the questions of one category in catalog order.
func (b *Bank) ByCategory(c Category) []Question {
	return append([]Question(nil), b.byCategory[c]...)
}

// Pick returns the first question not in answered, preferring the given
// category at the given difficulty, then any difficulty in that category,
// then any category in catalog order. ok is false when every question has
// been answered.
func (b *Bank) Pick(focus Category, level Difficulty, answered map[string]bool) (Question, bool) {
	for _, q := range b.byCategory[focus] {
		if q.Difficulty == level && !answered[q.ID] {
			return q, true
		}
	}
	for _, q := range b.byCategory[focus] {
		if !answered[q.ID] {
			return q, true
		}
	}
	for _, q := range b.questions {
		if !answered[q.ID] {
			return q, true
		}
	}
	return Question{}, false
}
