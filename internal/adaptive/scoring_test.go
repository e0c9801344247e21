package adaptive

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/abhisek/neuroscreen/internal/llm"
	"github.com/abhisek/neuroscreen/internal/questions"
	"github.com/abhisek/neuroscreen/internal/session"
)

type fixedCompleter struct {
	c      llm.Completion
	prompt string
}

func (f *fixedCompleter) Complete(ctx context.Context, prompt, background string) llm.Completion {
	f.prompt = prompt
	return f.c
}

var likert = questions.Question{
	ID: "soc-01", Category: questions.CategorySocial, Type: questions.TypeLikert,
	Text: "Does the child look at you?", Options: []string{"Never", "Rarely", "Sometimes", "Often", "Always"},
	Weight: 1, Difficulty: questions.DifficultyEasy,
}

var open = questions.Question{
	ID: "com-06", Category: questions.CategoryCommunication, Type: questions.TypeOpen,
	Text: "Describe how the child asks for help.", Weight: 1, Difficulty: questions.DifficultyHard,
}

func TestScorer_Likert(t *testing.T) {
	s := NewScorer(nil)
	tests := []struct {
		answer string
		want   float64
	}{
		{"Never", 0},
		{"Rarely", 0.25},
		{"sometimes", 0.5},
		{"Often", 0.75},
		{"Always", 1},
	}
	for _, tt := range tests {
		got, err := s.Score(context.Background(), "s", 5, likert, tt.answer)
		if err != nil {
			t.Fatalf("Score(%q): %v", tt.answer, err)
		}
		if math.Abs(got.Score-tt.want) > 1e-9 {
			t.Errorf("Score(%q) = %v, want %v", tt.answer, got.Score, tt.want)
		}
	}

	_, err := s.Score(context.Background(), "s", 5, likert, "Maybe")
	var ve *session.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation for unknown option, got %v", err)
	}
}

func TestScorer_Open(t *testing.T) {
	fc := &fixedCompleter{c: llm.Completion{Score: 0.3, Reasoning: "Relies on leading an adult by the hand."}}
	got, err := NewScorer(fc).Score(context.Background(), "s", 5, open, "He pulls my hand to the fridge.")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.Score != 0.3 || got.Reasoning != fc.c.Reasoning {
		t.Fatalf("unexpected result: %+v", got)
	}
	if fc.prompt == "" {
		t.Fatal("completer not called")
	}
}

func TestScorer_OpenClampsAndDegrades(t *testing.T) {
	got, err := NewScorer(&fixedCompleter{c: llm.Completion{Score: 7}}).Score(context.Background(), "s", 5, open, "text")
	if err != nil || got.Score != 1 {
		t.Fatalf("got %+v, %v; want clamped 1", got, err)
	}

	got, err = NewScorer(nil).Score(context.Background(), "s", 5, open, "text")
	if err != nil || got.Score != 0.5 || got.Reasoning != llm.NeutralReasoning {
		t.Fatalf("got %+v, %v; want neutral", got, err)
	}

	_, err = NewScorer(nil).Score(context.Background(), "s", 5, open, "   ")
	var ve *session.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation for blank answer, got %v", err)
	}
}
