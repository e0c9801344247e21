package adaptive

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/neuroscreen/internal/analysis"
	"github.com/abhisek/neuroscreen/internal/llm"
	"github.com/abhisek/neuroscreen/internal/questions"
	"github.com/abhisek/neuroscreen/internal/session"
)

// Scored is the analysis of one answer.
type Scored struct {
	Score     float64
	Reasoning string
}

// Scorer turns answers into analysis scores in [0,1].
type Scorer struct {
	completer llm.TextCompleter
}

// NewScorer creates a scorer. A nil completer scores every open answer
// with the neutral completion.
func NewScorer(c llm.TextCompleter) *Scorer {
	return &Scorer{completer: c}
}

// Score analyses answer to q. Likert answers score index/(n-1) of the
// chosen option and must name one of the options. Open answers go to the
// text completer and must not be blank.
func (s *Scorer) Score(ctx context.Context, sessionID string, age int, q questions.Question, answer string) (Scored, error) {
	switch q.Type {
	case questions.TypeLikert:
		idx := q.OptionIndex(answer)
		if idx < 0 {
			return Scored{}, &session.ErrValidation{
				Field:  "answer",
				Reason: fmt.Sprintf("%q is not one of %s", answer, strings.Join(q.Options, ", ")),
			}
		}
		if len(q.Options) < 2 {
			return Scored{Score: llm.NeutralCompletion().Score}, nil
		}
		return Scored{Score: float64(idx) / float64(len(q.Options)-1)}, nil

	case questions.TypeOpen:
		if strings.TrimSpace(answer) == "" {
			return Scored{}, &session.ErrValidation{Field: "answer", Reason: "must not be empty"}
		}
		if s == nil || s.completer == nil {
			n := llm.NeutralCompletion()
			return Scored{Score: n.Score, Reasoning: n.Reasoning}, nil
		}
		ctx = llm.WithSession(llm.WithPurpose(ctx, llm.PurposeAnswerScore), sessionID)
		prompt := fmt.Sprintf("Question (%s): %s\nAnswer: %s", questions.CategoryDisplayName(q.Category), q.Text, answer)
		c := s.completer.Complete(ctx, prompt, fmt.Sprintf("Patient age: %d", age))
		return Scored{Score: analysis.Clamp01(c.Score), Reasoning: c.Reasoning}, nil
	}
	return Scored{}, &session.ErrValidation{Field: "questionId", Reason: fmt.Sprintf("unsupported question type %q", q.Type)}
}
