package screening

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/neuroscreen/internal/adaptive"
	"github.com/abhisek/neuroscreen/internal/questions"
	"github.com/abhisek/neuroscreen/internal/session"
)

// QuestionView is the question issued to the patient.
type QuestionView struct {
	Question   questions.Question   `json:"question"`
	Number     int                  `json:"number"`
	Remaining  int                  `json:"remaining"`
	Difficulty questions.Difficulty `json:"difficultyLevel"`
	Focus      questions.Category   `json:"categoryFocus"`
}

// NextQuestion returns the question to ask next. done is true once the
// question phase is over.
func (e *Engine) NextQuestion(ctx context.Context, id string) (view QuestionView, done bool, err error) {
	if err := session.ValidateID(id); err != nil {
		return QuestionView{}, false, err
	}
	_, err = e.mutate(ctx, id, func(s *session.Session) error {
		if s.Status != session.StatusActive {
			return &session.ErrInvariant{Reason: fmt.Sprintf("no questions for %s session", s.Status)}
		}
		q, ok := e.selector.Next(s)
		if !ok {
			done = true
			return nil
		}
		view = QuestionView{
			Question:   q,
			Number:     len(s.Responses) + 1,
			Remaining:  s.QuestionsRemaining(),
			Difficulty: s.Adaptive.DifficultyLevel,
			Focus:      s.Adaptive.CategoryFocus,
		}
		return nil
	})
	if err != nil {
		return QuestionView{}, false, err
	}
	return view, done, nil
}

// Answer is a submitted answer.
type Answer struct {
	QuestionID     string
	Answer         string
	Confidence     float64
	ResponseTimeMs int64
}

// AnswerResult is the outcome of one submitted answer.
type AnswerResult struct {
	Response  session.Response     `json:"response"`
	Decision  adaptive.Decision    `json:"decision"`
	Adaptive  session.AdaptiveData `json:"adaptive"`
	Remaining int                  `json:"remaining"`
}

// SubmitAnswer scores an answer, appends it to the response history and
// runs one adaptive step. The scoring and advisor calls are bounded and
// degrade to neutral results, so they never fail the submission. They run
// on a snapshot with the session unlocked so ingestion is never held up by
// an LLM; the outcome is committed afterwards against the current state.
func (e *Engine) SubmitAnswer(ctx context.Context, id string, a Answer) (AnswerResult, error) {
	if err := session.ValidateID(id); err != nil {
		return AnswerResult{}, err
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return AnswerResult{}, &session.ErrValidation{Field: "confidence", Reason: fmt.Sprintf("must be in [0,1], got %v", a.Confidence)}
	}
	if a.ResponseTimeMs < 0 {
		return AnswerResult{}, &session.ErrValidation{Field: "responseTime", Reason: "must not be negative"}
	}
	q, ok := e.selector.Bank().ByID(a.QuestionID)
	if !ok {
		return AnswerResult{}, &session.ErrValidation{Field: "questionId", Reason: fmt.Sprintf("unknown question %q", a.QuestionID)}
	}

	draft, err := e.snapshot(ctx, id)
	if err != nil {
		return AnswerResult{}, err
	}
	if err := answerable(draft); err != nil {
		return AnswerResult{}, err
	}

	scored, err := e.scorer.Score(ctx, draft.ID, draft.Patient.Age, q, a.Answer)
	if err != nil {
		return AnswerResult{}, err
	}
	now := e.now()
	r := session.Response{
		QuestionID:     q.ID,
		Category:       q.Category,
		Difficulty:     q.Difficulty,
		Answer:         a.Answer,
		Confidence:     a.Confidence,
		ResponseTimeMs: a.ResponseTimeMs,
		Snapshot:       draft.Snapshot(),
		AnalysisScore:  scored.Score,
		Reasoning:      scored.Reasoning,
		SubmittedAt:    now,
	}
	if err := draft.AppendResponse(r, now); err != nil {
		return AnswerResult{}, err
	}
	start := time.Now()
	advice := e.selector.Advise(ctx, draft)
	elapsed := time.Since(start)

	var res AnswerResult
	s, err := e.mutate(ctx, id, func(s *session.Session) error {
		// The session may have ended or filled up while unlocked.
		if err := answerable(s); err != nil {
			return err
		}
		if err := s.AppendResponse(r, e.now()); err != nil {
			return err
		}
		d := e.selector.Apply(s, q.Category, advice)
		res = AnswerResult{
			Response:  r,
			Decision:  d,
			Adaptive:  s.Adaptive,
			Remaining: s.QuestionsRemaining(),
		}
		return nil
	})
	if err != nil {
		return AnswerResult{}, err
	}

	d := res.Decision
	e.logger.Debug("adaptive step",
		zap.String("session_id", id),
		zap.String("action", string(d.Action)),
		zap.String("difficulty", string(d.Difficulty)),
		zap.String("focus", string(d.Focus)),
		zap.Bool("fallback", d.Fallback),
		zap.Duration("advisor_elapsed", elapsed))
	e.metrics.ResponseRecorded(string(q.Category), string(d.Action), d.Fallback)
	e.record(s, ActionAnswer, fmt.Sprintf("%s scored %.2f, %s", q.ID, r.AnalysisScore, d.Action))
	return res, nil
}

func answerable(s *session.Session) error {
	if s.Status != session.StatusActive {
		return &session.ErrInvariant{Reason: fmt.Sprintf("cannot answer on %s session", s.Status)}
	}
	if s.QuestionsRemaining() <= 0 {
		return &session.ErrInvariant{Reason: "question phase is over"}
	}
	return nil
}
