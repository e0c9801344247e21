package adaptive

import (
	"context"

	"github.com/abhisek/neuroscreen/internal/questions"
	"github.com/abhisek/neuroscreen/internal/session"
)

// Selector issues questions from a bank and runs the adaptive step after
// each answer.
type Selector struct {
	bank    *questions.Bank
	advisor *Advisor
}

// NewSelector creates a selector. A nil advisor uses the threshold table
// alone.
func NewSelector(bank *questions.Bank, advisor *Advisor) *Selector {
	if bank == nil {
		bank = questions.Default()
	}
	return &Selector{bank: bank, advisor: advisor}
}

// Bank returns the question bank.
func (s *Selector) Bank() *questions.Bank { return s.bank }

// Next returns the question to ask and records it as current on sess. A
// question already issued and not yet answered is returned again. ok is
// false once the question phase is over or the bank is exhausted.
func (s *Selector) Next(sess *session.Session) (q questions.Question, ok bool) {
	if sess.QuestionsRemaining() <= 0 {
		return questions.Question{}, false
	}
	if sess.CurrentQuestionID != "" {
		if q, ok := s.bank.ByID(sess.CurrentQuestionID); ok {
			return q, true
		}
	}
	q, ok = s.bank.Pick(sess.Adaptive.CategoryFocus, sess.Adaptive.DifficultyLevel, sess.Answered())
	if !ok {
		return questions.Question{}, false
	}
	sess.CurrentQuestionID = q.ID
	return q, true
}

// Update runs one adaptive step after a response in category answered has
// been appended to sess. The advisor, when enabled, is consulted within its
// own timeout.
func (s *Selector) Update(ctx context.Context, sess *session.Session, answered questions.Category) Decision {
	return s.Apply(sess, answered, s.Advise(ctx, sess))
}

// Advise consults the advisor about sess without modifying it. Without an
// enabled advisor the advice is continue. sess must already hold the
// response being advised on.
func (s *Selector) Advise(ctx context.Context, sess *session.Session) Advice {
	if !s.advisor.Enabled() {
		return Advice{Action: ActionContinue}
	}
	return s.advisor.Advise(ctx, AdviceRequest{
		SessionID:  sess.ID,
		Age:        sess.Patient.Age,
		Difficulty: sess.Adaptive.DifficultyLevel,
		Focus:      sess.Adaptive.CategoryFocus,
		Accuracy:   sess.Adaptive.Accuracy,
		Snapshot:   sess.Snapshot(),
		Recent:     sess.Responses,
	})
}

// Apply combines advice with the threshold table and writes the decision
// into sess.
func (s *Selector) Apply(sess *session.Session, answered questions.Category, advice Advice) Decision {
	d := Decide(sess.Adaptive, answered, advice)
	d.Apply(&sess.Adaptive)
	if !d.Repeat {
		sess.CurrentQuestionID = ""
	}
	return d
}
