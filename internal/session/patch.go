package session

import (
	"maps"
	"time"
)

// Patch is a partial update of a Session. Nil fields are left unchanged.
type Patch struct {
	Status            *Status
	Phase             *string
	TotalQuestions    *int
	Emotion           *Window[EmotionSample]
	Motion            *Window[MotionSample]
	Voice             *Window[VoiceSample]
	AppendResponses   []Response
	Adaptive          *AdaptiveData
	Analysis          *AnalysisCache
	CurrentQuestionID *string

	// At is the mutation time stamped into LastUpdated. Zero means the
	// store's own clock.
	At time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Status == nil && p.Phase == nil && p.TotalQuestions == nil &&
		p.Emotion == nil && p.Motion == nil && p.Voice == nil &&
		len(p.AppendResponses) == 0 && p.Adaptive == nil && p.Analysis == nil &&
		p.CurrentQuestionID == nil
}

// Apply applies p to s. Either every field is applied or, on error,
// s is left untouched.
func (p Patch) Apply(s *Session, now time.Time) error {
	if !p.At.IsZero() {
		now = p.At
	}
	cp := s.Clone()

	if p.Status != nil && *p.Status != cp.Status {
		if err := cp.Transition(*p.Status, now); err != nil {
			return err
		}
	}
	if p.Phase != nil {
		cp.Phase = *p.Phase
	}
	if p.TotalQuestions != nil {
		if *p.TotalQuestions <= 0 {
			return &ErrValidation{Field: "totalQuestions", Reason: "must be positive"}
		}
		cp.TotalQuestions = *p.TotalQuestions
	}
	if p.Emotion != nil {
		cp.Emotion = p.Emotion.clone(nil)
	}
	if p.Motion != nil {
		cp.Motion = p.Motion.clone(nil)
	}
	if p.Voice != nil {
		cp.Voice = p.Voice.clone(cloneVoice)
	}
	if len(p.AppendResponses) > 0 {
		cp.Responses = append(cp.Responses, p.AppendResponses...)
	}
	if p.Adaptive != nil {
		cp.Adaptive = p.Adaptive.clone()
	}
	if p.Analysis != nil {
		cp.Analysis = p.Analysis.clone()
	}
	if p.CurrentQuestionID != nil {
		cp.CurrentQuestionID = *p.CurrentQuestionID
	}

	if err := cp.Check(); err != nil {
		return err
	}
	cp.Touch(now)
	*s = *cp
	return nil
}

// Diff returns the patch that turns before into after. after must be a
// mutated clone of before; responses are assumed append-only.
func Diff(before, after *Session) Patch {
	p := Patch{At: after.LastUpdated}

	if after.Status != before.Status {
		st := after.Status
		p.Status = &st
	}
	if after.Phase != before.Phase {
		ph := after.Phase
		p.Phase = &ph
	}
	if after.TotalQuestions != before.TotalQuestions {
		n := after.TotalQuestions
		p.TotalQuestions = &n
	}
	if after.Emotion.Total != before.Emotion.Total {
		w := after.Emotion
		p.Emotion = &w
	}
	if after.Motion.Total != before.Motion.Total {
		w := after.Motion
		p.Motion = &w
	}
	if after.Voice.Total != before.Voice.Total {
		w := after.Voice
		p.Voice = &w
	}
	if len(after.Responses) > len(before.Responses) {
		p.AppendResponses = append([]Response(nil), after.Responses[len(before.Responses):]...)
	}
	if !adaptiveEqual(before.Adaptive, after.Adaptive) {
		a := after.Adaptive
		p.Adaptive = &a
	}
	if after.Analysis != nil && !analysisEqual(before.Analysis, after.Analysis) {
		p.Analysis = after.Analysis
	}
	if after.CurrentQuestionID != before.CurrentQuestionID {
		id := after.CurrentQuestionID
		p.CurrentQuestionID = &id
	}
	return p
}

func adaptiveEqual(a, b AdaptiveData) bool {
	return a.DifficultyLevel == b.DifficultyLevel &&
		a.CategoryFocus == b.CategoryFocus &&
		a.LastAction == b.LastAction &&
		maps.Equal(a.Accuracy, b.Accuracy)
}

func analysisEqual(a, b *AnalysisCache) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.OverallScore == b.OverallScore &&
		a.RiskLevel == b.RiskLevel &&
		a.ComputedAt.Equal(b.ComputedAt) &&
		maps.Equal(a.ModalityScores, b.ModalityScores) &&
		maps.Equal(a.DomainScores, b.DomainScores)
}
