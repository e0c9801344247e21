package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/neuroscreen/internal/questions"
)

// DefaultTotalQuestions is the number of questions asked when a session
// does not override it.
const DefaultTotalQuestions = 20

// Age bounds accepted for a patient.
const (
	MinAge = 0
	MaxAge = 120
)

// PatientInfo identifies the screened patient.
type PatientInfo struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender,omitempty"`
}

// Validate checks the required patient fields.
func (p PatientInfo) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ErrValidation{Field: "name", Reason: "must not be empty"}
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return &ErrValidation{Field: "age", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinAge, MaxAge, p.Age)}
	}
	return nil
}

// Session is the screening session aggregate.
type Session struct {
	// ID is the session identifier.
	ID string `json:"id"`

	// Patient is the screened patient.
	Patient PatientInfo `json:"patient"`

	// Status is the lifecycle status. It only moves forward.
	Status Status `json:"status"`

	// Phase is a free-form label of the current activity.
	Phase string `json:"phase"`

	// StartTime is when the session was created.
	StartTime time.Time `json:"startTime"`

	// EndTime is stamped when the session completes or ends.
	EndTime time.Time `json:"endTime,omitzero"`

	// LastUpdated is stamped on every mutation.
	LastUpdated time.Time `json:"lastUpdated"`

	// TotalQuestions is the number of questions in the question phase.
	TotalQuestions int `json:"totalQuestions"`

	// Responses is the append-only answer history.
	Responses []Response `json:"responses"`

	Emotion Window[EmotionSample] `json:"emotion"`
	Motion  Window[MotionSample]  `json:"motion"`
	Voice   Window[VoiceSample]   `json:"voice"`

	// Adaptive is the adaptive selector state.
	Adaptive AdaptiveData `json:"adaptive"`

	// Analysis is the last computed analysis (nil until first requested).
	Analysis *AnalysisCache `json:"analysis,omitempty"`

	// CurrentQuestionID is the question most recently issued.
	CurrentQuestionID string `json:"currentQuestionId,omitempty"`
}

// New returns a session in status initializing with empty windows.
func New(id string, patient PatientInfo, now time.Time) *Session {
	return &Session{
		ID:             id,
		Patient:        patient,
		Status:         StatusInitializing,
		Phase:          PhaseIntake,
		StartTime:      now,
		LastUpdated:    now,
		TotalQuestions: DefaultTotalQuestions,
		Emotion:        NewWindow[EmotionSample](EmotionCapacity),
		Motion:         NewWindow[MotionSample](MotionCapacity),
		Voice:          NewWindow[VoiceSample](VoiceCapacity),
		Adaptive: AdaptiveData{
			DifficultyLevel: questions.DifficultyEasy,
			CategoryFocus:   questions.CategorySocial,
			Accuracy:        make(map[questions.Category]Accuracy),
		},
	}
}

// Touch stamps LastUpdated.
func (s *Session) Touch(now time.Time) {
	s.LastUpdated = now
}

// Transition moves the session to target. Only initializing -> active and
// active -> completed|ended are allowed. Terminal states stamp EndTime.
func (s *Session) Transition(target Status, now time.Time) error {
	if !CanTransition(s.Status, target) {
		return invariantf("illegal status transition %s -> %s", s.Status, target)
	}
	s.Status = target
	switch target {
	case StatusActive:
		s.Phase = PhaseScreening
	case StatusCompleted:
		s.Phase = PhaseReport
		s.EndTime = now
	case StatusEnded:
		s.Phase = PhaseClosed
		s.EndTime = now
	}
	s.Touch(now)
	return nil
}

// Ingest appends a sample to the window of the given modality, evicting
// the oldest entries once the window is full. A zero sample timestamp is
// replaced by now. It returns the number of evicted samples.
func (s *Session) Ingest(m Modality, sample any, now time.Time) (int, error) {
	if s.Status != StatusActive {
		return 0, invariantf("cannot ingest into %s session", s.Status)
	}

	var evicted int
	switch m {
	case ModalityEmotion:
		v, ok := sample.(EmotionSample)
		if !ok {
			return 0, shapeError(m, sample)
		}
		if strings.TrimSpace(v.Emotion) == "" {
			return 0, &ErrValidation{Field: "emotion", Reason: "label must not be empty"}
		}
		if v.Timestamp.IsZero() {
			v.Timestamp = now
		}
		evicted = s.Emotion.Push(v)
	case ModalityMotion:
		v, ok := sample.(MotionSample)
		if !ok {
			return 0, shapeError(m, sample)
		}
		if v.Timestamp.IsZero() {
			v.Timestamp = now
		}
		evicted = s.Motion.Push(v)
	case ModalityVoice:
		v, ok := sample.(VoiceSample)
		if !ok {
			return 0, shapeError(m, sample)
		}
		if v.Timestamp.IsZero() {
			v.Timestamp = now
		}
		evicted = s.Voice.Push(cloneVoice(v))
	default:
		return 0, &ErrValidation{Field: "modality", Reason: fmt.Sprintf("unknown modality %q", m)}
	}

	s.Touch(now)
	return evicted, nil
}

func shapeError(m Modality, sample any) error {
	return &ErrValidation{Field: "sample", Reason: fmt.Sprintf("%T is not a %s sample", sample, m)}
}

// AppendResponse adds r to the response history and folds its score into
// the running accuracy of its category.
func (s *Session) AppendResponse(r Response, now time.Time) error {
	if s.Status != StatusActive {
		return invariantf("cannot record a response on %s session", s.Status)
	}
	if r.AnalysisScore < 0 || r.AnalysisScore > 1 {
		return invariantf("response score %v outside [0,1]", r.AnalysisScore)
	}
	s.Responses = append(s.Responses, r)
	if s.Adaptive.Accuracy == nil {
		s.Adaptive.Accuracy = make(map[questions.Category]Accuracy)
	}
	s.Adaptive.Accuracy[r.Category] = s.Adaptive.Accuracy[r.Category].Add(r.AnalysisScore)
	if len(s.Responses) >= s.TotalQuestions {
		s.Phase = PhaseReview
	}
	s.Touch(now)
	return nil
}

// Answered returns the set of question IDs that already have a response.
func (s *Session) Answered() map[string]bool {
	out := make(map[string]bool, len(s.Responses))
	for _, r := range s.Responses {
		out[r.QuestionID] = true
	}
	return out
}

// QuestionsRemaining returns how many questions are left in the question phase.
func (s *Session) QuestionsRemaining() int {
	return max(0, s.TotalQuestions-len(s.Responses))
}

// Snapshot captures the modality data currently in effect.
func (s *Session) Snapshot() ModalitySnapshot {
	snap := ModalitySnapshot{
		EmotionTotal: s.Emotion.Total,
		MotionTotal:  s.Motion.Total,
		VoiceTotal:   s.Voice.Total,
	}
	if e, ok := s.Emotion.Latest(); ok {
		snap.LatestEmotion = e.Emotion
	}
	if m, ok := s.Motion.Latest(); ok {
		snap.LatestIntensity = m.Intensity
	}
	if v, ok := s.Voice.Latest(); ok {
		snap.LatestSpeechRate = v.SpeechRate
	}
	return snap
}

// Check verifies the structural invariants of the aggregate.
func (s *Session) Check() error {
	if !s.Status.Valid() {
		return invariantf("unknown status %q", s.Status)
	}
	if err := s.Emotion.Check("emotion"); err != nil {
		return err
	}
	if err := s.Motion.Check("motion"); err != nil {
		return err
	}
	return s.Voice.Check("voice")
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Responses = append([]Response(nil), s.Responses...)
	cp.Emotion = s.Emotion.clone(nil)
	cp.Motion = s.Motion.clone(nil)
	cp.Voice = s.Voice.clone(cloneVoice)
	cp.Adaptive = s.Adaptive.clone()
	cp.Analysis = s.Analysis.clone()
	return &cp
}
