package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/neuroscreen/internal/analysis"
	"github.com/abhisek/neuroscreen/internal/session"
)

// validate is shared by every request DTO. Field names in errors use the
// JSON tag.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates req and converts the first failure into *session.ErrValidation.
func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &session.ErrValidation{Field: fieldPath(fe.Namespace()), Reason: describeRule(fe)}
	}
	return &session.ErrValidation{Field: "body", Reason: err.Error()}
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

type patientRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	// Age is decoded as a number literal or a numeric string.
	Age    json.Number `json:"age" validate:"required"`
	Gender string      `json:"gender" validate:"max=32"`
}

type startRequest struct {
	PatientInfo patientRequest `json:"patientInfo" validate:"required"`
}

func (r startRequest) patient() (session.PatientInfo, error) {
	age, err := r.PatientInfo.Age.Int64()
	if err != nil {
		return session.PatientInfo{}, &session.ErrValidation{Field: "patientInfo.age", Reason: fmt.Sprintf("%q is not a whole number", r.PatientInfo.Age)}
	}
	p := session.PatientInfo{
		Name:   strings.TrimSpace(r.PatientInfo.Name),
		Age:    int(age),
		Gender: r.PatientInfo.Gender,
	}
	return p, p.Validate()
}

type emotionRequest struct {
	Timestamp  time.Time `json:"timestamp"`
	Emotion    string    `json:"emotion" validate:"required,max=64"`
	Confidence float64   `json:"confidence" validate:"gte=0,lte=1"`
}

func (r emotionRequest) sample() session.EmotionSample {
	return session.EmotionSample{Timestamp: r.Timestamp, Emotion: strings.ToLower(strings.TrimSpace(r.Emotion)), Confidence: r.Confidence}
}

type motionRequest struct {
	Timestamp  time.Time `json:"timestamp"`
	Repetitive bool      `json:"repetitive"`
	Fidgeting  bool      `json:"fidgeting"`
	Intensity  float64   `json:"intensity" validate:"gte=0,lte=1"`
}

func (r motionRequest) sample() session.MotionSample {
	return session.MotionSample(r)
}

type voiceRequest struct {
	Timestamp  time.Time `json:"timestamp"`
	Pitch      float64   `json:"pitch" validate:"gte=0,lte=1"`
	Volume     float64   `json:"volume" validate:"gte=0,lte=1"`
	SpeechRate float64   `json:"speechRate" validate:"gte=0,lte=1"`
	Patterns   []string  `json:"patterns" validate:"max=16,dive,required,max=64"`
}

func (r voiceRequest) sample() session.VoiceSample {
	return session.VoiceSample(r)
}

type answerRequest struct {
	QuestionID   string  `json:"questionId" validate:"required,max=64"`
	Answer       string  `json:"answer" validate:"max=4000"`
	Confidence   float64 `json:"confidence" validate:"gte=0,lte=1"`
	ResponseTime int64   `json:"responseTime" validate:"gte=0"`
}

type windowView struct {
	Buffered int `json:"buffered"`
	Capacity int `json:"capacity"`
	Total    int `json:"total"`
}

type statusView struct {
	ID                string                 `json:"id"`
	Patient           session.PatientInfo    `json:"patientInfo"`
	Status            session.Status         `json:"status"`
	Phase             string                 `json:"phase"`
	StartTime         time.Time              `json:"startTime"`
	EndTime           time.Time              `json:"endTime,omitzero"`
	LastUpdated       time.Time              `json:"lastUpdated"`
	TotalQuestions    int                    `json:"totalQuestions"`
	Answered          int                    `json:"answered"`
	Remaining         int                    `json:"remaining"`
	CurrentQuestionID string                 `json:"currentQuestionId,omitempty"`
	Samples           map[string]windowView  `json:"samples"`
	Adaptive          session.AdaptiveData   `json:"adaptiveData"`
	Analysis          *session.AnalysisCache `json:"analysisResults,omitempty"`
}

func newStatusView(s *session.Session) statusView {
	return statusView{
		ID:                s.ID,
		Patient:           s.Patient,
		Status:            s.Status,
		Phase:             s.Phase,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		LastUpdated:       s.LastUpdated,
		TotalQuestions:    s.TotalQuestions,
		Answered:          len(s.Responses),
		Remaining:         s.QuestionsRemaining(),
		CurrentQuestionID: s.CurrentQuestionID,
		Samples: map[string]windowView{
			string(session.ModalityEmotion): {Buffered: s.Emotion.Len(), Capacity: s.Emotion.Capacity, Total: s.Emotion.Total},
			string(session.ModalityMotion):  {Buffered: s.Motion.Len(), Capacity: s.Motion.Capacity, Total: s.Motion.Total},
			string(session.ModalityVoice):   {Buffered: s.Voice.Len(), Capacity: s.Voice.Capacity, Total: s.Voice.Total},
		},
		Adaptive: s.Adaptive,
		Analysis: s.Analysis,
	}
}

type analysisView struct {
	SessionID        string             `json:"sessionId"`
	DomainScores     map[string]float64 `json:"domainScores"`
	OverallScore     float64            `json:"overallScore"`
	RiskLevel        string             `json:"riskLevel"`
	Recommendations  []string           `json:"recommendations"`
	DetailedAnalysis analysis.Results   `json:"detailedAnalysis"`
}
