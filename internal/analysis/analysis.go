// Package analysis maps modality windows onto normalized sub-scores.
// Every analyzer is pure and returns a neutral 0.5 score with a
// "no data available" description for an empty window.
package analysis

import (
	"fmt"

	"github.com/abhisek/neuroscreen/internal/session"
)

// NeutralScore is returned for modalities without samples.
const NeutralScore = 0.5

// NoDataDescription describes a modality without samples.
const NoDataDescription = "no data available"

// Results bundles the three modality analyses of one session.
type Results struct {
	Emotion EmotionResult `json:"emotion"`
	Gesture GestureResult `json:"gesture"`
	Voice   VoiceResult   `json:"voice"`
}

// Analyze runs every analyzer over the session's windows.
func Analyze(s *session.Session) Results {
	return Results{
		Emotion: AnalyzeEmotion(s.Emotion.Items),
		Gesture: AnalyzeGesture(s.Motion.Items),
		Voice:   AnalyzeVoice(s.Voice.Items),
	}
}

// Neutral returns the results of a session with no samples at all.
func Neutral() Results {
	return Results{
		Emotion: AnalyzeEmotion(nil),
		Gesture: AnalyzeGesture(nil),
		Voice:   AnalyzeVoice(nil),
	}
}

// Validate returns the first invariant violation among the results.
func (r Results) Validate() error {
	if err := r.Emotion.Validate(); err != nil {
		return err
	}
	if err := r.Gesture.Validate(); err != nil {
		return err
	}
	return r.Voice.Validate()
}

// Clamped returns a copy with every score forced into [0,1].
func (r Results) Clamped() Results {
	r.Emotion.Score = Clamp01(r.Emotion.Score)
	r.Gesture.Score = Clamp01(r.Gesture.Score)
	r.Voice.Score = Clamp01(r.Voice.Score)
	return r
}

// Scores returns the sub-score of each modality.
func (r Results) Scores() map[session.Modality]float64 {
	return map[session.Modality]float64{
		session.ModalityEmotion: r.Emotion.Score,
		session.ModalityMotion:  r.Gesture.Score,
		session.ModalityVoice:   r.Voice.Score,
	}
}

// Clamp01 forces v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// checkUnit returns an invariant violation when v is outside [0,1].
func checkUnit(name string, v float64) error {
	if v >= 0 && v <= 1 {
		return nil
	}
	return &session.ErrInvariant{Reason: fmt.Sprintf("%s %v outside [0,1]", name, v)}
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
