package session

import "time"

// EmotionSample is one facial-emotion observation.
type EmotionSample struct {
	Timestamp  time.Time `json:"timestamp"`
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
}

// MotionSample is one motion/gesture observation.
type MotionSample struct {
	Timestamp  time.Time `json:"timestamp"`
	Repetitive bool      `json:"repetitive"`
	Fidgeting  bool      `json:"fidgeting"`
	Intensity  float64   `json:"intensity"`
}

// VoiceSample is one voice-prosody observation. Pitch, Volume and
// SpeechRate are pre-normalized to [0,1].
type VoiceSample struct {
	Timestamp  time.Time `json:"timestamp"`
	Pitch      float64   `json:"pitch"`
	Volume     float64   `json:"volume"`
	SpeechRate float64   `json:"speechRate"`
	Patterns   []string  `json:"patterns,omitempty"`
}

// Speech-pattern labels recognised by the voice analyzer. Unknown labels
// are still counted towards the pattern penalty.
const (
	PatternEcholalia       = "echolalia"
	PatternMonotone        = "monotone"
	PatternAtypicalProsody = "atypical_prosody"
	PatternPronounReversal = "pronoun_reversal"
	PatternDelayedResponse = "delayed_response"
)

// KnownPatterns returns the recognised speech-pattern labels.
func KnownPatterns() []string {
	return []string{
		PatternEcholalia,
		PatternMonotone,
		PatternAtypicalProsody,
		PatternPronounReversal,
		PatternDelayedResponse,
	}
}

func cloneVoice(v VoiceSample) VoiceSample {
	if v.Patterns != nil {
		v.Patterns = append([]string(nil), v.Patterns...)
	}
	return v
}
