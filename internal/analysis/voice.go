package analysis

import (
	"fmt"
	"strings"

	"github.com/abhisek/neuroscreen/internal/session"
)

// patternPenalty is subtracted per distinct flagged speech pattern.
const patternPenalty = 0.1

// VoiceResult is the voice-prosody analysis of a window.
type VoiceResult struct {
	Score          float64  `json:"score"`
	AvgPitch       float64  `json:"avgPitch"`
	AvgVolume      float64  `json:"avgVolume"`
	AvgSpeechRate  float64  `json:"avgSpeechRate"`
	ProsodyScore   float64  `json:"prosodyScore"`
	PatternPenalty float64  `json:"patternPenalty"`
	Patterns       []string `json:"patterns,omitempty"`
	SampleSize     int      `json:"sampleSize"`
	Description    string   `json:"description"`
}

// AnalyzeVoice scores a window of voice samples as
// max(0, 0.4*pitch + 0.3*volume + 0.3*speechRate - 0.1*distinctPatterns)
// using the window averages of each prosody field.
func AnalyzeVoice(samples []session.VoiceSample) VoiceResult {
	if len(samples) == 0 {
		return VoiceResult{Score: NeutralScore, Description: NoDataDescription}
	}

	var pitch, volume, rate float64
	seen := make(map[string]bool)
	var patterns []string
	for _, s := range samples {
		pitch += s.Pitch
		volume += s.Volume
		rate += s.SpeechRate
		for _, p := range s.Patterns {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			patterns = append(patterns, p)
		}
	}

	n := float64(len(samples))
	r := VoiceResult{
		AvgPitch:      pitch / n,
		AvgVolume:     volume / n,
		AvgSpeechRate: rate / n,
		Patterns:      patterns,
		SampleSize:    len(samples),
	}
	r.ProsodyScore = 0.4*r.AvgPitch + 0.3*r.AvgVolume + 0.3*r.AvgSpeechRate
	r.PatternPenalty = patternPenalty * float64(len(patterns))
	r.Score = max(0, r.ProsodyScore-r.PatternPenalty)
	r.Description = r.describe()
	return r
}

func (r VoiceResult) describe() string {
	flagged := "no atypical speech patterns"
	if len(r.Patterns) > 0 {
		flagged = "speech patterns flagged: " + strings.Join(r.Patterns, ", ")
	}
	return fmt.Sprintf("Prosody score %.2f across %d samples; %s.", r.ProsodyScore, r.SampleSize, flagged)
}

// Validate reports an invariant violation when the score is outside [0,1].
func (r VoiceResult) Validate() error {
	return checkUnit("voice score", r.Score)
}
