package analysis

import (
	"fmt"
	"strings"

	"github.com/abhisek/neuroscreen/internal/session"
)

// Gesture flag thresholds.
const (
	repetitiveThreshold   = 0.3
	handFlappingThreshold = 0.5
	fidgetingThreshold    = 0.4
)

// GestureResult is the motion/gesture analysis of a window.
type GestureResult struct {
	Score             float64 `json:"score"`
	RepetitiveRatio   float64 `json:"repetitiveRatio"`
	FidgetRatio       float64 `json:"fidgetRatio"`
	AvgIntensity      float64 `json:"avgIntensity"`
	RepetitiveMotions bool    `json:"repetitiveMotions"`
	HandFlapping      bool    `json:"handFlapping"`
	Fidgeting         bool    `json:"fidgeting"`
	SampleSize        int     `json:"sampleSize"`
	Description       string  `json:"description"`
}

// AnalyzeGesture scores a window of motion samples as
// 1 - (0.6*repetitiveRatio + 0.4*fidgetRatio).
func AnalyzeGesture(samples []session.MotionSample) GestureResult {
	if len(samples) == 0 {
		return GestureResult{Score: NeutralScore, Description: NoDataDescription}
	}

	var repetitive, fidget int
	var intensity float64
	for _, s := range samples {
		if s.Repetitive {
			repetitive++
		}
		if s.Fidgeting {
			fidget++
		}
		intensity += s.Intensity
	}

	total := len(samples)
	rr := ratio(repetitive, total)
	fr := ratio(fidget, total)

	r := GestureResult{
		Score:             1 - (0.6*rr + 0.4*fr),
		RepetitiveRatio:   rr,
		FidgetRatio:       fr,
		AvgIntensity:      intensity / float64(total),
		RepetitiveMotions: rr > repetitiveThreshold,
		HandFlapping:      rr > handFlappingThreshold,
		Fidgeting:         fr > fidgetingThreshold,
		SampleSize:        total,
	}
	r.Description = r.describe()
	return r
}

func (r GestureResult) describe() string {
	var flags []string
	if r.RepetitiveMotions {
		flags = append(flags, "repetitive motions")
	}
	if r.HandFlapping {
		flags = append(flags, "hand flapping")
	}
	if r.Fidgeting {
		flags = append(flags, "fidgeting")
	}
	observed := "no atypical motor patterns"
	if len(flags) > 0 {
		observed = strings.Join(flags, ", ")
	}
	return fmt.Sprintf("Observed %s across %d samples; repetitive %s, fidgeting %s.",
		observed, r.SampleSize, percent(r.RepetitiveRatio), percent(r.FidgetRatio))
}

// Validate reports an invariant violation for any ratio outside [0,1].
func (r GestureResult) Validate() error {
	if err := checkUnit("gesture score", r.Score); err != nil {
		return err
	}
	if err := checkUnit("gesture repetitive ratio", r.RepetitiveRatio); err != nil {
		return err
	}
	return checkUnit("gesture fidget ratio", r.FidgetRatio)
}
