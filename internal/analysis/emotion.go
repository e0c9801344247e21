package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/neuroscreen/internal/session"
)

// socialEmotions are the labels counted towards social engagement.
var socialEmotions = map[string]bool{
	"happy":     true,
	"surprised": true,
	"fearful":   true,
	"sad":       true,
}

// EmotionResult is the facial-emotion analysis of a window.
type EmotionResult struct {
	Score           float64        `json:"score"`
	DominantEmotion string         `json:"dominantEmotion,omitempty"`
	SocialRatio     float64        `json:"socialRatio"`
	Stability       float64        `json:"stability"`
	DistinctLabels  int            `json:"distinctLabels"`
	Distribution    map[string]int `json:"distribution,omitempty"`
	SampleSize      int            `json:"sampleSize"`
	Description     string         `json:"description"`
}

// AnalyzeEmotion scores a window of emotion samples as
// 0.6*socialRatio + 0.4*stability.
//
// stability is 1 - (distinct-1)/total so a window with a single label is
// fully stable and each additional label lowers it.
func AnalyzeEmotion(samples []session.EmotionSample) EmotionResult {
	if len(samples) == 0 {
		return EmotionResult{Score: NeutralScore, Stability: NeutralScore, SocialRatio: NeutralScore, Description: NoDataDescription}
	}

	counts := make(map[string]int)
	var order []string
	social := 0
	for _, s := range samples {
		label := strings.ToLower(strings.TrimSpace(s.Emotion))
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
		if socialEmotions[label] {
			social++
		}
	}

	// Stable sort keeps first-seen order among equally frequent labels.
	ranked := slices.Clone(order)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return counts[b] - counts[a]
	})

	total := len(samples)
	distinct := len(order)
	socialRatio := ratio(social, total)
	// A single repeated label is fully stable; each further label costs 1/total.
	stability := 1 - ratio(distinct-1, total)

	r := EmotionResult{
		Score:           0.6*socialRatio + 0.4*stability,
		DominantEmotion: ranked[0],
		SocialRatio:     socialRatio,
		Stability:       stability,
		DistinctLabels:  distinct,
		Distribution:    counts,
		SampleSize:      total,
	}
	r.Description = fmt.Sprintf("Predominantly %s expression across %d samples; social engagement %s, emotional stability %s.",
		r.DominantEmotion, total, percent(socialRatio), percent(stability))
	return r
}

// Validate reports an invariant violation for any ratio outside [0,1].
func (r EmotionResult) Validate() error {
	if err := checkUnit("emotion score", r.Score); err != nil {
		return err
	}
	if err := checkUnit("emotion social ratio", r.SocialRatio); err != nil {
		return err
	}
	return checkUnit("emotion stability", r.Stability)
}
