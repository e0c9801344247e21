package session

import (
	"maps"
	"time"

	"github.com/abhisek/neuroscreen/internal/questions"
)

// Response is one submitted answer. Responses are append-only.
type Response struct {
	QuestionID     string               `json:"questionId"`
	Category       questions.Category   `json:"category"`
	Difficulty     questions.Difficulty `json:"difficulty"`
	Answer         string               `json:"answer"`
	Confidence     float64              `json:"confidence"`
	ResponseTimeMs int64                `json:"responseTimeMs"`
	Snapshot       ModalitySnapshot     `json:"snapshot"`
	AnalysisScore  float64              `json:"analysisScore"`
	Reasoning      string               `json:"reasoning,omitempty"`
	SubmittedAt    time.Time            `json:"submittedAt"`
}

// ModalitySnapshot references the modality data in effect when a response
// was submitted: the ingest counters plus the latest observed values.
type ModalitySnapshot struct {
	EmotionTotal     int     `json:"emotionTotal"`
	MotionTotal      int     `json:"motionTotal"`
	VoiceTotal       int     `json:"voiceTotal"`
	LatestEmotion    string  `json:"latestEmotion,omitempty"`
	LatestIntensity  float64 `json:"latestIntensity"`
	LatestSpeechRate float64 `json:"latestSpeechRate"`
}

// Accuracy is a running mean of analysis scores.
type Accuracy struct {
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
}

// Add folds one score into the running mean.
func (a Accuracy) Add(score float64) Accuracy {
	return Accuracy{Sum: a.Sum + score, Count: a.Count + 1}
}

// Mean returns the running mean, or 0 when nothing has been recorded.
func (a Accuracy) Mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

// AdaptiveData is the adaptive selector's per-session state.
type AdaptiveData struct {
	DifficultyLevel questions.Difficulty            `json:"difficultyLevel"`
	CategoryFocus   questions.Category              `json:"categoryFocus"`
	Accuracy        map[questions.Category]Accuracy `json:"accuracy"`
	// LastAction is the most recent selector action, for inspection.
	LastAction string `json:"lastAction,omitempty"`
}

func (a AdaptiveData) clone() AdaptiveData {
	a.Accuracy = maps.Clone(a.Accuracy)
	return a
}

// AnalysisCache holds the most recently computed analysis results.
type AnalysisCache struct {
	ModalityScores map[Modality]float64 `json:"modalityScores"`
	DomainScores   map[string]float64   `json:"domainScores"`
	OverallScore   float64              `json:"overallScore"`
	RiskLevel      string               `json:"riskLevel"`
	ComputedAt     time.Time            `json:"computedAt"`
}

func (c *AnalysisCache) clone() *AnalysisCache {
	if c == nil {
		return nil
	}
	cp := *c
	cp.ModalityScores = maps.Clone(c.ModalityScores)
	cp.DomainScores = maps.Clone(c.DomainScores)
	return &cp
}
