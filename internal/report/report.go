// Package report synthesizes the structured screening report from an
// assessment. The deterministic sections never depend on the optional
// AI insight.
package report

import (
	"time"

	"github.com/abhisek/neuroscreen/internal/analysis"
	"github.com/abhisek/neuroscreen/internal/assessment"
	"github.com/abhisek/neuroscreen/internal/session"
)

// Disclaimer is included verbatim in every report.
const Disclaimer = "This screening report is advisory only and does not constitute a clinical diagnosis. " +
	"Results must be interpreted by a qualified healthcare professional as part of a comprehensive evaluation."

// Key findings emitted by the executive summary.
const (
	FindingSocial        = "social communication challenges"
	FindingBehavior      = "repetitive behaviors noted"
	FindingCommunication = "communication patterns warrant evaluation"
	FindingNone          = "no significant concerns"
)

// topRecommendations is the number of recommendations in the summary.
const topRecommendations = 3

// Report is the structured screening report.
type Report struct {
	SessionID          string                `json:"sessionId"`
	Patient            session.PatientInfo   `json:"patient"`
	GeneratedAt        time.Time             `json:"generatedAt"`
	Overview           Overview              `json:"overview"`
	ExecutiveSummary   ExecutiveSummary      `json:"executiveSummary"`
	Domains            []DomainSection       `json:"domains"`
	ClinicalImpression string                `json:"clinicalImpression"`
	Recommendations    []string              `json:"recommendations"`
	NextSteps          []string              `json:"nextSteps"`
	Disclaimer         string                `json:"disclaimer"`
	Insight            *Insight              `json:"insight,omitempty"`
	Assessment         assessment.Assessment `json:"assessment"`
}

// Overview summarises what was collected during the session.
type Overview struct {
	Status          session.Status `json:"status"`
	StartTime       time.Time      `json:"startTime"`
	EndTime         time.Time      `json:"endTime,omitzero"`
	QuestionsAsked  int            `json:"questionsAsked"`
	EmotionSamples  int            `json:"emotionSamples"`
	MotionSamples   int            `json:"motionSamples"`
	VoiceSamples    int            `json:"voiceSamples"`
	FinalDifficulty string         `json:"finalDifficulty,omitempty"`
}

// ExecutiveSummary is the headline section.
type ExecutiveSummary struct {
	RiskLevel          assessment.RiskLevel `json:"riskLevel"`
	OverallScore       float64              `json:"overallScore"`
	TopRecommendations []string             `json:"topRecommendations"`
	KeyFindings        []string             `json:"keyFindings"`
}

// DomainSection is the detailed finding of one domain.
type DomainSection struct {
	Domain      assessment.Domain `json:"domain"`
	Title       string            `json:"title"`
	DSM5        string            `json:"dsm5"`
	ICD11       string            `json:"icd11"`
	Score       float64           `json:"score"`
	Band        assessment.Band   `json:"band"`
	Description string            `json:"description"`
}

// Insight is the optional narrative assessment from the text-completion
// capability.
type Insight struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Input carries everything the synthesizer needs.
type Input struct {
	Session     *session.Session
	Results     *analysis.Results
	Insight     *Insight
	GeneratedAt time.Time
}

// Synthesize builds a complete report. Missing analyses are replaced by
// the neutral defaults so no section is ever omitted.
func Synthesize(in Input) *Report {
	results := normalize(in.Results)
	a := assessment.Aggregate(results)

	r := &Report{
		GeneratedAt:        in.GeneratedAt,
		ExecutiveSummary:   executiveSummary(a),
		Domains:            domainSections(a),
		ClinicalImpression: ClinicalImpression(a.RiskLevel),
		Recommendations:    a.Recommendations,
		NextSteps:          NextSteps(),
		Disclaimer:         Disclaimer,
		Insight:            in.Insight,
		Assessment:         a,
	}
	if s := in.Session; s != nil {
		r.SessionID = s.ID
		r.Patient = s.Patient
		r.Overview = Overview{
			Status:          s.Status,
			StartTime:       s.StartTime,
			EndTime:         s.EndTime,
			QuestionsAsked:  len(s.Responses),
			EmotionSamples:  s.Emotion.Total,
			MotionSamples:   s.Motion.Total,
			VoiceSamples:    s.Voice.Total,
			FinalDifficulty: string(s.Adaptive.DifficultyLevel),
		}
	}
	return r
}

// normalize substitutes the neutral result for any missing modality.
func normalize(in *analysis.Results) analysis.Results {
	neutral := analysis.Neutral()
	if in == nil {
		return neutral
	}
	out := *in
	if out.Emotion.Description == "" {
		out.Emotion = neutral.Emotion
	}
	if out.Gesture.Description == "" {
		out.Gesture = neutral.Gesture
	}
	if out.Voice.Description == "" {
		out.Voice = neutral.Voice
	}
	return out
}

func executiveSummary(a assessment.Assessment) ExecutiveSummary {
	top := a.Recommendations
	if len(top) > topRecommendations {
		top = top[:topRecommendations]
	}
	return ExecutiveSummary{
		RiskLevel:          a.RiskLevel,
		OverallScore:       a.OverallScore,
		TopRecommendations: append([]string(nil), top...),
		KeyFindings:        KeyFindings(a.Domains),
	}
}

// KeyFindings checks each domain against its fixed trigger.
func KeyFindings(d assessment.DomainScores) []string {
	var out []string
	if d.Social < assessment.SocialConcernBelow {
		out = append(out, FindingSocial)
	}
	if d.Behavior > assessment.BehaviorConcernAbove {
		out = append(out, FindingBehavior)
	}
	if d.Communication < assessment.CommunicationConcernBelow {
		out = append(out, FindingCommunication)
	}
	if len(out) == 0 {
		out = []string{FindingNone}
	}
	return out
}

// ClinicalImpression returns the fixed impression sentence for a risk level.
func ClinicalImpression(risk assessment.RiskLevel) string {
	switch risk {
	case assessment.RiskHigh:
		return "Screening indicators suggest a high likelihood of developmental differences. A comprehensive diagnostic evaluation is recommended."
	case assessment.RiskMedium:
		return "Screening indicators suggest some areas of developmental concern that warrant monitoring and follow-up."
	default:
		return "Screening indicators are within the typical range. No significant developmental concerns were identified."
	}
}

// NextSteps returns the fixed next-steps list.
func NextSteps() []string {
	return []string{
		"Review this report with a qualified healthcare professional",
		"Share the results with the primary care provider",
		"Schedule follow-up screening as recommended",
		"Keep a record of observed behaviors to inform future evaluations",
	}
}
