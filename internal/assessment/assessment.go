// Package assessment combines modality sub-scores into domain scores, an
// overall score and a risk level.
package assessment

import (
	"fmt"

	"github.com/abhisek/neuroscreen/internal/analysis"
	"github.com/abhisek/neuroscreen/internal/session"
)

// SensoryDefault is the fixed sensory domain score. No sensory-specific
// signal is collected, so this domain is not derived from any samples.
const SensoryDefault = 0.8

// Domain is one of the four screening domains.
type Domain string

const (
	DomainSocial        Domain = "social"
	DomainCommunication Domain = "communication"
	DomainBehavior      Domain = "behavior"
	DomainSensory       Domain = "sensory"
)

// AllDomains returns the domains in report order.
func AllDomains() []Domain {
	return []Domain{DomainSocial, DomainCommunication, DomainBehavior, DomainSensory}
}

// DomainScores holds one score per domain, each in [0,1].
type DomainScores struct {
	Social        float64 `json:"social"`
	Communication float64 `json:"communication"`
	Behavior      float64 `json:"behavior"`
	Sensory       float64 `json:"sensory"`
}

// Get returns the score of d.
func (d DomainScores) Get(domain Domain) float64 {
	switch domain {
	case DomainSocial:
		return d.Social
	case DomainCommunication:
		return d.Communication
	case DomainBehavior:
		return d.Behavior
	case DomainSensory:
		return d.Sensory
	}
	return 0
}

// Map returns the scores keyed by domain name.
func (d DomainScores) Map() map[string]float64 {
	out := make(map[string]float64, 4)
	for _, dom := range AllDomains() {
		out[string(dom)] = d.Get(dom)
	}
	return out
}

// Assessment is the aggregated result of one session.
type Assessment struct {
	Domains         DomainScores     `json:"domainScores"`
	OverallScore    float64          `json:"overallScore"`
	RiskLevel       RiskLevel        `json:"riskLevel"`
	Recommendations []string         `json:"recommendations"`
	Analysis        analysis.Results `json:"detailedAnalysis"`
}

// Aggregate combines the modality results:
//
//	social        = 0.6*E + 0.4*G
//	communication = 0.7*V + 0.3*E
//	behavior      = 1 - G
//	sensory       = 0.8
//	overall       = 0.3*social + 0.3*communication + 0.2*behavior + 0.2*sensory
func Aggregate(r analysis.Results) Assessment {
	e, g, v := r.Emotion.Score, r.Gesture.Score, r.Voice.Score

	d := DomainScores{
		Social:        0.6*e + 0.4*g,
		Communication: 0.7*v + 0.3*e,
		Behavior:      1 - g,
		Sensory:       SensoryDefault,
	}
	overall := Overall(d)

	a := Assessment{
		Domains:      d,
		OverallScore: overall,
		RiskLevel:    ClassifyRisk(overall),
		Analysis:     r,
	}
	a.Recommendations = Recommendations(a.RiskLevel, d)
	return a
}

// Overall returns the weighted overall score of the domains.
func Overall(d DomainScores) float64 {
	return 0.3*d.Social + 0.3*d.Communication + 0.2*d.Behavior + 0.2*d.Sensory
}

// Validate checks that every score lies in [0,1] and that the risk level
// matches the overall score.
func (a Assessment) Validate() error {
	for _, dom := range AllDomains() {
		if s := a.Domains.Get(dom); s < 0 || s > 1 {
			return &session.ErrInvariant{Reason: fmt.Sprintf("%s score %v outside [0,1]", dom, s)}
		}
	}
	if a.OverallScore < 0 || a.OverallScore > 1 {
		return &session.ErrInvariant{Reason: fmt.Sprintf("overall score %v outside [0,1]", a.OverallScore)}
	}
	if want := ClassifyRisk(a.OverallScore); a.RiskLevel != want {
		return &session.ErrInvariant{Reason: fmt.Sprintf("risk level %s does not match overall score %v", a.RiskLevel, a.OverallScore)}
	}
	return a.Analysis.Validate()
}

// Cache converts the assessment into the session's analysis cache.
func (a Assessment) Cache() *session.AnalysisCache {
	return &session.AnalysisCache{
		ModalityScores: a.Analysis.Scores(),
		DomainScores:   a.Domains.Map(),
		OverallScore:   a.OverallScore,
		RiskLevel:      string(a.RiskLevel),
	}
}
