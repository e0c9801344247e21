package assessment

// Domain trigger thresholds shared by recommendations and key findings.
const (
	SocialConcernBelow        = 0.6
	CommunicationConcernBelow = 0.6
	BehaviorConcernAbove      = 0.6
	SensoryConcernBelow       = 0.6
)

var riskRecommendations = map[RiskLevel][]string{
	RiskHigh: {
		"Refer for a comprehensive diagnostic evaluation by a developmental specialist",
		"Discuss early intervention services with the family",
		"Schedule a follow-up screening within 3 months",
	},
	RiskMedium: {
		"Share the screening results with the primary care provider",
		"Monitor development closely and rescreen within 6 months",
		"Consider a targeted evaluation of the flagged domains",
	},
	RiskLow: {
		"Continue routine developmental monitoring",
		"Rescreen at the next scheduled well-child visit",
	},
}

// Recommendations returns the list seeded by risk level and extended by the
// domain triggers, in a fixed order.
func Recommendations(risk RiskLevel, d DomainScores) []string {
	out := append([]string(nil), riskRecommendations[risk]...)
	if d.Social < SocialConcernBelow {
		out = append(out, "Consider social skills support such as a structured peer play group")
	}
	if d.Communication < CommunicationConcernBelow {
		out = append(out, "Refer for a speech and language assessment")
	}
	if d.Behavior > BehaviorConcernAbove {
		out = append(out, "Consider a behavioral assessment focused on repetitive behaviors")
	}
	if d.Sensory < SensoryConcernBelow {
		out = append(out, "Consider an occupational therapy sensory processing evaluation")
	}
	return out
}
