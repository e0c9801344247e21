package assessment

// RiskLevel is the coarse risk classification. A lower overall score means
// a more atypical profile and therefore a higher risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Risk thresholds on the overall score.
const (
	highRiskBelow   = 0.4
	mediumRiskBelow = 0.7
)

// ClassifyRisk maps an overall score onto a risk level:
// < 0.4 high, [0.4, 0.7) medium, >= 0.7 low.
func ClassifyRisk(overall float64) RiskLevel {
	switch {
	case overall < highRiskBelow:
		return RiskHigh
	case overall < mediumRiskBelow:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Band is the qualitative band of a domain score.
type Band string

const (
	BandTypical  Band = "typical"
	BandMild     Band = "mild"
	BandAtypical Band = "atypical"
)

// ClassifyBand maps a domain score onto its band:
// > 0.7 typical, (0.4, 0.7] mild, <= 0.4 atypical.
func ClassifyBand(score float64) Band {
	switch {
	case score > 0.7:
		return BandTypical
	case score > 0.4:
		return BandMild
	default:
		return BandAtypical
	}
}
