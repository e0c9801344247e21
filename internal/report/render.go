package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroscreen/internal/ui/components"
	"github.com/abhisek/neuroscreen/internal/ui/layout"
	"github.com/abhisek/neuroscreen/internal/ui/theme"
)

// Render formats the report for a terminal of the given width.
func Render(r *Report, width int) string {
	width = layout.ClampWidth(width)
	var b strings.Builder

	b.WriteString(layout.RenderHeader("Screening Report", r.SessionID, r.GeneratedAt.Format("2006-01-02 15:04"), width))
	b.WriteString("\n")
	who := fmt.Sprintf("%s, age %d", r.Patient.Name, r.Patient.Age)
	if r.Patient.Gender != "" {
		who += ", " + r.Patient.Gender
	}
	b.WriteString(theme.Hint.Render(who))
	b.WriteString("\n")

	// Executive summary
	sum := r.ExecutiveSummary
	b.WriteString(theme.Heading.Render("Executive Summary"))
	b.WriteString("\n")
	b.WriteString(theme.Risk(sum.RiskLevel).Render(strings.ToUpper(string(sum.RiskLevel)) + " RISK"))
	b.WriteString(theme.Body.Render(fmt.Sprintf("  overall score %.2f", sum.OverallScore)))
	b.WriteString("\n")
	writeList(&b, "Key findings", sum.KeyFindings)
	writeList(&b, "Top recommendations", sum.TopRecommendations)

	// Domains
	b.WriteString(theme.Heading.Render("Domain Findings"))
	b.WriteString("\n")
	for _, d := range r.Domains {
		bar := components.NewScoreBar(d.Title, d.Score, width-4)
		bar.LabelWidth = 32
		b.WriteString(bar.View())
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("  DSM-5 " + d.DSM5))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("  ICD-11 " + d.ICD11))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width-4).PaddingLeft(2).Render(d.Description))
		b.WriteString("\n")
	}

	b.WriteString(theme.Heading.Render("Clinical Impression"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(width).Render(r.ClinicalImpression))
	b.WriteString("\n")

	writeList(&b, "Recommendations", r.Recommendations)
	writeList(&b, "Next Steps", r.NextSteps)

	if r.Insight != nil {
		b.WriteString(layout.Section("AI Insight",
			theme.Body.Render(fmt.Sprintf("score %.2f: %s", r.Insight.Score, r.Insight.Reasoning))))
	}

	b.WriteString("\n")
	b.WriteString(theme.Card.Width(width).Render(theme.Hint.Render(r.Disclaimer)))
	b.WriteString("\n")
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = theme.Body.Render("• " + it)
	}
	b.WriteString(layout.Section(title, lines...))
}
