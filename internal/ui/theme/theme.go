package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroscreen/internal/assessment"
)

// Color palette for terminal reports.
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary).
		MarginTop(1)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

// Risk returns the badge style for a risk level.
func Risk(level assessment.RiskLevel) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(Text)
	switch level {
	case assessment.RiskHigh:
		return base.Background(Error)
	case assessment.RiskMedium:
		return base.Background(Warning)
	default:
		return base.Background(Success)
	}
}

// Band returns the text style for a domain band.
func Band(b assessment.Band) lipgloss.Style {
	switch b {
	case assessment.BandAtypical:
		return lipgloss.NewStyle().Foreground(Error).Bold(true)
	case assessment.BandMild:
		return lipgloss.NewStyle().Foreground(Warning)
	default:
		return lipgloss.NewStyle().Foreground(Success)
	}
}
