package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroscreen/internal/assessment"
	"github.com/abhisek/neuroscreen/internal/ui/theme"
)

// ScoreBar renders a labelled horizontal bar for a score in [0,1],
// coloured by the score's domain band.
type ScoreBar struct {
	Label      string
	LabelWidth int
	Score      float64
	Width      int
}

// NewScoreBar creates a score bar of the given total width.
func NewScoreBar(label string, score float64, width int) ScoreBar {
	return ScoreBar{Label: label, Score: score, Width: width}
}

// View renders the bar followed by the numeric score and band.
func (b ScoreBar) View() string {
	band := assessment.ClassifyBand(b.Score)

	label := b.Label
	if b.LabelWidth > 0 {
		label = fmt.Sprintf("%-*s", b.LabelWidth, label)
	}
	result := theme.Body.Render(label) + "  "

	suffix := fmt.Sprintf("  %.2f %s", b.Score, band)
	barWidth := max(b.Width-lipgloss.Width(result)-len(suffix), 4)
	filled := min(max(int(float64(barWidth)*b.Score+0.5), 0), barWidth)

	fill := lipgloss.NewStyle().Background(theme.Band(band).GetForeground())
	result += fill.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	return result + theme.Band(band).Render(suffix)
}
