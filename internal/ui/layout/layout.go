// Package layout arranges terminal report output.
package layout

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroscreen/internal/ui/theme"
)

const (
	MinWidth     = 60
	DefaultWidth = 80
	MaxWidth     = 120
)

// ClampWidth keeps a requested render width within [MinWidth, MaxWidth].
// A non-positive width selects DefaultWidth.
func ClampWidth(width int) int {
	if width <= 0 {
		return DefaultWidth
	}
	return min(max(width, MinWidth), MaxWidth)
}

// RenderHeader renders a bordered header bar with left, center and right
// segments spread across width.
func RenderHeader(left, center, right string, width int) string {
	l := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(left)
	c := lipgloss.NewStyle().Foreground(theme.Text).Render(center)
	r := lipgloss.NewStyle().Foreground(theme.TextDim).Render(right)

	leftLen := lipgloss.Width(l)
	centerLen := lipgloss.Width(c)
	rightLen := lipgloss.Width(r)

	// Border and padding take four columns.
	innerWidth := max(width-4, 0)

	leftGap := max((innerWidth-centerLen)/2-leftLen, 1)
	rightGap := max(innerWidth-leftLen-leftGap-centerLen-rightLen, 1)

	content := l + strings.Repeat(" ", leftGap) + c + strings.Repeat(" ", rightGap) + r

	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// Section renders a heading followed by body lines indented by two columns.
func Section(title string, lines ...string) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render(title))
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
