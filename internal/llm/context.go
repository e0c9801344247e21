package llm

import "context"

// Purposes label calls in the event log and in metrics.
const (
	PurposeAnswerScore   = "answer-score"
	PurposeNextAction    = "next-action"
	PurposeReportInsight = "report-insight"
)

type labelsKey struct{}

// labels identify what a call was made for.
type labels struct {
	purpose string
	session string
}

func labelsFrom(ctx context.Context) labels {
	l, _ := ctx.Value(labelsKey{}).(labels)
	return l
}

// WithPurpose labels calls made under ctx with purpose.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	l := labelsFrom(ctx)
	l.purpose = purpose
	return context.WithValue(ctx, labelsKey{}, l)
}

// WithSession labels calls made under ctx with the screening session ID.
func WithSession(ctx context.Context, sessionID string) context.Context {
	l := labelsFrom(ctx)
	l.session = sessionID
	return context.WithValue(ctx, labelsKey{}, l)
}

// PurposeFrom returns the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p := labelsFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// SessionFrom returns the session label, or "".
func SessionFrom(ctx context.Context) string {
	return labelsFrom(ctx).session
}
