package screening

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/neuroscreen/internal/analysis"
	"github.com/abhisek/neuroscreen/internal/assessment"
	"github.com/abhisek/neuroscreen/internal/llm"
	"github.com/abhisek/neuroscreen/internal/questions"
	"github.com/abhisek/neuroscreen/internal/report"
	"github.com/abhisek/neuroscreen/internal/session"
)

// Analyze computes the real-time assessment of a session. The result is
// cached on active sessions; terminal sessions are only read.
func (e *Engine) Analyze(ctx context.Context, id string) (assessment.Assessment, error) {
	if err := session.ValidateID(id); err != nil {
		return assessment.Assessment{}, err
	}
	var a assessment.Assessment
	s, err := e.mutate(ctx, id, func(s *session.Session) error {
		a = e.assess(s)
		if s.Status == session.StatusActive {
			s.Analysis = e.cache(a)
			s.Touch(e.now())
		}
		return nil
	})
	if err != nil {
		return assessment.Assessment{}, err
	}
	e.record(s, ActionAnalyze, fmt.Sprintf("overall %.3f, risk %s", a.OverallScore, a.RiskLevel))
	return a, nil
}

// GenerateReport synthesizes the report of a session and completes it if
// it is still active. A report can be generated for any existing session,
// including one with no samples at all.
func (e *Engine) GenerateReport(ctx context.Context, id string) (*report.Report, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, err
	}
	// The insight is computed on a snapshot with the session unlocked.
	var insight *report.Insight
	if e.completer != nil {
		draft, err := e.snapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		insight = e.insight(ctx, draft, e.assess(draft))
	}

	var (
		results analysis.Results
		wasOpen bool
	)
	s, err := e.mutate(ctx, id, func(s *session.Session) error {
		a := e.assess(s)
		results = a.Analysis
		if s.Status == session.StatusActive {
			wasOpen = true
			s.Analysis = e.cache(a)
			return s.Transition(session.StatusCompleted, e.now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r := report.Synthesize(report.Input{
		Session:     s,
		Results:     &results,
		Insight:     insight,
		GeneratedAt: e.now(),
	})

	e.metrics.ReportGenerated(string(r.ExecutiveSummary.RiskLevel))
	if wasOpen {
		e.metrics.SessionFinished(string(session.StatusCompleted))
	}
	e.record(s, ActionReport, fmt.Sprintf("risk %s", r.ExecutiveSummary.RiskLevel))
	e.logger.Info("report generated",
		zap.String("session_id", id),
		zap.String("risk", string(r.ExecutiveSummary.RiskLevel)),
		zap.Float64("overall", r.ExecutiveSummary.OverallScore))
	return r, nil
}

// assess runs the analyzers and the aggregator. Scores outside [0,1] are
// logged and clamped.
func (e *Engine) assess(s *session.Session) assessment.Assessment {
	results := analysis.Analyze(s)
	if err := results.Validate(); err != nil {
		e.metrics.InvariantViolation("analysis")
		e.logger.Error("analyzer produced out-of-range score, clamping",
			zap.String("session_id", s.ID), zap.Error(err))
		results = results.Clamped()
	}
	a := assessment.Aggregate(results)
	if err := a.Validate(); err != nil {
		e.metrics.InvariantViolation("assessment")
		e.logger.Error("assessment failed validation", zap.String("session_id", s.ID), zap.Error(err))
	}
	return a
}

func (e *Engine) cache(a assessment.Assessment) *session.AnalysisCache {
	c := a.Cache()
	c.ComputedAt = e.now()
	return c
}

// insight asks the completer for a narrative assessment. Without a
// completer the report carries no insight.
func (e *Engine) insight(ctx context.Context, s *session.Session, a assessment.Assessment) *report.Insight {
	if e.completer == nil {
		return nil
	}
	ctx = llm.WithSession(llm.WithPurpose(ctx, llm.PurposeReportInsight), s.ID)
	c := e.completer.Complete(ctx, insightPrompt(a), insightBackground(s))
	return &report.Insight{Score: analysis.Clamp01(c.Score), Reasoning: c.Reasoning}
}

func insightPrompt(a assessment.Assessment) string {
	var b strings.Builder
	b.WriteString("Summarize how typical the observed behavior is across the screening domains.\n")
	for _, d := range assessment.AllDomains() {
		fmt.Fprintf(&b, "- %s: %.2f (%s)\n", d, a.Domains.Get(d), assessment.ClassifyBand(a.Domains.Get(d)))
	}
	fmt.Fprintf(&b, "Overall: %.2f, risk %s\n", a.OverallScore, a.RiskLevel)
	fmt.Fprintf(&b, "Emotion: %s\nGesture: %s\nVoice: %s\n",
		a.Analysis.Emotion.Description, a.Analysis.Gesture.Description, a.Analysis.Voice.Description)
	return b.String()
}

func insightBackground(s *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient age: %d\n", s.Patient.Age)
	fmt.Fprintf(&b, "Questions answered: %d of %d\n", len(s.Responses), s.TotalQuestions)
	for _, c := range questions.AllCategories() {
		acc, ok := s.Adaptive.Accuracy[c]
		if !ok || acc.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s answers: mean %.2f over %d\n", questions.CategoryDisplayName(c), acc.Mean(), acc.Count)
	}
	return b.String()
}
