package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/neuroscreen/internal/store"
)

// EventRecorder persists one event per LLM call.
type EventRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// RecordingProvider logs every call and records it as an event labelled
// with the purpose and session carried by the context.
type RecordingProvider struct {
	inner    Provider
	recorder EventRecorder
	logger   *zap.Logger
}

// WithRecording wraps p. A nil recorder only logs.
func WithRecording(p Provider, recorder EventRecorder, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingProvider{inner: p, recorder: recorder, logger: logger.Named("llm")}
}

func (r *RecordingProvider) Name() string    { return r.inner.Name() }
func (r *RecordingProvider) ModelID() string { return r.inner.ModelID() }

func (r *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	ev := store.LLMRequestEventData{
		SessionID:   SessionFrom(ctx),
		Provider:    r.inner.Name(),
		Model:       r.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if err != nil {
		ev.ErrorMessage = FailureMessage(err)
		r.logger.Warn("llm call failed",
			zap.String("purpose", ev.Purpose),
			zap.String("session_id", ev.SessionID),
			zap.String("kind", string(KindOf(err))),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
		r.logger.Debug("llm call",
			zap.String("purpose", ev.Purpose),
			zap.String("session_id", ev.SessionID),
			zap.String("model", ev.Model),
			zap.Int("tokens", resp.Usage.Total()),
			zap.Duration("elapsed", elapsed))
	}

	if r.recorder != nil {
		if recErr := r.recorder.AppendLLMRequest(context.WithoutCancel(ctx), ev); recErr != nil {
			r.logger.Warn("record llm event", zap.Error(recErr))
		}
	}
	return resp, err
}

// transcript renders a request for the event log.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	fmt.Fprintf(&b, "[user]\n%s\n", req.Prompt)
	if req.Schema != nil {
		fmt.Fprintf(&b, "\n[schema %s]\n", req.Schema.Name)
	}
	return b.String()
}

// FailureMessage prefixes err with its kind in brackets, e.g.
// "[rate_limit] openai: rate_limit: ...". ParseFailureKind reverses it.
func FailureMessage(err error) string {
	return fmt.Sprintf("[%s] %v", KindOf(err), err)
}

// ParseFailureKind extracts the kind from a FailureMessage.
func ParseFailureKind(msg string) (Kind, bool) {
	rest, ok := strings.CutPrefix(msg, "[")
	if !ok {
		return "", false
	}
	kind, _, ok := strings.Cut(rest, "]")
	if !ok || kind == "" {
		return "", false
	}
	return Kind(kind), true
}
