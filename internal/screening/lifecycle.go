package screening

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/neuroscreen/internal/session"
)

// Session event actions.
const (
	ActionStart   = "start"
	ActionAnswer  = "answer"
	ActionAnalyze = "analyze"
	ActionReport  = "report"
	ActionEnd     = "end"
	ActionExpire  = "expire"
)

// Start creates a session for patient and activates it.
func (e *Engine) Start(ctx context.Context, patient session.PatientInfo) (*session.Session, error) {
	if err := patient.Validate(); err != nil {
		return nil, err
	}
	id := e.newID()

	unlock := e.locks.Lock(id)
	defer unlock()

	if err := e.store.Create(ctx, id, patient); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s, err := e.mutateLocked(ctx, id, func(s *session.Session) error {
		s.TotalQuestions = e.total
		return s.Transition(session.StatusActive, e.now())
	})
	if err != nil {
		if derr := e.store.Delete(ctx, id); derr != nil {
			e.logger.Warn("failed to remove half-created session", zap.String("session_id", id), zap.Error(derr))
		}
		return nil, fmt.Errorf("activate session %s: %w", id, err)
	}

	e.metrics.SessionStarted()
	e.record(s, ActionStart, "")
	e.logger.Info("session started", zap.String("session_id", id), zap.Int("total_questions", s.TotalQuestions))
	return s, nil
}

// Status returns a copy of the session.
func (e *Engine) Status(ctx context.Context, id string) (*session.Session, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, err
	}
	return e.store.Get(ctx, id)
}

// List returns the sessions matching filter.
func (e *Engine) List(ctx context.Context, filter session.Filter) ([]*session.Session, error) {
	return e.store.List(ctx, filter)
}

// End closes an active session without a report.
func (e *Engine) End(ctx context.Context, id string) (*session.Session, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, err
	}
	s, err := e.mutate(ctx, id, func(s *session.Session) error {
		return s.Transition(session.StatusEnded, e.now())
	})
	if err != nil {
		return nil, err
	}
	e.metrics.SessionFinished(string(session.StatusEnded))
	e.record(s, ActionEnd, "")
	e.logger.Info("session ended", zap.String("session_id", id), zap.Int("responses", len(s.Responses)))
	return s, nil
}

// Sweep removes every session idle for longer than the TTL and returns how
// many were removed. Each removal happens inside the session's exclusion
// scope so in-flight operations finish first and later callers observe
// NotFound.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	if e.ttl <= 0 {
		return 0, nil
	}
	cutoff := e.now().Add(-e.ttl)
	idle, err := e.store.List(ctx, session.Filter{IdleSince: cutoff})
	if err != nil {
		return 0, fmt.Errorf("list idle sessions: %w", err)
	}

	removed := 0
	for _, candidate := range idle {
		ok, err := e.expire(ctx, candidate.ID, cutoff)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

func (e *Engine) expire(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	// Re-read under the lock: the session may have been touched or
	// removed since it was listed.
	s, err := e.store.Get(ctx, id)
	if err != nil {
		var nf *session.ErrNotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("load session %s: %w", id, err)
	}
	if !s.LastUpdated.Before(cutoff) {
		return false, nil
	}
	if err := e.store.Delete(ctx, id); err != nil {
		var nf *session.ErrNotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}

	if s.Status == session.StatusActive {
		e.metrics.SessionFinished("expired")
	}
	e.metrics.SessionExpired()
	e.record(s, ActionExpire, fmt.Sprintf("idle since %s", s.LastUpdated.UTC().Format(time.RFC3339)))
	e.logger.Info("session expired",
		zap.String("session_id", id),
		zap.String("status", string(s.Status)),
		zap.Time("last_updated", s.LastUpdated))
	return true, nil
}

// RunSweeper sweeps every interval until ctx is cancelled.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) error {
	if e.ttl <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := e.Sweep(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				e.logger.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				e.logger.Debug("session sweep", zap.Int("removed", n))
			}
		}
	}
}
