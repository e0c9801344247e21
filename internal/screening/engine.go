// Package screening runs screening sessions end to end: lifecycle, signal
// ingestion, adaptive questioning, analysis and report generation. Every
// operation on a session runs inside that session's exclusion scope.
package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/neuroscreen/internal/adaptive"
	"github.com/abhisek/neuroscreen/internal/llm"
	"github.com/abhisek/neuroscreen/internal/questions"
	"github.com/abhisek/neuroscreen/internal/session"
	"github.com/abhisek/neuroscreen/internal/store"
	"github.com/abhisek/neuroscreen/internal/telemetry"
)

// eventQueueSize bounds pending session events. Events beyond it are dropped.
const eventQueueSize = 64

// Options configures an Engine. Only Store is required.
type Options struct {
	Store session.Store

	// Bank is the question bank. Default: the embedded bank.
	Bank *questions.Bank

	// Advisor suggests the next adaptive action. Nil uses thresholds only.
	Advisor *adaptive.Advisor

	// Completer scores open answers and writes the report insight. Nil
	// scores open answers neutrally and omits the insight.
	Completer llm.TextCompleter

	// Events records session lifecycle events when set.
	Events store.EventRepo

	Metrics *telemetry.Metrics
	Logger  *zap.Logger

	// TotalQuestions overrides session.DefaultTotalQuestions when positive.
	TotalQuestions int

	// SessionTTL removes sessions idle for longer than this. Zero disables
	// the sweep.
	SessionTTL time.Duration

	Now   func() time.Time
	NewID func() string
}

// Engine is the screening session engine.
type Engine struct {
	store     session.Store
	locks     *session.Registry
	selector  *adaptive.Selector
	scorer    *adaptive.Scorer
	completer llm.TextCompleter
	metrics   *telemetry.Metrics
	logger    *zap.Logger
	total     int
	ttl       time.Duration
	now       func() time.Time
	newID     func() string

	events  store.EventRepo
	pending chan store.SessionEventData
	drained chan struct{}

	// mu guards closed and sends on pending.
	mu     sync.Mutex
	closed bool
}

// New creates an engine.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("screening: a session store is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.TotalQuestions <= 0 {
		opts.TotalQuestions = session.DefaultTotalQuestions
	}

	e := &Engine{
		store:     opts.Store,
		locks:     session.NewRegistry(),
		selector:  adaptive.NewSelector(opts.Bank, opts.Advisor),
		scorer:    adaptive.NewScorer(opts.Completer),
		completer: opts.Completer,
		metrics:   opts.Metrics,
		logger:    opts.Logger.Named("screening"),
		total:     opts.TotalQuestions,
		ttl:       opts.SessionTTL,
		now:       opts.Now,
		newID:     opts.NewID,
		events:    opts.Events,
	}
	if e.events != nil {
		e.pending = make(chan store.SessionEventData, eventQueueSize)
		e.drained = make(chan struct{})
		go e.processLoop()
	}
	return e, nil
}

// Close flushes pending session events and stops the event loop. Events
// recorded after Close are dropped. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed || e.pending == nil {
		e.closed = true
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.pending)
	e.mu.Unlock()
	<-e.drained
}

// mutate runs fn on a copy of the session inside its exclusion scope and
// persists the difference. Nothing is written when fn fails.
func (e *Engine) mutate(ctx context.Context, id string, fn func(s *session.Session) error) (*session.Session, error) {
	unlock := e.locks.Lock(id)
	defer unlock()
	return e.mutateLocked(ctx, id, fn)
}

// snapshot returns a private copy of the session taken inside its exclusion
// scope. Slow work such as LLM calls runs on the copy with no lock held.
func (e *Engine) snapshot(ctx context.Context, id string) (*session.Session, error) {
	unlock := e.locks.Lock(id)
	defer unlock()
	s, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

func (e *Engine) mutateLocked(ctx context.Context, id string, fn func(s *session.Session) error) (*session.Session, error) {
	before, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	after := before.Clone()
	if err := fn(after); err != nil {
		return nil, err
	}
	patch := session.Diff(before, after)
	if patch.Empty() {
		return after, nil
	}
	if err := e.store.Update(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", id, err)
	}
	return after, nil
}

func (e *Engine) record(s *session.Session, action, detail string) {
	if e.pending == nil {
		return
	}
	ev := store.SessionEventData{
		SessionID: s.ID,
		Action:    action,
		Status:    string(s.Status),
		Phase:     s.Phase,
		Detail:    detail,
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.logger.Debug("engine closed, dropping session event",
			zap.String("session_id", s.ID), zap.String("action", action))
		return
	}
	select {
	case e.pending <- ev:
	default:
		e.logger.Debug("session event queue full, dropping event",
			zap.String("session_id", s.ID), zap.String("action", action))
	}
}

func (e *Engine) processLoop() {
	defer close(e.drained)
	for ev := range e.pending {
		if err := e.events.AppendSessionEvent(context.Background(), ev); err != nil {
			e.logger.Warn("failed to record session event",
				zap.String("session_id", ev.SessionID), zap.String("action", ev.Action), zap.Error(err))
		}
	}
}
