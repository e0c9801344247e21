package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries retryable failures with capped exponential backoff.
// An invalid response is retried at most once; a server Retry-After takes
// precedence over the computed wait.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps p. MaxAttempts below one means a single attempt.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) Name() string    { return r.inner.Name() }
func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	invalidSeen := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var se *ServiceError
		if !errors.As(err, &se) || !se.Retryable() || attempt >= attempts || ctx.Err() != nil {
			return nil, err
		}
		if se.Kind == KindInvalidResponse {
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}
		if r.cfg.OnRetry != nil {
			r.cfg.OnRetry(se.Kind)
		}

		timer := time.NewTimer(r.wait(attempt, se))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
	}
}

// wait is InitialWait doubled per attempt, capped at MaxWait, with ±20%
// jitter.
func (r *RetryProvider) wait(attempt int, se *ServiceError) time.Duration {
	if se.RetryAfter > 0 {
		if r.cfg.MaxWait > 0 {
			return min(se.RetryAfter, r.cfg.MaxWait)
		}
		return se.RetryAfter
	}
	d := r.cfg.InitialWait << (attempt - 1)
	if r.cfg.MaxWait > 0 && (d > r.cfg.MaxWait || d <= 0) {
		d = r.cfg.MaxWait
	}
	jitter := time.Duration(float64(d) * 0.2 * (2*rand.Float64() - 1))
	return max(d+jitter, 0)
}
