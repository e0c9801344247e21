package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrExternalService matches every failure of an external reasoning
// service with errors.Is. Such failures are always recovered by the caller
// with a neutral result.
var ErrExternalService = errors.New("external service error")

// Kind classifies an external service failure.
type Kind string

const (
	KindRateLimit       Kind = "rate_limit"
	KindUnavailable     Kind = "unavailable"
	KindInvalidResponse Kind = "invalid_response"
	KindTruncated       Kind = "truncated"
	KindTimeout         Kind = "timeout"
	KindCanceled        Kind = "canceled"
)

// ServiceError is the error returned by providers.
type ServiceError struct {
	Kind     Kind
	Provider string

	// RetryAfter is the server-requested wait for KindRateLimit, if any.
	RetryAfter time.Duration

	// Content is the offending output for KindInvalidResponse and
	// KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.Kind == KindRateLimit && e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is reports ErrExternalService as a match.
func (e *ServiceError) Is(target error) bool { return target == ErrExternalService }

// Retryable reports whether another attempt may succeed.
func (e *ServiceError) Retryable() bool {
	switch e.Kind {
	case KindRateLimit, KindUnavailable, KindInvalidResponse:
		return true
	}
	return false
}

// KindOf classifies err. Context errors map to KindTimeout and
// KindCanceled; anything else not already classified is KindUnavailable.
func KindOf(err error) Kind {
	var se *ServiceError
	switch {
	case errors.As(err, &se):
		return se.Kind
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindUnavailable
}

func invalidResponse(provider string, content json.RawMessage, err error) *ServiceError {
	return &ServiceError{Kind: KindInvalidResponse, Provider: provider, Content: content, Err: err}
}

// fromStatus maps an HTTP status returned by a provider SDK.
func fromStatus(provider string, status int, header http.Header, err error) *ServiceError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Kind: KindTimeout, Provider: provider, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ServiceError{Kind: KindCanceled, Provider: provider, Err: err}
	}
	if status == http.StatusTooManyRequests {
		return &ServiceError{Kind: KindRateLimit, Provider: provider, RetryAfter: retryAfter(header), Err: err}
	}
	return &ServiceError{Kind: KindUnavailable, Provider: provider, Err: err}
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
