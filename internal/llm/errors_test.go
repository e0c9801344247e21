package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestServiceError_MatchesFamily(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("score answer: %w", &ServiceError{Kind: KindUnavailable, Provider: ProviderGemini, Err: cause})

	if !errors.Is(err, ErrExternalService) {
		t.Error("wrapped ServiceError should match ErrExternalService")
	}
	if !errors.Is(err, cause) {
		t.Error("ServiceError should unwrap to its cause")
	}
	if errors.Is(cause, ErrExternalService) {
		t.Error("a plain error is not an external service error")
	}
	if got := err.Error(); got != "score answer: gemini: unavailable: connection reset" {
		t.Errorf("message = %q", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{&ServiceError{Kind: KindTruncated}, KindTruncated},
		{fmt.Errorf("advise: %w", context.DeadlineExceeded), KindTimeout},
		{context.Canceled, KindCanceled},
		{errors.New("boom"), KindUnavailable},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestServiceError_Retryable(t *testing.T) {
	for kind, want := range map[Kind]bool{
		KindRateLimit:       true,
		KindUnavailable:     true,
		KindInvalidResponse: true,
		KindTruncated:       false,
		KindTimeout:         false,
		KindCanceled:        false,
	} {
		if got := (&ServiceError{Kind: kind}).Retryable(); got != want {
			t.Errorf("%s retryable = %v, want %v", kind, got, want)
		}
	}
}

func TestFromStatus(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")
	se := fromStatus(ProviderOpenAI, http.StatusTooManyRequests, h, errors.New("slow down"))
	if se.Kind != KindRateLimit || se.RetryAfter != 7*time.Second {
		t.Errorf("429 = %s after %s", se.Kind, se.RetryAfter)
	}
	if got := se.Error(); got != "openai: rate_limit (retry after 7s): slow down" {
		t.Errorf("message = %q", got)
	}

	h.Set("Retry-After", "Wed, 21 Oct 2026 07:28:00 GMT")
	if se := fromStatus(ProviderOpenAI, http.StatusTooManyRequests, h, nil); se.RetryAfter != 0 {
		t.Errorf("date form Retry-After = %s, want ignored", se.RetryAfter)
	}
	if se := fromStatus(ProviderOpenAI, http.StatusInternalServerError, nil, nil); se.Kind != KindUnavailable {
		t.Errorf("500 = %s", se.Kind)
	}
	if se := fromStatus(ProviderOpenAI, 0, nil, fmt.Errorf("post: %w", context.DeadlineExceeded)); se.Kind != KindTimeout {
		t.Errorf("deadline = %s", se.Kind)
	}
}
