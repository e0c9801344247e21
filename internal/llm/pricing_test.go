package llm

import (
	"math"
	"testing"
)

func TestEstimateCost(t *testing.T) {
	u := Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	tests := []struct {
		model  string
		want   float64
		wantOK bool
	}{
		{"gpt-4o-mini-2024-07-18", 0.75, true},
		{"gpt-4o-2024-08-06", 12.5, true},
		{"claude-haiku-4-5-20251001", 6, true},
		{"gemini-2.0-flash-lite-001", 0.375, true},
		{"google/gemini-2.0-flash-001", 0.5, true},
		{"mock", 0, false},
	}
	for _, tt := range tests {
		got, ok := EstimateCost(tt.model, u)
		if ok != tt.wantOK || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("EstimateCost(%q) = %v, %v; want %v, %v", tt.model, got, ok, tt.want, tt.wantOK)
		}
	}
}
