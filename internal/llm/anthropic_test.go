package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// anthropicServer serves the Messages API with handler and returns a
// provider pointed at it.
func anthropicServer(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewAnthropicProvider(Config{Provider: ProviderAnthropic, APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func anthropicMessage(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 18},
	}
}

func scoreRequest() Request {
	return Request{
		System:    completionSystemPrompt,
		Prompt:    "Prompt:\nDoes the child point to show interest?\n\nContext:\nAnswer: sometimes\n",
		Schema:    CompletionSchema,
		MaxTokens: 300,
	}
}

func TestAnthropicProvider_ScoresWithCompletionSchema(t *testing.T) {
	var body map[string]any
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"score":0.6,"reasoning":"Points occasionally."}`, "end_turn"))
	})

	resp, err := p.Generate(context.Background(), scoreRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var got Completion
	if err := json.Unmarshal(resp.Content, &got); err != nil || got.Score != 0.6 {
		t.Fatalf("content = %s (%v), want score 0.6", resp.Content, err)
	}
	if resp.Usage.Total() != 138 || resp.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("usage = %+v model = %q", resp.Usage, resp.Model)
	}

	oc, _ := body["output_config"].(map[string]any)
	format, _ := oc["format"].(map[string]any)
	schema, _ := format["schema"].(map[string]any)
	props, _ := schema["properties"].(map[string]any)
	if _, ok := props["score"]; !ok {
		t.Errorf("completion schema not sent, output_config = %v", body["output_config"])
	}
	if body["model"] != "claude-haiku-4-5-20251001" {
		t.Errorf("model = %v, want the provider default", body["model"])
	}
}

func TestAnthropicProvider_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		header    map[string]string
		message   map[string]any
		wantKind  Kind
		wantAfter time.Duration
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, header: map[string]string{"Retry-After": "3"},
			wantKind: KindRateLimit, wantAfter: 3 * time.Second},
		{name: "overloaded", status: 529, wantKind: KindUnavailable},
		{name: "server error", status: http.StatusInternalServerError, wantKind: KindUnavailable},
		{name: "score out of range", status: http.StatusOK,
			message: anthropicMessage(`{"score":2,"reasoning":"x"}`, "end_turn"), wantKind: KindInvalidResponse},
		{name: "cut off", status: http.StatusOK,
			message: anthropicMessage(`{"score":0.4,"reas`, "max_tokens"), wantKind: KindTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				if tt.message != nil {
					json.NewEncoder(w).Encode(tt.message)
					return
				}
				json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": "api_error", "message": "unavailable"},
				})
			})

			_, err := p.Generate(context.Background(), scoreRequest())
			if !errors.Is(err, ErrExternalService) {
				t.Fatalf("err = %v, want an external service error", err)
			}
			var se *ServiceError
			errors.As(err, &se)
			if se.Kind != tt.wantKind || se.RetryAfter != tt.wantAfter {
				t.Errorf("kind = %s retry after = %s, want %s %s", se.Kind, se.RetryAfter, tt.wantKind, tt.wantAfter)
			}
			if se.Provider != ProviderAnthropic {
				t.Errorf("provider = %q", se.Provider)
			}
		})
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{Provider: ProviderAnthropic}); err == nil {
		t.Fatal("expected an error without an API key")
	}
}
