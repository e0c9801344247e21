package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMockProvider_RepliesInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"score":0.2,"reasoning":"No joint attention."}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		goodScore,
	)

	first, err := mock.Generate(context.Background(), Request{Prompt: "first", Schema: CompletionSchema})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Usage.Total() != 15 || first.Model != ProviderMock {
		t.Errorf("usage = %+v model = %q", first.Usage, first.Model)
	}
	second, err := mock.Generate(context.Background(), Request{System: "sys", Prompt: "second"})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	var c Completion
	if err := json.Unmarshal(second.Content, &c); err != nil || c.Score != 0.7 {
		t.Errorf("second content = %s", second.Content)
	}

	if mock.CallCount() != 2 || mock.Calls[1].System != "sys" || mock.Calls[0].Prompt != "first" {
		t.Errorf("calls = %+v", mock.Calls)
	}

	_, err = mock.Generate(context.Background(), Request{})
	if !errors.Is(err, ErrExternalService) || KindOf(err) != KindUnavailable {
		t.Errorf("exhausted mock err = %v, want unavailable", err)
	}
}

func TestMockProvider_DelayHonoursContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`), Delay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := mock.Generate(ctx, Request{})
	if KindOf(err) != KindTimeout {
		t.Fatalf("err = %v, want a timeout", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("delay ignored cancellation")
	}
}

func TestWithTimeout(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`), Delay: time.Second})
	p := WithTimeout(mock, 10*time.Millisecond)
	if _, err := p.Generate(context.Background(), Request{}); KindOf(err) != KindTimeout {
		t.Fatalf("err = %v, want a timeout", err)
	}
	if p.Name() != ProviderMock {
		t.Errorf("name = %q", p.Name())
	}
	if WithTimeout(mock, 0) != Provider(mock) {
		t.Error("zero timeout should return the provider unchanged")
	}
}

func TestContextLabels(t *testing.T) {
	ctx := context.Background()
	if PurposeFrom(ctx) != "unknown" || SessionFrom(ctx) != "" {
		t.Fatalf("unlabelled context: purpose %q session %q", PurposeFrom(ctx), SessionFrom(ctx))
	}

	ctx = WithSession(WithPurpose(ctx, PurposeNextAction), "sess-1")
	if PurposeFrom(ctx) != PurposeNextAction || SessionFrom(ctx) != "sess-1" {
		t.Fatalf("purpose %q session %q", PurposeFrom(ctx), SessionFrom(ctx))
	}

	// Relabelling one field keeps the other.
	ctx = WithPurpose(ctx, PurposeReportInsight)
	if PurposeFrom(ctx) != PurposeReportInsight || SessionFrom(ctx) != "sess-1" {
		t.Errorf("after relabel: purpose %q session %q", PurposeFrom(ctx), SessionFrom(ctx))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, APIKey: "sk-test"}, false},
		{"openai with key", Config{Provider: ProviderOpenAI, APIKey: "sk-test"}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"none needs no key", Config{Provider: ProviderNone}, false},
		{"unknown provider", Config{Provider: "watson"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// clearLLMEnv blanks every variable ResolveConfig reads.
func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PROVIDER", "API_KEY", "MODEL", "BASE_URL", "TIMEOUT"} {
		t.Setenv(envPrefix+k, "")
	}
	for _, d := range providerDefaults {
		t.Setenv(d.keyEnv, "")
	}
}

func TestResolveConfig_Explicit(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("NEUROSCREEN_LLM_PROVIDER", ProviderOpenRouter)
	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	t.Setenv("NEUROSCREEN_LLM_TIMEOUT", "5s")

	cfg := ResolveConfig()
	if cfg.Provider != ProviderOpenRouter || cfg.APIKey != "sk-or" {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.Model != "google/gemini-2.0-flash-001" || cfg.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("defaults not applied: model %q base %q", cfg.Model, cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Timeout)
	}

	t.Setenv("NEUROSCREEN_LLM_API_KEY", "sk-override")
	t.Setenv("NEUROSCREEN_LLM_MODEL", "anthropic/claude-haiku-4-5")
	cfg = ResolveConfig()
	if cfg.APIKey != "sk-override" || cfg.Model != "anthropic/claude-haiku-4-5" {
		t.Errorf("overrides lost: %+v", cfg)
	}
}

func TestResolveConfig_Discovers(t *testing.T) {
	clearLLMEnv(t)
	if cfg := ResolveConfig(); cfg.Provider != ProviderNone {
		t.Fatalf("no keys: provider = %q, want none", cfg.Provider)
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	cfg := ResolveConfig()
	if cfg.Provider != ProviderAnthropic || cfg.APIKey != "sk-ant" || cfg.Model != "claude-haiku-4-5-20251001" {
		t.Fatalf("config = %+v, want anthropic first", cfg)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderNone}, nil, nil)
	if err != nil || p != nil {
		t.Fatalf("none: got %v, %v", p, err)
	}

	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err = NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if p.Name() != ProviderMock {
		t.Errorf("name = %q", p.Name())
	}
	// The mock has no replies, so the wrapped call fails after the retry budget.
	if _, err := p.Generate(context.Background(), Request{}); KindOf(err) != KindUnavailable {
		t.Errorf("err = %v, want unavailable", err)
	}

	if _, err := NewProvider(context.Background(), Config{Provider: ProviderOpenAI}, nil, nil); err == nil {
		t.Error("expected an error for openai without a key")
	}
}
