package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NeutralReasoning is the rationale reported when no completion is available.
const NeutralReasoning = "analysis unavailable"

// Completion is the scored rationale returned by the text-completion
// capability. Score lies in [0,1].
type Completion struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// NeutralCompletion is the degraded result used on any failure.
func NeutralCompletion() Completion {
	return Completion{Score: 0.5, Reasoning: NeutralReasoning}
}

// TextCompleter scores free text. Implementations never fail; they degrade
// to NeutralCompletion instead.
type TextCompleter interface {
	Complete(ctx context.Context, prompt, background string) Completion
}

// CompletionSchema constrains completion output.
var CompletionSchema = &Schema{
	Name:        "screening-completion",
	Description: "A score in [0,1] with a short rationale",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "0 = highly atypical, 1 = fully typical",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "One or two sentences explaining the score",
			},
		},
		"required":             []any{"score", "reasoning"},
		"additionalProperties": false,
	},
}

const completionSystemPrompt = `You assist a behavioral screening tool for children.
You receive a screening prompt and observational context. Reply with a score between 0 and 1,
where 1 means the described behavior is fully typical for the age and 0 means it is highly atypical,
and a brief rationale. You never diagnose.`

// FallbackFunc observes each call that degraded to a neutral result,
// labelled with the call purpose and the failure kind.
type FallbackFunc func(purpose string, kind Kind)

// Completer implements TextCompleter on top of a Provider.
type Completer struct {
	provider   Provider
	logger     *zap.Logger
	onFallback FallbackFunc
}

// NewCompleter creates a Completer. A nil provider yields a completer that
// always returns NeutralCompletion.
func NewCompleter(p Provider, logger *zap.Logger) *Completer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{provider: p, logger: logger}
}

// WithFallback sets the fallback observer and returns c.
func (c *Completer) WithFallback(fn FallbackFunc) *Completer {
	c.onFallback = fn
	return c
}

func (c *Completer) fallback(ctx context.Context, kind Kind) Completion {
	if c.onFallback != nil {
		c.onFallback(PurposeFrom(ctx), kind)
	}
	return NeutralCompletion()
}

// Complete asks the provider to score prompt given the background context.
func (c *Completer) Complete(ctx context.Context, prompt, background string) Completion {
	if c == nil || c.provider == nil {
		return NeutralCompletion()
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "Prompt:\n%s\n", prompt)
	if background != "" {
		fmt.Fprintf(&msg, "\nContext:\n%s\n", background)
	}

	resp, err := c.provider.Generate(ctx, Request{
		System:      completionSystemPrompt,
		Prompt:      msg.String(),
		Schema:      CompletionSchema,
		MaxTokens:   300,
		Temperature: 0,
	})
	if err != nil {
		kind := KindOf(err)
		c.logger.Debug("completion unavailable",
			zap.String("purpose", PurposeFrom(ctx)), zap.String("kind", string(kind)), zap.Error(err))
		return c.fallback(ctx, kind)
	}

	var out Completion
	if err := json.Unmarshal(resp.Content, &out); err != nil || out.Score < 0 || out.Score > 1 {
		c.logger.Debug("completion discarded", zap.ByteString("content", resp.Content), zap.Error(err))
		return c.fallback(ctx, KindInvalidResponse)
	}
	if strings.TrimSpace(out.Reasoning) == "" {
		out.Reasoning = NeutralReasoning
	}
	return out
}
