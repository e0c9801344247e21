// Package llm talks to hosted language models for the screening engine:
// scoring free-text answers, advising the adaptive selector and writing
// report insights. Every call is optional and every failure degrades to a
// neutral result in the caller.
package llm

import (
	"context"
	"encoding/json"
)

// DefaultMaxTokens is used when a Request leaves MaxTokens unset.
const DefaultMaxTokens = 512

// Provider generates schema-constrained JSON from a single-turn prompt.
type Provider interface {
	// Generate returns the model output. When req.Schema is set the
	// content has been validated against it. Failures are *ServiceError.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider name, e.g. "openai".
	Name() string

	// ModelID is the configured model.
	ModelID() string
}

// Request is one single-turn prompt. Screening prompts never carry a
// conversation history.
type Request struct {
	System string
	Prompt string

	// Schema constrains and validates the output. Nil returns raw text.
	Schema *Schema

	// MaxTokens of zero means DefaultMaxTokens.
	MaxTokens   int
	Temperature float64
}

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// Response is the model output.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the request, which may differ from
	// the configured alias.
	Model string
}

// Usage counts tokens of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// finalize validates raw provider output. Output cut off by the token
// limit cannot satisfy a schema and is reported as KindTruncated.
func finalize(provider string, req Request, content json.RawMessage, usage Usage, model string, truncated bool) (*Response, error) {
	if truncated && req.Schema != nil {
		return nil, &ServiceError{Kind: KindTruncated, Provider: provider, Content: content}
	}
	if req.Schema != nil {
		if err := req.Schema.Validate(content); err != nil {
			return nil, invalidResponse(provider, content, err)
		}
	}
	return &Response{Content: content, Usage: usage, Model: model}, nil
}
