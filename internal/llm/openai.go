package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates through the Chat Completions API. It serves
// OpenRouter as well, which speaks the same protocol.
type OpenAIProvider struct {
	name   string
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for cfg.Provider, which must be
// ProviderOpenAI or ProviderOpenRouter.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.Provider != ProviderOpenAI && cfg.Provider != ProviderOpenRouter {
		return nil, fmt.Errorf("openai: unsupported provider %q", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", cfg.Provider)
	}
	cfg = cfg.withDefaults()
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{name: cfg.Provider, client: openai.NewClientWithConfig(oc), model: cfg.Model}, nil
}

func (p *OpenAIProvider) Name() string    { return p.name }
func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            messages,
		MaxCompletionTokens: req.maxTokens(),
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      strictCompatible(req.Schema.Definition),
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return nil, p.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, invalidResponse(p.name, nil, errors.New("no choices returned"))
	}

	choice := resp.Choices[0]
	usage := Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	truncated := choice.FinishReason == openai.FinishReasonLength
	return finalize(p.name, req, json.RawMessage(choice.Message.Content), usage, resp.Model, truncated)
}

func (p *OpenAIProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(p.name, apiErr.HTTPStatusCode, nil, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fromStatus(p.name, reqErr.HTTPStatusCode, nil, err)
	}
	return fromStatus(p.name, 0, nil, err)
}

// strictCompatible reports whether def satisfies structured-output strict
// mode, which requires every property to be listed as required.
func strictCompatible(def map[string]any) bool {
	props, _ := def["properties"].(map[string]any)
	required, _ := def["required"].([]any)
	if len(props) != len(required) {
		return false
	}
	for _, r := range required {
		if _, ok := props[fmt.Sprint(r)]; !ok {
			return false
		}
	}
	return def["additionalProperties"] == false
}
