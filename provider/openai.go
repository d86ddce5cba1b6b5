package provider

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/codeshift"
)

// OpenAIProvider implements ModelTranslator using an OpenAI-compatible chat
// completion endpoint, such as OpenAI itself or Ollama's /v1 API.
//
// The endpoint is fixed at construction; the per-request BaseURL is ignored.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
	topP        float32
	timeout     time.Duration
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string        // API key (Ollama accepts any value)
	Model       string        // Used when a request carries none (default: "gpt-4o-mini")
	Temperature float32       // Temperature for generation (default: 0.1)
	TopP        float32       // Nucleus sampling (default: 0.9)
	BaseURL     string        // Custom base URL (optional)
	Timeout     time.Duration // Hard limit per request (default: 180s)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	topP := cfg.TopP
	if topP == 0 {
		topP = DefaultTopP
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		topP:        topP,
		timeout:     timeout,
	}
}

// TranslateCode converts code with a single chat completion.
func (p *OpenAIProvider) TranslateCode(ctx context.Context, req ModelRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
		Temperature: p.temperature,
		TopP:        p.topP,
		Stop:        StopSequences(req.To),
	})
	if err != nil {
		return "", &codeshift.ModelUnavailableError{
			Message:    "chat completion failed",
			Cause:      err,
			StatusCode: statusCode(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &codeshift.ModelUnavailableError{Message: "no choices in response"}
	}

	return finish(resp.Choices[0].Message.Content, req.To)
}

// ListModels returns the models served by the endpoint.
func (p *OpenAIProvider) ListModels(ctx context.Context, _ string) ([]codeshift.ModelInfo, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, &codeshift.ModelUnavailableError{
			Message:    "list models failed",
			Cause:      err,
			StatusCode: statusCode(err),
		}
	}

	models := make([]codeshift.ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, codeshift.ModelInfo{
			Name:       m.ID,
			ModifiedAt: time.Unix(m.CreatedAt, 0).UTC(),
		})
	}
	return models, nil
}

// Ping reports whether the endpoint answers the model listing.
func (p *OpenAIProvider) Ping(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultProbeTimeout)
	defer cancel()

	_, err := p.ListModels(ctx, baseURL)
	return err
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// Verify OpenAIProvider implements the model interfaces
var (
	_ ModelTranslator = (*OpenAIProvider)(nil)
	_ ModelLister     = (*OpenAIProvider)(nil)
)
