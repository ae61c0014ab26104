// Package llm talks to OpenAI-compatible chat completion APIs.
package llm

import (
	"context"
	"fmt"

	"github.com/lvnplus/qgen/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// deepseekBaseURL is the OpenAI-compatible endpoint DeepSeek exposes.
const deepseekBaseURL = "https://api.deepseek.com/v1"

// Request is a single chat completion call.
type Request struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	UserPrompt   string
}

// Client sends one completion request and returns the raw text response.
// An empty response with a nil error means the model produced no content.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Factory builds a Client for an AI configuration. Injected so the batch
// generator can be exercised without network access.
type Factory func(cfg model.AIConfig) Client

// OpenAIClient wraps an OpenAI-compatible API client.
type OpenAIClient struct {
	api *openai.Client
}

// New creates a client. An empty baseURL uses the OpenAI default endpoint.
func New(baseURL, apiKey string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{api: openai.NewClientWithConfig(config)}
}

// NewForConfig creates a client for a stored AI configuration,
// resolving the endpoint from the provider name.
func NewForConfig(cfg model.AIConfig) Client {
	return New(BaseURLFor(cfg.Provider), cfg.APIKey)
}

// BaseURLFor maps a provider name to its API endpoint.
// Empty means the library default (OpenAI).
func BaseURLFor(provider string) string {
	if provider == "deepseek" {
		return deepseekBaseURL
	}
	return ""
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
