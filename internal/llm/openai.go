package llm

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI wraps an OpenAI-compatible API client. It works against the real
// API as well as compatible local endpoints such as Ollama.
type OpenAI struct {
	api   *openai.Client
	model string
}

// NewOpenAI creates an OpenAI-compatible client. An empty baseURL uses the
// default API endpoint.
func NewOpenAI(baseURL, apiKey, modelName string) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAI{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Generate sends the grading prompt and one chunk of document text, asking
// for a JSON object response. The returned text is raw model output.
func (c *OpenAI) Generate(ctx context.Context, prompt, chunk string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: chunk},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "provider", "openai", "model", c.model, "bytes", len(raw))
	return raw, nil
}

// Ping verifies the endpoint is reachable and credentials are accepted.
func (c *OpenAI) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint check: %w", err)
	}
	return nil
}
