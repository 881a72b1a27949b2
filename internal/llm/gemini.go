package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini calls the Google Generative Language API. The response MIME type
// is pinned to application/json so the model is steered toward parseable
// output, though truncation and prose wrapping still happen in practice.
type Gemini struct {
	apiKey string
	model  string
}

// NewGemini creates a Gemini client.
func NewGemini(apiKey, modelName string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: API key is empty")
	}
	return &Gemini{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(modelName),
	}, nil
}

// Generate sends the grading prompt and one chunk of document text.
func (c *Gemini) Generate(ctx context.Context, prompt, chunk string) (string, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.1),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(chunk))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	raw := firstText(resp)
	slog.Debug("LLM response", "provider", "gemini", "model", c.model, "bytes", len(raw))
	return raw, nil
}

// Ping verifies credentials by running a token count against the model.
func (c *Gemini) Ping(ctx context.Context) error {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	if _, err := cl.GenerativeModel(c.model).CountTokens(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("gemini endpoint check: %w", err)
	}
	return nil
}

// firstText extracts the first text part of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(f float32) *float32 { return &f }
