// Package llm provides the generative-AI collaborators used for grading.
// Each client exposes the same narrow contract: one prompt plus one chunk
// of document text in, raw model output (hopefully JSON) out. All parsing
// and repair of that output happens downstream.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces raw model output for a grading prompt. Output may be
// empty, truncated, or prose-wrapped; callers own retries and repair.
type Generator interface {
	Generate(ctx context.Context, prompt, chunk string) (string, error)
	Ping(ctx context.Context) error
}

// Config selects and configures a provider.
type Config struct {
	Provider string // "openai" (default) or "gemini"
	BaseURL  string // OpenAI-compatible endpoint override
	APIKey   string
	Model    string
}

// New creates the configured Generator.
func New(cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai":
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "gemini":
		return NewGemini(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want openai or gemini)", cfg.Provider)
	}
}
