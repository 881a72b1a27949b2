// Package grader drives the grading pipeline for one submission: split the
// document into page chunks, grade each chunk through the LLM with retries,
// and merge the partial results into one GradingRecord. Grade never fails:
// every error path degrades to a valid, possibly mostly-default record.
package grader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eduai/assistant/internal/aggregate"
	"github.com/eduai/assistant/internal/extract"
	"github.com/eduai/assistant/internal/llm/prompts"
	"github.com/eduai/assistant/internal/model"
	"github.com/eduai/assistant/internal/normalize"
	"github.com/eduai/assistant/internal/repair"
)

// Generator produces raw model output for a grading prompt. Satisfied by
// the llm package clients.
type Generator interface {
	Generate(ctx context.Context, prompt, chunk string) (string, error)
}

// Config holds the orchestrator's runtime parameters. It is passed in
// explicitly; pipeline code never reads the environment.
type Config struct {
	PagesPerChunk int                   // pages graded per LLM call (default 5)
	MaxAttempts   int                   // attempts per chunk (default 3)
	BackoffBase   time.Duration         // first retry delay, doubling each attempt (default 2s)
	CallTimeout   time.Duration         // per-attempt timeout on the LLM call (default 2m)
	PromptVariant prompts.PromptVariant // grading strictness (default standard)
}

func (c Config) withDefaults() Config {
	if c.PagesPerChunk <= 0 {
		c.PagesPerChunk = 5
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 2 * time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 2 * time.Minute
	}
	if !prompts.IsValidVariant(string(c.PromptVariant)) {
		c.PromptVariant = prompts.PromptStandard
	}
	return c
}

// Submission identifies whose work is being graded.
type Submission struct {
	StudentName string
	RollNumber  string
	Subject     string
}

// Grader grades submissions. Each Grade call owns its own accumulator, so
// a Grader is safe to share across requests.
type Grader struct {
	gen Generator
	ext extract.Extractor
	cfg Config
}

// New creates a Grader.
func New(gen Generator, ext extract.Extractor, cfg Config) *Grader {
	return &Grader{gen: gen, ext: ext, cfg: cfg.withDefaults()}
}

// Grade extracts the document's pages and grades them. Extraction failure
// yields the fallback record: a document we cannot read cannot be graded,
// and callers are promised a valid record, not an error.
func (g *Grader) Grade(ctx context.Context, doc []byte, sub Submission) model.GradingRecord {
	pages, err := g.ext.Pages(doc)
	if err != nil {
		slog.Warn("document extraction failed", "student", sub.StudentName, "error", err)
		return model.FallbackRecord(sub.StudentName, sub.RollNumber)
	}
	return g.GradePages(ctx, pages, sub)
}

// GradePages grades pre-extracted page texts. Chunks are processed
// strictly in page order, one LLM call outstanding at a time; a chunk that
// exhausts its retries is skipped and grading continues, preferring
// partial coverage over total failure.
func (g *Grader) GradePages(ctx context.Context, pages []string, sub Submission) model.GradingRecord {
	chunks := extract.Chunk(pages, g.cfg.PagesPerChunk)
	policy := retryPolicy{maxAttempts: g.cfg.MaxAttempts, backoffBase: g.cfg.BackoffBase}
	acc := aggregate.New()

	for i, chunk := range chunks {
		pageStart := i*g.cfg.PagesPerChunk + 1
		prompt := prompts.Build(prompts.ChunkData{
			Subject:    sub.Subject,
			Variant:    g.cfg.PromptVariant,
			PageStart:  pageStart,
			PageEnd:    pageStart + len(chunk) - 1,
			TotalPages: len(pages),
		})

		parsed, err := g.gradeChunk(ctx, policy, prompt, strings.Join(chunk, "\n\n"))
		if err != nil {
			slog.Warn("chunk skipped",
				"student", sub.StudentName,
				"chunk", i+1,
				"chunks", len(chunks),
				"error", err,
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		acc.Add(normalize.Chunk(parsed))
	}

	if acc.Len() == 0 {
		slog.Warn("no chunks graded, returning fallback record", "student", sub.StudentName)
		return model.FallbackRecord(sub.StudentName, sub.RollNumber)
	}

	rec := acc.Finalize(sub.StudentName, sub.RollNumber, sub.Subject)
	slog.Info("submission graded",
		"student", rec.StudentName,
		"grade", rec.Grade,
		"percentage", rec.Percentage,
		"questions", len(rec.Questions),
		"chunks_used", acc.Len(),
		"chunks_total", len(chunks),
	)
	return rec
}

// gradeChunk runs the generate -> repair -> parse sequence for one chunk
// under the retry policy. An empty response, a transport error, a timeout,
// and output that stays unparseable after repair all count as failed
// attempts.
func (g *Grader) gradeChunk(ctx context.Context, policy retryPolicy, prompt, text string) (map[string]any, error) {
	var lastErr error
	for attempt := 1; attempt <= policy.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := g.callGenerate(ctx, prompt, text)
		switch {
		case err != nil:
			lastErr = err
		case strings.TrimSpace(raw) == "":
			lastErr = fmt.Errorf("empty response")
		default:
			parsed, ok := repair.Parse(raw)
			if ok {
				return parsed, nil
			}
			lastErr = fmt.Errorf("response not parseable after repair")
		}

		slog.Debug("chunk attempt failed", "attempt", attempt, "error", lastErr)
		if err := policy.wait(ctx, attempt); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", policy.maxAttempts, lastErr)
}

func (g *Grader) callGenerate(ctx context.Context, prompt, text string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()
	return g.gen.Generate(cctx, prompt, text)
}
