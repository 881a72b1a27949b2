package grader

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/eduai/assistant/internal/extract"
	"github.com/eduai/assistant/internal/model"
)

// scriptedGenerator returns canned responses (or errors) in call order,
// repeating the last entry once the script runs out.
type scriptedGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt, _ string) (string, error) {
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if len(g.errs) > 0 {
		j := i
		if j >= len(g.errs) {
			j = len(g.errs) - 1
		}
		if g.errs[j] != nil {
			return "", g.errs[j]
		}
	}
	if len(g.responses) == 0 {
		return "", nil
	}
	j := i
	if j >= len(g.responses) {
		j = len(g.responses) - 1
	}
	return g.responses[j], nil
}

func fastConfig() Config {
	return Config{
		PagesPerChunk: 5,
		MaxAttempts:   3,
		BackoffBase:   time.Millisecond,
		CallTimeout:   time.Second,
	}
}

func chunkJSON(points, max float64, questionNumbers ...string) string {
	var qs []string
	for _, n := range questionNumbers {
		qs = append(qs, fmt.Sprintf(`{"question_number": %q, "question_text": "Q", "student_answer": "A",
			"evaluation": {"correctness": "correct", "score": "1", "explanation": "ok"},
			"feedback": {"strengths": [], "improvements": [], "solution": "s"}}`, n))
	}
	return fmt.Sprintf(`{"questions": [%s], "chunk_summary": {"strengths": ["neat work"],
		"improvements": ["show steps"], "total_points": %g, "max_points": %g}}`,
		strings.Join(qs, ","), points, max)
}

func TestGradeSingleChunk(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{chunkJSON(8, 10, "1", "2")}}
	g := New(gen, extract.Text{}, fastConfig())

	rec := g.Grade(context.Background(), []byte("some assignment text"), Submission{
		StudentName: "Alice", RollNumber: "R-7", Subject: "Physics",
	})

	if rec.Grade != model.GradeB {
		t.Errorf("grade = %q, want B", rec.Grade)
	}
	if rec.Percentage != "80.0%" {
		t.Errorf("percentage = %q, want 80.0%%", rec.Percentage)
	}
	if len(rec.Questions) != 2 {
		t.Errorf("questions = %d, want 2", len(rec.Questions))
	}
	if rec.StudentName != "Alice" || rec.RollNumber != "R-7" {
		t.Errorf("identity not carried: %q %q", rec.StudentName, rec.RollNumber)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestGradeAlwaysEmptyResponseFallsBack(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{""}}
	g := New(gen, extract.Text{}, fastConfig())

	rec := g.Grade(context.Background(), []byte("text"), Submission{StudentName: "Bob"})

	if rec.Grade != model.GradeNA {
		t.Errorf("grade = %q, want N/A", rec.Grade)
	}
	if rec.Percentage != "0%" {
		t.Errorf("percentage = %q, want 0%%", rec.Percentage)
	}
	if len(rec.Questions) == 0 {
		t.Error("fallback record must carry a placeholder question")
	}
	if gen.calls != 3 {
		t.Errorf("generator calls = %d, want 3 (full retry budget)", gen.calls)
	}
}

func TestGradeRetriesThenSucceeds(t *testing.T) {
	gen := &scriptedGenerator{
		responses: []string{"", "", chunkJSON(9, 10, "1")},
	}
	g := New(gen, extract.Text{}, fastConfig())

	rec := g.Grade(context.Background(), []byte("text"), Submission{StudentName: "Cara"})

	if gen.calls != 3 {
		t.Fatalf("generator calls = %d, want 3", gen.calls)
	}
	if rec.Grade != model.GradeA {
		t.Errorf("grade = %q, want A", rec.Grade)
	}
	if rec.Percentage != "90.0%" {
		t.Errorf("percentage = %q, want 90.0%%", rec.Percentage)
	}
}

func TestGradeTransportErrorsCountAsAttempts(t *testing.T) {
	boom := fmt.Errorf("connection refused")
	gen := &scriptedGenerator{
		errs:      []error{boom, boom, nil},
		responses: []string{"", "", chunkJSON(10, 10, "1")},
	}
	g := New(gen, extract.Text{}, fastConfig())

	rec := g.Grade(context.Background(), []byte("text"), Submission{})
	if gen.calls != 3 {
		t.Fatalf("generator calls = %d, want 3", gen.calls)
	}
	if rec.Grade != model.GradeA {
		t.Errorf("grade = %q, want A", rec.Grade)
	}
}

func TestGradeSkipsBadChunkKeepsRest(t *testing.T) {
	// Two chunks (6 pages at 5 per chunk). The first chunk fails all three
	// attempts; the second succeeds. Partial coverage wins over failure.
	pages := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	gen := &scriptedGenerator{
		errs:      []error{fmt.Errorf("boom"), fmt.Errorf("boom"), fmt.Errorf("boom"), nil},
		responses: []string{"", "", "", chunkJSON(4, 5, "7")},
	}
	g := New(gen, extract.Text{}, fastConfig())

	rec := g.GradePages(context.Background(), pages, Submission{StudentName: "Dan"})

	if gen.calls != 4 {
		t.Fatalf("generator calls = %d, want 4 (3 failures + 1 success)", gen.calls)
	}
	if rec.Percentage != "80.0%" {
		t.Errorf("percentage = %q, want 80.0%%", rec.Percentage)
	}
	if len(rec.Questions) != 1 || rec.Questions[0].QuestionNumber != "7" {
		t.Errorf("expected only the second chunk's question, got %v", rec.Questions)
	}
}

func TestGradePagesChunking(t *testing.T) {
	pages := make([]string, 12)
	for i := range pages {
		pages[i] = fmt.Sprintf("page %d", i+1)
	}
	gen := &scriptedGenerator{responses: []string{chunkJSON(5, 10, "1")}}
	g := New(gen, extract.Text{}, fastConfig())

	g.GradePages(context.Background(), pages, Submission{})

	// 12 pages at 5 per chunk = 3 chunks = 3 successful calls.
	if gen.calls != 3 {
		t.Fatalf("generator calls = %d, want 3", gen.calls)
	}
	// Prompts carry the correct page ranges.
	if !strings.Contains(gen.prompts[0], "pages 1-5 of a 12-page document") {
		t.Errorf("first prompt page range wrong")
	}
	if !strings.Contains(gen.prompts[2], "pages 11-12 of a 12-page document") {
		t.Errorf("last prompt page range wrong")
	}
}

func TestGradeExtractionFailureFallsBack(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{chunkJSON(10, 10, "1")}}
	g := New(gen, extract.Text{}, fastConfig())

	rec := g.Grade(context.Background(), nil, Submission{StudentName: "Eve", RollNumber: "R-2"})

	if rec.Grade != model.GradeNA {
		t.Errorf("grade = %q, want N/A", rec.Grade)
	}
	if gen.calls != 0 {
		t.Errorf("generator must not be called when extraction fails, got %d calls", gen.calls)
	}
	if rec.StudentName != "Eve" {
		t.Errorf("identity not preserved: %q", rec.StudentName)
	}
}

func TestGradeContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGenerator{responses: []string{chunkJSON(10, 10, "1")}}
	g := New(gen, extract.Text{}, fastConfig())

	rec := g.GradePages(ctx, []string{"p1"}, Submission{StudentName: "Fay"})
	if rec.Grade != model.GradeNA {
		t.Errorf("cancelled grading should fall back, got grade %q", rec.Grade)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.PagesPerChunk != 5 {
		t.Errorf("PagesPerChunk = %d, want 5", cfg.PagesPerChunk)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.BackoffBase != 2*time.Second {
		t.Errorf("BackoffBase = %v, want 2s", cfg.BackoffBase)
	}
	if cfg.CallTimeout != 2*time.Minute {
		t.Errorf("CallTimeout = %v, want 2m", cfg.CallTimeout)
	}
	if string(cfg.PromptVariant) != "standard" {
		t.Errorf("PromptVariant = %q, want standard", cfg.PromptVariant)
	}
}
