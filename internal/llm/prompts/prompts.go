// Package prompts builds the grading prompts sent to the LLM. The JSON
// skeleton embedded in the prompt is the schema the repair/normalize
// pipeline expects back, so prompt and schema must change together.
package prompts

import (
	"fmt"
	"strings"
)

// PromptVariant represents a grading prompt variant.
type PromptVariant string

const (
	// PromptStrict grades rigorously, deducting for incomplete reasoning.
	PromptStrict PromptVariant = "strict"
	// PromptStandard is the default grading variant.
	PromptStandard PromptVariant = "standard"
	// PromptLenient rewards partial understanding generously.
	PromptLenient PromptVariant = "lenient"
)

var validVariants = map[PromptVariant]bool{
	PromptStrict:   true,
	PromptStandard: true,
	PromptLenient:  true,
}

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[PromptVariant(v)]
}

// ChunkData holds the parameters for one chunk's grading prompt.
type ChunkData struct {
	Subject    string
	Variant    PromptVariant
	PageStart  int // 1-based first page of this chunk
	PageEnd    int // 1-based last page of this chunk
	TotalPages int
}

// responseSkeleton is the exact JSON structure the model must return for a
// chunk. Field names match the GradingRecord/ChunkResult schema.
const responseSkeleton = `{
    "questions": [
        {
            "question_number": "1",
            "question_text": "extracted_question",
            "student_answer": "extracted_answer",
            "page_number": "1",
            "evaluation": {
                "correctness": "correct/partial/incorrect",
                "score": "numeric_score",
                "explanation": "detailed_explanation"
            },
            "feedback": {
                "strengths": ["point1", "point2"],
                "improvements": ["point1", "point2"],
                "solution": "step_by_step_solution"
            }
        }
    ],
    "chunk_summary": {
        "strengths": ["observed strength1", "observed strength2"],
        "improvements": ["needed improvement1", "needed improvement2"],
        "total_points": 0,
        "max_points": 0
    }
}`

// Build constructs the grading prompt for one chunk of an assignment.
func Build(d ChunkData) string {
	var sb strings.Builder

	sb.WriteString("You are an expert teacher grading a student assignment. ")
	if d.TotalPages > 1 {
		fmt.Fprintf(&sb, "You are given pages %d-%d of a %d-page document; other pages are graded separately. ",
			d.PageStart, d.PageEnd, d.TotalPages)
	}
	sb.WriteString("Analyze this section comprehensively and extract ALL questions and answers it contains.\n\n")

	sb.WriteString("Requirements:\n")
	sb.WriteString("1. Extract and grade EVERY question visible in this section; do not skip any content\n")
	sb.WriteString("2. Score each answer and report per-question points in evaluation.score\n")
	sb.WriteString("3. Report the points earned and maximum points for this section in chunk_summary\n")
	sb.WriteString("4. Use proper line breaks to separate ideas and format mathematical content properly\n")
	sb.WriteString("5. Include the page number each question appears on\n")

	switch d.Variant {
	case PromptStrict:
		sb.WriteString("6. Grade strictly: full credit requires complete, rigorous reasoning; deduct for missing steps\n")
	case PromptLenient:
		sb.WriteString("6. Grade leniently: award partial credit generously where understanding is evident\n")
	}

	sb.WriteString("\nYOU MUST FORMAT THE RESPONSE AS VALID JSON with this exact structure:\n")
	sb.WriteString(responseSkeleton)
	sb.WriteString("\n")

	if d.Subject != "" {
		fmt.Fprintf(&sb, "\nThis is a %s assignment. Apply subject-specific grading criteria for %s.\n",
			d.Subject, d.Subject)
	}

	return sb.String()
}
