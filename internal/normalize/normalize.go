// Package normalize converts loosely-typed parsed LLM data into the strict
// GradingRecord schema. Every function here is total: any input, however
// malformed, produces a structurally valid result with documented defaults
// in place of missing or mistyped fields.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eduai/assistant/internal/model"
)

// Record normalizes a parsed grading response into a GradingRecord.
// A nil or empty map yields a record of pure defaults.
func Record(parsed map[string]any) model.GradingRecord {
	rec := model.GradingRecord{
		StudentName:     String(parsed["student_name"], model.DefaultStudentName),
		RollNumber:      String(parsed["roll_number"], model.DefaultRollNumber),
		Grade:           GradeOf(parsed["grade"]),
		Percentage:      FormatPercentage(parsed["percentage"]),
		Summary:         String(parsed["summary"], model.DefaultSummary),
		Questions:       Questions(parsed["questions"]),
		SkillsAnalysis:  skillsAnalysis(parsed["skills_analysis"]),
		ImprovementPlan: improvementPlan(parsed["improvement_plan"]),
	}
	if rec.Summary == "" {
		rec.Summary = model.DefaultSummary
	}
	return rec
}

// Chunk normalizes one per-chunk partial grading payload. The chunk-level
// summary carries the strengths/improvements and points totals that the
// aggregator merges across chunks.
func Chunk(parsed map[string]any) model.ChunkResult {
	cr := model.ChunkResult{
		Questions:    questionList(parsed["questions"]),
		Strengths:    StringList(parsed["strengths"]),
		Improvements: StringList(parsed["improvements"]),
	}
	if cs, ok := parsed["chunk_summary"].(map[string]any); ok {
		if len(cr.Strengths) == 0 {
			cr.Strengths = StringList(cs["strengths"])
		}
		if len(cr.Improvements) == 0 {
			cr.Improvements = StringList(cs["improvements"])
		}
		cr.TotalPoints, _ = Number(cs["total_points"])
		cr.MaxPoints, _ = Number(cs["max_points"])
	} else {
		cr.TotalPoints, _ = Number(parsed["total_points"])
		cr.MaxPoints, _ = Number(parsed["max_points"])
	}
	return cr
}

// String coerces v to a string, substituting def for nil/missing values.
func String(v any, def string) string {
	switch s := v.(type) {
	case nil:
		return def
	case string:
		if s == "" {
			return def
		}
		return s
	case float64:
		return formatNumber(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// StringList coerces v to a list of strings. Non-list input yields an empty
// list; list elements are stringified and empty ones dropped.
func StringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := String(item, "")
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Number extracts a numeric value from v, accepting JSON numbers and
// numeric strings (with or without a trailing %).
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n), "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// GradeOf collapses v to a known letter grade, N/A for anything else.
func GradeOf(v any) model.Grade {
	g := model.Grade(strings.TrimSpace(String(v, string(model.GradeNA))))
	if !model.ValidGrade(g) {
		return model.GradeNA
	}
	return g
}

// CorrectnessOf collapses v to a known correctness value, N/A otherwise.
func CorrectnessOf(v any) model.Correctness {
	c := model.Correctness(strings.TrimSpace(String(v, string(model.CorrectnessNA))))
	if !model.ValidCorrectness(c) {
		return model.CorrectnessNA
	}
	return c
}

// FormatPercentage normalizes v to a "<number>%" string. Numeric input is
// formatted and suffixed; string input gets a % appended unless already
// present. The function is idempotent over its own output.
func FormatPercentage(v any) string {
	switch p := v.(type) {
	case nil:
		return model.DefaultPercentage
	case float64:
		return formatNumber(p) + "%"
	case string:
		s := strings.TrimSpace(p)
		if s == "" {
			return model.DefaultPercentage
		}
		if strings.HasSuffix(s, "%") {
			return s
		}
		return s + "%"
	default:
		return model.DefaultPercentage
	}
}

// Questions normalizes the questions list, synthesizing a single
// placeholder entry when the source produced none.
func Questions(v any) []model.QuestionEvaluation {
	qs := questionList(v)
	if len(qs) == 0 {
		return []model.QuestionEvaluation{model.PlaceholderQuestion()}
	}
	return qs
}

// questionList normalizes each entry without the never-empty guarantee;
// chunk payloads legitimately produce empty lists for pages with no
// questions.
func questionList(v any) []model.QuestionEvaluation {
	items, ok := v.([]any)
	if !ok {
		return []model.QuestionEvaluation{}
	}
	out := make([]model.QuestionEvaluation, 0, len(items))
	for i, item := range items {
		q, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, question(q, i+1))
	}
	return out
}

func question(q map[string]any, position int) model.QuestionEvaluation {
	qe := model.QuestionEvaluation{
		QuestionNumber: String(q["question_number"], strconv.Itoa(position)),
		QuestionText:   String(q["question_text"], model.DefaultQuestionText),
		StudentAnswer:  String(q["student_answer"], model.DefaultAnswer),
		PageNumber:     String(q["page_number"], ""),
	}

	if ev, ok := q["evaluation"].(map[string]any); ok {
		qe.Evaluation = model.Evaluation{
			Correctness: CorrectnessOf(ev["correctness"]),
			Score:       String(ev["score"], model.DefaultScore),
			Explanation: String(ev["explanation"], model.DefaultExplanation),
		}
	} else {
		qe.Evaluation = model.Evaluation{
			Correctness: model.CorrectnessNA,
			Score:       model.DefaultScore,
			Explanation: model.DefaultExplanation,
		}
	}

	if fb, ok := q["feedback"].(map[string]any); ok {
		qe.Feedback = model.Feedback{
			Strengths:    StringList(fb["strengths"]),
			Improvements: StringList(fb["improvements"]),
			Solution:     String(fb["solution"], model.DefaultSolution),
		}
	} else {
		qe.Feedback = model.Feedback{
			Strengths:    []string{},
			Improvements: []string{},
			Solution:     model.DefaultSolution,
		}
	}
	return qe
}

// skillsAnalysis back-fills missing sub-keys: a partial mapping keeps the
// keys it has and gets empty lists for the rest, so all three buckets are
// always present.
func skillsAnalysis(v any) model.SkillsAnalysis {
	m, ok := v.(map[string]any)
	if !ok {
		return model.EmptySkillsAnalysis()
	}
	return model.SkillsAnalysis{
		Mastered:   StringList(m["mastered"]),
		Developing: StringList(m["developing"]),
		NeedsWork:  StringList(m["needs_work"]),
	}
}

func improvementPlan(v any) model.ImprovementPlan {
	m, ok := v.(map[string]any)
	if !ok {
		return model.EmptyImprovementPlan()
	}
	return model.ImprovementPlan{
		TopicsToReview:      StringList(m["topics_to_review"]),
		RecommendedPractice: StringList(m["recommended_practice"]),
		Resources:           StringList(m["resources"]),
	}
}

// formatNumber renders a float the way the schema's string fields expect:
// integral values without a decimal point, others with minimal digits.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
