// Package aggregate merges per-chunk partial grading results into one final
// GradingRecord. Chunks arrive in page order and question order is
// preserved; strengths and improvements are deduplicated in first-seen
// order so the derived skills analysis and improvement plan are
// deterministic.
package aggregate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eduai/assistant/internal/model"
)

// Letter grade thresholds on the aggregated percentage.
const (
	thresholdA = 90
	thresholdB = 80
	thresholdC = 70
	thresholdD = 60
)

const (
	maxMastered   = 5
	maxDeveloping = 3
	maxNeedsWork  = 5
	maxTopics     = 5
	maxPractice   = 3
	maxResources  = 2
)

// Accumulator collects per-chunk results for one submission. It is owned by
// a single grading call and is not safe for concurrent use.
type Accumulator struct {
	questions    []model.QuestionEvaluation
	strengths    *orderedSet
	improvements *orderedSet
	totalPoints  float64
	maxPoints    float64
	chunks       int
}

// New returns an empty accumulator.
func New() *Accumulator {
	return &Accumulator{
		strengths:    newOrderedSet(),
		improvements: newOrderedSet(),
	}
}

// Add merges one chunk's partial result. Call in chunk (page) order:
// questions are concatenated as given, with no re-sorting or renumbering.
func (a *Accumulator) Add(cr model.ChunkResult) {
	a.questions = append(a.questions, cr.Questions...)
	for _, s := range cr.Strengths {
		a.strengths.add(s)
	}
	for _, s := range cr.Improvements {
		a.improvements.add(s)
	}
	a.totalPoints += cr.TotalPoints
	a.maxPoints += cr.MaxPoints
	a.chunks++
}

// Len returns the number of chunks merged so far.
func (a *Accumulator) Len() int {
	return a.chunks
}

// Finalize builds the final GradingRecord. With no merged chunks it returns
// the deterministic fallback record.
func (a *Accumulator) Finalize(studentName, rollNumber, subject string) model.GradingRecord {
	if a.chunks == 0 {
		return model.FallbackRecord(studentName, rollNumber)
	}
	if studentName == "" {
		studentName = model.DefaultStudentName
	}
	if rollNumber == "" {
		rollNumber = model.DefaultRollNumber
	}

	grade := model.GradeNA
	pct := 0.0
	if a.maxPoints > 0 {
		pct = 100 * a.totalPoints / a.maxPoints
		grade = letterGrade(pct)
	}

	questions := a.questions
	if len(questions) == 0 {
		questions = []model.QuestionEvaluation{model.PlaceholderQuestion()}
	}

	strengths := a.strengths.values()
	improvements := a.improvements.values()

	return model.GradingRecord{
		StudentName:     studentName,
		RollNumber:      rollNumber,
		Grade:           grade,
		Percentage:      formatPercent(pct),
		Summary:         a.summary(len(questions), pct),
		Questions:       questions,
		SkillsAnalysis:  buildSkills(strengths, improvements),
		ImprovementPlan: buildPlan(improvements, subject),
	}
}

func letterGrade(pct float64) model.Grade {
	switch {
	case pct >= thresholdA:
		return model.GradeA
	case pct >= thresholdB:
		return model.GradeB
	case pct >= thresholdC:
		return model.GradeC
	case pct >= thresholdD:
		return model.GradeD
	default:
		return model.GradeF
	}
}

// formatPercent renders the aggregated percentage with one decimal place,
// e.g. "80.0%".
func formatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
}

func (a *Accumulator) summary(questionCount int, pct float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Graded %d question(s) across %d document section(s).", questionCount, a.chunks)
	if a.maxPoints > 0 {
		fmt.Fprintf(&sb, " Earned %s of %s points (%s).",
			trimFloat(a.totalPoints), trimFloat(a.maxPoints), formatPercent(pct))
	} else {
		sb.WriteString(" No point totals were reported, so an overall score could not be computed.")
	}
	return sb.String()
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// buildSkills maps the first strengths to mastered, the next few to
// developing, and the first improvements to needs_work.
func buildSkills(strengths, improvements []string) model.SkillsAnalysis {
	sa := model.EmptySkillsAnalysis()
	sa.Mastered = append(sa.Mastered, take(strengths, 0, maxMastered)...)
	sa.Developing = append(sa.Developing, take(strengths, maxMastered, maxDeveloping)...)
	sa.NeedsWork = append(sa.NeedsWork, take(improvements, 0, maxNeedsWork)...)
	return sa
}

func buildPlan(improvements []string, subject string) model.ImprovementPlan {
	plan := model.EmptyImprovementPlan()
	plan.TopicsToReview = append(plan.TopicsToReview, take(improvements, 0, maxTopics)...)
	for _, imp := range take(improvements, 0, maxPractice) {
		plan.RecommendedPractice = append(plan.RecommendedPractice, "Practice "+imp)
	}
	chapter := "textbook"
	if subject != "" {
		chapter = subject
	}
	for _, imp := range take(improvements, 0, maxResources) {
		plan.Resources = append(plan.Resources, fmt.Sprintf("Review the %s chapter on %s", chapter, imp))
	}
	plan.Resources = append(plan.Resources,
		"Khan Academy practice exercises for the topics above",
		"Past assignments and worked examples from class",
	)
	return plan
}

// take returns up to n elements of s starting at offset, tolerating short
// or empty slices.
func take(s []string, offset, n int) []string {
	if offset >= len(s) {
		return nil
	}
	s = s[offset:]
	if len(s) > n {
		s = s[:n]
	}
	return s
}

// orderedSet deduplicates strings preserving first insertion order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (o *orderedSet) add(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if _, ok := o.seen[s]; ok {
		return
	}
	o.seen[s] = struct{}{}
	o.items = append(o.items, s)
}

func (o *orderedSet) values() []string {
	return o.items
}
