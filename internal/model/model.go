package model

// Grade is the coarse letter grade assigned to a whole submission.
type Grade string

const (
	GradeA  Grade = "A"
	GradeB  Grade = "B"
	GradeC  Grade = "C"
	GradeD  Grade = "D"
	GradeF  Grade = "F"
	GradeNA Grade = "N/A"
)

// ValidGrade reports whether g is one of the six known grades.
func ValidGrade(g Grade) bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeF, GradeNA:
		return true
	}
	return false
}

// Correctness classifies a single graded answer.
type Correctness string

const (
	CorrectnessCorrect   Correctness = "correct"
	CorrectnessIncorrect Correctness = "incorrect"
	CorrectnessPartial   Correctness = "partial"
	CorrectnessNA        Correctness = "N/A"
)

// ValidCorrectness reports whether c is one of the four known values.
func ValidCorrectness(c Correctness) bool {
	switch c {
	case CorrectnessCorrect, CorrectnessIncorrect, CorrectnessPartial, CorrectnessNA:
		return true
	}
	return false
}

// Defaults substituted for missing or invalid fields. These exact strings
// are part of the output contract: downstream displays render them as-is.
const (
	DefaultStudentName  = "Unknown Student"
	DefaultRollNumber   = "N/A"
	DefaultSummary      = "No summary is available for this submission."
	DefaultQuestionText = "Question text not available"
	DefaultAnswer       = "Answer not available"
	DefaultScore        = "0"
	DefaultExplanation  = "No explanation provided."
	DefaultSolution     = "Not available"
	DefaultPercentage   = "0%"
)

// GradingRecord is the canonical, always-fully-populated result of grading
// one submission. After normalization every field is present and typed;
// no nulls ever reach a caller.
type GradingRecord struct {
	StudentName     string               `json:"student_name"`
	RollNumber      string               `json:"roll_number"`
	Grade           Grade                `json:"grade"`
	Percentage      string               `json:"percentage"`
	Summary         string               `json:"summary"`
	Questions       []QuestionEvaluation `json:"questions"`
	SkillsAnalysis  SkillsAnalysis       `json:"skills_analysis"`
	ImprovementPlan ImprovementPlan      `json:"improvement_plan"`
}

// QuestionEvaluation is one graded question.
type QuestionEvaluation struct {
	QuestionNumber string     `json:"question_number"`
	QuestionText   string     `json:"question_text"`
	StudentAnswer  string     `json:"student_answer"`
	PageNumber     string     `json:"page_number,omitempty"`
	Evaluation     Evaluation `json:"evaluation"`
	Feedback       Feedback   `json:"feedback"`
}

// Evaluation holds the verdict for a single answer.
type Evaluation struct {
	Correctness Correctness `json:"correctness"`
	Score       string      `json:"score"`
	Explanation string      `json:"explanation"`
}

// Feedback holds per-question coaching output.
type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Solution     string   `json:"solution"`
}

// SkillsAnalysis buckets observed skills. All three buckets are always
// present; empty means no data, never missing.
type SkillsAnalysis struct {
	Mastered   []string `json:"mastered"`
	Developing []string `json:"developing"`
	NeedsWork  []string `json:"needs_work"`
}

// ImprovementPlan suggests follow-up work for the student.
type ImprovementPlan struct {
	TopicsToReview      []string `json:"topics_to_review"`
	RecommendedPractice []string `json:"recommended_practice"`
	Resources           []string `json:"resources"`
}

// ChunkResult is the partial grading output for one page-range chunk of a
// document, graded independently and later merged.
type ChunkResult struct {
	Questions    []QuestionEvaluation `json:"questions"`
	Strengths    []string             `json:"strengths"`
	Improvements []string             `json:"improvements"`
	TotalPoints  float64              `json:"total_points"`
	MaxPoints    float64              `json:"max_points"`
}

// PlaceholderQuestion returns the single synthetic entry used when grading
// produced no questions, keeping the never-empty invariant on Questions.
func PlaceholderQuestion() QuestionEvaluation {
	return QuestionEvaluation{
		QuestionNumber: "1",
		QuestionText:   DefaultQuestionText,
		StudentAnswer:  DefaultAnswer,
		Evaluation: Evaluation{
			Correctness: CorrectnessNA,
			Score:       DefaultScore,
			Explanation: DefaultExplanation,
		},
		Feedback: Feedback{
			Strengths:    []string{},
			Improvements: []string{},
			Solution:     DefaultSolution,
		},
	}
}

// EmptySkillsAnalysis returns a skills analysis with all three buckets
// present and empty.
func EmptySkillsAnalysis() SkillsAnalysis {
	return SkillsAnalysis{
		Mastered:   []string{},
		Developing: []string{},
		NeedsWork:  []string{},
	}
}

// EmptyImprovementPlan returns an improvement plan with all three keys
// present and empty.
func EmptyImprovementPlan() ImprovementPlan {
	return ImprovementPlan{
		TopicsToReview:      []string{},
		RecommendedPractice: []string{},
		Resources:           []string{},
	}
}

// FallbackRecord is the deterministic record returned when grading fails
// entirely. Failure is communicated through field values, never through
// errors, so display layers stay exception-free.
func FallbackRecord(studentName, rollNumber string) GradingRecord {
	if studentName == "" {
		studentName = DefaultStudentName
	}
	if rollNumber == "" {
		rollNumber = DefaultRollNumber
	}
	return GradingRecord{
		StudentName:     studentName,
		RollNumber:      rollNumber,
		Grade:           GradeNA,
		Percentage:      DefaultPercentage,
		Summary:         "The submission could not be graded automatically. Please review it manually or try again.",
		Questions:       []QuestionEvaluation{PlaceholderQuestion()},
		SkillsAnalysis:  EmptySkillsAnalysis(),
		ImprovementPlan: EmptyImprovementPlan(),
	}
}
