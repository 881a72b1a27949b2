package model

import "time"

// StoredSubmission is one persisted graded submission.
type StoredSubmission struct {
	ID          string        `json:"id"`
	StudentName string        `json:"student_name"`
	RollNumber  string        `json:"roll_number"`
	Subject     string        `json:"subject"`
	Grade       Grade         `json:"grade"`
	Percentage  string        `json:"percentage"`
	Summary     string        `json:"summary"`
	Record      GradingRecord `json:"record"`
	CreatedAt   time.Time     `json:"created_at"`
}

// SubmissionExport is the top-level JSON structure for submission export.
type SubmissionExport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Count       int                `json:"count"`
	Submissions []StoredSubmission `json:"submissions"`
}
