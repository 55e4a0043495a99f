package models

import "time"

// SubmissionStatus tracks a submission through pending, submitted and graded
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
)

// Valid reports whether s is a known status
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionSubmitted, SubmissionGraded:
		return true
	}
	return false
}

// Submission defines the model based on the 'submissions' table
type Submission struct {
	ID             string           `json:"id" db:"id"`
	TaskID         string           `json:"taskId" db:"task_id"`
	StudentID      string           `json:"studentId" db:"student_id"`
	FilePath       string           `json:"submissionFilePath" db:"submission_file_path"`
	SubmissionDate *time.Time       `json:"submissionDate" db:"submission_date"` // nil while pending
	Status         SubmissionStatus `json:"status" db:"status"`
}
