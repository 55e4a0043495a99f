package models

import "time"

// Mark is one question's score for a submission, from the 'marks' table
type Mark struct {
	ID             string    `json:"id" db:"id"`
	SubmissionID   string    `json:"submissionId" db:"submission_id"`
	QuestionNumber int       `json:"questionNumber" db:"question_number"`
	MarksObtained  float64   `json:"marksObtained" db:"marks_obtained"`
	Comments       *string   `json:"comments" db:"comments"`
	MarkedBy       string    `json:"markedBy" db:"marked_by"`
	MarkedAt       time.Time `json:"markedAt" db:"marked_at"`
}
