package dto

import (
	"time"

	"github.com/taskgrade/backend/internal/app/models"
)

// UploadSubmissionRequest carries a submission file read from a multipart form
type UploadSubmissionRequest struct {
	TaskID      string `validate:"required"`
	StudentID   string `validate:"required"`
	FileName    string
	ContentType string
	Content     []byte `validate:"required,min=1"`
}

// UploadSubmissionResponse returns the storage key and the updated row
type UploadSubmissionResponse struct {
	Key        string             `json:"key"`
	Size       int64              `json:"size"`
	Submission *models.Submission `json:"submission"`
}

// SubmissionLookupResponse is the result of a lookup by file path
type SubmissionLookupResponse struct {
	ID             string                  `json:"id"`
	TaskID         string                  `json:"taskId"`
	StudentID      string                  `json:"studentId"`
	Status         models.SubmissionStatus `json:"status"`
	SubmissionDate *time.Time              `json:"submissionDate"`
}
