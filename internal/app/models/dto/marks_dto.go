package dto

// MarkEntry is one question's score in a save-marks payload
type MarkEntry struct {
	SubmissionID   string   `json:"submissionId" validate:"required"`
	QuestionNumber int      `json:"questionNumber" validate:"required,min=1"`
	MarksObtained  *float64 `json:"marksObtained" validate:"required,gte=0"`
	Comments       *string  `json:"comments"`
	MarkedBy       string   `json:"markedBy" validate:"required"`
}

// SaveMarksRequest is the body of POST /teacher/save-marks
type SaveMarksRequest struct {
	Marks []MarkEntry `json:"marks" validate:"required,min=1,dive"`
}
