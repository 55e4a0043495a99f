package dto

import "github.com/taskgrade/backend/internal/app/models"

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// LoginResponse carries the user without its credential plus role details.
// Exactly one of Student and Teacher is set for those roles.
type LoginResponse struct {
	User            *models.User                  `json:"user"`
	Student         *models.Student               `json:"student,omitempty"`
	Teacher         *models.Teacher               `json:"teacher,omitempty"`
	TeacherSubjects []models.TeacherSubjectDetail `json:"teacherSubjects"`
}

// RegisterTeacherRequest is the body of POST /auth/register-teacher
type RegisterTeacherRequest struct {
	Email         string `json:"email" validate:"required,email"`
	FullName      string `json:"fullName" validate:"required"`
	ContactNumber string `json:"contactNumber" validate:"required"`
	Department    string `json:"department" validate:"required"`
	Password      string `json:"password,omitempty"`
}

// RegisterTeacherResponse identifies the created user and teacher rows
type RegisterTeacherResponse struct {
	UserID    string `json:"userId"`
	TeacherID string `json:"teacherId"`
}

// ImportRowError describes why one imported row was skipped
type ImportRowError struct {
	Row    int    `json:"row"`
	PID    string `json:"pid,omitempty"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}

// BulkImportResult summarises a student import
type BulkImportResult struct {
	SuccessCount int              `json:"successCount"`
	FailedCount  int              `json:"failedCount"`
	Errors       []ImportRowError `json:"errors"`
}
