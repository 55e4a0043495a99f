package dto

import "github.com/taskgrade/backend/internal/app/models"

// CreateTaskRequest is the body of POST /teacher/addTask
type CreateTaskRequest struct {
	TeacherSubjectID string `json:"teacherSubjectId" validate:"required"`
	TaskType         string `json:"taskType" validate:"required,oneof=ISE1 ISE2 MSE"`
	Title            string `json:"title" validate:"required"`
	Semester         int    `json:"semester" validate:"required,min=1,max=8"`
	DueDate          string `json:"dueDate" validate:"required"`
	TotalMarks       int    `json:"totalMarks" validate:"required,gt=0"`
	Division         string `json:"division" validate:"required"`
}

// CreateTaskResponse reports the new task and the size of its fan-out
type CreateTaskResponse struct {
	Task               *models.Task `json:"task"`
	SubmissionsCreated int          `json:"submissionsCreated"`
}

// TaskFilterQuery binds ?semester&subjectId&division
type TaskFilterQuery struct {
	Semester  int    `form:"semester" validate:"required,min=1,max=8"`
	SubjectID string `form:"subjectId" validate:"required"`
	Division  string `form:"division" validate:"required"`
}

// RosterQuery binds ?semester&division&taskId[&subjectId]
type RosterQuery struct {
	Semester  int    `form:"semester" validate:"required,min=1,max=8"`
	Division  string `form:"division" validate:"required"`
	TaskID    string `form:"taskId" validate:"required"`
	SubjectID string `form:"subjectId"`
}
