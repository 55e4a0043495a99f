package models

import "time"

// TaskType is the assessment kind of a task
type TaskType string

const (
	TaskTypeISE1 TaskType = "ISE1"
	TaskTypeISE2 TaskType = "ISE2"
	TaskTypeMSE  TaskType = "MSE"
)

// Valid reports whether t is a known task type
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeISE1, TaskTypeISE2, TaskTypeMSE:
		return true
	}
	return false
}

// Task defines the model based on the 'tasks' table
type Task struct {
	ID               string    `json:"id" db:"id"`
	TeacherSubjectID string    `json:"teacherSubjectId" db:"teacher_subject_id"`
	TaskType         TaskType  `json:"taskType" db:"task_type"`
	Title            string    `json:"title" db:"title"`
	Semester         int       `json:"semester" db:"semester"`
	DueDate          time.Time `json:"dueDate" db:"due_date"`
	TotalMarks       int       `json:"totalMarks" db:"total_marks"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// TaskFilter selects tasks through their teacher-subject assignment
type TaskFilter struct {
	Semester  int
	SubjectID string
	Division  string
}
