package models

import "time"

// SubmissionSummary is the submission part embedded in list rows
type SubmissionSummary struct {
	Status         *SubmissionStatus `json:"status"`
	SubmissionDate *time.Time        `json:"submissionDate"`
	FilePath       *string           `json:"filePath"`
}

// StudentTaskRow is one task in a student's status filtered task list
type StudentTaskRow struct {
	TaskID        string            `json:"taskId"`
	Title         string            `json:"title"`
	TaskType      TaskType          `json:"taskType"`
	DueDate       time.Time         `json:"dueDate"`
	TotalMarks    int               `json:"totalMarks"`
	Submission    SubmissionSummary `json:"submission"`
	ObtainedMarks float64           `json:"obtainedMarks"`
}

// TaskListRow is one task in a teacher's task list
type TaskListRow struct {
	TaskID     string    `json:"taskId"`
	Title      string    `json:"title"`
	TaskType   TaskType  `json:"taskType"`
	DueDate    time.Time `json:"dueDate"`
	TotalMarks int       `json:"totalMarks"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DashboardRow is a student's summed marks for one task
type DashboardRow struct {
	StudentID   string  `json:"studentId"`
	RollNumber  string  `json:"rollNumber"`
	StudentName string  `json:"studentName"`
	TotalMarks  float64 `json:"totalMarks"`
}

// StudentListRow is a roster row with submission state, marks and comments
type StudentListRow struct {
	RollNumber  string            `json:"rollNumber"`
	StudentName string            `json:"studentName"`
	Submission  SubmissionSummary `json:"submission"`
	TotalMarks  float64           `json:"totalMarks"`
	Comments    *string           `json:"comments"`
}

// ReportRow is one (student, question) line of a task report
type ReportRow struct {
	StudentName    *string    `json:"studentName"`
	RollNumber     *string    `json:"rollNumber"`
	TaskTitle      string     `json:"taskTitle"`
	TaskType       TaskType   `json:"taskType"`
	SubmissionDate *time.Time `json:"submissionDate"`
	QuestionNumber *int       `json:"questionNumber"`
	MarksObtained  *float64   `json:"marksObtained"`
	TotalMarks     int        `json:"totalMarks"`
	Comments       *string    `json:"comments"`
}

// RosterFilter narrows dashboard and roster queries to a cohort and task
type RosterFilter struct {
	Semester  int
	Division  string
	TaskID    string
	SubjectID string // optional
}
