package services

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/repositories"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/spreadsheet"
	"github.com/taskgrade/backend/internal/pkg/validation"
)

var reportColumns = []string{
	"Student Name", "Roll Number", "Task", "Task Type", "Submitted At",
	"Question", "Marks Obtained", "Total Marks", "Comments",
}

// ReportService serves dashboards, rosters and task reports
type ReportService interface {
	StudentDashboard(ctx context.Context, userID string) (*models.StudentProfile, error)
	StudentTasks(ctx context.Context, studentID, status string) ([]models.StudentTaskRow, error)
	TeacherDashboard(ctx context.Context, query *dto.RosterQuery) ([]models.DashboardRow, error)
	StudentsForTask(ctx context.Context, query *dto.RosterQuery) ([]models.StudentListRow, error)
	TaskReport(ctx context.Context, taskID string) ([]models.ReportRow, error)
	WriteTaskReportWorkbook(ctx context.Context, taskID string, w io.Writer) (*models.Task, error)
}

type reportServiceImpl struct {
	reportRepo repositories.IReportRepository
	taskRepo   repositories.ITaskRepository
	userRepo   repositories.IUserRepository
	logger     zerolog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	reportRepo repositories.IReportRepository,
	taskRepo repositories.ITaskRepository,
	userRepo repositories.IUserRepository,
	logger zerolog.Logger,
) ReportService {
	return &reportServiceImpl{
		reportRepo: reportRepo,
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// StudentDashboard returns the student profile of a user
func (s *reportServiceImpl) StudentDashboard(ctx context.Context, userID string) (*models.StudentProfile, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("userId", "userId is required")
	}
	return s.userRepo.GetStudentProfile(ctx, userID)
}

// StudentTasks lists a student's tasks whose submission has the given status
func (s *reportServiceImpl) StudentTasks(ctx context.Context, studentID, status string) ([]models.StudentTaskRow, error) {
	if studentID == "" {
		return nil, apperrors.NewValidationError("studentId", "Student ID is required")
	}
	st := models.SubmissionStatus(status)
	if !st.Valid() {
		return nil, apperrors.NewValidationError("status", "status must be one of: pending submitted graded")
	}
	return s.reportRepo.StudentTasks(ctx, studentID, st)
}

// TeacherDashboard sums each cohort student's marks for a task
func (s *reportServiceImpl) TeacherDashboard(ctx context.Context, query *dto.RosterQuery) ([]models.DashboardRow, error) {
	if err := validation.Struct(query); err != nil {
		return nil, err
	}
	return s.reportRepo.TeacherDashboard(ctx, rosterFilter(query))
}

// StudentsForTask returns the cohort roster of a task with submissions and marks
func (s *reportServiceImpl) StudentsForTask(ctx context.Context, query *dto.RosterQuery) ([]models.StudentListRow, error) {
	if err := validation.Struct(query); err != nil {
		return nil, err
	}
	return s.reportRepo.StudentsForTask(ctx, rosterFilter(query))
}

// TaskReport returns the per-question report of a task
func (s *reportServiceImpl) TaskReport(ctx context.Context, taskID string) ([]models.ReportRow, error) {
	if _, err := s.getTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.reportRepo.TaskReport(ctx, taskID)
}

// WriteTaskReportWorkbook renders the task report as an XLSX workbook into w
func (s *reportServiceImpl) WriteTaskReportWorkbook(ctx context.Context, taskID string, w io.Writer) (*models.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportRepo.TaskReport(ctx, taskID)
	if err != nil {
		return nil, err
	}

	table := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		table = append(table, []interface{}{
			deref(r.StudentName), deref(r.RollNumber), r.TaskTitle, string(r.TaskType), deref(r.SubmissionDate),
			deref(r.QuestionNumber), deref(r.MarksObtained), r.TotalMarks, deref(r.Comments),
		})
	}
	if err := spreadsheet.WriteTable(w, "Report", reportColumns, table); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("taskID", taskID).Int("rows", len(rows)).Msg("Task report workbook generated")
	return task, nil
}

func (s *reportServiceImpl) getTask(ctx context.Context, taskID string) (*models.Task, error) {
	if taskID == "" {
		return nil, apperrors.NewValidationError("taskId", "taskId is required")
	}
	return s.taskRepo.GetTaskByID(ctx, taskID)
}

func rosterFilter(q *dto.RosterQuery) models.RosterFilter {
	return models.RosterFilter{
		Semester:  q.Semester,
		Division:  q.Division,
		TaskID:    q.TaskID,
		SubjectID: q.SubjectID,
	}
}

// deref turns a nil pointer into an empty spreadsheet cell
func deref[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
