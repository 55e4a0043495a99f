package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/repositories"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/helpers"
	"github.com/taskgrade/backend/internal/pkg/metrics"
	"github.com/taskgrade/backend/internal/pkg/validation"
)

// DefaultFanoutBatchSize bounds the rows of one pending submission insert
const DefaultFanoutBatchSize = 20

// TaskService creates tasks and lists them
type TaskService interface {
	CreateTask(ctx context.Context, req *dto.CreateTaskRequest) (*dto.CreateTaskResponse, error)
	ListTasks(ctx context.Context, query *dto.TaskFilterQuery) ([]models.TaskListRow, error)
}

type taskServiceImpl struct {
	taskRepo       repositories.ITaskRepository
	catalogRepo    repositories.ICatalogRepository
	userRepo       repositories.IUserRepository
	submissionRepo repositories.ISubmissionRepository
	tx             TxRunner
	batchSize      int
	logger         zerolog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repositories.ITaskRepository,
	catalogRepo repositories.ICatalogRepository,
	userRepo repositories.IUserRepository,
	submissionRepo repositories.ISubmissionRepository,
	tx TxRunner,
	batchSize int,
	logger zerolog.Logger,
) TaskService {
	if batchSize <= 0 {
		batchSize = DefaultFanoutBatchSize
	}
	return &taskServiceImpl{
		taskRepo:       taskRepo,
		catalogRepo:    catalogRepo,
		userRepo:       userRepo,
		submissionRepo: submissionRepo,
		tx:             tx,
		batchSize:      batchSize,
		logger:         logger,
	}
}

// CreateTask inserts the task and one pending submission for every student in
// the (semester, division) cohort. Both happen in a single transaction.
func (s *taskServiceImpl) CreateTask(ctx context.Context, req *dto.CreateTaskRequest) (*dto.CreateTaskResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	dueDate, err := helpers.ParseDate(req.DueDate)
	if err != nil {
		return nil, apperrors.NewValidationError("dueDate", err.Error())
	}

	if _, err := s.catalogRepo.GetTeacherSubjectByID(ctx, req.TeacherSubjectID); err != nil {
		return nil, err
	}

	task := &models.Task{
		TeacherSubjectID: req.TeacherSubjectID,
		TaskType:         models.TaskType(req.TaskType),
		Title:            strings.TrimSpace(req.Title),
		Semester:         req.Semester,
		DueDate:          dueDate,
		TotalMarks:       req.TotalMarks,
	}
	division := strings.TrimSpace(req.Division)

	var created int64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.taskRepo.CreateTask(ctx, task); err != nil {
			return err
		}

		studentIDs, err := s.userRepo.ListCohortStudentIDs(ctx, task.Semester, division)
		if err != nil {
			return err
		}

		for _, batch := range helpers.Chunk(studentIDs, s.batchSize) {
			n, err := s.submissionRepo.CreatePending(ctx, task.ID, batch)
			if err != nil {
				return err
			}
			created += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksCreated.Inc()
	metrics.SubmissionsFannedOut.Add(float64(created))
	s.logger.Info().Str("taskID", task.ID).Int("semester", task.Semester).Str("division", division).
		Int64("submissionsCreated", created).Msg("Task created")

	return &dto.CreateTaskResponse{Task: task, SubmissionsCreated: int(created)}, nil
}

// ListTasks returns the tasks of a semester, subject and division by creation time
func (s *taskServiceImpl) ListTasks(ctx context.Context, query *dto.TaskFilterQuery) ([]models.TaskListRow, error) {
	if err := validation.Struct(query); err != nil {
		return nil, err
	}
	return s.taskRepo.ListTasks(ctx, models.TaskFilter{
		Semester:  query.Semester,
		SubjectID: query.SubjectID,
		Division:  query.Division,
	})
}
