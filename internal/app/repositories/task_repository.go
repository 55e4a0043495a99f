package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/db"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/dberrors"
	"github.com/taskgrade/backend/internal/pkg/logger"
)

// ITaskRepository persists tasks
type ITaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.TaskListRow, error)
}

// TaskRepository handles the tasks table
type TaskRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(database *db.PostgresDB) *TaskRepository {
	return &TaskRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateTask inserts a task and fills in its creation time
func (r *TaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	sql, args, err := r.sb.Insert("tasks").
		Columns("id", "teacher_subject_id", "task_type", "title", "semester", "due_date", "total_marks").
		Values(task.ID, task.TeacherSubjectID, task.TaskType, task.Title, task.Semester, task.DueDate, task.TotalMarks).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create task SQL")
		return fmt.Errorf("failed to build create task query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&task.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrTeacherSubjectNotFound
		}
		logger.Error().Err(err).Str("teacherSubjectID", task.TeacherSubjectID).Msg("Error executing create task query")
		return fmt.Errorf("error creating task: %w", err)
	}
	return nil
}

// GetTaskByID retrieves a task by ID
func (r *TaskRepository) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	sql, args, err := r.sb.Select(
		"id", "teacher_subject_id", "task_type", "title", "semester", "due_date", "total_marks", "created_at",
	).From("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get task query: %w", err)
	}

	var t models.Task
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(
		&t.ID, &t.TeacherSubjectID, &t.TaskType, &t.Title, &t.Semester, &t.DueDate, &t.TotalMarks, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTaskNotFound
		}
		logger.Error().Err(err).Str("taskID", id).Msg("Error executing get task query")
		return nil, fmt.Errorf("error getting task: %w", err)
	}
	return &t, nil
}

// ListTasks returns tasks of a semester whose assignment matches the subject
// and division, oldest first.
func (r *TaskRepository) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.TaskListRow, error) {
	sql, args, err := r.sb.Select("t.id", "t.title", "t.task_type", "t.due_date", "t.total_marks", "t.created_at").
		From("tasks t").
		Join("teacher_subjects ts ON ts.id = t.teacher_subject_id").
		Where(squirrel.Eq{
			"t.semester":    filter.Semester,
			"ts.subject_id": filter.SubjectID,
			"ts.division":   filter.Division,
		}).
		OrderBy("t.created_at", "t.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list tasks query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("semester", filter.Semester).Str("subjectID", filter.SubjectID).
			Str("division", filter.Division).Msg("Error executing list tasks query")
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TaskListRow, error) {
		var t models.TaskListRow
		err := row.Scan(&t.TaskID, &t.Title, &t.TaskType, &t.DueDate, &t.TotalMarks, &t.CreatedAt)
		return t, err
	})
}
