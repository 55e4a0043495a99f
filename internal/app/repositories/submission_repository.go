package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/db"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/logger"
)

var submissionColumns = []string{"id", "task_id", "student_id", "submission_file_path", "submission_date", "status"}

// ISubmissionRepository persists submissions
type ISubmissionRepository interface {
	// CreatePending inserts one pending row per student for the task and
	// reports how many rows were created. Existing pairs are left alone.
	CreatePending(ctx context.Context, taskID string, studentIDs []string) (int64, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	GetByIDForUpdate(ctx context.Context, id string) (*models.Submission, error)
	GetByTaskAndStudentForUpdate(ctx context.Context, taskID, studentID string) (*models.Submission, error)
	GetByFilePath(ctx context.Context, path string) (*models.Submission, error)
	MarkSubmitted(ctx context.Context, id, path string, at time.Time) (*models.Submission, error)
	SetStatus(ctx context.Context, id string, status models.SubmissionStatus) error
}

// SubmissionRepository handles the submissions table
type SubmissionRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(database *db.PostgresDB) *SubmissionRepository {
	return &SubmissionRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(&s.ID, &s.TaskID, &s.StudentID, &s.FilePath, &s.SubmissionDate, &s.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubmissionNotFound
		}
		logger.Error().Err(err).Msg("Error scanning submission")
		return nil, fmt.Errorf("error scanning submission: %w", err)
	}
	return &s, nil
}

// CreatePending inserts pending submissions in a single multi-row statement.
// Callers bound the batch size.
func (r *SubmissionRepository) CreatePending(ctx context.Context, taskID string, studentIDs []string) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}

	ib := r.sb.Insert("submissions").Columns("id", "task_id", "student_id", "submission_file_path", "status")
	for _, studentID := range studentIDs {
		ib = ib.Values(uuid.NewString(), taskID, studentID, "", models.SubmissionPending)
	}
	sql, args, err := ib.Suffix("ON CONFLICT (task_id, student_id) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build pending submissions query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("taskID", taskID).Int("rows", len(studentIDs)).Msg("Error inserting pending submissions")
		return 0, fmt.Errorf("error creating pending submissions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetByID retrieves a submission by ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	return r.get(ctx, squirrel.Eq{"id": id}, false)
}

// GetByIDForUpdate retrieves and row-locks a submission; use inside a transaction
func (r *SubmissionRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Submission, error) {
	return r.get(ctx, squirrel.Eq{"id": id}, true)
}

// GetByTaskAndStudentForUpdate retrieves and row-locks the submission of a student for a task
func (r *SubmissionRepository) GetByTaskAndStudentForUpdate(ctx context.Context, taskID, studentID string) (*models.Submission, error) {
	return r.get(ctx, squirrel.Eq{"task_id": taskID, "student_id": studentID}, true)
}

// GetByFilePath retrieves the submission stored under a file path
func (r *SubmissionRepository) GetByFilePath(ctx context.Context, path string) (*models.Submission, error) {
	return r.get(ctx, squirrel.Eq{"submission_file_path": path}, false)
}

func (r *SubmissionRepository) get(ctx context.Context, pred squirrel.Sqlizer, lock bool) (*models.Submission, error) {
	q := r.sb.Select(submissionColumns...).From("submissions").Where(pred).Limit(1)
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get submission query: %w", err)
	}
	return scanSubmission(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
}

// MarkSubmitted records an uploaded file and moves the row to submitted
func (r *SubmissionRepository) MarkSubmitted(ctx context.Context, id, path string, at time.Time) (*models.Submission, error) {
	sql, args, err := r.sb.Update("submissions").
		Set("submission_file_path", path).
		Set("submission_date", at).
		Set("status", models.SubmissionSubmitted).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(submissionColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build mark submitted query: %w", err)
	}
	return scanSubmission(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
}

// SetStatus changes the status of a submission
func (r *SubmissionRepository) SetStatus(ctx context.Context, id string, status models.SubmissionStatus) error {
	sql, args, err := r.sb.Update("submissions").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set status query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("submissionID", id).Str("status", string(status)).Msg("Error updating submission status")
		return fmt.Errorf("error updating submission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubmissionNotFound
	}
	return nil
}
