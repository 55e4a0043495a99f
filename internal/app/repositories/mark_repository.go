package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/db"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/dberrors"
	"github.com/taskgrade/backend/internal/pkg/logger"
)

var markColumns = []string{"id", "submission_id", "question_number", "marks_obtained", "comments", "marked_by", "marked_at"}

// IMarkRepository persists per-question marks
type IMarkRepository interface {
	DeleteBySubmission(ctx context.Context, submissionID string) (int64, error)
	InsertMarks(ctx context.Context, marks []*models.Mark) ([]models.Mark, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]models.Mark, error)
}

// MarkRepository handles the marks table
type MarkRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewMarkRepository creates a new MarkRepository
func NewMarkRepository(database *db.PostgresDB) *MarkRepository {
	return &MarkRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

func collectMarks(rows pgx.Rows) ([]models.Mark, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Mark, error) {
		var m models.Mark
		err := row.Scan(&m.ID, &m.SubmissionID, &m.QuestionNumber, &m.MarksObtained, &m.Comments, &m.MarkedBy, &m.MarkedAt)
		return m, err
	})
}

// DeleteBySubmission removes every mark of a submission
func (r *MarkRepository) DeleteBySubmission(ctx context.Context, submissionID string) (int64, error) {
	sql, args, err := r.sb.Delete("marks").Where(squirrel.Eq{"submission_id": submissionID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete marks query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("submissionID", submissionID).Msg("Error deleting marks")
		return 0, fmt.Errorf("error deleting marks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertMarks writes all marks in one statement and returns the stored rows
func (r *MarkRepository) InsertMarks(ctx context.Context, marks []*models.Mark) ([]models.Mark, error) {
	if len(marks) == 0 {
		return []models.Mark{}, nil
	}

	ib := r.sb.Insert("marks").Columns(markColumns...)
	for _, m := range marks {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		ib = ib.Values(m.ID, m.SubmissionID, m.QuestionNumber, m.MarksObtained, m.Comments, m.MarkedBy, m.MarkedAt)
	}
	sql, args, err := ib.Suffix("RETURNING " + joinColumns(markColumns)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert marks query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("submissionID", marks[0].SubmissionID).Msg("Error inserting marks")
		return nil, fmt.Errorf("error inserting marks: %w", err)
	}
	saved, err := collectMarks(rows)
	if err != nil {
		switch {
		case dberrors.IsUniqueViolation(err):
			return nil, apperrors.NewConflictError("duplicate question number for submission")
		case dberrors.IsForeignKeyViolation(err):
			return nil, apperrors.NewResourceNotFoundError("submission or marking teacher not found")
		}
		return nil, fmt.Errorf("error inserting marks: %w", err)
	}
	return saved, nil
}

// ListBySubmission returns a submission's marks by question number
func (r *MarkRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.Mark, error) {
	sql, args, err := r.sb.Select(markColumns...).
		From("marks").
		Where(squirrel.Eq{"submission_id": submissionID}).
		OrderBy("question_number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list marks query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing marks: %w", err)
	}
	return collectMarks(rows)
}
