package user

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

// TeacherRepository handles teacher database operations
type TeacherRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(database *db.PostgresDB) *TeacherRepository {
	return &TeacherRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateTeacher creates a new teacher
func (r *TeacherRepository) CreateTeacher(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}

	sql, args, err := r.sb.Insert("teachers").
		Columns("id", "user_id", "department").
		Values(teacher.ID, teacher.UserID, teacher.Department).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create teacher SQL")
		return fmt.Errorf("failed to build create teacher query: %w", err)
	}

	if _, err = r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "teachers_user_id_key") {
			return apperrors.NewConflictError("user is already a teacher")
		}
		logger.Error().Err(err).Str("userID", teacher.UserID).Msg("Error executing create teacher query")
		return fmt.Errorf("error creating teacher: %w", err)
	}

	logger.Info().Str("userID", teacher.UserID).Str("teacherID", teacher.ID).Msg("Teacher created successfully")
	return nil
}

// GetTeacherByUserID retrieves a teacher by user ID
func (r *TeacherRepository) GetTeacherByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	return r.getTeacher(ctx, squirrel.Eq{"user_id": userID})
}

// GetTeacherByID retrieves a teacher by its own ID
func (r *TeacherRepository) GetTeacherByID(ctx context.Context, id string) (*models.Teacher, error) {
	return r.getTeacher(ctx, squirrel.Eq{"id": id})
}

func (r *TeacherRepository) getTeacher(ctx context.Context, pred squirrel.Sqlizer) (*models.Teacher, error) {
	sql, args, err := r.sb.Select("id", "user_id", "department").
		From("teachers").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get teacher query: %w", err)
	}

	var t models.Teacher
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&t.ID, &t.UserID, &t.Department); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeacherNotFound
		}
		logger.Error().Err(err).Msg("Error executing get teacher query")
		return nil, fmt.Errorf("error getting teacher: %w", err)
	}
	return &t, nil
}

// MissingTeacherIDs returns those ids that do not name a teacher
func (r *TeacherRepository) MissingTeacherIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Conn(ctx).Query(ctx,
		`SELECT want.id FROM unnest($1::text[]) AS want(id)
		 WHERE NOT EXISTS (SELECT 1 FROM teachers t WHERE t.id = want.id)
		 ORDER BY want.id`, ids)
	if err != nil {
		logger.Error().Err(err).Strs("teacherIDs", ids).Msg("Error checking teacher ids")
		return nil, fmt.Errorf("error checking teachers: %w", err)
	}
	missing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error scanning teachers: %w", err)
	}
	return missing, nil
}
