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

var studentColumns = []string{
	"st.id", "st.user_id", "st.roll_number", "st.pid", "st.current_semester",
	"st.current_year", "st.division", "st.academic_year",
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateStudent creates a new student
func (r *StudentRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}

	sql, args, err := r.sb.Insert("students").
		Columns("id", "user_id", "roll_number", "pid", "current_semester", "current_year", "division", "academic_year").
		Values(student.ID, student.UserID, student.RollNumber, student.PID, student.CurrentSemester,
			student.CurrentYear, student.Division, student.AcademicYear).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	_, err = r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_pid_key") {
			logger.Warn().Str("pid", student.PID).Msg("Attempted to create student with duplicate pid")
			return apperrors.NewConflictError("pid already registered")
		}
		logger.Error().Err(err).Str("userID", student.UserID).Str("pid", student.PID).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	logger.Debug().Str("userID", student.UserID).Str("pid", student.PID).Msg("Student created successfully")
	return nil
}

// GetStudentByUserID retrieves a student by user ID
func (r *StudentRepository) GetStudentByUserID(ctx context.Context, userID string) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students st").
		Where(squirrel.Eq{"st.user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	var st models.Student
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(
		&st.ID, &st.UserID, &st.RollNumber, &st.PID, &st.CurrentSemester,
		&st.CurrentYear, &st.Division, &st.AcademicYear)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn().Str("userID", userID).Msg("Student not found by user ID")
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("userID", userID).Msg("Error executing get student query")
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return &st, nil
}

// GetStudentProfile joins the student with its user row
func (r *StudentRepository) GetStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	cols := append(append([]string{}, studentColumns...),
		"u.id", "u.email", "u.full_name", "u.contact_number", "u.role", "u.created_at")
	sql, args, err := r.sb.Select(cols...).
		From("students st").
		Join("users u ON u.id = st.user_id").
		Where(squirrel.Eq{"st.user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student profile query: %w", err)
	}

	var p models.StudentProfile
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(
		&p.Student.ID, &p.Student.UserID, &p.Student.RollNumber, &p.Student.PID, &p.Student.CurrentSemester,
		&p.Student.CurrentYear, &p.Student.Division, &p.Student.AcademicYear,
		&p.User.ID, &p.User.Email, &p.User.FullName, &p.User.ContactNumber, &p.User.Role, &p.User.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("userID", userID).Msg("Error executing student profile query")
		return nil, fmt.Errorf("error getting student profile: %w", err)
	}
	return &p, nil
}

// PIDExists checks if a pid is already registered
func (r *StudentRepository) PIDExists(ctx context.Context, pid string) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE pid = $1)`, pid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking pid: %w", err)
	}
	return exists, nil
}

// ListCohortStudentIDs returns the ids of students currently in the given
// semester and division, ordered for stable fan-out batches.
func (r *StudentRepository) ListCohortStudentIDs(ctx context.Context, semester int, division string) ([]string, error) {
	sql, args, err := r.sb.Select("id").
		From("students").
		Where(squirrel.Eq{"current_semester": semester, "division": division}).
		OrderBy("roll_number", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cohort query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("semester", semester).Str("division", division).Msg("Error executing cohort query")
		return nil, fmt.Errorf("error listing cohort: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error scanning cohort: %w", err)
	}
	return ids, nil
}
