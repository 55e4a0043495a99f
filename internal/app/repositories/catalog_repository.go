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

// ICatalogRepository persists subjects and teacher-subject assignments
type ICatalogRepository interface {
	CreateSubject(ctx context.Context, subject *models.Subject) error
	GetSubjectByID(ctx context.Context, id string) (*models.Subject, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)

	CreateTeacherSubject(ctx context.Context, ts *models.TeacherSubject) error
	GetTeacherSubjectByID(ctx context.Context, id string) (*models.TeacherSubject, error)
	ListTeacherSubjectDetails(ctx context.Context, teacherID string) ([]models.TeacherSubjectDetail, error)
}

// CatalogRepository handles the subjects and teacher_subjects tables
type CatalogRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(database *db.PostgresDB) *CatalogRepository {
	return &CatalogRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateSubject inserts a subject; a duplicate subject code is a conflict
func (r *CatalogRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}

	sql, args, err := r.sb.Insert("subjects").
		Columns("id", "subject_code", "subject_name", "semester", "year").
		Values(subject.ID, subject.SubjectCode, subject.SubjectName, subject.Semester, subject.Year).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create subject query: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "subjects_subject_code_key") {
			logger.Warn().Str("subjectCode", subject.SubjectCode).Msg("Attempted to create duplicate subject")
			return apperrors.NewConflictError("subject code already exists")
		}
		logger.Error().Err(err).Str("subjectCode", subject.SubjectCode).Msg("Error executing create subject query")
		return fmt.Errorf("error creating subject: %w", err)
	}
	return nil
}

// GetSubjectByID retrieves a subject by ID
func (r *CatalogRepository) GetSubjectByID(ctx context.Context, id string) (*models.Subject, error) {
	sql, args, err := r.sb.Select("id", "subject_code", "subject_name", "semester", "year").
		From("subjects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subject query: %w", err)
	}

	var s models.Subject
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&s.ID, &s.SubjectCode, &s.SubjectName, &s.Semester, &s.Year)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error getting subject: %w", err)
	}
	return &s, nil
}

// ListSubjects returns all subjects ordered by semester and code
func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	sql, args, err := r.sb.Select("id", "subject_code", "subject_name", "semester", "year").
		From("subjects").
		OrderBy("semester", "subject_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list subjects query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list subjects query")
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Subject, error) {
		var s models.Subject
		err := row.Scan(&s.ID, &s.SubjectCode, &s.SubjectName, &s.Semester, &s.Year)
		return s, err
	})
}

// CreateTeacherSubject inserts an assignment; the natural key
// (teacher, subject, division, academic year) must be unique.
func (r *CatalogRepository) CreateTeacherSubject(ctx context.Context, ts *models.TeacherSubject) error {
	if ts.ID == "" {
		ts.ID = uuid.NewString()
	}

	sql, args, err := r.sb.Insert("teacher_subjects").
		Columns("id", "teacher_id", "subject_id", "division", "academic_year").
		Values(ts.ID, ts.TeacherID, ts.SubjectID, ts.Division, ts.AcademicYear).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create teacher subject query: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "teacher_subjects_natural_key"):
			return apperrors.NewConflictError("teacher is already assigned to this subject, division and academic year")
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.NewResourceNotFoundError("teacher or subject not found")
		}
		logger.Error().Err(err).Str("teacherID", ts.TeacherID).Str("subjectID", ts.SubjectID).Msg("Error executing create teacher subject query")
		return fmt.Errorf("error creating teacher subject: %w", err)
	}
	return nil
}

// GetTeacherSubjectByID retrieves an assignment by ID
func (r *CatalogRepository) GetTeacherSubjectByID(ctx context.Context, id string) (*models.TeacherSubject, error) {
	sql, args, err := r.sb.Select("id", "teacher_id", "subject_id", "division", "academic_year").
		From("teacher_subjects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get teacher subject query: %w", err)
	}

	var ts models.TeacherSubject
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&ts.ID, &ts.TeacherID, &ts.SubjectID, &ts.Division, &ts.AcademicYear)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeacherSubjectNotFound
		}
		return nil, fmt.Errorf("error getting teacher subject: %w", err)
	}
	return &ts, nil
}

// ListTeacherSubjectDetails returns a teacher's assignments joined with their subjects
func (r *CatalogRepository) ListTeacherSubjectDetails(ctx context.Context, teacherID string) ([]models.TeacherSubjectDetail, error) {
	sql, args, err := r.sb.Select(
		"ts.id", "ts.subject_id", "ts.division", "ts.academic_year",
		"s.subject_name", "s.subject_code", "s.semester", "s.year",
	).From("teacher_subjects ts").
		Join("subjects s ON s.id = ts.subject_id").
		Where(squirrel.Eq{"ts.teacher_id": teacherID}).
		OrderBy("s.semester", "s.subject_code", "ts.division").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teacher subjects query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("teacherID", teacherID).Msg("Error executing teacher subjects query")
		return nil, fmt.Errorf("error listing teacher subjects: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TeacherSubjectDetail, error) {
		var d models.TeacherSubjectDetail
		err := row.Scan(&d.ID, &d.SubjectID, &d.Division, &d.AcademicYear,
			&d.SubjectName, &d.SubjectCode, &d.Semester, &d.Year)
		return d, err
	})
}
