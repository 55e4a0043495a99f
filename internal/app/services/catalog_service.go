package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/repositories"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/validation"
)

// CatalogService manages subjects and teacher-subject assignments
type CatalogService interface {
	CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	CreateTeacherSubject(ctx context.Context, req *dto.CreateTeacherSubjectRequest) (*models.TeacherSubject, error)
	ListTeacherSubjects(ctx context.Context, teacherID string) ([]models.TeacherSubjectDetail, error)
}

type catalogServiceImpl struct {
	catalogRepo repositories.ICatalogRepository
	userRepo    repositories.IUserRepository
	logger      zerolog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	catalogRepo repositories.ICatalogRepository,
	userRepo repositories.IUserRepository,
	logger zerolog.Logger,
) CatalogService {
	return &catalogServiceImpl{
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// CreateSubject adds a subject to the catalog
func (s *catalogServiceImpl) CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		SubjectCode: strings.TrimSpace(req.SubjectCode),
		SubjectName: strings.TrimSpace(req.SubjectName),
		Semester:    req.Semester,
		Year:        models.AcademicYear(req.Year),
	}
	if err := s.catalogRepo.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}

	s.logger.Info().Str("subjectID", subject.ID).Str("subjectCode", subject.SubjectCode).Msg("Subject created")
	return subject, nil
}

// ListSubjects returns the whole catalog
func (s *catalogServiceImpl) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	return s.catalogRepo.ListSubjects(ctx)
}

// CreateTeacherSubject assigns a teacher to a subject for a division and academic year
func (s *catalogServiceImpl) CreateTeacherSubject(ctx context.Context, req *dto.CreateTeacherSubjectRequest) (*models.TeacherSubject, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetTeacherByID(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	if _, err := s.catalogRepo.GetSubjectByID(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	ts := &models.TeacherSubject{
		TeacherID:    req.TeacherID,
		SubjectID:    req.SubjectID,
		Division:     strings.TrimSpace(req.Division),
		AcademicYear: strings.TrimSpace(req.AcademicYear),
	}
	if err := s.catalogRepo.CreateTeacherSubject(ctx, ts); err != nil {
		return nil, err
	}

	s.logger.Info().Str("teacherSubjectID", ts.ID).Str("teacherID", ts.TeacherID).
		Str("subjectID", ts.SubjectID).Msg("Teacher subject assignment created")
	return ts, nil
}

// ListTeacherSubjects returns a teacher's assignments joined with their subjects
func (s *catalogServiceImpl) ListTeacherSubjects(ctx context.Context, teacherID string) ([]models.TeacherSubjectDetail, error) {
	if teacherID == "" {
		return nil, apperrors.NewValidationError("teacherId", "teacherId is required")
	}
	if _, err := s.userRepo.GetTeacherByID(ctx, teacherID); err != nil {
		return nil, err
	}
	return s.catalogRepo.ListTeacherSubjectDetails(ctx, teacherID)
}
