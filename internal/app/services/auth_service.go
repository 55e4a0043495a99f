package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/repositories"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/auth"
	"github.com/taskgrade/backend/internal/pkg/validation"
)

// AuthService checks credentials and assembles login details
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authServiceImpl struct {
	userRepo       repositories.IUserRepository
	catalogRepo    repositories.ICatalogRepository
	hasher         *auth.PasswordHasher
	normalizeEmail bool
	logger         zerolog.Logger
}

// NewAuthService creates a new AuthService. When normalizeEmail is set the
// login email is lower-cased and matched case-insensitively.
func NewAuthService(
	userRepo repositories.IUserRepository,
	catalogRepo repositories.ICatalogRepository,
	hasher *auth.PasswordHasher,
	normalizeEmail bool,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:       userRepo,
		catalogRepo:    catalogRepo,
		hasher:         hasher,
		normalizeEmail: normalizeEmail,
		logger:         logger,
	}
}

// Login verifies email, role and credential in that order
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	role := models.Role(req.Role)
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role", "role must be one of: student teacher admin")
	}

	var (
		user *models.User
		err  error
	)
	if s.normalizeEmail {
		user, err = s.userRepo.GetUserByEmailFold(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	} else {
		user, err = s.userRepo.GetUserByEmail(ctx, req.Email)
	}
	if err != nil {
		return nil, err
	}

	if user.Role != role {
		s.logger.Info().Str("userID", user.ID).Str("requestedRole", req.Role).Msg("Login attempted with wrong role")
		return nil, apperrors.NewRoleMismatchError(fmt.Sprintf("user is not registered as %s", role))
	}

	if !s.hasher.Check(user.PasswordHash, req.Password) {
		s.logger.Info().Str("userID", user.ID).Msg("Login attempted with invalid credential")
		return nil, apperrors.NewInvalidCredentialsError("invalid credentials")
	}

	resp := &dto.LoginResponse{
		User:            user,
		TeacherSubjects: []models.TeacherSubjectDetail{},
	}

	switch role {
	case models.RoleStudent:
		student, err := s.userRepo.GetStudentByUserID(ctx, user.ID)
		switch {
		case errors.Is(err, apperrors.ErrResourceNotFound):
			s.logger.Warn().Str("userID", user.ID).Msg("Student user has no student record")
		case err != nil:
			return nil, fmt.Errorf("error loading student details: %w", err)
		default:
			resp.Student = student
		}
	case models.RoleTeacher:
		teacher, err := s.userRepo.GetTeacherByUserID(ctx, user.ID)
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Warn().Str("userID", user.ID).Msg("Teacher user has no teacher record")
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error loading teacher details: %w", err)
		}
		subjects, err := s.catalogRepo.ListTeacherSubjectDetails(ctx, teacher.ID)
		if err != nil {
			return nil, fmt.Errorf("error loading teacher subjects: %w", err)
		}
		resp.Teacher = teacher
		resp.TeacherSubjects = subjects
	}

	s.logger.Debug().Str("userID", user.ID).Str("role", string(role)).Msg("User logged in")
	return resp, nil
}
