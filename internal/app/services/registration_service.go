package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/repositories"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/auth"
	"github.com/taskgrade/backend/internal/pkg/helpers"
	"github.com/taskgrade/backend/internal/pkg/metrics"
	"github.com/taskgrade/backend/internal/pkg/spreadsheet"
	"github.com/taskgrade/backend/internal/pkg/validation"
)

// Import column names
const (
	colPID             = "pid"
	colRollNumber      = "rollNumber"
	colEmail           = "email"
	colContactNumber   = "contactNumber"
	colFullName        = "fullName"
	colCurrentSemester = "currentSemester"
	colCurrentYear     = "currentYear"
	colDivision        = "division"
	colAcademicYear    = "academicYear"
)

var requiredImportColumns = []string{colPID, colRollNumber, colEmail, colContactNumber, colFullName}

// ImportDefaults is the cohort given to imported students whose row does not name one
type ImportDefaults struct {
	Semester     int
	Year         models.AcademicYear
	Division     string
	AcademicYear string
}

// RegistrationService registers teachers and bulk imports students
type RegistrationService interface {
	RegisterTeacher(ctx context.Context, req *dto.RegisterTeacherRequest) (*dto.RegisterTeacherResponse, error)
	RegisterStudentsBulk(ctx context.Context, filename string, r io.Reader) (*dto.BulkImportResult, error)
}

type registrationServiceImpl struct {
	userRepo repositories.IUserRepository
	tx       TxRunner
	hasher   *auth.PasswordHasher
	defaults ImportDefaults
	logger   zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	userRepo repositories.IUserRepository,
	tx TxRunner,
	hasher *auth.PasswordHasher,
	defaults ImportDefaults,
	logger zerolog.Logger,
) RegistrationService {
	return &registrationServiceImpl{
		userRepo: userRepo,
		tx:       tx,
		hasher:   hasher,
		defaults: defaults,
		logger:   logger,
	}
}

// RegisterTeacher creates a teacher user. Without a password the credential
// defaults to the start of the contact number.
func (s *registrationServiceImpl) RegisterTeacher(ctx context.Context, req *dto.RegisterTeacherRequest) (*dto.RegisterTeacherResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, apperrors.NewValidationError("password",
			fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, apperrors.NewConflictError("email already registered")
	}

	credential := req.Password
	if credential == "" {
		credential = auth.DefaultCredential(req.ContactNumber)
	}
	hash, err := s.hasher.Hash(credential)
	if err != nil {
		return nil, fmt.Errorf("error hashing credential: %w", err)
	}

	user := &models.User{
		Email:         email,
		PasswordHash:  hash,
		FullName:      strings.TrimSpace(req.FullName),
		ContactNumber: helpers.NullIfEmpty(req.ContactNumber),
		Role:          models.RoleTeacher,
	}
	teacher := &models.Teacher{Department: strings.TrimSpace(req.Department)}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return err
		}
		teacher.UserID = user.ID
		return s.userRepo.CreateTeacher(ctx, teacher)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID).Str("teacherID", teacher.ID).Msg("Teacher registered")
	return &dto.RegisterTeacherResponse{UserID: user.ID, TeacherID: teacher.ID}, nil
}

// rowError is a per-row import failure recorded in the result
type rowError struct {
	reason string
}

func (e *rowError) Error() string { return e.reason }

func skipRow(format string, args ...interface{}) error {
	return &rowError{reason: fmt.Sprintf(format, args...)}
}

// RegisterStudentsBulk imports students from a CSV or XLSX file. Each row is
// created in its own transaction; a failed row is recorded and skipped.
func (s *registrationServiceImpl) RegisterStudentsBulk(ctx context.Context, filename string, r io.Reader) (*dto.BulkImportResult, error) {
	rows, err := spreadsheet.ReadRows(filename, r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("file", "file is empty")
	}

	header := spreadsheet.NewHeader(rows[0])
	if missing := header.Missing(requiredImportColumns...); len(missing) > 0 {
		return nil, apperrors.NewValidationError("file", "missing required columns: "+strings.Join(missing, ", "))
	}

	result := &dto.BulkImportResult{Errors: []dto.ImportRowError{}}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Row numbers are 1-based and count the header line.
		rowNum := i + 2
		pid := header.Get(row, colPID)
		email := strings.ToLower(header.Get(row, colEmail))

		if err := s.importRow(ctx, header, row); err != nil {
			var re *rowError
			if !errors.As(err, &re) {
				s.logger.Warn().Err(err).Int("row", rowNum).Str("pid", pid).Msg("Student import row failed")
			}
			result.FailedCount++
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, PID: pid, Email: email, Reason: err.Error()})
			metrics.StudentsImported.WithLabelValues("failed").Inc()
			continue
		}
		result.SuccessCount++
		metrics.StudentsImported.WithLabelValues("created").Inc()
	}

	s.logger.Info().Int("created", result.SuccessCount).Int("failed", result.FailedCount).
		Str("file", filename).Msg("Student import finished")
	return result, nil
}

func (s *registrationServiceImpl) importRow(ctx context.Context, header spreadsheet.Header, row []string) error {
	var (
		pid        = header.Get(row, colPID)
		rollNumber = header.Get(row, colRollNumber)
		email      = strings.ToLower(header.Get(row, colEmail))
		contact    = header.Get(row, colContactNumber)
		fullName   = header.Get(row, colFullName)
	)

	var empty []string
	for _, f := range []struct{ name, value string }{
		{colPID, pid}, {colRollNumber, rollNumber}, {colEmail, email}, {colContactNumber, contact}, {colFullName, fullName},
	} {
		if f.value == "" {
			empty = append(empty, f.name)
		}
	}
	if len(empty) > 0 {
		return skipRow("missing required fields: %s", strings.Join(empty, ", "))
	}
	if !validation.IsEmail(email) {
		return skipRow("invalid email %q", email)
	}

	student, err := s.cohortFor(header, row)
	if err != nil {
		return err
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return skipRow("email already registered")
	}
	exists, err = s.userRepo.PIDExists(ctx, pid)
	if err != nil {
		return err
	}
	if exists {
		return skipRow("pid already registered")
	}

	hash, err := s.hasher.Hash(auth.DefaultCredential(contact))
	if err != nil {
		return err
	}

	user := &models.User{
		Email:         email,
		PasswordHash:  hash,
		FullName:      fullName,
		ContactNumber: &contact,
		Role:          models.RoleStudent,
	}
	student.RollNumber = rollNumber
	student.PID = pid

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return err
		}
		student.UserID = user.ID
		return s.userRepo.CreateStudent(ctx, student)
	})
	if apperrors.Is(err, apperrors.ErrConflict) {
		return skipRow("%s", err.Error())
	}
	return err
}

// cohortFor starts a student from the configured import defaults, overridden
// by any cohort columns present on the row.
func (s *registrationServiceImpl) cohortFor(header spreadsheet.Header, row []string) (*models.Student, error) {
	student := &models.Student{
		CurrentSemester: s.defaults.Semester,
		CurrentYear:     s.defaults.Year,
		Division:        s.defaults.Division,
		AcademicYear:    s.defaults.AcademicYear,
	}

	if v := header.Get(row, colCurrentSemester); v != "" {
		sem, err := strconv.Atoi(v)
		if err != nil || sem < 1 || sem > 8 {
			return nil, skipRow("invalid currentSemester %q", v)
		}
		student.CurrentSemester = sem
	}
	if v := header.Get(row, colCurrentYear); v != "" {
		year := models.AcademicYear(strings.ToUpper(v))
		if !year.Valid() {
			return nil, skipRow("invalid currentYear %q", v)
		}
		student.CurrentYear = year
	}
	if v := header.Get(row, colDivision); v != "" {
		if !validation.CompiledPatterns.Division.MatchString(v) {
			return nil, skipRow("invalid division %q", v)
		}
		student.Division = v
	}
	if v := header.Get(row, colAcademicYear); v != "" {
		if !validation.CompiledPatterns.AcademicYear.MatchString(v) {
			return nil, skipRow("invalid academicYear %q", v)
		}
		student.AcademicYear = v
	}
	return student, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
