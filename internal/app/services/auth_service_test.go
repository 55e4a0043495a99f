package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	users   *fakeUserRepo
	catalog *fakeCatalogRepo
	hasher  *auth.PasswordHasher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:   newFakeUserRepo(),
		catalog: newFakeCatalogRepo(),
		hasher:  auth.NewPasswordHasher(bcrypt.MinCost),
	}
	ctx := context.Background()

	hash, err := f.hasher.Hash("secret123")
	require.NoError(t, err)

	student := &models.User{ID: "u-student", Email: "riya@college.edu", PasswordHash: hash, FullName: "Riya", Role: models.RoleStudent}
	require.NoError(t, f.users.CreateUser(ctx, student))
	require.NoError(t, f.users.CreateStudent(ctx, &models.Student{
		ID: "s-1", UserID: student.ID, RollNumber: "01", PID: "P01", CurrentSemester: 6, CurrentYear: models.YearTE, Division: "B",
	}))

	teacher := &models.User{ID: "u-teacher", Email: "kumar@college.edu", PasswordHash: hash, FullName: "Kumar", Role: models.RoleTeacher}
	require.NoError(t, f.users.CreateUser(ctx, teacher))
	require.NoError(t, f.users.CreateTeacher(ctx, &models.Teacher{ID: "t-1", UserID: teacher.ID, Department: "Computer"}))

	require.NoError(t, f.catalog.CreateSubject(ctx, &models.Subject{ID: "sub-1", SubjectCode: "CS601", SubjectName: "Networks", Semester: 6, Year: models.YearTE}))
	require.NoError(t, f.catalog.CreateTeacherSubject(ctx, &models.TeacherSubject{ID: "ts-1", TeacherID: "t-1", SubjectID: "sub-1", Division: "B", AcademicYear: "2024-2025"}))
	return f
}

func (f *authFixture) service(normalize bool) AuthService {
	return NewAuthService(f.users, f.catalog, f.hasher, normalize, zerolog.Nop())
}

func TestLogin_Student(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.service(false).Login(context.Background(), &dto.LoginRequest{
		Email: "riya@college.edu", Password: "secret123", Role: "student",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-student", resp.User.ID)
	require.NotNil(t, resp.Student)
	assert.Equal(t, "s-1", resp.Student.ID)
	assert.Nil(t, resp.Teacher)
	assert.Empty(t, resp.TeacherSubjects)
}

func TestLogin_TeacherIncludesSubjects(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.service(false).Login(context.Background(), &dto.LoginRequest{
		Email: "kumar@college.edu", Password: "secret123", Role: "teacher",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Teacher)
	assert.Equal(t, "t-1", resp.Teacher.ID)
	require.Len(t, resp.TeacherSubjects, 1)
	assert.Equal(t, "Networks", resp.TeacherSubjects[0].SubjectName)
	assert.Equal(t, "CS601", resp.TeacherSubjects[0].SubjectCode)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name   string
		req    dto.LoginRequest
		target error
	}{
		{"unknown email", dto.LoginRequest{Email: "nobody@college.edu", Password: "secret123", Role: "student"}, apperrors.ErrResourceNotFound},
		{"wrong role", dto.LoginRequest{Email: "riya@college.edu", Password: "secret123", Role: "teacher"}, apperrors.ErrRoleMismatch},
		{"wrong credential", dto.LoginRequest{Email: "riya@college.edu", Password: "nope", Role: "student"}, apperrors.ErrInvalidCredentials},
		{"missing password", dto.LoginRequest{Email: "riya@college.edu", Role: "student"}, apperrors.ErrValidationFailed},
		{"unknown role", dto.LoginRequest{Email: "riya@college.edu", Password: "secret123", Role: "dean"}, apperrors.ErrValidationFailed},
		{"mixed case email is not folded", dto.LoginRequest{Email: "Riya@College.edu", Password: "secret123", Role: "student"}, apperrors.ErrResourceNotFound},
	}

	f := newAuthFixture(t)
	svc := f.service(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			resp, err := svc.Login(context.Background(), &req)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLogin_MissingRoleRecordLeavesDetailsEmpty(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	hash, err := f.hasher.Hash("secret123")
	require.NoError(t, err)
	require.NoError(t, f.users.CreateUser(ctx, &models.User{ID: "u-bare-student", Email: "bare.s@college.edu", PasswordHash: hash, Role: models.RoleStudent}))
	require.NoError(t, f.users.CreateUser(ctx, &models.User{ID: "u-bare-teacher", Email: "bare.t@college.edu", PasswordHash: hash, Role: models.RoleTeacher}))

	resp, err := f.service(false).Login(ctx, &dto.LoginRequest{Email: "bare.s@college.edu", Password: "secret123", Role: "student"})
	require.NoError(t, err)
	assert.Equal(t, "u-bare-student", resp.User.ID)
	assert.Nil(t, resp.Student)

	resp, err = f.service(false).Login(ctx, &dto.LoginRequest{Email: "bare.t@college.edu", Password: "secret123", Role: "teacher"})
	require.NoError(t, err)
	assert.Nil(t, resp.Teacher)
	assert.Empty(t, resp.TeacherSubjects)
}

func TestLogin_NormalizedEmail(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.service(true).Login(context.Background(), &dto.LoginRequest{
		Email: "  Riya@College.EDU ", Password: "secret123", Role: "student",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-student", resp.User.ID)
}
