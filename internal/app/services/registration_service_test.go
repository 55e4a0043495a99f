package services

import (
	"context"
	"errors"
	"strings"
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

var testImportDefaults = ImportDefaults{Semester: 6, Year: models.YearTE, Division: "B", AcademicYear: "2024-2025"}

func newRegistrationService(users *fakeUserRepo, tx *fakeTx) (RegistrationService, *auth.PasswordHasher) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	return NewRegistrationService(users, tx, hasher, testImportDefaults, zerolog.Nop()), hasher
}

func TestRegisterTeacher(t *testing.T) {
	users := newFakeUserRepo()
	tx := &fakeTx{}
	svc, hasher := newRegistrationService(users, tx)

	resp, err := svc.RegisterTeacher(context.Background(), &dto.RegisterTeacherRequest{
		Email:         "New.Teacher@College.edu",
		FullName:      "New Teacher",
		ContactNumber: "9876543210",
		Department:    "Computer",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)

	u := users.users[resp.UserID]
	require.NotNil(t, u)
	assert.Equal(t, "new.teacher@college.edu", u.Email)
	assert.Equal(t, models.RoleTeacher, u.Role)
	assert.True(t, hasher.Check(u.PasswordHash, "98765432"))

	teacher := users.teachers[resp.TeacherID]
	require.NotNil(t, teacher)
	assert.Equal(t, resp.UserID, teacher.UserID)
	assert.Equal(t, "Computer", teacher.Department)
}

func TestRegisterTeacher_ExplicitPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc, hasher := newRegistrationService(users, &fakeTx{})

	resp, err := svc.RegisterTeacher(context.Background(), &dto.RegisterTeacherRequest{
		Email: "t@college.edu", FullName: "T", ContactNumber: "1112223334", Department: "IT", Password: "chosen-pass",
	})
	require.NoError(t, err)
	assert.True(t, hasher.Check(users.users[resp.UserID].PasswordHash, "chosen-pass"))
}

func TestRegisterTeacher_DuplicateEmailIgnoresCase(t *testing.T) {
	users := newFakeUserRepo()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{Email: "dup@college.edu", Role: models.RoleTeacher}))
	tx := &fakeTx{}
	svc, _ := newRegistrationService(users, tx)

	_, err := svc.RegisterTeacher(context.Background(), &dto.RegisterTeacherRequest{
		Email: "DUP@college.edu", FullName: "Dup", ContactNumber: "1234567890", Department: "IT",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Zero(t, tx.calls)
}

func TestRegisterTeacher_Validation(t *testing.T) {
	svc, _ := newRegistrationService(newFakeUserRepo(), &fakeTx{})

	_, err := svc.RegisterTeacher(context.Background(), &dto.RegisterTeacherRequest{Email: "not-an-email", FullName: "X"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.NotEmpty(t, ce.Field)
}

func TestRegisterTeacher_PasswordTooLong(t *testing.T) {
	users := newFakeUserRepo()
	tx := &fakeTx{}
	svc, _ := newRegistrationService(users, tx)

	_, err := svc.RegisterTeacher(context.Background(), &dto.RegisterTeacherRequest{
		Email: "long@college.edu", FullName: "Long", ContactNumber: "1234567890", Department: "IT",
		Password: strings.Repeat("p", 80),
	})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)

	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "password", ce.Field)
	assert.Zero(t, tx.calls)
	assert.Empty(t, users.users)

	_, err = svc.RegisterTeacher(context.Background(), &dto.RegisterTeacherRequest{
		Email: "edge@college.edu", FullName: "Edge", ContactNumber: "1234567890", Department: "IT",
		Password: strings.Repeat("p", auth.MaxPasswordBytes),
	})
	assert.NoError(t, err)
}

func TestRegisterStudentsBulk_PartialSuccess(t *testing.T) {
	users := newFakeUserRepo()
	svc, hasher := newRegistrationService(users, &fakeTx{})

	csv := strings.Join([]string{
		"pid,rollNumber,email,contactNumber,fullName",
		"P100,01,,9000000001,No Email",
		"P101,02,Valid.Student@College.edu,9000000002,Valid Student",
	}, "\n")

	res, err := svc.RegisterStudentsBulk(context.Background(), "students.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.FailedCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, "P100", res.Errors[0].PID)
	assert.Contains(t, res.Errors[0].Reason, "email")

	u, err := users.GetUserByEmail(context.Background(), "valid.student@college.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, u.Role)
	assert.True(t, hasher.Check(u.PasswordHash, "90000000"))

	st, err := users.GetStudentByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "P101", st.PID)
	assert.Equal(t, 6, st.CurrentSemester)
	assert.Equal(t, models.YearTE, st.CurrentYear)
	assert.Equal(t, "B", st.Division)
	assert.Equal(t, "2024-2025", st.AcademicYear)
}

func TestRegisterStudentsBulk_DuplicatesAreSkipped(t *testing.T) {
	users := newFakeUserRepo()
	users.addStudent("99", 6, "B") // email 99@college.edu, pid PID99
	svc, _ := newRegistrationService(users, &fakeTx{})

	csv := strings.Join([]string{
		"PID, RollNumber ,Email,ContactNumber,FullName",
		"P1,01,99@college.edu,9000000001,Existing Email",
		"PID99,02,fresh@college.edu,9000000002,Existing PID",
		"P3,03,a@college.edu,9000000003,First",
		"P3,04,b@college.edu,9000000004,Same PID In File",
	}, "\n")

	res, err := svc.RegisterStudentsBulk(context.Background(), "students.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 3, res.FailedCount)

	reasons := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		reasons = append(reasons, e.Reason)
	}
	assert.Equal(t, []string{"email already registered", "pid already registered", "pid already registered"}, reasons)
}

func TestRegisterStudentsBulk_RowCohortOverridesDefaults(t *testing.T) {
	users := newFakeUserRepo()
	svc, _ := newRegistrationService(users, &fakeTx{})

	csv := strings.Join([]string{
		"pid,rollNumber,email,contactNumber,fullName,currentSemester,currentYear,division,academicYear",
		"P1,01,one@college.edu,9000000001,One,4,se,A,2025-2026",
		"P2,02,two@college.edu,9000000002,Two,,,,",
		"P3,03,three@college.edu,9000000003,Three,11,,,",
	}, "\n")

	res, err := svc.RegisterStudentsBulk(context.Background(), "students.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.SuccessCount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Reason, "currentSemester")

	one, _ := users.GetUserByEmail(context.Background(), "one@college.edu")
	st, err := users.GetStudentByUserID(context.Background(), one.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, st.CurrentSemester)
	assert.Equal(t, models.YearSE, st.CurrentYear)
	assert.Equal(t, "A", st.Division)
	assert.Equal(t, "2025-2026", st.AcademicYear)

	two, _ := users.GetUserByEmail(context.Background(), "two@college.edu")
	st, err = users.GetStudentByUserID(context.Background(), two.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, st.CurrentSemester)
	assert.Equal(t, "B", st.Division)
}

func TestRegisterStudentsBulk_StoreFailureDoesNotAbortBatch(t *testing.T) {
	users := newFakeUserRepo()
	users.createStudentErr = errors.New("connection reset")
	svc, _ := newRegistrationService(users, &fakeTx{})

	csv := "pid,rollNumber,email,contactNumber,fullName\nP1,01,one@college.edu,9000000001,One\nP2,02,two@college.edu,9000000002,Two\n"
	res, err := svc.RegisterStudentsBulk(context.Background(), "students.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, res.SuccessCount)
	assert.Equal(t, 2, res.FailedCount)
	assert.Equal(t, "connection reset", res.Errors[1].Reason)
}

func TestRegisterStudentsBulk_MissingColumns(t *testing.T) {
	svc, _ := newRegistrationService(newFakeUserRepo(), &fakeTx{})

	_, err := svc.RegisterStudentsBulk(context.Background(), "students.csv", strings.NewReader("pid,email\nP1,a@b.co\n"))
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Contains(t, err.Error(), "rollNumber")
	assert.Contains(t, err.Error(), "fullName")
}

func TestRegisterStudentsBulk_UnsupportedFile(t *testing.T) {
	svc, _ := newRegistrationService(newFakeUserRepo(), &fakeTx{})

	_, err := svc.RegisterStudentsBulk(context.Background(), "students.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
