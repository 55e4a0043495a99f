package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/xuri/excelize/v2"
)

type reportFixture struct {
	reports *fakeReportRepo
	users   *fakeUserRepo
	svc     ReportService
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	tasks := newFakeTaskRepo(newFakeCatalogRepo())
	require.NoError(t, tasks.CreateTask(context.Background(), &models.Task{
		ID: "task-1", TeacherSubjectID: "ts-1", TaskType: models.TaskTypeMSE, Title: "Midterm", Semester: 6, TotalMarks: 30,
	}))
	f := &reportFixture{reports: &fakeReportRepo{}, users: newFakeUserRepo()}
	f.svc = NewReportService(f.reports, tasks, f.users, zerolog.Nop())
	return f
}

func TestStudentTasks_ValidatesInput(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.svc.StudentTasks(ctx, "", "pending")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.StudentTasks(ctx, "st-1", "late")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	f.reports.studentTasks = []models.StudentTaskRow{{TaskID: "task-1"}}
	rows, err := f.svc.StudentTasks(ctx, "st-1", "submitted")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "st-1", f.reports.lastStudentID)
	assert.Equal(t, models.SubmissionSubmitted, f.reports.lastStatus)
}

func TestRosterQueries_PassFilter(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	q := &dto.RosterQuery{Semester: 6, Division: "B", TaskID: "task-1", SubjectID: "sub-1"}
	want := models.RosterFilter{Semester: 6, Division: "B", TaskID: "task-1", SubjectID: "sub-1"}

	f.reports.dashboard = []models.DashboardRow{{RollNumber: "01", TotalMarks: 0}}
	dash, err := f.svc.TeacherDashboard(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, want, f.reports.lastFilter)
	assert.Len(t, dash, 1)

	f.reports.lastFilter = models.RosterFilter{}
	_, err = f.svc.StudentsForTask(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, want, f.reports.lastFilter)

	_, err = f.svc.TeacherDashboard(ctx, &dto.RosterQuery{Semester: 6, Division: "B"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestTaskReport_MissingTask(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.TaskReport(context.Background(), "task-404")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = f.svc.WriteTaskReportWorkbook(context.Background(), "task-404", &bytes.Buffer{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestWriteTaskReportWorkbook(t *testing.T) {
	f := newReportFixture(t)
	name, roll := "Riya", "01"
	q := 1
	marks := 8.5
	f.reports.report = []models.ReportRow{
		{StudentName: &name, RollNumber: &roll, TaskTitle: "Midterm", TaskType: models.TaskTypeMSE, QuestionNumber: &q, MarksObtained: &marks, TotalMarks: 30},
		{TaskTitle: "Midterm", TaskType: models.TaskTypeMSE, TotalMarks: 30},
	}

	var buf bytes.Buffer
	task, err := f.svc.WriteTaskReportWorkbook(context.Background(), "task-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, "Midterm", task.Title)

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, reportColumns, rows[0])
	assert.Equal(t, "Riya", rows[1][0])
	assert.Equal(t, "1", rows[1][5])
	assert.Equal(t, "8.5", rows[1][6])
	assert.Equal(t, "", rows[2][0])
	assert.Equal(t, "Midterm", rows[2][2])
}

func TestStudentDashboard(t *testing.T) {
	f := newReportFixture(t)
	st := f.users.addStudent("07", 6, "B")

	profile, err := f.svc.StudentDashboard(context.Background(), st.UserID)
	require.NoError(t, err)
	assert.Equal(t, "07", profile.Student.RollNumber)
	assert.Equal(t, "07@college.edu", profile.User.Email)

	_, err = f.svc.StudentDashboard(context.Background(), "u-404")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
