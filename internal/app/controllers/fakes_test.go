package controllers_test

import (
	"context"
	"io"
	"strings"

	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/pkg/filestorage"
)

type fakeAuthService struct {
	resp    *dto.LoginResponse
	err     error
	lastReq *dto.LoginRequest
}

func (f *fakeAuthService) Login(_ context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

type fakeRegistrationService struct {
	teacherResp  *dto.RegisterTeacherResponse
	bulkResult   *dto.BulkImportResult
	err          error
	lastFilename string
	lastContent  string
}

func (f *fakeRegistrationService) RegisterTeacher(_ context.Context, _ *dto.RegisterTeacherRequest) (*dto.RegisterTeacherResponse, error) {
	return f.teacherResp, f.err
}

func (f *fakeRegistrationService) RegisterStudentsBulk(_ context.Context, filename string, r io.Reader) (*dto.BulkImportResult, error) {
	b, _ := io.ReadAll(r)
	f.lastFilename = filename
	f.lastContent = string(b)
	return f.bulkResult, f.err
}

type fakeCatalogService struct {
	subjects      []models.Subject
	details       []models.TeacherSubjectDetail
	err           error
	lastTeacherID string
}

func (f *fakeCatalogService) CreateSubject(_ context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Subject{ID: "sub-1", SubjectCode: req.SubjectCode, SubjectName: req.SubjectName, Semester: req.Semester, Year: models.AcademicYear(req.Year)}, nil
}

func (f *fakeCatalogService) ListSubjects(_ context.Context) ([]models.Subject, error) {
	return f.subjects, f.err
}

func (f *fakeCatalogService) CreateTeacherSubject(_ context.Context, req *dto.CreateTeacherSubjectRequest) (*models.TeacherSubject, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.TeacherSubject{ID: "ts-1", TeacherID: req.TeacherID, SubjectID: req.SubjectID, Division: req.Division, AcademicYear: req.AcademicYear}, nil
}

func (f *fakeCatalogService) ListTeacherSubjects(_ context.Context, teacherID string) ([]models.TeacherSubjectDetail, error) {
	f.lastTeacherID = teacherID
	return f.details, f.err
}

type fakeTaskService struct {
	created   *dto.CreateTaskResponse
	rows      []models.TaskListRow
	err       error
	lastQuery *dto.TaskFilterQuery
	lastReq   *dto.CreateTaskRequest
}

func (f *fakeTaskService) CreateTask(_ context.Context, req *dto.CreateTaskRequest) (*dto.CreateTaskResponse, error) {
	f.lastReq = req
	return f.created, f.err
}

func (f *fakeTaskService) ListTasks(_ context.Context, query *dto.TaskFilterQuery) ([]models.TaskListRow, error) {
	f.lastQuery = query
	return f.rows, f.err
}

type fakeReportService struct {
	profile       *models.StudentProfile
	taskRows      []models.StudentTaskRow
	dashboard     []models.DashboardRow
	roster        []models.StudentListRow
	report        []models.ReportRow
	task          *models.Task
	workbook      string
	err           error
	lastStudentID string
	lastStatus    string
	lastQuery     *dto.RosterQuery
	lastTaskID    string
}

func (f *fakeReportService) StudentDashboard(_ context.Context, userID string) (*models.StudentProfile, error) {
	f.lastStudentID = userID
	return f.profile, f.err
}

func (f *fakeReportService) StudentTasks(_ context.Context, studentID, status string) ([]models.StudentTaskRow, error) {
	f.lastStudentID, f.lastStatus = studentID, status
	return f.taskRows, f.err
}

func (f *fakeReportService) TeacherDashboard(_ context.Context, query *dto.RosterQuery) ([]models.DashboardRow, error) {
	f.lastQuery = query
	return f.dashboard, f.err
}

func (f *fakeReportService) StudentsForTask(_ context.Context, query *dto.RosterQuery) ([]models.StudentListRow, error) {
	f.lastQuery = query
	return f.roster, f.err
}

func (f *fakeReportService) TaskReport(_ context.Context, taskID string) ([]models.ReportRow, error) {
	f.lastTaskID = taskID
	return f.report, f.err
}

func (f *fakeReportService) WriteTaskReportWorkbook(_ context.Context, taskID string, w io.Writer) (*models.Task, error) {
	f.lastTaskID = taskID
	if f.err != nil {
		return nil, f.err
	}
	_, err := io.WriteString(w, f.workbook)
	return f.task, err
}

type fakeGradingService struct {
	saved   []models.Mark
	err     error
	lastReq *dto.SaveMarksRequest
}

func (f *fakeGradingService) SaveMarks(_ context.Context, req *dto.SaveMarksRequest) ([]models.Mark, error) {
	f.lastReq = req
	return f.saved, f.err
}

type fakeSubmissionService struct {
	uploadResp *dto.UploadSubmissionResponse
	lookup     *dto.SubmissionLookupResponse
	blob       string
	info       *filestorage.ObjectInfo
	err        error
	lastUpload *dto.UploadSubmissionRequest
	lastKey    string
	lastPath   string
}

func (f *fakeSubmissionService) Upload(_ context.Context, req *dto.UploadSubmissionRequest) (*dto.UploadSubmissionResponse, error) {
	f.lastUpload = req
	return f.uploadResp, f.err
}

func (f *fakeSubmissionService) Download(_ context.Context, key string) (io.ReadCloser, *filestorage.ObjectInfo, error) {
	f.lastKey = key
	if f.err != nil {
		return nil, nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.blob)), f.info, nil
}

func (f *fakeSubmissionService) FindByFilePath(_ context.Context, path string) (*dto.SubmissionLookupResponse, error) {
	f.lastPath = path
	return f.lookup, f.err
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }
