package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/filestorage"
)

// fakeTx runs fn directly; err makes every unit of work fail before fn runs
type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type fakeUserRepo struct {
	users    map[string]*models.User
	students map[string]*models.Student
	teachers map[string]*models.Teacher
	seq      int

	createStudentErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    map[string]*models.User{},
		students: map[string]*models.Student{},
		teachers: map[string]*models.Teacher{},
	}
}

func (r *fakeUserRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *models.User) error {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperrors.NewConflictError("email already registered")
		}
	}
	if u.ID == "" {
		u.ID = r.nextID("user")
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByEmailFold(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetUserByEmailFold(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) CountUsers(context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CreateStudent(_ context.Context, s *models.Student) error {
	if r.createStudentErr != nil {
		return r.createStudentErr
	}
	for _, existing := range r.students {
		if existing.PID == s.PID {
			return apperrors.NewConflictError("pid already registered")
		}
	}
	if s.ID == "" {
		s.ID = r.nextID("student")
	}
	cp := *s
	r.students[s.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetStudentByUserID(_ context.Context, userID string) (*models.Student, error) {
	for _, s := range r.students {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r *fakeUserRepo) GetStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	s, err := r.GetStudentByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.StudentProfile{Student: *s, User: *r.users[userID]}, nil
}

func (r *fakeUserRepo) PIDExists(_ context.Context, pid string) (bool, error) {
	for _, s := range r.students {
		if s.PID == pid {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ListCohortStudentIDs(_ context.Context, semester int, division string) ([]string, error) {
	var cohort []*models.Student
	for _, s := range r.students {
		if s.CurrentSemester == semester && s.Division == division {
			cohort = append(cohort, s)
		}
	}
	sort.Slice(cohort, func(i, j int) bool { return cohort[i].RollNumber < cohort[j].RollNumber })

	ids := make([]string, 0, len(cohort))
	for _, s := range cohort {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func (r *fakeUserRepo) CreateTeacher(_ context.Context, t *models.Teacher) error {
	if t.ID == "" {
		t.ID = r.nextID("teacher")
	}
	cp := *t
	r.teachers[t.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetTeacherByUserID(_ context.Context, userID string) (*models.Teacher, error) {
	for _, t := range r.teachers {
		if t.UserID == userID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperrors.ErrTeacherNotFound
}

func (r *fakeUserRepo) GetTeacherByID(_ context.Context, id string) (*models.Teacher, error) {
	t, ok := r.teachers[id]
	if !ok {
		return nil, apperrors.ErrTeacherNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeUserRepo) MissingTeacherIDs(_ context.Context, ids []string) ([]string, error) {
	var missing []string
	for _, id := range ids {
		if _, ok := r.teachers[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// addStudent registers a student user directly
func (r *fakeUserRepo) addStudent(rollNumber string, semester int, division string) *models.Student {
	u := &models.User{Email: rollNumber + "@college.edu", FullName: "Student " + rollNumber, Role: models.RoleStudent}
	_ = r.CreateUser(context.Background(), u)
	s := &models.Student{
		UserID:          u.ID,
		RollNumber:      rollNumber,
		PID:             "PID" + rollNumber,
		CurrentSemester: semester,
		CurrentYear:     models.YearTE,
		Division:        division,
		AcademicYear:    "2024-2025",
	}
	_ = r.CreateStudent(context.Background(), s)
	return s
}

type fakeCatalogRepo struct {
	subjects        map[string]*models.Subject
	teacherSubjects map[string]*models.TeacherSubject
	seq             int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		subjects:        map[string]*models.Subject{},
		teacherSubjects: map[string]*models.TeacherSubject{},
	}
}

func (r *fakeCatalogRepo) CreateSubject(_ context.Context, s *models.Subject) error {
	for _, existing := range r.subjects {
		if existing.SubjectCode == s.SubjectCode {
			return apperrors.NewConflictError("subject code already exists")
		}
	}
	r.seq++
	if s.ID == "" {
		s.ID = fmt.Sprintf("subject-%d", r.seq)
	}
	cp := *s
	r.subjects[s.ID] = &cp
	return nil
}

func (r *fakeCatalogRepo) GetSubjectByID(_ context.Context, id string) (*models.Subject, error) {
	s, ok := r.subjects[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeCatalogRepo) ListSubjects(context.Context) ([]models.Subject, error) {
	out := []models.Subject{}
	for _, s := range r.subjects {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out, nil
}

func (r *fakeCatalogRepo) CreateTeacherSubject(_ context.Context, ts *models.TeacherSubject) error {
	for _, e := range r.teacherSubjects {
		if e.TeacherID == ts.TeacherID && e.SubjectID == ts.SubjectID &&
			e.Division == ts.Division && e.AcademicYear == ts.AcademicYear {
			return apperrors.NewConflictError("teacher is already assigned to this subject")
		}
	}
	r.seq++
	if ts.ID == "" {
		ts.ID = fmt.Sprintf("ts-%d", r.seq)
	}
	cp := *ts
	r.teacherSubjects[ts.ID] = &cp
	return nil
}

func (r *fakeCatalogRepo) GetTeacherSubjectByID(_ context.Context, id string) (*models.TeacherSubject, error) {
	ts, ok := r.teacherSubjects[id]
	if !ok {
		return nil, apperrors.ErrTeacherSubjectNotFound
	}
	cp := *ts
	return &cp, nil
}

func (r *fakeCatalogRepo) ListTeacherSubjectDetails(_ context.Context, teacherID string) ([]models.TeacherSubjectDetail, error) {
	out := []models.TeacherSubjectDetail{}
	for _, ts := range r.teacherSubjects {
		if ts.TeacherID != teacherID {
			continue
		}
		s := r.subjects[ts.SubjectID]
		out = append(out, models.TeacherSubjectDetail{
			ID:           ts.ID,
			SubjectID:    ts.SubjectID,
			Division:     ts.Division,
			AcademicYear: ts.AcademicYear,
			SubjectName:  s.SubjectName,
			SubjectCode:  s.SubjectCode,
			Semester:     s.Semester,
			Year:         s.Year,
		})
	}
	return out, nil
}

type fakeTaskRepo struct {
	tasks   map[string]*models.Task
	catalog *fakeCatalogRepo
	seq     int
}

func newFakeTaskRepo(catalog *fakeCatalogRepo) *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*models.Task{}, catalog: catalog}
}

func (r *fakeTaskRepo) CreateTask(_ context.Context, t *models.Task) error {
	r.seq++
	if t.ID == "" {
		t.ID = fmt.Sprintf("task-%d", r.seq)
	}
	t.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, apperrors.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) ListTasks(_ context.Context, f models.TaskFilter) ([]models.TaskListRow, error) {
	out := []models.TaskListRow{}
	for _, t := range r.tasks {
		ts := r.catalog.teacherSubjects[t.TeacherSubjectID]
		if ts == nil || t.Semester != f.Semester || ts.SubjectID != f.SubjectID || ts.Division != f.Division {
			continue
		}
		out = append(out, models.TaskListRow{
			TaskID: t.ID, Title: t.Title, TaskType: t.TaskType, DueDate: t.DueDate,
			TotalMarks: t.TotalMarks, CreatedAt: t.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeSubmissionRepo struct {
	subs    map[string]*models.Submission
	batches []int
	seq     int

	failOnBatch int // 1-based; 0 disables
	markErr     error
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: map[string]*models.Submission{}}
}

func (r *fakeSubmissionRepo) CreatePending(_ context.Context, taskID string, studentIDs []string) (int64, error) {
	r.batches = append(r.batches, len(studentIDs))
	if r.failOnBatch == len(r.batches) {
		return 0, fmt.Errorf("insert failed")
	}
	var n int64
	for _, sid := range studentIDs {
		if r.find(taskID, sid) != nil {
			continue
		}
		r.seq++
		id := fmt.Sprintf("sub-%d", r.seq)
		r.subs[id] = &models.Submission{ID: id, TaskID: taskID, StudentID: sid, Status: models.SubmissionPending}
		n++
	}
	return n, nil
}

func (r *fakeSubmissionRepo) find(taskID, studentID string) *models.Submission {
	for _, s := range r.subs {
		if s.TaskID == taskID && s.StudentID == studentID {
			return s
		}
	}
	return nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*models.Submission, error) {
	s, ok := r.subs[id]
	if !ok {
		return nil, apperrors.ErrSubmissionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.Submission, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeSubmissionRepo) GetByTaskAndStudentForUpdate(_ context.Context, taskID, studentID string) (*models.Submission, error) {
	s := r.find(taskID, studentID)
	if s == nil {
		return nil, apperrors.ErrSubmissionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) GetByFilePath(_ context.Context, path string) (*models.Submission, error) {
	for _, s := range r.subs {
		if s.FilePath == path {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.ErrSubmissionNotFound
}

func (r *fakeSubmissionRepo) MarkSubmitted(_ context.Context, id, path string, at time.Time) (*models.Submission, error) {
	if r.markErr != nil {
		return nil, r.markErr
	}
	s, ok := r.subs[id]
	if !ok {
		return nil, apperrors.ErrSubmissionNotFound
	}
	s.FilePath = path
	s.SubmissionDate = &at
	s.Status = models.SubmissionSubmitted
	cp := *s
	return &cp, nil
}

func (r *fakeSubmissionRepo) SetStatus(_ context.Context, id string, status models.SubmissionStatus) error {
	s, ok := r.subs[id]
	if !ok {
		return apperrors.ErrSubmissionNotFound
	}
	s.Status = status
	return nil
}

type fakeMarkRepo struct {
	marks []models.Mark
	seq   int
}

func (r *fakeMarkRepo) DeleteBySubmission(_ context.Context, submissionID string) (int64, error) {
	kept := r.marks[:0]
	var removed int64
	for _, m := range r.marks {
		if m.SubmissionID == submissionID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	r.marks = kept
	return removed, nil
}

func (r *fakeMarkRepo) InsertMarks(_ context.Context, marks []*models.Mark) ([]models.Mark, error) {
	out := make([]models.Mark, 0, len(marks))
	for _, m := range marks {
		r.seq++
		if m.ID == "" {
			m.ID = fmt.Sprintf("mark-%d", r.seq)
		}
		r.marks = append(r.marks, *m)
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMarkRepo) ListBySubmission(_ context.Context, submissionID string) ([]models.Mark, error) {
	out := []models.Mark{}
	for _, m := range r.marks {
		if m.SubmissionID == submissionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionNumber < out[j].QuestionNumber })
	return out, nil
}

type fakeReportRepo struct {
	lastFilter    models.RosterFilter
	lastStudentID string
	lastStatus    models.SubmissionStatus

	studentTasks []models.StudentTaskRow
	dashboard    []models.DashboardRow
	roster       []models.StudentListRow
	report       []models.ReportRow
}

func (r *fakeReportRepo) StudentTasks(_ context.Context, studentID string, status models.SubmissionStatus) ([]models.StudentTaskRow, error) {
	r.lastStudentID, r.lastStatus = studentID, status
	return r.studentTasks, nil
}

func (r *fakeReportRepo) TeacherDashboard(_ context.Context, f models.RosterFilter) ([]models.DashboardRow, error) {
	r.lastFilter = f
	return r.dashboard, nil
}

func (r *fakeReportRepo) StudentsForTask(_ context.Context, f models.RosterFilter) ([]models.StudentListRow, error) {
	r.lastFilter = f
	return r.roster, nil
}

func (r *fakeReportRepo) TaskReport(context.Context, string) ([]models.ReportRow, error) {
	return r.report, nil
}

type fakeObject struct {
	data []byte
	info filestorage.ObjectInfo
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	deleted []string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]fakeObject{}}
}

func (s *fakeStore) Put(_ context.Context, key string, r io.Reader, contentType, filename string) (*filestorage.ObjectInfo, error) {
	if s.putErr != nil {
		return nil, s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/pdf"
	}
	info := filestorage.ObjectInfo{Key: key, ContentType: contentType, Filename: filename, Size: int64(len(data)), StoredAt: time.Now()}
	s.mu.Lock()
	s.objects[key] = fakeObject{data: data, info: info}
	s.mu.Unlock()
	return &info, nil
}

func (s *fakeStore) Get(_ context.Context, key string) (io.ReadCloser, *filestorage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, nil, apperrors.ErrFileNotFound
	}
	info := obj.info
	return io.NopCloser(bytes.NewReader(obj.data)), &info, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}
