package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/taskgrade/backend/internal/app/models"
	appRepos "github.com/taskgrade/backend/internal/app/repositories"
	"github.com/taskgrade/backend/internal/pkg/auth"
)

// TxRunner runs fn inside a transaction carried by ctx
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type demoUser struct {
	user    appModels.User
	contact string
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

// CreateDefaultData loads the demonstration data set when the users table is empty.
// Every demo user logs in with the first eight digits of its contact number.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, tx TxRunner, hasher *auth.PasswordHasher, lgr zerolog.Logger) error {
	count, err := repos.UserRepository.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		lgr.Info().Int64("users", count).Msg("Users already present, skipping demo data")
		return nil
	}

	lgr.Info().Msg("Creating demo data...")

	users := []demoUser{
		{appModels.User{ID: "user_1", Email: "john.teacher@college.edu", FullName: "John Smith", Role: appModels.RoleTeacher}, "1234567890"},
		{appModels.User{ID: "user_2", Email: "mary.teacher@college.edu", FullName: "Mary Johnson", Role: appModels.RoleTeacher}, "2345678901"},
		{appModels.User{ID: "user_3", Email: "alice.student@college.edu", FullName: "Alice Brown", Role: appModels.RoleStudent}, "3456789012"},
		{appModels.User{ID: "user_4", Email: "bob.student@college.edu", FullName: "Bob Wilson", Role: appModels.RoleStudent}, "4567890123"},
		{appModels.User{ID: "user_5", Email: "admin@college.edu", FullName: "Admin User", Role: appModels.RoleAdmin}, "5678901234"},
	}

	var finalErr error

	for i := range users {
		u := &users[i].user
		u.ContactNumber = strPtr(users[i].contact)
		hash, err := hasher.Hash(auth.DefaultCredential(users[i].contact))
		if err != nil {
			finalErr = errors.Join(finalErr, err)
			continue
		}
		u.PasswordHash = hash
		if err := repos.UserRepository.CreateUser(ctx, u); err != nil {
			lgr.Error().Err(err).Str("email", u.Email).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, t := range []*appModels.Teacher{
		{ID: "teacher_1", UserID: "user_1", Department: "Computer Science"},
		{ID: "teacher_2", UserID: "user_2", Department: "Information Technology"},
	} {
		if err := repos.UserRepository.CreateTeacher(ctx, t); err != nil {
			lgr.Error().Err(err).Str("teacherID", t.ID).Msg("Error creating demo teacher")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, s := range []*appModels.Student{
		{ID: "student_1", UserID: "user_3", RollNumber: "CS2024001", PID: "P2024001", CurrentSemester: 5, CurrentYear: appModels.YearTE, Division: "A", AcademicYear: "2024-2025"},
		{ID: "student_2", UserID: "user_4", RollNumber: "CS2024002", PID: "P2024002", CurrentSemester: 5, CurrentYear: appModels.YearTE, Division: "A", AcademicYear: "2024-2025"},
	} {
		if err := repos.UserRepository.CreateStudent(ctx, s); err != nil {
			lgr.Error().Err(err).Str("studentID", s.ID).Msg("Error creating demo student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, s := range []*appModels.Subject{
		{ID: "subject_1", SubjectCode: "CS301", SubjectName: "Database Management Systems", Semester: 5, Year: appModels.YearTE},
		{ID: "subject_2", SubjectCode: "CS302", SubjectName: "Web Technology", Semester: 5, Year: appModels.YearTE},
	} {
		if err := repos.CatalogRepository.CreateSubject(ctx, s); err != nil {
			lgr.Error().Err(err).Str("subjectCode", s.SubjectCode).Msg("Error creating demo subject")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, ts := range []*appModels.TeacherSubject{
		{ID: "teacherSubject_1", TeacherID: "teacher_1", SubjectID: "subject_1", Division: "A", AcademicYear: "2024-2025"},
		{ID: "teacherSubject_2", TeacherID: "teacher_2", SubjectID: "subject_2", Division: "A", AcademicYear: "2024-2025"},
	} {
		if err := repos.CatalogRepository.CreateTeacherSubject(ctx, ts); err != nil {
			lgr.Error().Err(err).Str("teacherSubjectID", ts.ID).Msg("Error creating demo assignment")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, t := range []*appModels.Task{
		{ID: "task_1", TeacherSubjectID: "teacherSubject_1", TaskType: appModels.TaskTypeISE1, Title: "Database Normalization Assignment", Semester: 5, DueDate: day(2024, time.March, 15), TotalMarks: 20},
		{ID: "task_2", TeacherSubjectID: "teacherSubject_2", TaskType: appModels.TaskTypeISE1, Title: "JavaScript Fundamentals", Semester: 5, DueDate: day(2024, time.March, 20), TotalMarks: 20},
	} {
		if err := repos.TaskRepository.CreateTask(ctx, t); err != nil {
			lgr.Error().Err(err).Str("taskID", t.ID).Msg("Error creating demo task")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if _, err := repos.SubmissionRepository.CreatePending(ctx, t.ID, []string{"student_1", "student_2"}); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	graded := []struct {
		studentID string
		path      string
		at        time.Time
		marks     float64
		comment   string
	}{
		{"student_1", "/submissions/2024/CS2024001_ISE1_DBMS.pdf", day(2024, time.March, 14), 8.5, "Good understanding of normalization concepts"},
		{"student_2", "/submissions/2024/CS2024002_ISE1_DBMS.pdf", day(2024, time.March, 15), 7.5, "Decent attempt, needs improvement in 3NF understanding"},
	}
	for _, g := range graded {
		err := tx.RunInTx(ctx, func(ctx context.Context) error {
			return gradeDemoSubmission(ctx, repos, "task_1", g.studentID, g.path, g.at, g.marks, g.comment)
		})
		if err != nil {
			lgr.Error().Err(err).Str("studentID", g.studentID).Msg("Error grading demo submission")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Int("users", len(users)).Msg("Demo data created")
	}
	return finalErr
}

func gradeDemoSubmission(ctx context.Context, repos *appRepos.Repositories, taskID, studentID, path string, at time.Time, marks float64, comment string) error {
	sub, err := repos.SubmissionRepository.GetByTaskAndStudentForUpdate(ctx, taskID, studentID)
	if err != nil {
		return err
	}
	if _, err := repos.SubmissionRepository.MarkSubmitted(ctx, sub.ID, path, at); err != nil {
		return err
	}
	if _, err := repos.MarkRepository.InsertMarks(ctx, []*appModels.Mark{{
		SubmissionID:   sub.ID,
		QuestionNumber: 1,
		MarksObtained:  marks,
		Comments:       strPtr(comment),
		MarkedBy:       "teacher_1",
		MarkedAt:       day(2024, time.March, 16),
	}}); err != nil {
		return err
	}
	return repos.SubmissionRepository.SetStatus(ctx, sub.ID, appModels.SubmissionGraded)
}
