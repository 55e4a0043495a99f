package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/db"
	"github.com/taskgrade/backend/internal/pkg/logger"
)

const sumMarks = "COALESCE(SUM(m.marks_obtained), 0)"

// IReportRepository runs the read-only aggregation queries behind dashboards and reports
type IReportRepository interface {
	StudentTasks(ctx context.Context, studentID string, status models.SubmissionStatus) ([]models.StudentTaskRow, error)
	TeacherDashboard(ctx context.Context, filter models.RosterFilter) ([]models.DashboardRow, error)
	StudentsForTask(ctx context.Context, filter models.RosterFilter) ([]models.StudentListRow, error)
	TaskReport(ctx context.Context, taskID string) ([]models.ReportRow, error)
}

// ReportRepository implements IReportRepository on PostgreSQL
type ReportRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(database *db.PostgresDB) *ReportRepository {
	return &ReportRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// StudentTasks lists the tasks in which the student's submission has the given
// status, with summed marks, by due date.
func (r *ReportRepository) StudentTasks(ctx context.Context, studentID string, status models.SubmissionStatus) ([]models.StudentTaskRow, error) {
	sql, args, err := r.sb.Select(
		"t.id", "t.title", "t.task_type", "t.due_date", "t.total_marks",
		"s.status", "s.submission_date", "s.submission_file_path", sumMarks,
	).
		From("tasks t").
		Join("submissions s ON s.task_id = t.id").
		LeftJoin("marks m ON m.submission_id = s.id").
		Where(squirrel.Eq{"s.student_id": studentID, "s.status": status}).
		GroupBy("t.id", "s.id").
		OrderBy("t.due_date", "t.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student tasks query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("studentID", studentID).Str("status", string(status)).Msg("Error executing student tasks query")
		return nil, fmt.Errorf("error listing student tasks: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StudentTaskRow, error) {
		var t models.StudentTaskRow
		err := row.Scan(&t.TaskID, &t.Title, &t.TaskType, &t.DueDate, &t.TotalMarks,
			&t.Submission.Status, &t.Submission.SubmissionDate, &t.Submission.FilePath, &t.ObtainedMarks)
		return t, err
	})
}

// rosterBase selects the cohort's submissions for one task. The subject filter
// applies through the task's teacher-subject assignment.
func (r *ReportRepository) rosterBase(filter models.RosterFilter, columns ...string) squirrel.SelectBuilder {
	q := r.sb.Select(columns...).
		From("students st").
		Join("users u ON u.id = st.user_id").
		Join("submissions s ON s.student_id = st.id").
		LeftJoin("marks m ON m.submission_id = s.id").
		Where(squirrel.Eq{
			"st.current_semester": filter.Semester,
			"st.division":         filter.Division,
			"s.task_id":           filter.TaskID,
		})
	if filter.SubjectID != "" {
		q = q.Join("tasks t ON t.id = s.task_id").
			Join("teacher_subjects ts ON ts.id = t.teacher_subject_id").
			Where(squirrel.Eq{"ts.subject_id": filter.SubjectID})
	}
	return q
}

// TeacherDashboard sums each cohort student's marks for a task, by roll number
func (r *ReportRepository) TeacherDashboard(ctx context.Context, filter models.RosterFilter) ([]models.DashboardRow, error) {
	sql, args, err := r.rosterBase(filter, "st.id", "st.roll_number", "u.full_name", sumMarks).
		GroupBy("st.id", "u.id").
		OrderBy("st.roll_number", "st.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("taskID", filter.TaskID).Msg("Error executing dashboard query")
		return nil, fmt.Errorf("error building dashboard: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DashboardRow, error) {
		var d models.DashboardRow
		err := row.Scan(&d.StudentID, &d.RollNumber, &d.StudentName, &d.TotalMarks)
		return d, err
	})
}

// StudentsForTask returns the roster of a task with submission state, summed
// marks and the distinct comments left on the submission.
func (r *ReportRepository) StudentsForTask(ctx context.Context, filter models.RosterFilter) ([]models.StudentListRow, error) {
	sql, args, err := r.rosterBase(filter,
		"st.roll_number", "u.full_name",
		"s.status", "s.submission_date", "s.submission_file_path",
		sumMarks, "string_agg(DISTINCT m.comments, ', ')",
	).
		GroupBy("st.id", "u.id", "s.id").
		OrderBy("st.roll_number", "st.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build students list query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("taskID", filter.TaskID).Msg("Error executing students list query")
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StudentListRow, error) {
		var s models.StudentListRow
		err := row.Scan(&s.RollNumber, &s.StudentName,
			&s.Submission.Status, &s.Submission.SubmissionDate, &s.Submission.FilePath,
			&s.TotalMarks, &s.Comments)
		return s, err
	})
}

// TaskReport returns one row per (student, question) of a task. Students
// without marks appear once with empty question fields.
func (r *ReportRepository) TaskReport(ctx context.Context, taskID string) ([]models.ReportRow, error) {
	sql, args, err := r.sb.Select(
		"u.full_name", "st.roll_number", "t.title", "t.task_type", "s.submission_date",
		"m.question_number", "m.marks_obtained", "t.total_marks", "m.comments",
	).
		From("tasks t").
		LeftJoin("submissions s ON s.task_id = t.id").
		LeftJoin("marks m ON m.submission_id = s.id").
		LeftJoin("students st ON st.id = s.student_id").
		LeftJoin("users u ON u.id = st.user_id").
		Where(squirrel.Eq{"t.id": taskID}).
		OrderBy("u.full_name", "st.roll_number", "m.question_number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task report query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("taskID", taskID).Msg("Error executing task report query")
		return nil, fmt.Errorf("error generating task report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ReportRow, error) {
		var rr models.ReportRow
		err := row.Scan(&rr.StudentName, &rr.RollNumber, &rr.TaskTitle, &rr.TaskType, &rr.SubmissionDate,
			&rr.QuestionNumber, &rr.MarksObtained, &rr.TotalMarks, &rr.Comments)
		return rr, err
	})
}
