package repositories

import (
	"context"

	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/repositories/user"
	"github.com/taskgrade/backend/internal/db"
)

// IUserRepository defines the interface for user, student and teacher persistence
type IUserRepository interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByEmailFold(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CountUsers(ctx context.Context) (int64, error)

	// Students
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudentByUserID(ctx context.Context, userID string) (*models.Student, error)
	GetStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error)
	PIDExists(ctx context.Context, pid string) (bool, error)
	ListCohortStudentIDs(ctx context.Context, semester int, division string) ([]string, error)

	// Teachers
	CreateTeacher(ctx context.Context, teacher *models.Teacher) error
	GetTeacherByUserID(ctx context.Context, userID string) (*models.Teacher, error)
	GetTeacherByID(ctx context.Context, id string) (*models.Teacher, error)
	MissingTeacherIDs(ctx context.Context, ids []string) ([]string, error)
}

// UserRepository combines all user-related repositories
type UserRepository struct {
	common  *user.CommonRepository
	student *user.StudentRepository
	teacher *user.TeacherRepository
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{
		common:  user.NewRepository(database),
		student: user.NewStudentRepository(database),
		teacher: user.NewTeacherRepository(database),
	}
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) error {
	return r.common.CreateUser(ctx, u)
}

// GetUserByEmail retrieves a user by exact email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.common.GetUserByEmail(ctx, email)
}

// GetUserByEmailFold retrieves a user by email ignoring case
func (r *UserRepository) GetUserByEmailFold(ctx context.Context, email string) (*models.User, error) {
	return r.common.GetUserByEmailFold(ctx, email)
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.common.EmailExists(ctx, email)
}

// CountUsers returns the number of users
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.common.CountUsers(ctx)
}

// CreateStudent creates a new student
func (r *UserRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	return r.student.CreateStudent(ctx, student)
}

// GetStudentByUserID retrieves a student by user ID
func (r *UserRepository) GetStudentByUserID(ctx context.Context, userID string) (*models.Student, error) {
	return r.student.GetStudentByUserID(ctx, userID)
}

// GetStudentProfile retrieves a student joined with its user
func (r *UserRepository) GetStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	return r.student.GetStudentProfile(ctx, userID)
}

// PIDExists checks if a pid already exists
func (r *UserRepository) PIDExists(ctx context.Context, pid string) (bool, error) {
	return r.student.PIDExists(ctx, pid)
}

// ListCohortStudentIDs lists student ids for a semester and division
func (r *UserRepository) ListCohortStudentIDs(ctx context.Context, semester int, division string) ([]string, error) {
	return r.student.ListCohortStudentIDs(ctx, semester, division)
}

// CreateTeacher creates a new teacher
func (r *UserRepository) CreateTeacher(ctx context.Context, teacher *models.Teacher) error {
	return r.teacher.CreateTeacher(ctx, teacher)
}

// GetTeacherByUserID retrieves a teacher by user ID
func (r *UserRepository) GetTeacherByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	return r.teacher.GetTeacherByUserID(ctx, userID)
}

// GetTeacherByID retrieves a teacher by ID
func (r *UserRepository) GetTeacherByID(ctx context.Context, id string) (*models.Teacher, error) {
	return r.teacher.GetTeacherByID(ctx, id)
}

// MissingTeacherIDs returns the ids that do not belong to any teacher
func (r *UserRepository) MissingTeacherIDs(ctx context.Context, ids []string) ([]string, error) {
	return r.teacher.MissingTeacherIDs(ctx, ids)
}
