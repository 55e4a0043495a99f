package repositories

import (
	"github.com/taskgrade/backend/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	CatalogRepository    *CatalogRepository
	TaskRepository       *TaskRepository
	SubmissionRepository *SubmissionRepository
	MarkRepository       *MarkRepository
	ReportRepository     *ReportRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(database),
		CatalogRepository:    NewCatalogRepository(database),
		TaskRepository:       NewTaskRepository(database),
		SubmissionRepository: NewSubmissionRepository(database),
		MarkRepository:       NewMarkRepository(database),
		ReportRepository:     NewReportRepository(database),
	}
}
