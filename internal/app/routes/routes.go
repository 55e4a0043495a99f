package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/taskgrade/backend/internal/app/controllers"
	"github.com/taskgrade/backend/internal/pkg/metrics"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth       *controllers.AuthController
	Catalog    *controllers.CatalogController
	Task       *controllers.TaskController
	Student    *controllers.StudentController
	Teacher    *controllers.TeacherController
	Submission *controllers.SubmissionController
	Health     *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers) {
	// --- Operational routes ---
	router.GET("/health", c.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// --- Auth routes ---
	auth := router.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/register-teacher", c.Auth.RegisterTeacher)
		auth.POST("/register-students-csv", c.Auth.RegisterStudentsCSV)
	}

	// --- Catalog routes ---
	router.POST("/subjects", c.Catalog.CreateSubject)
	router.GET("/subjects", c.Catalog.ListSubjects)
	router.POST("/teacher-subjects", c.Catalog.CreateTeacherSubject)
	router.GET("/teacher-subjects", c.Catalog.ListTeacherSubjects)

	router.GET("/tasks/by-filters", c.Task.ListTasks)

	// --- Student routes ---
	student := router.Group("/student")
	{
		student.GET("/dashboard/:userId", c.Student.Dashboard)
		student.GET("/tasks/:status", c.Student.Tasks)
		student.POST("/submission/upload", c.Submission.Upload)
		student.GET("/file/:key", c.Submission.File)
	}

	router.GET("/submission/id-by-filepath/:filePath", c.Submission.IDByFilePath)

	// --- Teacher routes ---
	teacher := router.Group("/teacher")
	{
		teacher.POST("/addTask", c.Task.AddTask)
		teacher.GET("/tasks", c.Task.ListTasks)
		teacher.GET("/dashboard", c.Teacher.Dashboard)
		teacher.GET("/students-list", c.Teacher.StudentsList)
		teacher.GET("/generate-report/:taskId", c.Teacher.GenerateReport)
		teacher.POST("/save-marks", c.Teacher.SaveMarks)
	}
}
