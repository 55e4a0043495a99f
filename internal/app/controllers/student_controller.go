package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/services"
	"github.com/taskgrade/backend/internal/middleware"
)

// StudentController serves the student views
type StudentController struct {
	reportService services.ReportService
}

// NewStudentController creates a new StudentController
func NewStudentController(reportService services.ReportService) *StudentController {
	return &StudentController{reportService: reportService}
}

// Dashboard godoc
// @Summary Student profile
// @Tags student
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /student/dashboard/{userId} [get]
func (c *StudentController) Dashboard(ctx *gin.Context) {
	profile, err := c.reportService.StudentDashboard(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile, ""))
}

// Tasks godoc
// @Summary Student tasks by submission status
// @Tags student
// @Produce json
// @Param status path string true "pending, submitted or graded"
// @Param studentId query string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.StudentTaskRow}
// @Failure 400 {object} dto.ErrorResponse
// @Router /student/tasks/{status} [get]
func (c *StudentController) Tasks(ctx *gin.Context) {
	rows, err := c.reportService.StudentTasks(ctx.Request.Context(), ctx.Query("studentId"), ctx.Param("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rows, ""))
}
