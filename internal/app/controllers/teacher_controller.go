package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/services"
	"github.com/taskgrade/backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TeacherController serves the teacher dashboards, reports and grading
type TeacherController struct {
	reportService  services.ReportService
	gradingService services.GradingService
}

// NewTeacherController creates a new TeacherController
func NewTeacherController(reportService services.ReportService, gradingService services.GradingService) *TeacherController {
	return &TeacherController{
		reportService:  reportService,
		gradingService: gradingService,
	}
}

// Dashboard godoc
// @Summary Summed marks per student for a task
// @Tags teacher
// @Produce json
// @Param semester query int true "Semester"
// @Param division query string true "Division"
// @Param taskId query string true "Task ID"
// @Param subjectId query string false "Subject ID"
// @Success 200 {object} dto.APIResponse{data=[]models.DashboardRow}
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/dashboard [get]
func (c *TeacherController) Dashboard(ctx *gin.Context) {
	var query dto.RosterQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	rows, err := c.reportService.TeacherDashboard(ctx.Request.Context(), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rows, ""))
}

// StudentsList godoc
// @Summary Task roster with submissions, marks and comments
// @Tags teacher
// @Produce json
// @Param semester query int true "Semester"
// @Param division query string true "Division"
// @Param taskId query string true "Task ID"
// @Param subjectId query string false "Subject ID"
// @Success 200 {object} dto.APIResponse{data=[]models.StudentListRow}
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/students-list [get]
func (c *TeacherController) StudentsList(ctx *gin.Context) {
	var query dto.RosterQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	rows, err := c.reportService.StudentsForTask(ctx.Request.Context(), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rows, ""))
}

// GenerateReport godoc
// @Summary Per-question report of a task
// @Description Returns JSON rows, or an XLSX workbook when format=xlsx
// @Tags teacher
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param taskId path string true "Task ID"
// @Param format query string false "xlsx for a workbook"
// @Success 200 {object} dto.APIResponse{data=[]models.ReportRow}
// @Failure 404 {object} dto.ErrorResponse "Task not found"
// @Router /teacher/generate-report/{taskId} [get]
func (c *TeacherController) GenerateReport(ctx *gin.Context) {
	taskID := ctx.Param("taskId")

	if ctx.Query("format") == "xlsx" {
		var buf bytes.Buffer
		task, err := c.reportService.WriteTaskReportWorkbook(ctx.Request.Context(), taskID, &buf)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename(task.Title, task.ID)))
		ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return
	}

	rows, err := c.reportService.TaskReport(ctx.Request.Context(), taskID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rows, ""))
}

// SaveMarks godoc
// @Summary Replace the marks of a submission
// @Description All entries must reference one submission. Previous marks of that submission are removed.
// @Tags teacher
// @Accept json
// @Produce json
// @Param request body dto.SaveMarksRequest true "Marks"
// @Success 200 {object} dto.APIResponse{data=[]models.Mark}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Submission or teacher not found"
// @Router /teacher/save-marks [post]
func (c *TeacherController) SaveMarks(ctx *gin.Context) {
	var req dto.SaveMarksRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	saved, err := c.gradingService.SaveMarks(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(saved, "Marks saved successfully"))
}

// reportFilename builds a download name from the task title
func reportFilename(title, id string) string {
	name := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			name = append(name, r)
		case r == ' ':
			name = append(name, '_')
		}
	}
	if len(name) == 0 {
		return "report-" + id + ".xlsx"
	}
	return string(name) + "-report.xlsx"
}
