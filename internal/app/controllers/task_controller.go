package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/services"
	"github.com/taskgrade/backend/internal/middleware"
)

// TaskController handles task creation and listing
type TaskController struct {
	taskService services.TaskService
}

// NewTaskController creates a new TaskController
func NewTaskController(taskService services.TaskService) *TaskController {
	return &TaskController{taskService: taskService}
}

// AddTask godoc
// @Summary Create a task
// @Description Creates a task and one pending submission for every student of the semester and division
// @Tags teacher
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task"
// @Success 201 {object} dto.APIResponse{data=dto.CreateTaskResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Teacher subject not found"
// @Router /teacher/addTask [post]
func (c *TaskController) AddTask(ctx *gin.Context) {
	var req dto.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.taskService.CreateTask(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Task added successfully and pending submissions created"))
}

// ListTasks godoc
// @Summary List tasks
// @Description Tasks of a semester for a subject and division, oldest first
// @Tags teacher
// @Produce json
// @Param semester query int true "Semester"
// @Param subjectId query string true "Subject ID"
// @Param division query string true "Division"
// @Success 200 {object} dto.APIResponse{data=[]models.TaskListRow}
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/tasks [get]
// @Router /tasks/by-filters [get]
func (c *TaskController) ListTasks(ctx *gin.Context) {
	var query dto.TaskFilterQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	tasks, err := c.taskService.ListTasks(ctx.Request.Context(), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tasks, ""))
}
