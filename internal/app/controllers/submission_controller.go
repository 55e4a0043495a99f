package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/services"
	"github.com/taskgrade/backend/internal/middleware"
)

// SubmissionController handles submission files
type SubmissionController struct {
	submissionService services.SubmissionService
}

// NewSubmissionController creates a new SubmissionController
func NewSubmissionController(submissionService services.SubmissionService) *SubmissionController {
	return &SubmissionController{submissionService: submissionService}
}

// Upload godoc
// @Summary Upload a submission
// @Description Stores the file and marks the student's submission for the task as submitted
// @Tags student
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Submission file"
// @Param taskId formData string true "Task ID"
// @Param studentId formData string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.UploadSubmissionResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No submission for task and student"
// @Failure 409 {object} dto.ErrorResponse "Submission already graded"
// @Router /student/submission/upload [post]
func (c *SubmissionController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleFormFileError(ctx, "file", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.submissionService.Upload(ctx.Request.Context(), &dto.UploadSubmissionRequest{
		TaskID:      ctx.PostForm("taskId"),
		StudentID:   ctx.PostForm("studentId"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "File uploaded successfully"))
}

// File godoc
// @Summary Download a submission file
// @Tags student
// @Produce octet-stream
// @Param key path string true "Storage key"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Router /student/file/{key} [get]
func (c *SubmissionController) File(ctx *gin.Context) {
	rc, info, err := c.submissionService.Download(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer rc.Close()

	headers := map[string]string{}
	if info.Filename != "" {
		headers["Content-Disposition"] = fmt.Sprintf("inline; filename=%q", info.Filename)
	}
	ctx.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, headers)
}

// IDByFilePath godoc
// @Summary Find a submission by its file path
// @Tags submission
// @Produce json
// @Param filePath path string true "Stored file path"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionLookupResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /submission/id-by-filepath/{filePath} [get]
func (c *SubmissionController) IDByFilePath(ctx *gin.Context) {
	found, err := c.submissionService.FindByFilePath(ctx.Request.Context(), ctx.Param("filePath"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(found, ""))
}
