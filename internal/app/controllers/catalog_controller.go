package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/services"
	"github.com/taskgrade/backend/internal/middleware"
)

// CatalogController handles subjects and teacher-subject assignments
type CatalogController struct {
	catalogService services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// CreateSubject godoc
// @Summary Create a subject
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body dto.CreateSubjectRequest true "Subject"
// @Success 201 {object} dto.APIResponse{data=models.Subject}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Duplicate subject code"
// @Router /subjects [post]
func (c *CatalogController) CreateSubject(ctx *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	subject, err := c.catalogService.CreateSubject(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(subject, "Subject created successfully"))
}

// ListSubjects godoc
// @Summary List subjects
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Subject}
// @Router /subjects [get]
func (c *CatalogController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.catalogService.ListSubjects(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subjects, ""))
}

// CreateTeacherSubject godoc
// @Summary Assign a teacher to a subject
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body dto.CreateTeacherSubjectRequest true "Assignment"
// @Success 201 {object} dto.APIResponse{data=models.TeacherSubject}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Teacher or subject not found"
// @Failure 409 {object} dto.ErrorResponse "Assignment already exists"
// @Router /teacher-subjects [post]
func (c *CatalogController) CreateTeacherSubject(ctx *gin.Context) {
	var req dto.CreateTeacherSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	ts, err := c.catalogService.CreateTeacherSubject(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(ts, "Teacher subject created successfully"))
}

// ListTeacherSubjects godoc
// @Summary List a teacher's subjects
// @Tags catalog
// @Produce json
// @Param teacherId query string true "Teacher ID"
// @Success 200 {object} dto.APIResponse{data=[]models.TeacherSubjectDetail}
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher-subjects [get]
func (c *CatalogController) ListTeacherSubjects(ctx *gin.Context) {
	details, err := c.catalogService.ListTeacherSubjects(ctx.Request.Context(), ctx.Query("teacherId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details, ""))
}
