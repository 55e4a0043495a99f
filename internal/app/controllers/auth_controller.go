// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/services"
	"github.com/taskgrade/backend/internal/middleware"
)

// AuthController handles login and registration
type AuthController struct {
	authService         services.AuthService
	registrationService services.RegistrationService
	logger              zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, registrationService services.RegistrationService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:         authService,
		registrationService: registrationService,
		logger:              logger,
	}
}

// Login handles user login
// @Summary Login
// @Description Checks email, role and credential and returns the user with its student or teacher details
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing fields"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Role mismatch"
// @Failure 404 {object} dto.ErrorResponse "Unknown email"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Login successful"))
}

// RegisterTeacher handles teacher registration
// @Summary Register a teacher
// @Description Creates a teacher user. Without a password the credential is the first 8 characters of the contact number.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterTeacherRequest true "Teacher information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterTeacherResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /auth/register-teacher [post]
func (c *AuthController) RegisterTeacher(ctx *gin.Context) {
	var req dto.RegisterTeacherRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.registrationService.RegisterTeacher(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Teacher registered successfully"))
}

// RegisterStudentsCSV handles bulk student registration
// @Summary Bulk register students
// @Description Imports students from a CSV or XLSX file with columns pid, rollNumber, email, contactNumber and fullName. Rows are imported independently.
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} dto.APIResponse{data=dto.BulkImportResult}
// @Failure 400 {object} dto.ErrorResponse "Missing file or columns"
// @Router /auth/register-students-csv [post]
func (c *AuthController) RegisterStudentsCSV(ctx *gin.Context) {
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

	result, err := c.registrationService.RegisterStudentsBulk(ctx.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int("created", result.SuccessCount).Int("failed", result.FailedCount).Msg("Bulk student registration processed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Student import completed"))
}
