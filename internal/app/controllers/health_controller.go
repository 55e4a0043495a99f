package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/pkg/metrics"
)

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness checks
type HealthController struct {
	db Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := c.db.Ping(pingCtx)
	metrics.ObserveDBPing(time.Since(start))
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Database unreachable").WithDetails(err.Error())
		ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(detail))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
}
