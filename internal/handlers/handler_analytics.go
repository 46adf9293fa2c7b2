package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/middleware"
)

// analyticsHandler serves the dashboard analytics and risk assessments.
type analyticsHandler struct {
	riskService portssvc.RiskSvcFacade
}

// newAnalyticsHandler creates a new analyticsHandler.
func newAnalyticsHandler(rs portssvc.RiskSvcFacade) *analyticsHandler {
	return &analyticsHandler{riskService: rs}
}

// registerAnalyticsRoutes registers all analytics routes.
func registerAnalyticsRoutes(rg *gin.RouterGroup, riskService portssvc.RiskSvcFacade) {
	h := newAnalyticsHandler(riskService)

	analytics := rg.Group("/analytics")
	{
		analytics.GET("/summary", h.getSummary)
		analytics.GET("/risk/:id", h.assessTransfer)
	}
}

// getSummary godoc
// @Summary Analytics summary
// @Description Aggregates volume, status and risk statistics across all transfers.
// @Tags analytics
// @Produce json
// @Success 200 {object} dto.AnalyticsSummaryResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /analytics/summary [get]
func (h *analyticsHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.riskService.GetAnalyticsSummary(c.Request.Context())
	if err != nil {
		logger.Error("Failed to compute analytics summary", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to compute analytics summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// assessTransfer godoc
// @Summary Risk assessment for a transfer
// @Description Scores one transfer and returns the contributing risk factors.
// @Tags analytics
// @Produce json
// @Param id path string true "Transfer ID"
// @Success 200 {object} domain.RiskAssessment
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /analytics/risk/{id} [get]
func (h *analyticsHandler) assessTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("id")

	assessment, err := h.riskService.AssessTransferByID(c.Request.Context(), transferID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transfer not found"})
			return
		}
		logger.Error("Failed to assess transfer", slog.String("transfer_id", transferID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to assess transfer"})
		return
	}

	c.JSON(http.StatusOK, assessment)
}
