package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
	"github.com/k3rn3l808/swift_sim_backend/internal/middleware"
)

// transferHandler handles HTTP requests related to transfers.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

// newTransferHandler creates a new transferHandler.
func newTransferHandler(ts portssvc.TransferSvcFacade) *transferHandler {
	return &transferHandler{transferService: ts}
}

// RegisterTransferRoutes registers all transfer-related routes.
func RegisterTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	registerBindings()
	h := newTransferHandler(transferService)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.createTransfer)
		transfers.GET("", h.listTransfers)
		transfers.GET("/stats", h.getTransferStats)
		transfers.GET("/:id", h.getTransfer)
		transfers.POST("/action", h.applyAction)
		transfers.POST("/bulk-action", h.applyBulkAction)
		transfers.POST("/:id/advance", h.advanceStage)
		transfers.POST("/:id/auto-progression", h.toggleAutoProgression)
	}
}

// transferErrorStatus maps service errors onto HTTP status codes.
func transferErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrTerminalStage), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// createTransfer godoc
// @Summary Create a transfer
// @Description Books a new wire transfer and starts its pipeline.
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body dto.CreateTransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers [post]
func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for create transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	transfer, err := h.transferService.CreateTransfer(c.Request.Context(), req, userID)
	if err != nil {
		status := transferErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to create transfer", slog.String("error", err.Error()))
			c.JSON(status, ErrorResponse{Error: "Failed to create transfer"})
			return
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransferResponse(transfer))
}

// listTransfers godoc
// @Summary List transfers
// @Description Lists transfers, newest first, optionally filtered by status and type.
// @Tags transfers
// @Produce json
// @Param status query string false "Status filter, or 'all'"
// @Param transfer_type query string false "Transfer type filter, or 'all'"
// @Param limit query int false "Max results" default(100)
// @Success 200 {array} dto.TransferResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers [get]
func (h *transferHandler) listTransfers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransfersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	transfers, err := h.transferService.ListTransfers(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list transfers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list transfers"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponses(transfers))
}

// getTransferStats godoc
// @Summary Transfer statistics
// @Description Aggregate counts and amounts across all transfers.
// @Tags transfers
// @Produce json
// @Success 200 {object} dto.TransferStatsResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/stats [get]
func (h *transferHandler) getTransferStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	stats, err := h.transferService.GetTransferStats(c.Request.Context())
	if err != nil {
		logger.Error("Failed to compute transfer stats", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to compute transfer stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// getTransfer godoc
// @Summary Get a transfer
// @Description Retrieves one transfer with its full stage progress and SWIFT logs.
// @Tags transfers
// @Produce json
// @Param id path string true "Transfer ID"
// @Success 200 {object} dto.TransferResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/{id} [get]
func (h *transferHandler) getTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("id")

	transfer, err := h.transferService.GetTransferByID(c.Request.Context(), transferID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transfer not found"})
			return
		}
		logger.Error("Failed to get transfer", slog.String("transfer_id", transferID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve transfer"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

// advanceStage godoc
// @Summary Advance a transfer by one stage
// @Description Moves the transfer forward one pipeline stage. Admin or officer only.
// @Tags transfers
// @Produce json
// @Param id path string true "Transfer ID"
// @Success 200 {object} dto.AdvanceStageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Transfer is at a terminal stage"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/{id}/advance [post]
func (h *transferHandler) advanceStage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.transferService.AdvanceStage(c.Request.Context(), transferID, userID)
	if err != nil {
		status := transferErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to advance transfer", slog.String("transfer_id", transferID), slog.String("error", err.Error()))
			c.JSON(status, ErrorResponse{Error: "Failed to advance transfer"})
			return
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// applyAction godoc
// @Summary Apply a manual action
// @Description Approves, holds or rejects one transfer. Admin or officer only.
// @Tags transfers
// @Accept json
// @Produce json
// @Param action body dto.TransferActionRequest true "Action details"
// @Success 200 {object} dto.ActionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Transfer already terminal"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/action [post]
func (h *transferHandler) applyAction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.transferService.ApplyAction(c.Request.Context(), req, userID)
	if err != nil {
		status := transferErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to apply action", slog.String("transfer_id", req.TransferID), slog.String("error", err.Error()))
			c.JSON(status, ErrorResponse{Error: "Failed to apply action"})
			return
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// applyBulkAction godoc
// @Summary Apply a manual action to several transfers
// @Description Applies the same action to each listed transfer, continuing past failures.
// @Tags transfers
// @Accept json
// @Produce json
// @Param action body dto.BulkTransferActionRequest true "Bulk action details"
// @Success 200 {object} dto.BulkActionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/bulk-action [post]
func (h *transferHandler) applyBulkAction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BulkTransferActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.transferService.ApplyBulkAction(c.Request.Context(), req, userID)
	if err != nil {
		status := transferErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to apply bulk action", slog.String("error", err.Error()))
			c.JSON(status, ErrorResponse{Error: "Failed to apply bulk action"})
			return
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// toggleAutoProgression godoc
// @Summary Toggle auto-progression
// @Description Enables or disables automatic pipeline progression for one transfer.
// @Tags transfers
// @Accept json
// @Produce json
// @Param id path string true "Transfer ID"
// @Param toggle body dto.ToggleAutoProgressionRequest true "Desired state"
// @Success 200 {object} dto.ToggleAutoProgressionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers/{id}/auto-progression [post]
func (h *transferHandler) toggleAutoProgression(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("id")

	var req dto.ToggleAutoProgressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.transferService.ToggleAutoProgression(c.Request.Context(), transferID, *req.Enabled, userID)
	if err != nil {
		status := transferErrorStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to toggle auto-progression", slog.String("transfer_id", transferID), slog.String("error", err.Error()))
			c.JSON(status, ErrorResponse{Error: "Failed to toggle auto-progression"})
			return
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
