package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/middleware"
)

// documentHandler serves generated transfer documents.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
}

// newDocumentHandler creates a new documentHandler.
func newDocumentHandler(ds portssvc.DocumentSvcFacade) *documentHandler {
	return &documentHandler{documentService: ds}
}

// registerDocumentRoutes registers all document routes.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := newDocumentHandler(documentService)

	documents := rg.Group("/documents")
	{
		documents.GET("/transfers/:id/receipt", h.getTransferReceipt)
	}
}

// getTransferReceipt godoc
// @Summary Transfer receipt PDF
// @Description Renders a PDF receipt for one transfer, with a verification QR code.
// @Tags documents
// @Produce application/pdf
// @Param id path string true "Transfer ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /documents/transfers/{id}/receipt [get]
func (h *documentHandler) getTransferReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("id")

	pdfBytes, err := h.documentService.GenerateTransferReceipt(c.Request.Context(), transferID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transfer not found"})
			return
		}
		logger.Error("Failed to generate receipt", slog.String("transfer_id", transferID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate receipt"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", transferID))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
