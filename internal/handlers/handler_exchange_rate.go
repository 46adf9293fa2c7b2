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

// exchangeRateHandler handles HTTP requests for exchange rates and conversions.
type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(rs portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{rateService: rs}
}

// registerExchangeRateRoutes registers all exchange-rate routes.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(rateService)

	rates := rg.Group("/exchange-rates")
	{
		rates.GET("/latest", h.getLatestRates)
		rates.GET("/currencies", h.getSupportedCurrencies)
		rates.POST("/convert", h.convert)
		rates.POST("/convert/bulk", h.convertBulk)
	}
}

// getLatestRates godoc
// @Summary Latest exchange rates
// @Description Returns the latest rates for a base currency, from cache when fresh.
// @Tags exchange-rates
// @Produce json
// @Param base query string false "Base currency" default(USD)
// @Success 200 {object} domain.RateQuote
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /exchange-rates/latest [get]
func (h *exchangeRateHandler) getLatestRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.LatestRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	quote, err := h.rateService.GetLatestRates(c.Request.Context(), params.Base)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to get latest rates", slog.String("base", params.Base), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve exchange rates"})
		return
	}

	c.JSON(http.StatusOK, quote)
}

// getSupportedCurrencies godoc
// @Summary Supported currencies
// @Description Lists the currency codes the simulation supports.
// @Tags exchange-rates
// @Produce json
// @Success 200 {object} map[string][]string
// @Security BearerAuth
// @Router /exchange-rates/currencies [get]
func (h *exchangeRateHandler) getSupportedCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": h.rateService.SupportedCurrencies()})
}

// convert godoc
// @Summary Convert an amount
// @Description Converts an amount between two currencies at the latest rate.
// @Tags exchange-rates
// @Accept json
// @Produce json
// @Param conversion body dto.ConvertRequest true "Conversion details"
// @Success 200 {object} domain.Conversion
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /exchange-rates/convert [post]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	conversion, err := h.rateService.Convert(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to convert amount", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to convert amount"})
		return
	}

	c.JSON(http.StatusOK, conversion)
}

// convertBulk godoc
// @Summary Convert several amounts
// @Description Converts up to 50 amounts in one call.
// @Tags exchange-rates
// @Accept json
// @Produce json
// @Param conversions body dto.BulkConvertRequest true "Conversions"
// @Success 200 {object} map[string][]domain.Conversion
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /exchange-rates/convert/bulk [post]
func (h *exchangeRateHandler) convertBulk(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BulkConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	conversions, err := h.rateService.ConvertBulk(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to convert amounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to convert amounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversions": conversions})
}
