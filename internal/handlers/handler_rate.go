package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fxcache/currency_rates_app/internal/apperrors"
	portssvc "github.com/fxcache/currency_rates_app/internal/core/ports/services"
	"github.com/fxcache/currency_rates_app/internal/core/services"
	"github.com/fxcache/currency_rates_app/internal/dto"
	"github.com/fxcache/currency_rates_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// genericErrorBody is returned for every failure that is not a validation
// error. Upstream and store errors are logged with full context but never
// leaked to the caller.
const genericErrorBody = "An unexpected error occurred"

// rateHandler handles HTTP requests related to currency rates.
type rateHandler struct {
	rateService portssvc.RateSvcFacade
}

// newRateHandler creates a new rateHandler.
func newRateHandler(rs portssvc.RateSvcFacade) *rateHandler {
	return &rateHandler{
		rateService: rs,
	}
}

// registerRateRoutes registers routes related to currency rates.
func registerRateRoutes(r *gin.Engine, rateService portssvc.RateSvcFacade) {
	h := newRateHandler(rateService)

	r.GET("/latest", h.getLatestRate)
	r.GET("/:interval", h.getIntervalRate)
}

// getLatestRate godoc
// @Summary Get the latest rate
// @Description Returns today's rate for the target currency, fetching it from the provider on a cache miss
// @Tags rates
// @Produce json
// @Success 200 {object} dto.LatestRateResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Router /latest [get]
func (h *rateHandler) getLatestRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rate, err := h.rateService.ResolveLatest(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateFormat) {
			logger.Warn("Validation error resolving latest rate", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to resolve latest rate", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, gin.H{"error": genericErrorBody})
		return
	}

	c.JSON(http.StatusOK, dto.ToLatestRateResponse(rate))
}

// getIntervalRate godoc
// @Summary Get the average rate over a date interval
// @Description Resolves every daily rate in {start}..{end} (served from the cache when complete, fetched upstream otherwise) and returns their average
// @Tags rates
// @Produce json
// @Param interval path string true "Inclusive date interval, e.g. 2023-01-01..2023-01-31"
// @Success 200 {object} dto.IntervalRateResponse
// @Failure 400 {object} map[string]string "Invalid date format or range"
// @Router /{interval} [get]
func (h *rateHandler) getIntervalRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	startText, endText, ok := strings.Cut(c.Param("interval"), "..")
	if !ok {
		logger.Warn("Malformed interval path segment", slog.String("interval", c.Param("interval")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval must be of the form start..end"})
		return
	}

	logger = logger.With(slog.String("start_date", startText), slog.String("end_date", endText))

	interval, err := h.rateService.ResolveInterval(c.Request.Context(), startText, endText)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateFormat) || errors.Is(err, apperrors.ErrInvalidRange) {
			logger.Warn("Validation error resolving interval", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to resolve interval", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, gin.H{"error": genericErrorBody})
		return
	}

	average := services.AverageRate(interval.Rates)
	c.JSON(http.StatusOK, dto.ToIntervalRateResponse(interval, average))
}
