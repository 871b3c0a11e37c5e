package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/fxstream-enrichment-pipeline/internal/analytics_api/service"
)

// AnalyticsHandler handles HTTP requests for the windowed analytics views
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	logger           *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(logger *slog.Logger, analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// RevenueSummary returns total USD revenue and count for the window
func (h *AnalyticsHandler) RevenueSummary(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	summary, err := h.analyticsService.RevenueSummary(c.Request.Context(), window)
	if err != nil {
		h.logger.Error("Failed to compute revenue summary", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, summary)
}

// RevenueByCountry returns revenue grouped by country for the window
func (h *AnalyticsHandler) RevenueByCountry(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	rows, err := h.analyticsService.RevenueByCountry(c.Request.Context(), window)
	if err != nil {
		h.logger.Error("Failed to compute revenue by country", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, rows)
}

// RevenueByCurrency returns revenue grouped by source currency for the window
func (h *AnalyticsHandler) RevenueByCurrency(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	rows, err := h.analyticsService.RevenueByCurrency(c.Request.Context(), window)
	if err != nil {
		h.logger.Error("Failed to compute revenue by currency", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, rows)
}

// TopUsers returns the highest-revenue users for the window
func (h *AnalyticsHandler) TopUsers(c *gin.Context) {
	var params TopUsersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	window, err := parseWindowString(params.Window)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	rows, err := h.analyticsService.TopUsers(c.Request.Context(), window, params.Limit)
	if err != nil {
		h.logger.Error("Failed to compute top users", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, rows)
}

// HourlyActivity returns per-hour transaction counts and revenue for the window
func (h *AnalyticsHandler) HourlyActivity(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	rows, err := h.analyticsService.HourlyActivity(c.Request.Context(), window)
	if err != nil {
		h.logger.Error("Failed to compute hourly activity", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, rows)
}

// Stats returns the aggregate overview for the window
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	stats, err := h.analyticsService.Stats(c.Request.Context(), window)
	if err != nil {
		h.logger.Error("Failed to compute stats", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, stats)
}

// FxRateTrends returns observed rate samples within the window
func (h *AnalyticsHandler) FxRateTrends(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	points, err := h.analyticsService.FxRateTrends(c.Request.Context(), window)
	if err != nil {
		h.logger.Error("Failed to compute fx rate trends", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, points)
}
