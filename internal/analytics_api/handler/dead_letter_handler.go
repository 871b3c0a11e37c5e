package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fxstream-enrichment-pipeline/internal/analytics_api/service"
	"github.com/fxstream-enrichment-pipeline/internal/domain/deadletter"
)

// DeadLetterHandler exposes the dead-letter archive for operator reporting
type DeadLetterHandler struct {
	deadLetterService service.DeadLetterService
	logger            *slog.Logger
}

// NewDeadLetterHandler creates a new dead-letter handler
func NewDeadLetterHandler(logger *slog.Logger, deadLetterService service.DeadLetterService) *DeadLetterHandler {
	return &DeadLetterHandler{
		deadLetterService: deadLetterService,
		logger:            logger,
	}
}

// List returns a paginated view of archived dead-letter records
func (h *DeadLetterHandler) List(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	records, total, err := h.deadLetterService.List(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list dead-letter records", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]DeadLetterResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapDeadLetterToResponse(record))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// mapDeadLetterToResponse maps an archive record to its response DTO
func mapDeadLetterToResponse(record *deadletter.Record) DeadLetterResponse {
	return DeadLetterResponse{
		EventKey:       record.EventKey,
		Payload:        record.Payload,
		Reason:         string(record.Reason),
		Attempts:       record.Attempts,
		FirstSeenAt:    record.FirstSeenAt.Format(time.RFC3339),
		DeadLetteredAt: record.DeadLetteredAt.Format(time.RFC3339),
	}
}
