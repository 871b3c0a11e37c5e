package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// WindowParams carries the lookback window of an analytics request.
// The window is a Go duration string ("30m", "24h", "168h").
type WindowParams struct {
	Window string `form:"window"`
}

// TopUsersParams carries the window plus the result limit for the
// top-users view.
type TopUsersParams struct {
	Window string `form:"window"`
	Limit  int    `form:"limit,default=10" binding:"min=0"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// parseWindow binds and parses the window query parameter. A missing or
// empty parameter yields zero, which the service layer replaces with its
// default lookback.
func parseWindow(c *gin.Context) (time.Duration, error) {
	var params WindowParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return 0, fmt.Errorf("invalid query parameters: %w", err)
	}
	return parseWindowString(params.Window)
}

func parseWindowString(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	window, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", raw, err)
	}
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %q", raw)
	}
	return window, nil
}

// DeadLetterResponse represents one archived dead-letter record in API
// responses.
type DeadLetterResponse struct {
	EventKey       string `json:"event_key"`
	Payload        string `json:"payload"`
	Reason         string `json:"reason"`
	Attempts       int    `json:"attempts"`
	FirstSeenAt    string `json:"first_seen_at"`
	DeadLetteredAt string `json:"dead_lettered_at"`
}
