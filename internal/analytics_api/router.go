// Package analytics_api wires the HTTP surface of the pipeline: windowed
// analytics views, the dead-letter report, and health checks.
package analytics_api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fxstream-enrichment-pipeline/internal/analytics_api/handler"
	"github.com/fxstream-enrichment-pipeline/internal/analytics_api/middleware"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	analyticsHandler *handler.AnalyticsHandler,
	deadLetterHandler *handler.DeadLetterHandler,
	postgres Pinger,
	mongo Pinger,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// Unknown paths get the same envelope as everything else
	r.NoRoute(func(c *gin.Context) {
		handler.RespondNotFound(c, "")
	})

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		revenue := v1.Group("/revenue")
		{
			revenue.GET("", analyticsHandler.RevenueSummary)
			revenue.GET("/by-country", analyticsHandler.RevenueByCountry)
			revenue.GET("/by-currency", analyticsHandler.RevenueByCurrency)
		}

		v1.GET("/users/top", analyticsHandler.TopUsers)
		v1.GET("/transactions/hourly", analyticsHandler.HourlyActivity)
		v1.GET("/stats", analyticsHandler.Stats)
		v1.GET("/fx-rates/trends", analyticsHandler.FxRateTrends)
		v1.GET("/dead-letters", deadLetterHandler.List)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		stores := gin.H{"postgres": "ok", "mongodb": "ok"}

		if postgres != nil {
			if err := postgres.Ping(ctx); err != nil {
				stores["postgres"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		if mongo != nil {
			if err := mongo.Ping(ctx); err != nil {
				stores["mongodb"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "stores": stores, "timestamp": time.Now().UTC()})
	})
}
