package service

import (
	"context"
	"time"

	"github.com/fxstream-enrichment-pipeline/internal/domain/analytics"
	"github.com/fxstream-enrichment-pipeline/internal/domain/deadletter"
)

// AnalyticsService serves windowed aggregate views over committed
// transactions. All operations take a lookback duration ending now.
type AnalyticsService interface {
	RevenueSummary(ctx context.Context, window time.Duration) (*analytics.RevenueSummary, error)
	RevenueByCountry(ctx context.Context, window time.Duration) ([]*analytics.CountryRevenue, error)
	RevenueByCurrency(ctx context.Context, window time.Duration) ([]*analytics.CurrencyRevenue, error)

	// TopUsers clamps limit into [1, MaxTopUsersLimit]; zero or negative
	// values fall back to the default.
	TopUsers(ctx context.Context, window time.Duration, limit int) ([]*analytics.UserRevenue, error)

	HourlyActivity(ctx context.Context, window time.Duration) ([]*analytics.HourlyActivity, error)
	Stats(ctx context.Context, window time.Duration) (*analytics.Stats, error)
	FxRateTrends(ctx context.Context, window time.Duration) ([]*analytics.RatePoint, error)
}

// DeadLetterService exposes the dead-letter archive for operator reporting.
type DeadLetterService interface {
	// List returns one page of records, newest first, plus the total count.
	List(ctx context.Context, page, perPage int) ([]*deadletter.Record, int64, error)
}
