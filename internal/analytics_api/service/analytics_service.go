package service

import (
	"context"
	"time"

	"github.com/fxstream-enrichment-pipeline/internal/domain/analytics"
)

const (
	// DefaultWindow is the lookback applied when a request names none.
	DefaultWindow = 24 * time.Hour

	// DefaultTopUsersLimit and MaxTopUsersLimit bound the top-users view.
	DefaultTopUsersLimit = 10
	MaxTopUsersLimit     = 100
)

// AnalyticsServiceImpl implements the AnalyticsService interface
type AnalyticsServiceImpl struct {
	analyticsRepo analytics.Repository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(analyticsRepo analytics.Repository) AnalyticsService {
	return &AnalyticsServiceImpl{
		analyticsRepo: analyticsRepo,
	}
}

func (s *AnalyticsServiceImpl) RevenueSummary(ctx context.Context, window time.Duration) (*analytics.RevenueSummary, error) {
	return s.analyticsRepo.RevenueSummary(ctx, s.window(window))
}

func (s *AnalyticsServiceImpl) RevenueByCountry(ctx context.Context, window time.Duration) ([]*analytics.CountryRevenue, error) {
	return s.analyticsRepo.RevenueByCountry(ctx, s.window(window))
}

func (s *AnalyticsServiceImpl) RevenueByCurrency(ctx context.Context, window time.Duration) ([]*analytics.CurrencyRevenue, error) {
	return s.analyticsRepo.RevenueByCurrency(ctx, s.window(window))
}

func (s *AnalyticsServiceImpl) TopUsers(ctx context.Context, window time.Duration, limit int) ([]*analytics.UserRevenue, error) {
	if limit <= 0 {
		limit = DefaultTopUsersLimit
	}
	if limit > MaxTopUsersLimit {
		limit = MaxTopUsersLimit
	}
	return s.analyticsRepo.TopUsersByRevenue(ctx, s.window(window), limit)
}

func (s *AnalyticsServiceImpl) HourlyActivity(ctx context.Context, window time.Duration) ([]*analytics.HourlyActivity, error) {
	return s.analyticsRepo.HourlyActivity(ctx, s.window(window))
}

func (s *AnalyticsServiceImpl) Stats(ctx context.Context, window time.Duration) (*analytics.Stats, error) {
	return s.analyticsRepo.Stats(ctx, s.window(window))
}

func (s *AnalyticsServiceImpl) FxRateTrends(ctx context.Context, window time.Duration) ([]*analytics.RatePoint, error) {
	return s.analyticsRepo.FxRateTrends(ctx, s.window(window))
}

func (s *AnalyticsServiceImpl) window(d time.Duration) analytics.Window {
	if d <= 0 {
		d = DefaultWindow
	}
	return analytics.Last(d)
}
