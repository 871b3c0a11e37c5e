package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fxstream-enrichment-pipeline/internal/domain/analytics"
)

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) RevenueSummary(ctx context.Context, window time.Duration) (*analytics.RevenueSummary, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.RevenueSummary), args.Error(1)
}

func (m *MockAnalyticsService) RevenueByCountry(ctx context.Context, window time.Duration) ([]*analytics.CountryRevenue, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*analytics.CountryRevenue), args.Error(1)
}

func (m *MockAnalyticsService) RevenueByCurrency(ctx context.Context, window time.Duration) ([]*analytics.CurrencyRevenue, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*analytics.CurrencyRevenue), args.Error(1)
}

func (m *MockAnalyticsService) TopUsers(ctx context.Context, window time.Duration, limit int) ([]*analytics.UserRevenue, error) {
	args := m.Called(ctx, window, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*analytics.UserRevenue), args.Error(1)
}

func (m *MockAnalyticsService) HourlyActivity(ctx context.Context, window time.Duration) ([]*analytics.HourlyActivity, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*analytics.HourlyActivity), args.Error(1)
}

func (m *MockAnalyticsService) Stats(ctx context.Context, window time.Duration) (*analytics.Stats, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Stats), args.Error(1)
}

func (m *MockAnalyticsService) FxRateTrends(ctx context.Context, window time.Duration) ([]*analytics.RatePoint, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*analytics.RatePoint), args.Error(1)
}

func performRequest(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(w, req)
	return w
}

func setupAnalyticsRouter(svc *MockAnalyticsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalyticsHandler(slog.Default(), svc)
	r := gin.New()
	r.GET("/revenue", h.RevenueSummary)
	r.GET("/revenue/by-country", h.RevenueByCountry)
	r.GET("/revenue/by-currency", h.RevenueByCurrency)
	r.GET("/users/top", h.TopUsers)
	r.GET("/transactions/hourly", h.HourlyActivity)
	r.GET("/stats", h.Stats)
	r.GET("/fx-rates/trends", h.FxRateTrends)
	return r
}

func TestAnalyticsHandler_RevenueSummary(t *testing.T) {
	t.Run("parses window and returns data", func(t *testing.T) {
		svc := &MockAnalyticsService{}
		svc.On("RevenueSummary", mock.Anything, time.Hour).
			Return(&analytics.RevenueSummary{TotalRevenueUSD: 123.45, TransactionCount: 7}, nil)

		w := performRequest(setupAnalyticsRouter(svc), "/revenue?window=1h")

		assert.Equal(t, http.StatusOK, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, 123.45, data["total_revenue_usd"])
		assert.Equal(t, float64(7), data["transaction_count"])
		svc.AssertExpectations(t)
	})

	t.Run("missing window defers to service default", func(t *testing.T) {
		svc := &MockAnalyticsService{}
		svc.On("RevenueSummary", mock.Anything, time.Duration(0)).
			Return(&analytics.RevenueSummary{}, nil)

		w := performRequest(setupAnalyticsRouter(svc), "/revenue")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed window is a bad request", func(t *testing.T) {
		svc := &MockAnalyticsService{}

		w := performRequest(setupAnalyticsRouter(svc), "/revenue?window=yesterday")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "RevenueSummary", mock.Anything, mock.Anything)
	})

	t.Run("negative window is a bad request", func(t *testing.T) {
		svc := &MockAnalyticsService{}

		w := performRequest(setupAnalyticsRouter(svc), "/revenue?window=-2h")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service failure is an internal error", func(t *testing.T) {
		svc := &MockAnalyticsService{}
		svc.On("RevenueSummary", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		w := performRequest(setupAnalyticsRouter(svc), "/revenue?window=1h")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAnalyticsHandler_RevenueByCountry(t *testing.T) {
	svc := &MockAnalyticsService{}
	svc.On("RevenueByCountry", mock.Anything, 24*time.Hour).
		Return([]*analytics.CountryRevenue{
			{Country: "Germany", RevenueUSD: 900.5},
			{Country: "France", RevenueUSD: 450.25},
		}, nil)

	w := performRequest(setupAnalyticsRouter(svc), "/revenue/by-country?window=24h")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows := resp.Data.([]interface{})
	require.Len(t, rows, 2)
	first := rows[0].(map[string]interface{})
	assert.Equal(t, "Germany", first["country"])
	svc.AssertExpectations(t)
}

func TestAnalyticsHandler_TopUsers(t *testing.T) {
	t.Run("passes limit through", func(t *testing.T) {
		svc := &MockAnalyticsService{}
		svc.On("TopUsers", mock.Anything, time.Hour, 5).
			Return([]*analytics.UserRevenue{{UserID: "USER_1", RevenueUSD: 10}}, nil)

		w := performRequest(setupAnalyticsRouter(svc), "/users/top?window=1h&limit=5")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("defaults limit to ten", func(t *testing.T) {
		svc := &MockAnalyticsService{}
		svc.On("TopUsers", mock.Anything, time.Duration(0), 10).
			Return([]*analytics.UserRevenue{}, nil)

		w := performRequest(setupAnalyticsRouter(svc), "/users/top")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("non-numeric limit is a bad request", func(t *testing.T) {
		svc := &MockAnalyticsService{}

		w := performRequest(setupAnalyticsRouter(svc), "/users/top?limit=many")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAnalyticsHandler_Stats(t *testing.T) {
	svc := &MockAnalyticsService{}
	svc.On("Stats", mock.Anything, time.Duration(0)).
		Return(&analytics.Stats{TotalTransactions: 10, TotalRevenueUSD: 1000, AvgTransactionUSD: 100, UniqueUsers: 4, UniqueCountries: 3}, nil)

	w := performRequest(setupAnalyticsRouter(svc), "/stats")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(10), data["total_transactions"])
	assert.Equal(t, float64(4), data["unique_users"])
}

func TestAnalyticsHandler_FxRateTrends(t *testing.T) {
	svc := &MockAnalyticsService{}
	observed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.On("FxRateTrends", mock.Anything, 48*time.Hour).
		Return([]*analytics.RatePoint{{Currency: "EUR", RateToUSD: 1.09, ObservedAt: observed}}, nil)

	w := performRequest(setupAnalyticsRouter(svc), "/fx-rates/trends?window=48h")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "EUR")
	svc.AssertExpectations(t)
}

func TestAnalyticsHandler_HourlyActivity(t *testing.T) {
	svc := &MockAnalyticsService{}
	hour := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.On("HourlyActivity", mock.Anything, time.Duration(0)).
		Return([]*analytics.HourlyActivity{{Hour: hour, TransactionCount: 5, RevenueUSD: 120}}, nil)

	w := performRequest(setupAnalyticsRouter(svc), "/transactions/hourly")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows := resp.Data.([]interface{})
	require.Len(t, rows, 1)
}
