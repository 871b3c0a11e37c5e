// Package analytics defines the read-only aggregate views served by the
// analytics API and the repository contract that computes them.
package analytics

import (
	"context"
	"time"
)

// Window is the bounded time range [Start, End] an aggregate is evaluated
// over. Windows ending "now" are eventually consistent with ingestion: a
// record committed concurrently with a query may or may not be included.
type Window struct {
	Start time.Time
	End   time.Time
}

// Last returns the window covering the given duration up to now.
func Last(d time.Duration) Window {
	end := time.Now().UTC()
	return Window{Start: end.Add(-d), End: end}
}

// RevenueSummary is the total USD revenue and count for a window.
// Empty windows yield zero values, never absent fields.
type RevenueSummary struct {
	TotalRevenueUSD  float64 `json:"total_revenue_usd"`
	TransactionCount int64   `json:"transaction_count"`
}

// CountryRevenue is one group row of revenue broken down by country.
type CountryRevenue struct {
	Country    string  `json:"country"`
	RevenueUSD float64 `json:"revenue_usd"`
}

// CurrencyRevenue is one group row of revenue broken down by source currency.
type CurrencyRevenue struct {
	Currency         string  `json:"currency"`
	RevenueUSD       float64 `json:"revenue_usd"`
	TransactionCount int64   `json:"transaction_count"`
}

// UserRevenue is one row of the top-users-by-revenue view.
type UserRevenue struct {
	UserID           string  `json:"user_id"`
	RevenueUSD       float64 `json:"revenue_usd"`
	TransactionCount int64   `json:"transaction_count"`
}

// HourlyActivity is one hourly bucket of transaction activity.
type HourlyActivity struct {
	Hour             time.Time `json:"hour"`
	TransactionCount int64     `json:"transaction_count"`
	RevenueUSD       float64   `json:"revenue_usd"`
}

// Stats is the real-time overview of a window.
type Stats struct {
	TotalTransactions int64   `json:"total_transactions"`
	TotalRevenueUSD   float64 `json:"total_revenue_usd"`
	AvgTransactionUSD float64 `json:"avg_transaction_usd"`
	UniqueUsers       int64   `json:"unique_users"`
	UniqueCountries   int64   `json:"unique_countries"`
}

// RatePoint is one observed FX rate sample within a trends window.
type RatePoint struct {
	Currency   string    `json:"currency"`
	RateToUSD  float64   `json:"rate_to_usd"`
	ObservedAt time.Time `json:"observed_at"`
}

// Repository computes aggregate views over committed enriched transactions.
// Queries only ever see fully committed records; raw or in-flight events are
// invisible to this layer.
type Repository interface {
	RevenueSummary(ctx context.Context, w Window) (*RevenueSummary, error)
	RevenueByCountry(ctx context.Context, w Window) ([]*CountryRevenue, error)
	RevenueByCurrency(ctx context.Context, w Window) ([]*CurrencyRevenue, error)

	// TopUsersByRevenue orders by revenue descending, ties broken by
	// user ID ascending so results are deterministic.
	TopUsersByRevenue(ctx context.Context, w Window, limit int) ([]*UserRevenue, error)

	HourlyActivity(ctx context.Context, w Window) ([]*HourlyActivity, error)
	Stats(ctx context.Context, w Window) (*Stats, error)
	FxRateTrends(ctx context.Context, w Window) ([]*RatePoint, error)
}
