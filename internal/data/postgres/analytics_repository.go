package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fxstream-enrichment-pipeline/internal/domain/analytics"
	"github.com/fxstream-enrichment-pipeline/internal/platform/persistence"
)

// AnalyticsRepository implements analytics.Repository over the
// processed_transactions and fx_rates tables. Every aggregate COALESCEs to
// zero so an empty window is a zero-valued result, never a null.
type AnalyticsRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewAnalyticsRepository(logger *slog.Logger, db *persistence.PostgresDB) analytics.Repository {
	return &AnalyticsRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *AnalyticsRepository) RevenueSummary(ctx context.Context, w analytics.Window) (*analytics.RevenueSummary, error) {
	query := `
		SELECT COALESCE(SUM(amount_usd), 0), COUNT(*)
		FROM processed_transactions
		WHERE occurred_at >= $1 AND occurred_at <= $2
	`

	var summary analytics.RevenueSummary
	err := r.querier.QueryRow(ctx, query, w.Start, w.End).Scan(
		&summary.TotalRevenueUSD,
		&summary.TransactionCount,
	)
	if err != nil {
		r.logger.Error("Failed to query revenue summary", "error", err)
		return nil, fmt.Errorf("failed to query revenue summary: %w", err)
	}

	return &summary, nil
}

func (r *AnalyticsRepository) RevenueByCountry(ctx context.Context, w analytics.Window) ([]*analytics.CountryRevenue, error) {
	query := `
		SELECT country, COALESCE(SUM(amount_usd), 0) AS revenue_usd
		FROM processed_transactions
		WHERE occurred_at >= $1 AND occurred_at <= $2
		GROUP BY country
		ORDER BY revenue_usd DESC, country ASC
	`

	rows, err := r.querier.Query(ctx, query, w.Start, w.End)
	if err != nil {
		r.logger.Error("Failed to query revenue by country", "error", err)
		return nil, fmt.Errorf("failed to query revenue by country: %w", err)
	}
	defer rows.Close()

	results := []*analytics.CountryRevenue{}
	for rows.Next() {
		var row analytics.CountryRevenue
		if err := rows.Scan(&row.Country, &row.RevenueUSD); err != nil {
			return nil, fmt.Errorf("failed to scan country revenue row: %w", err)
		}
		results = append(results, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate country revenue rows: %w", err)
	}

	return results, nil
}

func (r *AnalyticsRepository) RevenueByCurrency(ctx context.Context, w analytics.Window) ([]*analytics.CurrencyRevenue, error) {
	query := `
		SELECT currency, COALESCE(SUM(amount_usd), 0) AS revenue_usd, COUNT(*)
		FROM processed_transactions
		WHERE occurred_at >= $1 AND occurred_at <= $2
		GROUP BY currency
		ORDER BY revenue_usd DESC, currency ASC
	`

	rows, err := r.querier.Query(ctx, query, w.Start, w.End)
	if err != nil {
		r.logger.Error("Failed to query revenue by currency", "error", err)
		return nil, fmt.Errorf("failed to query revenue by currency: %w", err)
	}
	defer rows.Close()

	results := []*analytics.CurrencyRevenue{}
	for rows.Next() {
		var row analytics.CurrencyRevenue
		if err := rows.Scan(&row.Currency, &row.RevenueUSD, &row.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan currency revenue row: %w", err)
		}
		results = append(results, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currency revenue rows: %w", err)
	}

	return results, nil
}

// TopUsersByRevenue orders by aggregate descending with user_id ascending as
// the tie-break, so equal revenues always list in the same order.
func (r *AnalyticsRepository) TopUsersByRevenue(ctx context.Context, w analytics.Window, limit int) ([]*analytics.UserRevenue, error) {
	query := `
		SELECT user_id, COALESCE(SUM(amount_usd), 0) AS revenue_usd, COUNT(*)
		FROM processed_transactions
		WHERE occurred_at >= $1 AND occurred_at <= $2
		GROUP BY user_id
		ORDER BY revenue_usd DESC, user_id ASC
		LIMIT $3
	`

	rows, err := r.querier.Query(ctx, query, w.Start, w.End, limit)
	if err != nil {
		r.logger.Error("Failed to query top users by revenue", "error", err)
		return nil, fmt.Errorf("failed to query top users by revenue: %w", err)
	}
	defer rows.Close()

	results := []*analytics.UserRevenue{}
	for rows.Next() {
		var row analytics.UserRevenue
		if err := rows.Scan(&row.UserID, &row.RevenueUSD, &row.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan user revenue row: %w", err)
		}
		results = append(results, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user revenue rows: %w", err)
	}

	return results, nil
}

func (r *AnalyticsRepository) HourlyActivity(ctx context.Context, w analytics.Window) ([]*analytics.HourlyActivity, error) {
	query := `
		SELECT DATE_TRUNC('hour', occurred_at) AS hour,
		       COUNT(*),
		       COALESCE(SUM(amount_usd), 0) AS revenue_usd
		FROM processed_transactions
		WHERE occurred_at >= $1 AND occurred_at <= $2
		GROUP BY hour
		ORDER BY hour ASC
	`

	rows, err := r.querier.Query(ctx, query, w.Start, w.End)
	if err != nil {
		r.logger.Error("Failed to query hourly activity", "error", err)
		return nil, fmt.Errorf("failed to query hourly activity: %w", err)
	}
	defer rows.Close()

	results := []*analytics.HourlyActivity{}
	for rows.Next() {
		var row analytics.HourlyActivity
		if err := rows.Scan(&row.Hour, &row.TransactionCount, &row.RevenueUSD); err != nil {
			return nil, fmt.Errorf("failed to scan hourly activity row: %w", err)
		}
		results = append(results, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hourly activity rows: %w", err)
	}

	return results, nil
}

func (r *AnalyticsRepository) Stats(ctx context.Context, w analytics.Window) (*analytics.Stats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(amount_usd), 0),
		       COALESCE(AVG(amount_usd), 0),
		       COUNT(DISTINCT user_id),
		       COUNT(DISTINCT country)
		FROM processed_transactions
		WHERE occurred_at >= $1 AND occurred_at <= $2
	`

	var stats analytics.Stats
	err := r.querier.QueryRow(ctx, query, w.Start, w.End).Scan(
		&stats.TotalTransactions,
		&stats.TotalRevenueUSD,
		&stats.AvgTransactionUSD,
		&stats.UniqueUsers,
		&stats.UniqueCountries,
	)
	if err != nil {
		r.logger.Error("Failed to query window stats", "error", err)
		return nil, fmt.Errorf("failed to query window stats: %w", err)
	}

	return &stats, nil
}

func (r *AnalyticsRepository) FxRateTrends(ctx context.Context, w analytics.Window) ([]*analytics.RatePoint, error) {
	query := `
		SELECT currency, rate_to_usd, observed_at
		FROM fx_rates
		WHERE observed_at >= $1 AND observed_at <= $2
		ORDER BY currency ASC, observed_at ASC
	`

	rows, err := r.querier.Query(ctx, query, w.Start, w.End)
	if err != nil {
		r.logger.Error("Failed to query fx rate trends", "error", err)
		return nil, fmt.Errorf("failed to query fx rate trends: %w", err)
	}
	defer rows.Close()

	results := []*analytics.RatePoint{}
	for rows.Next() {
		var row analytics.RatePoint
		if err := rows.Scan(&row.Currency, &row.RateToUSD, &row.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fx rate trend row: %w", err)
		}
		results = append(results, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fx rate trend rows: %w", err)
	}

	return results, nil
}
