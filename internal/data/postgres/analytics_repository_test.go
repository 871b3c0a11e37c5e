package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxstream-enrichment-pipeline/internal/domain/analytics"
)

func testWindow() analytics.Window {
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	return analytics.Window{Start: end.Add(-24 * time.Hour), End: end}
}

func TestAnalyticsRepository_RevenueSummary(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AnalyticsRepository{querier: mock, logger: logger}
	w := testWindow()

	query := `
		SELECT COALESCE\(SUM\(amount_usd\), 0\), COUNT\(\*\)
		FROM processed_transactions
		WHERE occurred_at >= \$1 AND occurred_at <= \$2
	`

	t.Run("populated window", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"sum", "count"}).AddRow(1234.56, int64(42))
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).WillReturnRows(rows)

		summary, err := repo.RevenueSummary(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, 1234.56, summary.TotalRevenueUSD)
		assert.Equal(t, int64(42), summary.TransactionCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window yields zeros", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"sum", "count"}).AddRow(0.0, int64(0))
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).WillReturnRows(rows)

		summary, err := repo.RevenueSummary(ctx, w)
		require.NoError(t, err)
		assert.Zero(t, summary.TotalRevenueUSD)
		assert.Zero(t, summary.TransactionCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).WillReturnError(expectedErr)

		summary, err := repo.RevenueSummary(ctx, w)
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, summary)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnalyticsRepository_RevenueByCountry(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AnalyticsRepository{querier: mock, logger: logger}
	w := testWindow()

	query := `
		SELECT country, COALESCE\(SUM\(amount_usd\), 0\) AS revenue_usd
		FROM processed_transactions
		WHERE occurred_at >= \$1 AND occurred_at <= \$2
		GROUP BY country
		ORDER BY revenue_usd DESC, country ASC
	`

	t.Run("grouped rows", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"country", "revenue_usd"}).
			AddRow("Germany", 900.50).
			AddRow("France", 450.25)
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).WillReturnRows(rows)

		results, err := repo.RevenueByCountry(ctx, w)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Germany", results[0].Country)
		assert.Equal(t, 450.25, results[1].RevenueUSD)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window yields empty list", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).
			WillReturnRows(pgxmock.NewRows([]string{"country", "revenue_usd"}))

		results, err := repo.RevenueByCountry(ctx, w)
		assert.NoError(t, err)
		assert.NotNil(t, results, "empty window must serialize as [], not null")
		assert.Empty(t, results)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnalyticsRepository_RevenueByCurrency(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AnalyticsRepository{querier: mock, logger: logger}
	w := testWindow()

	query := `
		SELECT currency, COALESCE\(SUM\(amount_usd\), 0\) AS revenue_usd, COUNT\(\*\)
		FROM processed_transactions
		WHERE occurred_at >= \$1 AND occurred_at <= \$2
		GROUP BY currency
		ORDER BY revenue_usd DESC, currency ASC
	`

	t.Run("grouped rows", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"currency", "revenue_usd", "count"}).
			AddRow("EUR", 1200.50, int64(8)).
			AddRow("JPY", 330.00, int64(3))
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).WillReturnRows(rows)

		results, err := repo.RevenueByCurrency(ctx, w)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "EUR", results[0].Currency)
		assert.Equal(t, int64(3), results[1].TransactionCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window yields empty list", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).
			WillReturnRows(pgxmock.NewRows([]string{"currency", "revenue_usd", "count"}))

		results, err := repo.RevenueByCurrency(ctx, w)
		assert.NoError(t, err)
		assert.NotNil(t, results, "empty window must serialize as [], not null")
		assert.Empty(t, results)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnalyticsRepository_TopUsersByRevenue(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AnalyticsRepository{querier: mock, logger: logger}
	w := testWindow()

	query := `
		SELECT user_id, COALESCE\(SUM\(amount_usd\), 0\) AS revenue_usd, COUNT\(\*\)
		FROM processed_transactions
		WHERE occurred_at >= \$1 AND occurred_at <= \$2
		GROUP BY user_id
		ORDER BY revenue_usd DESC, user_id ASC
		LIMIT \$3
	`

	t.Run("ranked with deterministic tie-break", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"user_id", "revenue_usd", "count"}).
			AddRow("USER_1002", 500.00, int64(3)).
			AddRow("USER_1001", 250.00, int64(1)).
			AddRow("USER_1005", 250.00, int64(2))
		mock.ExpectQuery(query).WithArgs(w.Start, w.End, 10).WillReturnRows(rows)

		results, err := repo.TopUsersByRevenue(ctx, w, 10)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "USER_1002", results[0].UserID)
		// equal revenue preserves user_id ascending order
		assert.Equal(t, "USER_1001", results[1].UserID)
		assert.Equal(t, "USER_1005", results[2].UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window yields empty list", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(w.Start, w.End, 10).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "revenue_usd", "count"}))

		results, err := repo.TopUsersByRevenue(ctx, w, 10)
		assert.NoError(t, err)
		assert.NotNil(t, results, "empty window must serialize as [], not null")
		assert.Empty(t, results)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectQuery(query).WithArgs(w.Start, w.End, 5).WillReturnError(expectedErr)

		results, err := repo.TopUsersByRevenue(ctx, w, 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, results)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnalyticsRepository_HourlyActivity(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AnalyticsRepository{querier: mock, logger: logger}
	w := testWindow()

	query := `
		SELECT DATE_TRUNC\('hour', occurred_at\) AS hour,
		       COUNT\(\*\),
		       COALESCE\(SUM\(amount_usd\), 0\) AS revenue_usd
		FROM processed_transactions
		WHERE occurred_at >= \$1 AND occurred_at <= \$2
		GROUP BY hour
		ORDER BY hour ASC
	`

	t.Run("hourly buckets", func(t *testing.T) {
		h0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		rows := pgxmock.NewRows([]string{"hour", "count", "revenue_usd"}).
			AddRow(h0, int64(5), 120.00).
			AddRow(h0.Add(time.Hour), int64(2), 40.50)
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).WillReturnRows(rows)

		results, err := repo.HourlyActivity(ctx, w)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, h0, results[0].Hour)
		assert.Equal(t, int64(2), results[1].TransactionCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window yields empty list", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).
			WillReturnRows(pgxmock.NewRows([]string{"hour", "count", "revenue_usd"}))

		results, err := repo.HourlyActivity(ctx, w)
		assert.NoError(t, err)
		assert.NotNil(t, results, "empty window must serialize as [], not null")
		assert.Empty(t, results)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnalyticsRepository_Stats(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AnalyticsRepository{querier: mock, logger: logger}
	w := testWindow()

	query := `
		SELECT COUNT\(\*\),
		       COALESCE\(SUM\(amount_usd\), 0\),
		       COALESCE\(AVG\(amount_usd\), 0\),
		       COUNT\(DISTINCT user_id\),
		       COUNT\(DISTINCT country\)
		FROM processed_transactions
		WHERE occurred_at >= \$1 AND occurred_at <= \$2
	`

	t.Run("populated window", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"count", "sum", "avg", "users", "countries"}).
			AddRow(int64(10), 1000.0, 100.0, int64(4), int64(3))
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).WillReturnRows(rows)

		stats, err := repo.Stats(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, int64(10), stats.TotalTransactions)
		assert.Equal(t, 100.0, stats.AvgTransactionUSD)
		assert.Equal(t, int64(3), stats.UniqueCountries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window yields zeros", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"count", "sum", "avg", "users", "countries"}).
			AddRow(int64(0), 0.0, 0.0, int64(0), int64(0))
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).WillReturnRows(rows)

		stats, err := repo.Stats(ctx, w)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalTransactions)
		assert.Zero(t, stats.AvgTransactionUSD)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnalyticsRepository_FxRateTrends(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AnalyticsRepository{querier: mock, logger: logger}
	w := testWindow()

	query := `
		SELECT currency, rate_to_usd, observed_at
		FROM fx_rates
		WHERE observed_at >= \$1 AND observed_at <= \$2
		ORDER BY currency ASC, observed_at ASC
	`

	t.Run("trend points", func(t *testing.T) {
		t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		rows := pgxmock.NewRows([]string{"currency", "rate_to_usd", "observed_at"}).
			AddRow("EUR", 0.85, t0).
			AddRow("EUR", 0.86, t0.Add(30*time.Minute)).
			AddRow("GBP", 0.73, t0)
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).WillReturnRows(rows)

		results, err := repo.FxRateTrends(ctx, w)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "EUR", results[0].Currency)
		assert.Equal(t, 0.86, results[1].RateToUSD)
		assert.Equal(t, "GBP", results[2].Currency)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window yields empty list", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(w.Start, w.End).
			WillReturnRows(pgxmock.NewRows([]string{"currency", "rate_to_usd", "observed_at"}))

		results, err := repo.FxRateTrends(ctx, w)
		assert.NoError(t, err)
		assert.NotNil(t, results, "empty window must serialize as [], not null")
		assert.Empty(t, results)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
