package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fxstream-enrichment-pipeline/internal/domain/fxrate"
	"github.com/fxstream-enrichment-pipeline/internal/platform/persistence"
)

// FxRateRepository implements fxrate.Repository for PostgreSQL. The fx_rates
// table is append-only: rows are never updated or deleted.
type FxRateRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewFxRateRepository(logger *slog.Logger, db *persistence.PostgresDB) fxrate.Repository {
	return &FxRateRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Append stores a rate sample. The unique constraint on
// (currency, observed_at, rate_to_usd) makes a bit-identical redelivery a
// silent no-op.
func (r *FxRateRepository) Append(ctx context.Context, sample *fxrate.Sample) error {
	query := `
		INSERT INTO fx_rates (currency, rate_to_usd, observed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (currency, observed_at, rate_to_usd) DO NOTHING
	`

	_, err := r.querier.Exec(ctx, query,
		sample.Currency,
		sample.RateToUSD,
		sample.ObservedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append fx rate sample",
			"currency", sample.Currency,
			"observed_at", sample.ObservedAt,
			"error", err,
		)
		return fmt.Errorf("failed to append fx rate sample: %w", err)
	}

	return nil
}

// ListAscending returns all samples in (observed_at, insertion) order so a
// rebuilt registry resolves equal-timestamp ties the same way the original
// process did.
func (r *FxRateRepository) ListAscending(ctx context.Context) ([]*fxrate.Sample, error) {
	query := `
		SELECT currency, rate_to_usd, observed_at
		FROM fx_rates
		ORDER BY observed_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list fx rate samples", "error", err)
		return nil, fmt.Errorf("failed to list fx rate samples: %w", err)
	}
	defer rows.Close()

	var samples []*fxrate.Sample
	for rows.Next() {
		var sample fxrate.Sample
		if err := rows.Scan(&sample.Currency, &sample.RateToUSD, &sample.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fx rate sample: %w", err)
		}
		samples = append(samples, &sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fx rate samples: %w", err)
	}

	return samples, nil
}
