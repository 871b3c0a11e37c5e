package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/fxstream-enrichment-pipeline/internal/domain/fxrate"
	"github.com/fxstream-enrichment-pipeline/internal/domain/transaction"
	"github.com/fxstream-enrichment-pipeline/internal/enrichment_processor/service"
)

type EnricherImpl struct {
	registry fxrate.Registry
	logger   *slog.Logger
}

func NewEnricher(registry fxrate.Registry, logger *slog.Logger) service.Enricher {
	return &EnricherImpl{
		registry: registry,
		logger:   logger,
	}
}

// Enrich resolves the rate in effect at the transaction's occurred_at and
// computes amount_usd = amount * rate, rounded half-to-even to two decimal
// places. Returns fxrate.ErrNoRateAvailable unchanged so the caller can
// decide between retrying and dead-lettering.
func (e *EnricherImpl) Enrich(ctx context.Context, raw *transaction.RawTransaction) (*transaction.EnrichedTransaction, error) {
	rate, err := e.registry.RateAsOf(raw.Currency, raw.OccurredAt)
	if err != nil {
		e.logger.Warn("No rate available for enrichment",
			"transaction_id", raw.TransactionID,
			"currency", raw.Currency,
			"occurred_at", raw.OccurredAt,
		)
		return nil, err
	}

	return &transaction.EnrichedTransaction{
		TransactionID: raw.TransactionID,
		Amount:        raw.Amount,
		Currency:      raw.Currency,
		AmountUSD:     raw.Amount.Mul(rate).RoundBank(2),
		Country:       raw.Country,
		UserID:        raw.UserID,
		FxRate:        rate,
		OccurredAt:    raw.OccurredAt,
		ProcessedAt:   time.Now().UTC(),
	}, nil
}
