// Package generator produces synthetic raw transactions and fx rate samples
// for exercising the pipeline end to end without an upstream feed.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fxstream-enrichment-pipeline/internal/config"
	"github.com/fxstream-enrichment-pipeline/internal/domain/fxrate"
	"github.com/fxstream-enrichment-pipeline/internal/domain/transaction"
	"github.com/fxstream-enrichment-pipeline/internal/platform/messaging/producers"
)

var currencies = []string{"USD", "EUR", "GBP", "JPY", "THB", "SGD", "AUD", "CAD"}

var countries = []string{"US", "UK", "Germany", "Japan", "Thailand", "Singapore", "Australia", "Canada"}

// baseRates are approximate USD-per-unit conversion rates. Published samples
// fluctuate around these. USD itself is never published: the 1.0 anchor is
// seeded once in the store.
var baseRates = map[string]decimal.Decimal{
	"EUR": decimal.RequireFromString("1.09"),
	"GBP": decimal.RequireFromString("1.27"),
	"JPY": decimal.RequireFromString("0.0067"),
	"THB": decimal.RequireFromString("0.028"),
	"SGD": decimal.RequireFromString("0.74"),
	"AUD": decimal.RequireFromString("0.65"),
	"CAD": decimal.RequireFromString("0.73"),
}

// Generator publishes batches of raw transactions and periodic fx rate
// samples on independent schedules.
type Generator struct {
	transactionProducer producers.MessagePublisher
	fxRateProducer      producers.MessagePublisher
	cfg                 *config.GeneratorConfig
	logger              *slog.Logger
	rng                 *rand.Rand
}

func NewGenerator(
	logger *slog.Logger,
	transactionProducer producers.MessagePublisher,
	fxRateProducer producers.MessagePublisher,
	cfg *config.GeneratorConfig,
) *Generator {
	return &Generator{
		transactionProducer: transactionProducer,
		fxRateProducer:      fxRateProducer,
		cfg:                 cfg,
		logger:              logger,
		rng:                 rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run publishes until the context is cancelled. An initial round of fx rate
// samples goes out immediately so early transactions find rates to convert
// with.
func (g *Generator) Run(ctx context.Context) error {
	if err := g.publishFxRates(ctx); err != nil {
		g.logger.Error("Initial fx rate publish failed", "error", err)
	}

	transactionTicker := time.NewTicker(g.cfg.TransactionInterval)
	defer transactionTicker.Stop()
	fxRateTicker := time.NewTicker(g.cfg.FxRateInterval)
	defer fxRateTicker.Stop()

	g.logger.Info("Generator started",
		"transaction_interval", g.cfg.TransactionInterval,
		"fx_rate_interval", g.cfg.FxRateInterval,
	)

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("Generator stopping")
			return ctx.Err()
		case <-transactionTicker.C:
			if err := g.publishTransactionBatch(ctx); err != nil {
				g.logger.Error("Transaction batch publish failed", "error", err)
			}
		case <-fxRateTicker.C:
			if err := g.publishFxRates(ctx); err != nil {
				g.logger.Error("Fx rate publish failed", "error", err)
			}
		}
	}
}

func (g *Generator) publishTransactionBatch(ctx context.Context) error {
	size := g.cfg.BatchMin
	if g.cfg.BatchMax > g.cfg.BatchMin {
		size += g.rng.Intn(g.cfg.BatchMax - g.cfg.BatchMin + 1)
	}

	for i := 0; i < size; i++ {
		raw := g.newTransaction()
		if err := g.transactionProducer.Publish(ctx, raw.TransactionID, raw); err != nil {
			return fmt.Errorf("failed to publish transaction %s: %w", raw.TransactionID, err)
		}
	}

	g.logger.Info("Published transaction batch", "size", size)
	return nil
}

func (g *Generator) publishFxRates(ctx context.Context) error {
	now := time.Now().UTC()
	published := 0

	for currency, base := range baseRates {
		sample := fxrate.Sample{
			Currency:   currency,
			RateToUSD:  g.fluctuate(base),
			ObservedAt: now,
		}
		if err := g.fxRateProducer.Publish(ctx, sample.Currency, sample); err != nil {
			return fmt.Errorf("failed to publish fx rate for %s: %w", currency, err)
		}
		published++
	}

	g.logger.Info("Published fx rate samples", "count", published)
	return nil
}

func (g *Generator) newTransaction() *transaction.RawTransaction {
	// amounts between 10 and 5000, two decimal places
	amount := decimal.NewFromFloat(10 + g.rng.Float64()*4990).Round(2)

	return &transaction.RawTransaction{
		TransactionID: fmt.Sprintf("TXN_%s", uuid.New().String()),
		Amount:        amount,
		Currency:      currencies[g.rng.Intn(len(currencies))],
		Country:       countries[g.rng.Intn(len(countries))],
		UserID:        fmt.Sprintf("USER_%d", 1000+g.rng.Intn(9000)),
		OccurredAt:    time.Now().UTC(),
	}
}

// fluctuate applies a random drift of up to ±2% and keeps six decimal places.
func (g *Generator) fluctuate(base decimal.Decimal) decimal.Decimal {
	drift := decimal.NewFromFloat(1 + (g.rng.Float64()*0.04 - 0.02))
	return base.Mul(drift).Round(6)
}
