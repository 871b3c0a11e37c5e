package generator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxstream-enrichment-pipeline/internal/config"
	"github.com/fxstream-enrichment-pipeline/internal/domain/fxrate"
	"github.com/fxstream-enrichment-pipeline/internal/domain/transaction"
)

// capturingPublisher collects everything published to it.
type capturingPublisher struct {
	mu       sync.Mutex
	messages []interface{}
}

func (p *capturingPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, value)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) collected() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]interface{}(nil), p.messages...)
}

func testGenerator() (*Generator, *capturingPublisher, *capturingPublisher) {
	transactions := &capturingPublisher{}
	rates := &capturingPublisher{}
	cfg := &config.GeneratorConfig{
		TransactionInterval: 10 * time.Millisecond,
		FxRateInterval:      10 * time.Millisecond,
		BatchMin:            3,
		BatchMax:            5,
	}
	return NewGenerator(slog.Default(), transactions, rates, cfg), transactions, rates
}

func TestGenerator_NewTransaction(t *testing.T) {
	g, _, _ := testGenerator()

	for i := 0; i < 100; i++ {
		raw := g.newTransaction()

		assert.NoError(t, raw.Validate())
		assert.True(t, strings.HasPrefix(raw.TransactionID, "TXN_"))
		assert.True(t, strings.HasPrefix(raw.UserID, "USER_"))
		assert.Contains(t, currencies, raw.Currency)
		assert.Contains(t, countries, raw.Country)
		assert.True(t, raw.Amount.GreaterThanOrEqual(decimal.NewFromInt(10)))
		assert.True(t, raw.Amount.LessThanOrEqual(decimal.NewFromInt(5000)))
	}
}

func TestGenerator_FieldsFitStorageColumns(t *testing.T) {
	g, _, _ := testGenerator()

	// Column widths from migrations/postgres/000001_init_schema.up.sql.
	// Country names are full words ("Germany", "Singapore"), not ISO codes.
	for i := 0; i < 1000; i++ {
		raw := g.newTransaction()

		assert.Len(t, raw.Currency, 3)
		assert.LessOrEqual(t, len(raw.Country), 50,
			"country %q must fit the processed_transactions.country column", raw.Country)
		assert.LessOrEqual(t, len(raw.TransactionID), 64)
		assert.LessOrEqual(t, len(raw.UserID), 64)
	}
}

func TestGenerator_TransactionIDsAreUnique(t *testing.T) {
	g, _, _ := testGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.newTransaction().TransactionID
		assert.False(t, seen[id], "duplicate transaction id %s", id)
		seen[id] = true
	}
}

func TestGenerator_Fluctuate(t *testing.T) {
	g, _, _ := testGenerator()
	base := decimal.RequireFromString("1.09")
	lo := base.Mul(decimal.RequireFromString("0.98"))
	hi := base.Mul(decimal.RequireFromString("1.02"))

	for i := 0; i < 100; i++ {
		rate := g.fluctuate(base)
		assert.True(t, rate.GreaterThanOrEqual(lo.Round(6)), "rate %s below %s", rate, lo)
		assert.True(t, rate.LessThanOrEqual(hi.Round(6)), "rate %s above %s", rate, hi)
	}
}

func TestGenerator_PublishFxRates(t *testing.T) {
	g, _, rates := testGenerator()

	err := g.publishFxRates(context.Background())
	require.NoError(t, err)

	collected := rates.collected()
	require.Len(t, collected, len(baseRates))

	seen := make(map[string]bool)
	for _, msg := range collected {
		sample, ok := msg.(fxrate.Sample)
		require.True(t, ok)
		assert.NoError(t, sample.Validate())
		assert.NotEqual(t, "USD", sample.Currency)
		seen[sample.Currency] = true
	}
	assert.Len(t, seen, len(baseRates))
}

func TestGenerator_PublishTransactionBatch(t *testing.T) {
	g, transactions, _ := testGenerator()

	err := g.publishTransactionBatch(context.Background())
	require.NoError(t, err)

	collected := transactions.collected()
	assert.GreaterOrEqual(t, len(collected), 3)
	assert.LessOrEqual(t, len(collected), 5)

	for _, msg := range collected {
		raw, ok := msg.(*transaction.RawTransaction)
		require.True(t, ok)
		assert.NoError(t, raw.Validate())
	}
}

func TestGenerator_RunStopsOnContextCancel(t *testing.T) {
	g, transactions, rates := testGenerator()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- g.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("generator did not stop after context cancellation")
	}

	// the immediate initial round plus at least one ticker round
	assert.NotEmpty(t, rates.collected())
	assert.NotEmpty(t, transactions.collected())
}
