// Package fxregistry provides the in-memory FX rate registry. It is the one
// shared, concurrently-read structure of the pipeline: lookups take a read
// lock and run a binary search, appends take the single write path.
package fxregistry

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxstream-enrichment-pipeline/internal/domain/fxrate"
)

// Registry implements fxrate.Registry with per-currency time-ordered sample
// slices. Samples with equal observed_at keep insertion order, so the most
// recently inserted one wins a lookup, matching the append-only store.
type Registry struct {
	mu      sync.RWMutex
	samples map[string][]fxrate.Sample
	logger  *slog.Logger
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		samples: make(map[string][]fxrate.Sample),
		logger:  logger,
	}
}

// NewFromRepository builds a registry hydrated with every stored sample,
// preserving the store's (observed_at, insertion) order.
func NewFromRepository(ctx context.Context, logger *slog.Logger, repo fxrate.Repository) (*Registry, error) {
	stored, err := repo.ListAscending(ctx)
	if err != nil {
		return nil, err
	}

	r := New(logger)
	for _, sample := range stored {
		r.AddSample(*sample)
	}

	logger.Info("Hydrated fx rate registry from store",
		"samples", len(stored),
		"currencies", len(r.samples),
	)
	return r, nil
}

// AddSample appends a sample for its currency. A bit-identical sample is a
// no-op. A sample whose observed_at is not the newest is inserted at its
// time-ordered position, after any existing samples with the same timestamp.
func (r *Registry) AddSample(sample fxrate.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	series := r.samples[sample.Currency]

	// First index with observed_at strictly after the new sample. Inserting
	// there keeps equal timestamps in insertion order.
	idx := sort.Search(len(series), func(i int) bool {
		return series[i].ObservedAt.After(sample.ObservedAt)
	})

	// Idempotency: scan backwards over the equal-timestamp run.
	for i := idx - 1; i >= 0 && series[i].ObservedAt.Equal(sample.ObservedAt); i-- {
		if series[i].Equal(&sample) {
			return
		}
	}

	series = append(series, fxrate.Sample{})
	copy(series[idx+1:], series[idx:])
	series[idx] = sample
	r.samples[sample.Currency] = series
}

// RateAsOf returns the rate of the sample with the greatest observed_at not
// after the given time, or ErrNoRateAvailable when no sample qualifies.
func (r *Registry) RateAsOf(currency string, at time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	series := r.samples[currency]

	// First index with observed_at after t; the answer is the entry before
	// it, which for equal timestamps is the most recently inserted one.
	idx := sort.Search(len(series), func(i int) bool {
		return series[i].ObservedAt.After(at)
	})
	if idx == 0 {
		return decimal.Decimal{}, fxrate.ErrNoRateAvailable{Currency: currency, At: at}
	}

	return series[idx-1].RateToUSD, nil
}

// Len returns the total number of samples held, for observability.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, series := range r.samples {
		total += len(series)
	}
	return total
}

var _ fxrate.Registry = (*Registry)(nil)
