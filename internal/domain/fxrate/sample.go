// Package fxrate holds the FX rate sample model and the registry contract
// used by the enrichment engine to resolve point-in-time conversion rates.
package fxrate

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRate           = errors.New("rate_to_usd must be positive")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrMissingObservedAt     = errors.New("observed_at timestamp is required")
)

// ErrNoRateAvailable signals that no sample exists for the currency at or
// before the requested time. The engine must never guess or default a rate;
// the coordinator retries because a sample may still arrive.
type ErrNoRateAvailable struct {
	Currency string
	At       time.Time
}

func (e ErrNoRateAvailable) Error() string {
	return fmt.Sprintf("no fx rate available for %s at or before %s", e.Currency, e.At.Format(time.RFC3339))
}

// Sample is one observed (currency, rate, observed-at) data point.
// Samples are append-only: never mutated, never deleted.
type Sample struct {
	Currency   string          `json:"currency"`
	RateToUSD  decimal.Decimal `json:"rate_to_usd"`
	ObservedAt time.Time       `json:"observed_at"`
}

// Validate checks the structural invariants of a rate sample.
func (s *Sample) Validate() error {
	if len(s.Currency) != 3 {
		return ErrInvalidCurrencyFormat
	}
	if !s.RateToUSD.IsPositive() {
		return ErrInvalidRate
	}
	if s.ObservedAt.IsZero() {
		return ErrMissingObservedAt
	}
	return nil
}

// Equal reports whether two samples are bit-identical. Registry appends of
// an equal sample are no-ops rather than duplicates.
func (s *Sample) Equal(other *Sample) bool {
	return s.Currency == other.Currency &&
		s.RateToUSD.Equal(other.RateToUSD) &&
		s.ObservedAt.Equal(other.ObservedAt)
}

// Registry answers "best known rate for currency C at or before time T".
// Implementations must support concurrent lookups with a single append path.
type Registry interface {
	// RateAsOf returns the rate of the sample with the greatest observed_at
	// not after the given time. Samples sharing an observed_at resolve to
	// the most recently inserted one. Returns ErrNoRateAvailable when no
	// sample qualifies.
	RateAsOf(currency string, at time.Time) (decimal.Decimal, error)

	// AddSample appends a sample. Adding a bit-identical sample is a no-op.
	AddSample(sample Sample)
}
