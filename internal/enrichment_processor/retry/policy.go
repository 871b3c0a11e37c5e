// Package retry implements the bounded exponential backoff applied to
// transient failures before an event is routed to the dead-letter sink.
package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/fxstream-enrichment-pipeline/internal/config"
)

// Policy computes per-attempt delays. Delays grow exponentially from Base,
// are capped at Cap, and carry fractional Jitter so competing consumers do
// not retry in lockstep. MaxWait bounds the total time spent retrying a
// single event.
type Policy struct {
	Base    time.Duration
	Cap     time.Duration
	Jitter  float64
	MaxWait time.Duration
}

// NewPolicy builds a Policy from configuration.
func NewPolicy(cfg *config.RetryConfig) *Policy {
	return &Policy{
		Base:    cfg.BackoffBase,
		Cap:     cfg.BackoffCap,
		Jitter:  cfg.BackoffJitter,
		MaxWait: cfg.MaxWait,
	}
}

// Delay returns the backoff delay for the given zero-based attempt:
// base * 2^attempt, capped, with jitter applied in [1-Jitter, 1+Jitter].
func (p *Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(p.Base) * math.Pow(2, float64(attempt))
	if delay > float64(p.Cap) || delay <= 0 {
		delay = float64(p.Cap)
	}

	if p.Jitter > 0 {
		factor := 1 + p.Jitter*(2*rand.Float64()-1)
		delay *= factor
	}

	return time.Duration(delay)
}

// Exhausted reports whether an event first seen at firstSeen has been
// retrying longer than MaxWait as of now.
func (p *Policy) Exhausted(firstSeen, now time.Time) bool {
	return now.Sub(firstSeen) >= p.MaxWait
}
