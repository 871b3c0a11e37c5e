package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxstream-enrichment-pipeline/internal/domain/fxrate"
	"github.com/fxstream-enrichment-pipeline/internal/domain/shared"
	"github.com/fxstream-enrichment-pipeline/internal/domain/transaction"
	"github.com/fxstream-enrichment-pipeline/internal/enrichment_processor/retry"
)

// ProcessingServiceImpl drives one event through the enrichment state
// machine. Per-event state lives on the stack of a single call, so a crash
// loses nothing: the uncommitted offset makes the transport redeliver and
// the run restarts from RECEIVED.
type ProcessingServiceImpl struct {
	enricher   Enricher
	repo       transaction.Repository
	deadLetter DeadLetterRecorder
	policy     *retry.Policy
	logger     *slog.Logger
}

func NewProcessingService(
	enricher Enricher,
	repo transaction.Repository,
	deadLetter DeadLetterRecorder,
	policy *retry.Policy,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		enricher:   enricher,
		repo:       repo,
		deadLetter: deadLetter,
		policy:     policy,
		logger:     logger,
	}
}

// ProcessTransaction runs an event to a terminal outcome.
//
// Malformed events dead-letter immediately; they can never succeed. A
// missing rate or an unavailable store is transient, so the event retries
// with backoff until the policy's total wait is exhausted, then
// dead-letters. Context cancellation aborts mid-flight with a non-nil
// error so the offset stays uncommitted and the event is redelivered.
func (s *ProcessingServiceImpl) ProcessTransaction(ctx context.Context, raw *transaction.RawTransaction) error {
	logger := s.logger.With("transaction_id", raw.TransactionID)
	logger.Info("Processing transaction", "state", string(shared.StateReceived), "currency", raw.Currency)

	if err := raw.Validate(); err != nil {
		logger.Error("Transaction validation failed", "error", err)
		return s.routeToDeadLetter(ctx, raw, shared.ReasonMalformedEvent, 0, time.Now().UTC())
	}

	firstSeen := time.Now().UTC()
	attempt := 0

	for {
		enriched, err := s.enricher.Enrich(ctx, raw)
		if err != nil {
			var noRate fxrate.ErrNoRateAvailable
			if !errors.As(err, &noRate) {
				return fmt.Errorf("enrichment of %s failed: %w", raw.TransactionID, err)
			}

			logger.Info("Awaiting rate sample",
				"state", string(shared.StateAwaitingRate),
				"currency", raw.Currency,
				"attempt", attempt,
			)
			if s.policy.Exhausted(firstSeen, time.Now().UTC()) {
				return s.routeToDeadLetter(ctx, raw, shared.ReasonNoRateAvailable, attempt, firstSeen)
			}
			if err := s.wait(ctx, s.policy.Delay(attempt)); err != nil {
				return err
			}
			attempt++
			continue
		}

		logger.Info("Committing enriched transaction",
			"state", string(shared.StateWriting),
			"amount_usd", enriched.AmountUSD.String(),
			"fx_rate", enriched.FxRate.String(),
		)

		err = s.repo.Create(ctx, enriched)
		if err == nil {
			logger.Info("Transaction committed", "state", string(shared.StateCommitted))
			return nil
		}

		var alreadyProcessed transaction.ErrAlreadyProcessed
		if errors.As(err, &alreadyProcessed) {
			// Redelivery of a committed event; the stored record wins.
			logger.Info("Transaction already processed, acknowledging", "state", string(shared.StateCommitted))
			return nil
		}

		logger.Error("Storage write failed",
			"state", string(shared.StateRetryableFailure),
			"attempt", attempt,
			"error", err,
		)
		if s.policy.Exhausted(firstSeen, time.Now().UTC()) {
			return s.routeToDeadLetter(ctx, raw, shared.ReasonStorageUnavailable, attempt, firstSeen)
		}
		if err := s.wait(ctx, s.policy.Delay(attempt)); err != nil {
			return err
		}
		attempt++
	}
}

// routeToDeadLetter is terminal: a nil return acknowledges the offset so the
// event is never redelivered. A failed dead-letter publish propagates so the
// event is retried rather than dropped.
func (s *ProcessingServiceImpl) routeToDeadLetter(
	ctx context.Context,
	raw *transaction.RawTransaction,
	reason shared.DeadLetterReason,
	attempts int,
	firstSeen time.Time,
) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s for dead-letter: %w", raw.TransactionID, err)
	}
	return s.deadLetter.Record(ctx, raw.TransactionID, payload, reason, attempts, firstSeen)
}

func (s *ProcessingServiceImpl) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
