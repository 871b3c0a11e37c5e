package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fxstream-enrichment-pipeline/internal/domain/fxrate"
	"github.com/fxstream-enrichment-pipeline/internal/platform/messaging/producers"
)

// FxRateEventHandler handles incoming rate sample messages from Kafka.
// Samples are persisted before they are published to the in-memory registry,
// so a restart never loses a rate the engine has already used.
type FxRateEventHandler struct {
	registry fxrate.Registry
	repo     fxrate.Repository
	producer producers.DeadLetterPublisher
	logger   *slog.Logger
}

// NewFxRateEventHandler creates a new handler
func NewFxRateEventHandler(
	logger *slog.Logger,
	registry fxrate.Registry,
	repo fxrate.Repository,
	producer producers.DeadLetterPublisher,
) *FxRateEventHandler {
	return &FxRateEventHandler{
		registry: registry,
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// HandleMessage processes Kafka messages
func (h *FxRateEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var sample fxrate.Sample
	if err := json.Unmarshal(value, &sample); err != nil {
		return h.rejectSample(ctx, key, value,
			fmt.Sprintf("Failed to unmarshal fx rate sample: %s", err.Error()), err)
	}

	if err := sample.Validate(); err != nil {
		return h.rejectSample(ctx, key, value,
			fmt.Sprintf("Invalid fx rate sample: %s", err.Error()), err)
	}

	if err := h.repo.Append(ctx, &sample); err != nil {
		// Storage is transient; leave the offset uncommitted and retry.
		return fmt.Errorf("persisting fx rate sample for %s failed: %w", sample.Currency, err)
	}

	h.registry.AddSample(sample)

	h.logger.Info("Registered fx rate sample",
		"currency", sample.Currency,
		"rate_to_usd", sample.RateToUSD.String(),
		"observed_at", sample.ObservedAt,
	)
	return nil
}

// rejectSample dead-letters a sample that can never become valid.
func (h *FxRateEventHandler) rejectSample(ctx context.Context, key, value []byte, reason string, cause error) error {
	h.logger.Error(reason, "message_key", string(key))

	if h.producer != nil {
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
			h.logger.Error("Failed to publish fx rate sample to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			return nil
		}
	}
	return fmt.Errorf("unprocessable fx rate sample: %w", cause)
}
