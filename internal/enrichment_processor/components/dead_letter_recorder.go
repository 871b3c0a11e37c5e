package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxstream-enrichment-pipeline/internal/domain/deadletter"
	"github.com/fxstream-enrichment-pipeline/internal/domain/shared"
	"github.com/fxstream-enrichment-pipeline/internal/enrichment_processor/service"
	"github.com/fxstream-enrichment-pipeline/internal/platform/messaging/producers"
)

// DeadLetterRecorderImpl routes unprocessable events to the DLQ topic and
// mirrors them into the archive. The topic publish is the operation that
// must succeed; the archive write is best-effort reporting.
type DeadLetterRecorderImpl struct {
	producer producers.DeadLetterPublisher
	archive  deadletter.Repository
	logger   *slog.Logger
}

func NewDeadLetterRecorder(
	producer producers.DeadLetterPublisher,
	archive deadletter.Repository,
	logger *slog.Logger,
) service.DeadLetterRecorder {
	return &DeadLetterRecorderImpl{
		producer: producer,
		archive:  archive,
		logger:   logger,
	}
}

// Record publishes the event to the DLQ topic and archives it. A failed
// topic publish is returned to the caller so the offset stays uncommitted
// and the event is not silently dropped.
func (r *DeadLetterRecorderImpl) Record(
	ctx context.Context,
	eventKey string,
	payload []byte,
	reason shared.DeadLetterReason,
	attempts int,
	firstSeen time.Time,
) error {
	r.logger.Warn("Dead-lettering event",
		"event_key", eventKey,
		"reason", string(reason),
		"attempts", attempts,
	)

	if err := r.producer.PublishToDLQ(ctx, eventKey, payload, string(reason)); err != nil {
		return fmt.Errorf("failed to dead-letter event %s: %w", eventKey, err)
	}

	record := &deadletter.Record{
		EventKey:       eventKey,
		Payload:        string(payload),
		Reason:         reason,
		Attempts:       attempts,
		FirstSeenAt:    firstSeen,
		DeadLetteredAt: time.Now().UTC(),
	}
	if r.archive != nil {
		if err := r.archive.Insert(ctx, record); err != nil {
			r.logger.Error("Failed to archive dead-lettered event",
				"event_key", eventKey,
				"error", err,
			)
		}
	}

	return nil
}
