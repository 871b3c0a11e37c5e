package service

import (
	"context"
	"time"

	"github.com/fxstream-enrichment-pipeline/internal/domain/shared"
	"github.com/fxstream-enrichment-pipeline/internal/domain/transaction"
)

// ProcessingService defines the interface for processing raw transaction events.
// A nil return means the event reached a terminal outcome (committed, already
// processed, or dead-lettered) and its offset can be acknowledged. A non-nil
// return leaves the offset uncommitted so the transport redelivers.
type ProcessingService interface {
	ProcessTransaction(ctx context.Context, raw *transaction.RawTransaction) error
}

// Enricher converts a raw transaction into its USD-enriched form using the
// point-in-time rate for the transaction's occurred_at.
type Enricher interface {
	Enrich(ctx context.Context, raw *transaction.RawTransaction) (*transaction.EnrichedTransaction, error)
}

// DeadLetterRecorder routes an unprocessable event to the dead-letter sink:
// the DLQ topic plus the durable archive.
type DeadLetterRecorder interface {
	Record(ctx context.Context, eventKey string, payload []byte, reason shared.DeadLetterReason, attempts int, firstSeen time.Time) error
}
