package deadletter

import (
	"context"
	"time"

	"github.com/fxstream-enrichment-pipeline/internal/domain/shared"
)

// Record is a durably archived unprocessable event. The DLQ topic carries the
// same payload for replay tooling; this archive exists for operator reporting.
type Record struct {
	EventKey       string                  `json:"event_key" bson:"event_key"`
	Payload        string                  `json:"payload" bson:"payload"`
	Reason         shared.DeadLetterReason `json:"reason" bson:"reason"`
	Attempts       int                     `json:"attempts" bson:"attempts"`
	FirstSeenAt    time.Time               `json:"first_seen_at" bson:"first_seen_at"`
	DeadLetteredAt time.Time               `json:"dead_lettered_at" bson:"dead_lettered_at"`
}

// Repository defines the dead-letter archive operations.
type Repository interface {
	Insert(ctx context.Context, record *Record) error

	// List returns records newest first.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	Count(ctx context.Context) (int64, error)
}
