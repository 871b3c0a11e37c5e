package transaction

import (
	"context"
)

// Repository defines persistence operations for enriched transactions.
// Create is the idempotent writer of the pipeline: the store's uniqueness
// constraint on transaction_id decides duplicates, never an in-memory check.
type Repository interface {
	// Create inserts the enriched transaction. If a record with the same
	// transaction ID already exists it returns ErrAlreadyProcessed and
	// leaves the stored record untouched.
	Create(ctx context.Context, enriched *EnrichedTransaction) error

	// GetByTransactionID returns the stored record or nil when absent.
	GetByTransactionID(ctx context.Context, transactionID string) (*EnrichedTransaction, error)
}
