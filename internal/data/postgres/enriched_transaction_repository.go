// Package postgres provides PostgreSQL implementations of the domain
// repositories. The enriched transaction writer is the idempotency boundary
// of the pipeline: duplicates are decided by the store's unique constraint,
// which stays correct across concurrent writers and process restarts.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/fxstream-enrichment-pipeline/internal/domain/transaction"
	"github.com/fxstream-enrichment-pipeline/internal/platform/persistence"
)

// EnrichedTransactionRepository implements transaction.Repository for PostgreSQL
type EnrichedTransactionRepository struct {
	querier persistence.Querier // The pool in production, pgxmock in tests
	logger  *slog.Logger
}

// NewEnrichedTransactionRepository creates a new PostgreSQL repository for
// enriched transactions.
func NewEnrichedTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &EnrichedTransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create commits an enriched transaction. A redelivered event hits the
// unique constraint on transaction_id, inserts nothing, and surfaces as
// ErrAlreadyProcessed — the caller treats that as success.
func (r *EnrichedTransactionRepository) Create(ctx context.Context, enriched *transaction.EnrichedTransaction) error {
	query := `
		INSERT INTO processed_transactions
			(transaction_id, amount, currency, amount_usd, country, user_id, fx_rate, occurred_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (transaction_id) DO NOTHING
	`

	tag, err := r.querier.Exec(ctx, query,
		enriched.TransactionID,
		enriched.Amount,
		enriched.Currency,
		enriched.AmountUSD,
		enriched.Country,
		enriched.UserID,
		enriched.FxRate,
		enriched.OccurredAt,
		enriched.ProcessedAt,
	)
	if err != nil {
		r.logger.Error("Failed to commit enriched transaction",
			"transaction_id", enriched.TransactionID,
			"error", err,
		)
		return fmt.Errorf("failed to commit enriched transaction: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return transaction.ErrAlreadyProcessed{TransactionID: enriched.TransactionID}
	}

	return nil
}

// GetByTransactionID retrieves a stored record or nil when absent
func (r *EnrichedTransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*transaction.EnrichedTransaction, error) {
	query := `
		SELECT transaction_id, amount, currency, amount_usd, country, user_id, fx_rate, occurred_at, processed_at
		FROM processed_transactions
		WHERE transaction_id = $1
	`

	var enriched transaction.EnrichedTransaction
	err := r.querier.QueryRow(ctx, query, transactionID).Scan(
		&enriched.TransactionID,
		&enriched.Amount,
		&enriched.Currency,
		&enriched.AmountUSD,
		&enriched.Country,
		&enriched.UserID,
		&enriched.FxRate,
		&enriched.OccurredAt,
		&enriched.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get enriched transaction", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to get enriched transaction: %w", err)
	}

	return &enriched, nil
}
