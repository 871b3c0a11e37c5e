package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrMissingTransactionID  = errors.New("transaction_id cannot be empty")
	ErrMissingUserID         = errors.New("user_id cannot be empty")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrMissingOccurredAt     = errors.New("occurred_at timestamp is required")
)

// ErrAlreadyProcessed signals that an enriched transaction with the same
// transaction ID already exists in the store. Callers treat it as success:
// it is how redelivered events collapse into a single stored record.
type ErrAlreadyProcessed struct {
	TransactionID string
}

func (e ErrAlreadyProcessed) Error() string {
	return fmt.Sprintf("transaction %s already processed", e.TransactionID)
}

// RawTransaction is the immutable input event consumed from the transport.
// It exists only in flight; once enriched and committed it is never read again.
type RawTransaction struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Country       string          `json:"country"`
	UserID        string          `json:"user_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Validate checks the structural invariants of a raw event. A validation
// failure is permanent: the event can never become processable and belongs
// in the dead-letter sink, not in a retry loop.
func (t *RawTransaction) Validate() error {
	if t.TransactionID == "" {
		return ErrMissingTransactionID
	}
	if t.UserID == "" {
		return ErrMissingUserID
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(t.Currency) != 3 {
		return ErrInvalidCurrencyFormat
	}
	if t.OccurredAt.IsZero() {
		return ErrMissingOccurredAt
	}
	return nil
}

// EnrichedTransaction is a raw transaction with its USD conversion applied.
// AmountUSD is fixed at enrichment time and never recomputed, even if a more
// accurate historical rate arrives later, so stored results stay auditable.
type EnrichedTransaction struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	AmountUSD     decimal.Decimal `json:"amount_usd"`
	Country       string          `json:"country"`
	UserID        string          `json:"user_id"`
	FxRate        decimal.Decimal `json:"fx_rate"`
	OccurredAt    time.Time       `json:"occurred_at"`
	ProcessedAt   time.Time       `json:"processed_at"`
}
