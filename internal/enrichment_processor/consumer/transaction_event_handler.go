// Package consumer contains the Kafka message handlers of the enrichment
// processor. Handlers return nil only when an event reached a terminal
// outcome; any other return leaves the offset uncommitted for redelivery.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fxstream-enrichment-pipeline/internal/domain/transaction"
	"github.com/fxstream-enrichment-pipeline/internal/enrichment_processor/service"
	"github.com/fxstream-enrichment-pipeline/internal/platform/messaging/producers"
)

// TransactionEventHandler handles incoming raw transaction messages from Kafka
type TransactionEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewTransactionEventHandler creates a new handler
func NewTransactionEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *TransactionEventHandler {
	return &TransactionEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages
func (h *TransactionEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var raw transaction.RawTransaction
	if err := json.Unmarshal(value, &raw); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal raw transaction from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Undecodable payloads can never succeed; route straight to the DLQ.
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				return nil
			}
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	h.logger.Info("Received raw transaction for enrichment",
		"transaction_id", raw.TransactionID,
		"currency", raw.Currency,
		"amount", raw.Amount.String(),
	)

	if err := h.processingService.ProcessTransaction(ctx, &raw); err != nil {
		h.logger.Error("Failed to process transaction",
			"transaction_id", raw.TransactionID,
			"error", err,
		)
		return fmt.Errorf("processing transaction %s failed: %w", raw.TransactionID, err)
	}

	return nil
}
