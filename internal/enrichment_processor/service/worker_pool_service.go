package service

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/fxstream-enrichment-pipeline/internal/domain/transaction"
)

// WorkerPoolProcessingService bounds how many events are in flight at once.
// Submission blocks until the worker finishes, so the consumer's per-partition
// ordering and offset discipline are preserved: the offset of an event is
// never committed while the event is still being processed.
type WorkerPoolProcessingService struct {
	baseService ProcessingService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProcessingService(
	baseService ProcessingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProcessingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProcessingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ProcessTransaction submits an event to the worker pool and waits for the
// outcome.
func (s *WorkerPoolProcessingService) ProcessTransaction(ctx context.Context, raw *transaction.RawTransaction) error {
	resultChan := make(chan error, 1)

	rawCopy := *raw

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.ProcessTransaction(ctx, &rawCopy)
	})
	if err != nil {
		s.logger.Error("Failed to submit transaction to worker pool",
			"transaction_id", raw.TransactionID,
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolProcessingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolProcessingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolProcessingService) Capacity() int {
	return s.pool.Cap()
}
