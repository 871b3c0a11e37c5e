package components

import (
	"log/slog"

	"github.com/fxstream-enrichment-pipeline/internal/config"
	"github.com/fxstream-enrichment-pipeline/internal/domain/deadletter"
	"github.com/fxstream-enrichment-pipeline/internal/domain/fxrate"
	"github.com/fxstream-enrichment-pipeline/internal/domain/transaction"
	"github.com/fxstream-enrichment-pipeline/internal/enrichment_processor/retry"
	"github.com/fxstream-enrichment-pipeline/internal/enrichment_processor/service"
	"github.com/fxstream-enrichment-pipeline/internal/platform/messaging/producers"
)

// CreateProcessingService creates a new ProcessingService with all its dependencies.
func CreateProcessingService(
	registry fxrate.Registry,
	transactionRepo transaction.Repository,
	dlqProducer producers.DeadLetterPublisher,
	archiveRepo deadletter.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	enricher := NewEnricher(registry, logger)
	deadLetterRecorder := NewDeadLetterRecorder(dlqProducer, archiveRepo, logger)
	policy := retry.NewPolicy(&cfg.Retry)

	baseService := service.NewProcessingService(
		enricher,
		transactionRepo,
		deadLetterRecorder,
		policy,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
