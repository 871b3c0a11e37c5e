package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fxstream-enrichment-pipeline/internal/config"
	"github.com/fxstream-enrichment-pipeline/internal/data/mongo"
	"github.com/fxstream-enrichment-pipeline/internal/data/postgres"
	"github.com/fxstream-enrichment-pipeline/internal/enrichment_processor/components"
	"github.com/fxstream-enrichment-pipeline/internal/enrichment_processor/consumer"
	"github.com/fxstream-enrichment-pipeline/internal/enrichment_processor/service"
	"github.com/fxstream-enrichment-pipeline/internal/fxregistry"
	"github.com/fxstream-enrichment-pipeline/internal/logger"
	"github.com/fxstream-enrichment-pipeline/internal/platform/messaging/consumers"
	"github.com/fxstream-enrichment-pipeline/internal/platform/messaging/producers"
	"github.com/fxstream-enrichment-pipeline/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("enrichment_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Enrichment Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := postgres.NewEnrichedTransactionRepository(log, postgresDB)
	fxRateRepo := postgres.NewFxRateRepository(log, postgresDB)
	deadLetterRepo := mongo.NewDeadLetterRepository(log, mongoDB.Database())

	// Rebuild the in-memory rate registry from previously stored samples so
	// enrichment resolves historical rates immediately after a restart.
	registry, err := fxregistry.NewFromRepository(appCtx, log, fxRateRepo)
	if err != nil {
		log.Error("Failed to hydrate fx rate registry", "error", err)
		os.Exit(1)
	}
	log.Info("Hydrated fx rate registry", "samples", registry.Len())

	// Initialize Kafka consumers, one per topic
	transactionConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka, cfg.Kafka.TransactionTopic, cfg.Kafka.ConsumerGroup)
	fxRateConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka, cfg.Kafka.FxRateTopic, cfg.Kafka.FxConsumerGroup)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handlers are nil-safe.

	// Initialize processing service with separated concerns
	processingService := components.CreateProcessingService(
		registry,
		transactionRepo,
		dlqProducer,
		deadLetterRepo,
		log,
		cfg,
	)

	// Initialize event handlers
	transactionEventHandler := consumer.NewTransactionEventHandler(
		log,
		processingService,
		dlqProducer,
	)
	fxRateEventHandler := consumer.NewFxRateEventHandler(
		log,
		registry,
		fxRateRepo,
		dlqProducer,
	)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start transaction consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting transaction consumer",
			"topic", cfg.Kafka.TransactionTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := transactionConsumer.Subscribe(appCtx, transactionEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("transaction consumer error: %w", err)
		}
	}()

	// Start fx rate consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting fx rate consumer",
			"topic", cfg.Kafka.FxRateTopic,
			"group", cfg.Kafka.FxConsumerGroup,
		)
		if err := fxRateConsumer.Subscribe(appCtx, fxRateEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("fx rate consumer error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool if it's a WorkerPoolProcessingService
	if wpService, ok := processingService.(*service.WorkerPoolProcessingService); ok {
		log.Info("Shutting down worker pool", "running_workers", wpService.Running())
		wpService.Shutdown()
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil {
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumers
	if err = transactionConsumer.Close(); err != nil {
		log.Error("Error closing transaction consumer", "error", err)
	}
	if err = fxRateConsumer.Close(); err != nil {
		log.Error("Error closing fx rate consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Enrichment Processor shutdown with errors", "error", serviceErr)
	} else {
		log.Info("Enrichment Processor shutdown completed successfully")
	}
}
