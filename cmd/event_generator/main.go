package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fxstream-enrichment-pipeline/internal/config"
	"github.com/fxstream-enrichment-pipeline/internal/generator"
	"github.com/fxstream-enrichment-pipeline/internal/logger"
	"github.com/fxstream-enrichment-pipeline/internal/platform/messaging/producers"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("event_generator")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Event Generator",
		"transaction_interval", cfg.Generator.TransactionInterval,
		"fx_rate_interval", cfg.Generator.FxRateInterval,
	)

	// Initialize Kafka producers, one per topic
	transactionProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka, cfg.Kafka.TransactionTopic)
	if err != nil {
		log.Error("Failed to initialize transaction Kafka producer", "error", err)
		os.Exit(1)
	}

	fxRateProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka, cfg.Kafka.FxRateTopic)
	if err != nil {
		log.Error("Failed to initialize fx rate Kafka producer", "error", err)
		os.Exit(1)
	}

	gen := generator.NewGenerator(log, transactionProducer, fxRateProducer, &cfg.Generator)

	// Create error channel for generator errors
	errChan := make(chan error, 1)

	// Run the generator in a goroutine
	go func() {
		if err := gen.Run(appCtx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- fmt.Errorf("generator error: %w", err)
		}
		close(errChan)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var generatorErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err, ok := <-errChan:
		if ok {
			log.Error("Generator error occurred", "error", err)
			generatorErr = err
		}
	}

	// Cancel the application context and wait for the generator to wind down
	cancelAppCtx()
	<-errChan

	// Close Kafka producers
	if err = transactionProducer.Close(); err != nil {
		log.Error("Error closing transaction Kafka producer", "error", err)
	}
	if err = fxRateProducer.Close(); err != nil {
		log.Error("Error closing fx rate Kafka producer", "error", err)
	}

	// Final status
	if generatorErr != nil {
		log.Error("Event Generator shutdown with errors", "error", generatorErr)
	} else {
		log.Info("Event Generator shutdown completed successfully")
	}
}
