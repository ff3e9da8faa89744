// Command simd runs the rockfall monitoring simulator service: a continuous
// multi-sensor frame stream over WebSocket, hazard triggering over HTTP, and
// optional frame publishing to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/rudresh69/SIH2025/internal/adapter/httpapi"
	kafkaadapter "github.com/rudresh69/SIH2025/internal/adapter/kafka"
	"github.com/rudresh69/SIH2025/internal/broadcast"
	"github.com/rudresh69/SIH2025/internal/config"
	"github.com/rudresh69/SIH2025/internal/observability"
	"github.com/rudresh69/SIH2025/internal/sim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	simCtx := sim.NewContext(cfg.SimSeed,
		sim.WithSampleRate(cfg.SampleRate),
		sim.WithAutonomousEvents(cfg.AutonomousEvents),
	)
	logger.Info("simulation initialized",
		"seed", cfg.SimSeed,
		"sample_rate", cfg.SampleRate,
		"autonomous_events", cfg.AutonomousEvents,
	)

	// Frame publishing to Kafka is feature-flagged via KAFKA_ENABLED.
	var publisher broadcast.FramePublisher
	var kafkaPub *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPub
		metrics.KafkaEnabled.Set(1)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	broadcaster := broadcast.New(simCtx, clockwork.NewRealClock(), cfg.StreamInterval, publisher, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, broadcaster, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the tick loop.
	go func() {
		if err := broadcaster.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("broadcast loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
