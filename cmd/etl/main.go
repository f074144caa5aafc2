// Command etl clips a directory of FIRMS-style fire-detection granules down
// to the subsets within the configured radii of the reference airport, via a
// coarse bounding-box prefilter and an exact projected containment filter.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lbhendricks/KTGclimate-fire/internal/adapter/delim"
	httpadapter "github.com/lbhendricks/KTGclimate-fire/internal/adapter/http"
	kafkaadapter "github.com/lbhendricks/KTGclimate-fire/internal/adapter/kafka"
	"github.com/lbhendricks/KTGclimate-fire/internal/config"
	"github.com/lbhendricks/KTGclimate-fire/internal/observability"
	"github.com/lbhendricks/KTGclimate-fire/internal/pipeline"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Optional sink (feature-flagged via KAFKA_BROKERS).
	var sink pipeline.MatchSink
	var sinkCloser interface{ Close() error }
	if cfg.KafkaEnabled() {
		s := kafkaadapter.NewSink(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		sink = s
		sinkCloser = s
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic)
	}

	p, err := pipeline.New(cfg, delim.NewReader(), delim.NewWriter(), sink, logger, metrics)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional status server for long runs (feature-flagged via STATUS_ADDR).
	var srv *httpadapter.Server
	if cfg.StatusAddr != "" {
		srv = httpadapter.NewServer(cfg.StatusAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server error", "error", err)
			}
		}()
	}

	runErr := p.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("status server shutdown error", "error", err)
		}
	}
	if sinkCloser != nil {
		if err := sinkCloser.Close(); err != nil {
			logger.Error("kafka sink close error", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("pipeline failed", "error", runErr)
		os.Exit(1)
	}
}
