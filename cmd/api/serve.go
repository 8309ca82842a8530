package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicflow/scheduling-api/internal/adapters/httpapi"
	kafkaevents "github.com/clinicflow/scheduling-api/internal/adapters/kafka/events"
	"github.com/clinicflow/scheduling-api/internal/app/appointments"
	"github.com/clinicflow/scheduling-api/internal/app/dashboard"
	platformclock "github.com/clinicflow/scheduling-api/internal/platform/clock"
	"github.com/clinicflow/scheduling-api/internal/platform/config"
	"github.com/clinicflow/scheduling-api/internal/platform/logging"
	"github.com/clinicflow/scheduling-api/internal/platform/seed"
	"github.com/clinicflow/scheduling-api/internal/platform/telemetry"
	"github.com/clinicflow/scheduling-api/internal/ports/out/events"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.IsDev())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	otelShutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSamplingRatio,
	})
	if err != nil {
		logger.Error().Err(err).Msg("otel setup failed; tracing disabled")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.StorageBackend).Msg("storage init failed")
		return err
	}
	defer b.Close()

	if cfg.SeedDemoData {
		n, err := seed.Load(ctx, b.repo)
		if err != nil {
			return err
		}
		logger.Info().Int("inserted", n).Msg("demo appointments loaded")
	}

	var pub events.Publisher
	checks := b.checks
	if len(kafkaevents.SplitBrokers(cfg.KafkaBrokers)) > 0 {
		kp, err := kafkaevents.NewPublisher(kafkaevents.Config{Brokers: cfg.KafkaBrokers, TopicPrefix: cfg.KafkaTopicPrefix})
		if err != nil {
			return err
		}
		defer func() { _ = kp.Close() }()
		pub = kp
		checks = append(checks, httpapi.ReadyCheck{Name: "kafka", Check: kafkaevents.ReadyCheck(cfg.KafkaBrokers)})
	}

	clk := platformclock.NewSystemClock()
	apptSvc := appointments.NewService(b.repo, b.idem, clk, pub)
	api := httpapi.NewServer(apptSvc, dashboard.NewService(b.repo), clk)

	traceName := ""
	if cfg.OTelEnabled {
		traceName = cfg.ServiceName
	}
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		ReadyChecks:    checks,
		TraceName:      traceName,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("storage", cfg.StorageBackend).
			Str("idempotency", cfg.IdempotencyBackend).
			Bool("events", pub != nil).
			Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server error")
			return err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
		return err
	}
	logger.Info().Msg("http server stopped")
	return nil
}
