package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"audiotable/internal/config"
	"audiotable/internal/jobs"
	"audiotable/internal/metrics"
	"audiotable/internal/server"
	"audiotable/internal/tracing"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), ctx, cfg)
		},
	}
}

func runServer(parent context.Context, ctx *commandContext, cfg *config.AppConfig) error {
	log := ctx.logger()

	runCtx, stop := signal.NotifyContext(parent, shutdownSignals...)
	defer stop()

	if cfg.Tracing.Enabled {
		tracer, err := tracing.NewTracer(tracing.ServiceName, cfg.Tracing.Exporter, cfg.Tracing.Endpoint)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := tracer.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("tracer shutdown failed")
			}
		}()
	}

	dbManager, err := ctx.openDatabase()
	if err != nil {
		return err
	}
	defer dbManager.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.InitializeMetrics(reg)

	srv := server.New(cfg, dbManager.GetGormDB(), m, reg)

	if cfg.Maintenance.SyncSchedule != "" {
		scheduler, err := jobs.NewSyncScheduler(cfg.Maintenance.SyncSchedule, srv.Syncer(), *log)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := scheduler.Stop(stopCtx); err != nil {
				log.Warn().Err(err).Msg("sync scheduler did not stop in time")
			}
		}()
		log.Info().Str("schedule", cfg.Maintenance.SyncSchedule).Msg("scheduled audio sync enabled")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-runCtx.Done():
	}

	log.Info().Msg("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
