// Command stackhaus-allocd is the Allocation Service daemon: it hosts the
// REST control plane (next_stack_id, register/de_register_stack_source,
// query_registered_source, locate_stack, pre_load, un_pre_load) backed by
// a GORM store, graceful-shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/stackhaus/internal/allocservice/api"
	"github.com/marmos91/stackhaus/internal/allocservice/store"
	"github.com/marmos91/stackhaus/internal/logger"
	"github.com/marmos91/stackhaus/internal/metrics"
	// Registers the Prometheus constructors with internal/metrics via init().
	_ "github.com/marmos91/stackhaus/internal/metrics/prometheus"
	"github.com/marmos91/stackhaus/internal/telemetry"
	"github.com/marmos91/stackhaus/pkg/config"
)

func main() {
	flags := flag.NewFlagSet("stackhaus-allocd", flag.ExitOnError)
	configPath := flags.String("config", "", "path to config file (default: $XDG_CONFIG_HOME/stackhaus/config.yaml)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "stackhaus-allocd",
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	stopProfiling, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Profiling.Enabled,
		ServiceName:    "stackhaus-allocd",
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Endpoint:       cfg.Profiling.Endpoint,
		ProfileTypes:   cfg.Profiling.ProfileTypes,
	})
	if err != nil {
		log.Fatalf("failed to initialize profiling: %v", err)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Error("profiling shutdown failed", "error", err)
		}
	}()

	// Metrics must be initialized before the store is built so that
	// store.New's caller can attach a non-nil Metrics when enabled.
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		reg := metrics.InitRegistry()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: mux}
		go func() {
			logger.Info("metrics server listening", "port", cfg.Metrics.Port)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	db, err := store.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to open allocation store: %v", err)
	}
	db.SetMetrics(metrics.NewAllocMetrics())

	router := api.NewRouter(db)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("allocation service listening", "port", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, draining connections")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
		logger.Info("allocation service stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("allocation service error", "error", err)
			os.Exit(1)
		}
	}
}
