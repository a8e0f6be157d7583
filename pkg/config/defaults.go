package config

import (
	"strings"
	"time"

	"github.com/marmos91/stackhaus/internal/allocservice/store"
	"github.com/marmos91/stackhaus/internal/bytesize"
	"github.com/marmos91/stackhaus/internal/stackwriter"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields after loading from file and environment.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyStackDefaults(&cfg.Stack)
	applyDatabaseDefaults(&cfg.Database)
	applyAPIDefaults(&cfg.API)
	applyMetricsDefaults(&cfg.Metrics)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyProfilingDefaults(&cfg.Profiling)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyStackDefaults(cfg *StackConfig) {
	if cfg.MaxStackBytes == 0 {
		cfg.MaxStackBytes = bytesize.ByteSize(stackwriter.DefaultMaxStackBytes)
	}
}

func applyDatabaseDefaults(cfg *store.Config) {
	if cfg.Type == "" {
		cfg.Type = store.DatabaseTypeSQLite
	}
}

func applyAPIDefaults(cfg *APIConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8900
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "dev"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "inuse_objects"}
	}
}
