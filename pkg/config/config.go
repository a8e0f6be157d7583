// Package config loads stackhaus configuration for the allocation
// daemon, the CLI, and the preload worker, using a viper-backed
// precedence model: CLI flags > environment variables
// (STACKHAUS_*) > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/stackhaus/internal/allocservice/store"
	"github.com/marmos91/stackhaus/internal/bytesize"
)

// Config is the stackhaus configuration. The allocation daemon reads
// every section; stackctl and bserver only need Controller and S3.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Controller is the base URL of the allocation service's REST API,
	// e.g. "http://localhost:8900".
	Controller string `mapstructure:"controller" validate:"required" yaml:"controller"`

	// S3 configures the object-store backend the stack writer/reader
	// use to hold stack data/idx/meta objects.
	S3 S3Config `mapstructure:"s3" yaml:"s3"`

	// Stack configures the stack writer's rollover and naming behavior.
	Stack StackConfig `mapstructure:"stack" yaml:"stack"`

	// Database configures the allocation daemon's persistence backend.
	// Unused by stackctl/bserver.
	Database store.Config `mapstructure:"database" yaml:"database"`

	// API configures the allocation daemon's REST listener.
	API APIConfig `mapstructure:"api" yaml:"api"`

	// Metrics configures the Prometheus metrics HTTP server.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Telemetry configures OpenTelemetry distributed tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Profiling configures Pyroscope continuous profiling.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// S3Config configures an S3 or S3-compatible object-store backend.
type S3Config struct {
	Bucket         string `mapstructure:"bucket" validate:"required" yaml:"bucket"`
	Region         string `mapstructure:"region" yaml:"region"`
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	ForcePathStyle bool   `mapstructure:"force_path_style" yaml:"force_path_style,omitempty"`
	AccessKeyID    string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
}

// StackConfig configures the stack writer's behavior.
type StackConfig struct {
	// Prefix is prepended to every object key (spec.md's naming scheme).
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`

	// MaxStackBytes bounds a stack before rollover. Accepts human-readable
	// sizes like "5Gi". Default: stackwriter.DefaultMaxStackBytes.
	MaxStackBytes bytesize.ByteSize `mapstructure:"max_stack_bytes" yaml:"max_stack_bytes,omitempty"`
}

// APIConfig configures the allocation daemon's REST listener.
type APIConfig struct {
	Port         int           `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout,omitempty"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout,omitempty"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// TelemetryConfig configures the OpenTelemetry OTLP/gRPC trace exporter.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
	ServiceVersion string  `mapstructure:"service_version" yaml:"service_version,omitempty"`
	Endpoint       string  `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Insecure       bool    `mapstructure:"insecure" yaml:"insecure,omitempty"`
	SampleRate     float64 `mapstructure:"sample_rate" validate:"omitempty,min=0,max=1" yaml:"sample_rate,omitempty"`
}

// ProfilingConfig configures Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if !found {
		ApplyDefaults(cfg)
		return cfg, nil
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("STACKHAUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stackhaus")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "stackhaus")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
