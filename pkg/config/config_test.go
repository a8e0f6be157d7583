package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 8900, cfg.API.Port)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
controller: "http://localhost:8900"
s3:
  bucket: "stackhaus-stacks"
  region: "us-east-1"
logging:
  level: debug
  format: json
  output: stdout
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8900", cfg.Controller)
	assert.Equal(t, "stackhaus-stacks", cfg.S3.Bucket)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
controller: "http://localhost:8900"
s3:
  bucket: "stackhaus-stacks"
logging:
  level: NOISY
  format: text
  output: stdout
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &Config{Controller: "http://localhost:8900"}
	cfg.S3.Bucket = "stackhaus-stacks"
	ApplyDefaults(cfg)

	require.NoError(t, SaveConfig(cfg, path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Controller, reloaded.Controller)
	assert.Equal(t, cfg.S3.Bucket, reloaded.S3.Bucket)
}
