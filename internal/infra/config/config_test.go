package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.HTTP.Address)
	require.Equal(t, "model/model.json", cfg.Model.Path)
	require.Equal(t, SourceFile, cfg.Artifacts.Source)
	require.True(t, cfg.Drift.Enabled)
	require.Equal(t, 10000, cfg.Drift.MaxEntries)
	require.False(t, cfg.HTTP.RateLimit.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9000"
  readTimeout: 2s
model:
  path: /srv/model.json
artifacts:
  source: s3
  s3:
    endpoint: https://acct.r2.cloudflarestorage.com
    bucket: models
drift:
  redis:
    enabled: true
    addr: localhost:6379
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("MODEL_PATH", "/override/model.json")
	t.Setenv("HTTP_RATE_LIMIT_RPM", "10")
	t.Setenv("DRIFT_MAX_ENTRIES", "500")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, 2*time.Second, cfg.HTTP.ReadTimeout)
	require.Equal(t, "/override/model.json", cfg.Model.Path)
	require.Equal(t, "model/scaler.json", cfg.Model.ScalerPath)
	require.Equal(t, SourceS3, cfg.Artifacts.Source)
	require.Equal(t, "models", cfg.Artifacts.S3.Bucket)
	require.Equal(t, 10, cfg.HTTP.RateLimit.RequestsPerMinute)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	require.True(t, cfg.Drift.Redis.Enabled)
	require.Equal(t, 500, cfg.Drift.MaxEntries)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"address":     func(c *Config) { c.HTTP.Address = "" },
		"model path":  func(c *Config) { c.Model.Path = " " },
		"source":      func(c *Config) { c.Artifacts.Source = "gcs" },
		"s3 bucket":   func(c *Config) { c.Artifacts.Source = SourceS3; c.Artifacts.S3.Endpoint = "localhost:9000" },
		"timeout":     func(c *Config) { c.Artifacts.LoadTimeout = 0 },
		"rate limit":  func(c *Config) { c.HTTP.RateLimit.Enabled = true; c.HTTP.RateLimit.Burst = 0 },
		"max entries": func(c *Config) { c.Drift.MaxEntries = 0 },
		"redis addr":  func(c *Config) { c.Drift.Redis.Enabled = true },
		"drift limit": func(c *Config) { c.Drift.Limit = -1 },
	}
	for name, mutate := range cases {
		cfg := defaultConfig()
		mutate(cfg)
		require.Error(t, cfg.Validate(), name)
	}
	require.NoError(t, defaultConfig().Validate())
}
