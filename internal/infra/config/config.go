package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Artifact source kinds.
const (
	SourceFile = "file"
	SourceS3   = "s3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Model     ModelConfig     `yaml:"model"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Labels    LabelsConfig    `yaml:"labels"`
	Drift     DriftConfig     `yaml:"drift"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	CORSOrigins     []string        `yaml:"corsOrigins"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	Metrics         bool            `yaml:"metrics"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// ModelConfig names the three persisted artifacts.
type ModelConfig struct {
	Path         string `yaml:"path"`
	ScalerPath   string `yaml:"scalerPath"`
	EncodersPath string `yaml:"encodersPath"`
}

// ArtifactsConfig selects where artifacts are read from.
type ArtifactsConfig struct {
	Source      string        `yaml:"source"`
	Root        string        `yaml:"root"`
	LoadTimeout time.Duration `yaml:"loadTimeout"`
	S3          S3Config      `yaml:"s3"`
}

// S3Config contains S3-compatible object storage settings.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"useSSL"`
}

// LabelsConfig optionally sources label encoder classes from Postgres.
type LabelsConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// DriftConfig controls unseen label tracking.
type DriftConfig struct {
	Enabled    bool        `yaml:"enabled"`
	Limit      int         `yaml:"limit"`
	MaxEntries int         `yaml:"maxEntries"`
	Prefix     string      `yaml:"prefix"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig contains connection information for the Valkey store.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_METRICS_ENABLED"); v != "" {
		cfg.HTTP.Metrics = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("SCALER_PATH"); v != "" {
		cfg.Model.ScalerPath = v
	}
	if v := os.Getenv("ENCODERS_PATH"); v != "" {
		cfg.Model.EncodersPath = v
	}
	if v := os.Getenv("ARTIFACT_SOURCE"); v != "" {
		cfg.Artifacts.Source = strings.ToLower(v)
	}
	if v := os.Getenv("ARTIFACT_ROOT"); v != "" {
		cfg.Artifacts.Root = v
	}
	if v := os.Getenv("ARTIFACT_LOAD_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Artifacts.LoadTimeout = parsed
		}
	}
	if v := os.Getenv("ARTIFACT_S3_ENDPOINT"); v != "" {
		cfg.Artifacts.S3.Endpoint = v
	}
	if v := os.Getenv("ARTIFACT_S3_ACCESS_KEY"); v != "" {
		cfg.Artifacts.S3.AccessKey = v
	}
	if v := os.Getenv("ARTIFACT_S3_SECRET_KEY"); v != "" {
		cfg.Artifacts.S3.SecretKey = v
	}
	if v := os.Getenv("ARTIFACT_S3_BUCKET"); v != "" {
		cfg.Artifacts.S3.Bucket = v
	}
	if v := os.Getenv("ARTIFACT_S3_REGION"); v != "" {
		cfg.Artifacts.S3.Region = v
	}
	if v := os.Getenv("ARTIFACT_S3_PREFIX"); v != "" {
		cfg.Artifacts.S3.Prefix = v
	}
	if v := os.Getenv("ARTIFACT_S3_USE_SSL"); v != "" {
		cfg.Artifacts.S3.UseSSL = parseBool(v)
	}
	if v := os.Getenv("LABELS_POSTGRES_DSN"); v != "" {
		cfg.Labels.Postgres.DSN = v
	}
	if v := os.Getenv("LABELS_POSTGRES_TABLE"); v != "" {
		cfg.Labels.Postgres.Table = v
	}
	if v := os.Getenv("LABELS_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Labels.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("DRIFT_ENABLED"); v != "" {
		cfg.Drift.Enabled = parseBool(v)
	}
	if v := os.Getenv("DRIFT_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Drift.Limit = parsed
		}
	}
	if v := os.Getenv("DRIFT_MAX_ENTRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Drift.MaxEntries = parsed
		}
	}
	if v := os.Getenv("DRIFT_REDIS_ENABLED"); v != "" {
		cfg.Drift.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("DRIFT_REDIS_ADDR"); v != "" {
		cfg.Drift.Redis.Addr = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":5000",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Metrics: true,
		},
		Model: ModelConfig{
			Path:         "model/model.json",
			ScalerPath:   "model/scaler.json",
			EncodersPath: "model/label_encoders.json",
		},
		Artifacts: ArtifactsConfig{
			Source:      SourceFile,
			LoadTimeout: 30 * time.Second,
		},
		Labels: LabelsConfig{
			Postgres: PostgresConfig{
				Table:    "label_classes",
				MaxConns: 2,
			},
		},
		Drift: DriftConfig{
			Enabled:    true,
			Limit:      20,
			MaxEntries: 10000,
			Prefix:     "aq",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return errors.New("http.shutdownTimeout must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.Model.Path) == "" {
		return errors.New("model.path cannot be empty")
	}
	switch c.Artifacts.Source {
	case SourceFile:
	case SourceS3:
		if strings.TrimSpace(c.Artifacts.S3.Endpoint) == "" {
			return errors.New("artifacts.s3.endpoint cannot be empty when source is s3")
		}
		if strings.TrimSpace(c.Artifacts.S3.Bucket) == "" {
			return errors.New("artifacts.s3.bucket cannot be empty when source is s3")
		}
	default:
		return fmt.Errorf("artifacts.source must be %q or %q, got %q", SourceFile, SourceS3, c.Artifacts.Source)
	}
	if c.Artifacts.LoadTimeout <= 0 {
		return errors.New("artifacts.loadTimeout must be positive")
	}
	if c.Drift.Limit < 0 {
		return errors.New("drift.limit cannot be negative")
	}
	if c.Drift.MaxEntries <= 0 {
		return errors.New("drift.maxEntries must be positive")
	}
	if c.Drift.Redis.Enabled && strings.TrimSpace(c.Drift.Redis.Addr) == "" {
		return errors.New("drift.redis.addr cannot be empty when redis store is enabled")
	}
	return nil
}
