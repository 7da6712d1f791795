package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/aq-predictor/internal/domain/features"
	"github.com/yanqian/aq-predictor/internal/domain/predictor"
	"github.com/yanqian/aq-predictor/internal/infra/artifact"
	"github.com/yanqian/aq-predictor/internal/infra/config"
	"github.com/yanqian/aq-predictor/internal/infra/driftstore"
	"github.com/yanqian/aq-predictor/internal/infra/labelrepo"
)

func providePredictorConfig(cfg *config.Config) predictor.Config {
	return predictor.Config{
		TrackUnseen: cfg.Drift.Enabled,
		UnseenLimit: cfg.Drift.Limit,
	}
}

func provideArtifactSource(cfg *config.Config, logger *slog.Logger) (artifact.Source, error) {
	if cfg.Artifacts.Source != config.SourceS3 {
		return artifact.NewFileSource(cfg.Artifacts.Root), nil
	}
	s3 := cfg.Artifacts.S3
	source, err := artifact.NewObjectSource(artifact.ObjectConfig{
		Endpoint:  s3.Endpoint,
		AccessKey: s3.AccessKey,
		SecretKey: s3.SecretKey,
		Bucket:    s3.Bucket,
		Region:    s3.Region,
		Prefix:    s3.Prefix,
		UseSSL:    s3.UseSSL,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("reading artifacts from object storage", "bucket", s3.Bucket, "prefix", s3.Prefix)
	return source, nil
}

// provideModel returns a nil Model when the artifact cannot be loaded so the
// service starts Unloaded instead of aborting.
func provideModel(cfg *config.Config, loader *artifact.Loader, logger *slog.Logger) predictor.Model {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Artifacts.LoadTimeout)
	defer cancel()

	location := loader.Describe(cfg.Model.Path)
	network, err := loader.Model(ctx, cfg.Model.Path)
	if err != nil {
		logger.Error("error loading model", "location", location, "error", err)
		return nil
	}
	meta := network.Meta()
	logger.Info("model loaded", "location", location, "input_width", network.InputWidth(), "name", meta.Name, "target", meta.Target)
	return network
}

func provideScaler(cfg *config.Config, loader *artifact.Loader, logger *slog.Logger) *features.Scaler {
	if strings.TrimSpace(cfg.Model.ScalerPath) == "" {
		logger.Warn("scaler path not set, features will not be scaled")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Artifacts.LoadTimeout)
	defer cancel()

	location := loader.Describe(cfg.Model.ScalerPath)
	scaler, err := loader.Scaler(ctx, cfg.Model.ScalerPath)
	if err != nil {
		logger.Warn("scaler unavailable, features will not be scaled", "location", location, "error", err)
		return nil
	}
	logger.Info("scaler loaded", "location", location, "width", scaler.Width())
	return scaler
}

// provideLabelRegistry prefers the Postgres label table when a DSN is set and
// falls back to the encoder artifact, then to an empty registry.
func provideLabelRegistry(cfg *config.Config, loader *artifact.Loader, logger *slog.Logger) *features.LabelRegistry {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Artifacts.LoadTimeout)
	defer cancel()

	if strings.TrimSpace(cfg.Labels.Postgres.DSN) != "" {
		classes, err := loadClassesFromPostgres(ctx, cfg.Labels.Postgres)
		if err == nil {
			logger.Info("label encoders loaded from postgres", "table", cfg.Labels.Postgres.Table, "fields", len(classes))
			return features.NewLabelRegistry(classes)
		}
		logger.Error("postgres label encoders unavailable, trying artifact", "error", err)
	}

	if strings.TrimSpace(cfg.Model.EncodersPath) == "" {
		logger.Warn("label encoders path not set, encoders start empty")
		return features.NewLabelRegistry(nil)
	}
	location := loader.Describe(cfg.Model.EncodersPath)
	classes, err := loader.LabelClasses(ctx, cfg.Model.EncodersPath)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			logger.Warn("label encoders not found, encoders start empty", "location", location)
		} else {
			logger.Error("error loading label encoders, encoders start empty", "location", location, "error", err)
		}
		return features.NewLabelRegistry(nil)
	}
	logger.Info("label encoders loaded", "location", location, "fields", len(classes))
	return features.NewLabelRegistry(classes)
}

func loadClassesFromPostgres(ctx context.Context, cfg config.PostgresConfig) (map[string][]string, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	repo := labelrepo.NewPostgresRepository(pool, cfg.Table)
	defer repo.Close()
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}
	return repo.LoadClasses(ctx)
}

func provideDriftStore(cfg *config.Config, logger *slog.Logger) (predictor.DriftRecorder, func()) {
	noop := func() {}
	if !cfg.Drift.Redis.Enabled {
		return driftstore.NewMemoryStore(cfg.Drift.MaxEntries), noop
	}
	opt, err := buildValkeyOptions(cfg.Drift.Redis.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory drift store", "error", err)
		return driftstore.NewMemoryStore(cfg.Drift.MaxEntries), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory drift store", "error", err)
		return driftstore.NewMemoryStore(cfg.Drift.MaxEntries), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory drift store", "error", err)
		client.Close()
		return driftstore.NewMemoryStore(cfg.Drift.MaxEntries), noop
	}
	logger.Info("valkey drift store enabled", "addr", cfg.Drift.Redis.Addr)
	return driftstore.NewValkeyStore(client, cfg.Drift.Prefix, cfg.Drift.MaxEntries), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
