package predictor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yanqian/aq-predictor/internal/domain/features"
	apperrors "github.com/yanqian/aq-predictor/pkg/errors"
	"github.com/yanqian/aq-predictor/pkg/metrics"
	"github.com/yanqian/aq-predictor/pkg/util"
)

// Service exposes the inference wrapper.
type Service interface {
	Predict(ctx context.Context, req features.Request) (Result, error)
	Ready() bool
	UnseenLabels(ctx context.Context, limit int) ([]UnseenLabel, error)
}

type service struct {
	cfg     Config
	model   Model
	encoder *features.Encoder
	drift   DriftRecorder
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     util.Clock
}

// NewService builds the wrapper. A nil model, or one whose feature names cannot
// be mapped onto the encoder's columns, leaves the service Unloaded for good.
func NewService(cfg Config, model Model, labels *features.LabelRegistry, scaler *features.Scaler, drift DriftRecorder, recorder *metrics.Recorder, logger *slog.Logger) Service {
	logger = logger.With("component", "predictor.service")
	if cfg.UnseenLimit <= 0 {
		cfg.UnseenLimit = 20
	}

	layout := features.DefaultLayout()
	if model != nil {
		var err error
		layout, err = features.NewLayout(model.FeatureNames(), model.InputWidth())
		if err != nil {
			logger.Error("model rejected, feature layout invalid", "error", err)
			model = nil
			layout = features.DefaultLayout()
		} else if !layout.Aligned() {
			logger.Error("model input width differs from assembled features and no feature names are listed, requests will use zero vectors",
				"input_width", model.InputWidth(), "assembled_width", len(features.DefaultColumns))
		}
	}
	if scaler.Fitted() && scaler.Width() != layout.Width() && scaler.Width() != len(features.DefaultColumns) {
		logger.Warn("scaler width differs from model input, scaling will be skipped", "scaler_width", scaler.Width(), "input_width", layout.Width())
	}
	recorder.SetModelLoaded(model != nil)

	return &service{
		cfg:     cfg,
		model:   model,
		encoder: features.NewEncoder(labels, scaler, layout),
		drift:   drift,
		metrics: recorder,
		logger:  logger,
		now:     util.NowUTC,
	}
}

func (s *service) Ready() bool {
	return s.model != nil
}

func (s *service) Predict(ctx context.Context, req features.Request) (Result, error) {
	if s.model == nil {
		s.metrics.ObservePrediction(metrics.OutcomeUnloaded, 0)
		return Result{}, ErrModelNotLoaded
	}
	if req == nil {
		return Result{}, apperrors.New(CodeInvalidInput, "request payload is empty")
	}

	start := time.Now()
	encoded := s.encoder.Encode(req)
	s.report(ctx, encoded)

	value, err := s.model.Predict(encoded.Vector)
	if err == nil && (math.IsNaN(value) || math.IsInf(value, 0)) {
		err = fmt.Errorf("model produced non-finite output %v", value)
	}
	if err != nil {
		s.metrics.ObservePrediction(metrics.OutcomeFailed, time.Since(start))
		s.logger.Error("error in prediction", "error", err)
		return Result{}, apperrors.Wrap(CodeInferenceFailed, "model inference failed", err)
	}

	outcome := metrics.OutcomeSuccess
	if encoded.Fallback {
		outcome = metrics.OutcomeFallback
	}
	s.metrics.ObservePrediction(outcome, time.Since(start))

	lat, _ := req.Coordinate(features.KeyLatitude)
	lon, _ := req.Coordinate(features.KeyLongitude)
	return Result{
		Value:     value,
		Unit:      req.Category(features.KeyUnit),
		Parameter: req.Category(features.KeyParameter),
		Timestamp: s.now().Format(time.RFC3339Nano),
		Location:  req.Category(features.KeyLocationName),
		Coordinates: Coordinates{
			Latitude:  lat,
			Longitude: lon,
		},
	}, nil
}

func (s *service) UnseenLabels(ctx context.Context, limit int) ([]UnseenLabel, error) {
	if s.drift == nil {
		return []UnseenLabel{}, nil
	}
	if limit <= 0 {
		limit = s.cfg.UnseenLimit
	}
	items, err := s.drift.TopUnseen(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap("drift_store_error", "failed to read unseen labels", err)
	}
	if items == nil {
		items = []UnseenLabel{}
	}
	return items, nil
}

func (s *service) report(ctx context.Context, res features.Result) {
	for _, w := range res.Warnings {
		s.logger.Warn("preprocessing fallback applied", "kind", string(w.Kind), "field", w.Field, "detail", w.String())
		s.metrics.IncWarning(string(w.Kind))
		if w.Kind != features.WarnUnseenLabel || !s.cfg.TrackUnseen || s.drift == nil {
			continue
		}
		if err := s.drift.RecordUnseen(ctx, w.Field, w.Value); err != nil {
			s.logger.Warn("record unseen label failed", "field", w.Field, "error", err)
		}
	}
	if res.Fallback {
		s.logger.Error("error in preprocessing, using zero vector", "error", res.Err, "width", len(res.Vector))
		s.metrics.IncFallback()
	}
	s.logger.Debug("request encoded", "utc", res.UTC, "local", res.Local, "fallback", res.Fallback)
}
