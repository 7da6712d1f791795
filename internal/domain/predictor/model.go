package predictor

import (
	"context"

	apperrors "github.com/yanqian/aq-predictor/pkg/errors"
)

// Error codes surfaced to the transport layer.
const (
	CodeModelNotLoaded  = "model_not_loaded"
	CodeInferenceFailed = "inference_failed"
	CodeInvalidInput    = "invalid_input"
)

// ErrModelNotLoaded is returned by Predict while the service is Unloaded.
var ErrModelNotLoaded = apperrors.New(CodeModelNotLoaded, "Model not loaded correctly")

// Result is the prediction returned to API consumers.
type Result struct {
	Value       float64     `json:"value"`
	Unit        string      `json:"unit"`
	Parameter   string      `json:"parameter"`
	Timestamp   string      `json:"timestamp"`
	Location    string      `json:"location"`
	Coordinates Coordinates `json:"coordinates"`
}

// Coordinates echoes the parsed request position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UnseenLabel counts how often a categorical value unknown to the encoder was requested.
type UnseenLabel struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Config tunes optional behavior of the service.
type Config struct {
	TrackUnseen bool
	UnseenLimit int
}

// Model is a loaded regression model. Implementations must be safe for concurrent use.
type Model interface {
	Predict(features []float64) (float64, error)
	InputWidth() int
	// FeatureNames lists the trained column order, or nil when the artifact has none.
	FeatureNames() []string
}

// DriftRecorder keeps counts of unseen categorical values.
type DriftRecorder interface {
	RecordUnseen(ctx context.Context, field, label string) error
	TopUnseen(ctx context.Context, limit int) ([]UnseenLabel, error)
}
