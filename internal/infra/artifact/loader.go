package artifact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yanqian/aq-predictor/internal/domain/features"
	"github.com/yanqian/aq-predictor/internal/infra/mlmodel"
)

// Loader decodes the model, scaler and label encoder artifacts from a Source.
type Loader struct {
	source Source
}

// NewLoader constructs a loader.
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Describe reports where name would be read from.
func (l *Loader) Describe(name string) string {
	return l.source.Describe(name)
}

// Model reads a dense network artifact.
func (l *Loader) Model(ctx context.Context, name string) (*mlmodel.Network, error) {
	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return mlmodel.Decode(rc)
}

type scalerArtifact struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Scaler reads a fitted standardization artifact: {"mean": [...], "scale": [...]}.
func (l *Loader) Scaler(ctx context.Context, name string) (*features.Scaler, error) {
	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var art scalerArtifact
	if err := json.NewDecoder(rc).Decode(&art); err != nil {
		return nil, fmt.Errorf("decode scaler artifact: %w", err)
	}
	return features.NewScaler(art.Mean, art.Scale)
}

// LabelClasses reads the label encoder artifact: {"field": ["class0", "class1", ...]}.
func (l *Loader) LabelClasses(ctx context.Context, name string) (map[string][]string, error) {
	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var classes map[string][]string
	if err := json.NewDecoder(rc).Decode(&classes); err != nil {
		return nil, fmt.Errorf("decode label encoder artifact: %w", err)
	}
	return classes, nil
}
